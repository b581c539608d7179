package factory

import (
	"context"

	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/core/trajectory"
)

const (
	CircleFactoryName    = "CircleFactory"
	DefaultCircleService = "path/add_circle"
)

// AddCircleRequest is the wire form of a new circle.
type AddCircleRequest struct {
	Center [3]float64   `json:"center"`
	Normal [3]float64   `json:"normal"`
	Radius float64      `json:"radius"`
	Speed  SpeedProfile `json:"speed"`
}

// Spec converts the request into a circle spec.
func (r AddCircleRequest) Spec() (trajectory.Spec, error) {
	speed, err := r.Speed.constant()
	if err != nil {
		return trajectory.Spec{}, err
	}
	return trajectory.Spec{
		Kind:   trajectory.KindCircle,
		Center: r.Center,
		Normal: r.Normal,
		Radius: r.Radius,
		Speed:  speed,
	}, nil
}

type CircleFactory struct {
	base
}

var _ Factory = (*CircleFactory)(nil)

func NewCircleFactory(path Path, logger log.Log, opts ...Option) *CircleFactory {
	return &CircleFactory{base: newBase(CircleFactoryName, DefaultCircleService, path, logger, opts)}
}

func (f *CircleFactory) Handle(_ context.Context, payload []byte) (Response, error) {
	var req AddCircleRequest
	if err := f.decode(payload, &req); err != nil {
		return Response{Message: err.Error()}, err
	}
	return f.AddCircle(req)
}

// AddCircle adds the circle described by req to the path.
func (f *CircleFactory) AddCircle(req AddCircleRequest) (Response, error) {
	spec, err := req.Spec()
	if err != nil {
		return Response{Message: err.Error()}, wrapInvalid(err)
	}

	f.logger.Info("Adding circle to path",
		log.Float64("speed", spec.Speed),
		log.Float64s("center", spec.Center[:]),
		log.Float64s("normal", spec.Normal[:]),
		log.Float64("radius", spec.Radius),
	)
	return f.add(spec)
}
