package factory

import (
	"context"
	"fmt"

	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/core/trajectory"
)

const (
	LineFactoryName    = "LineFactory"
	DefaultLineService = "path/add_line"
)

// AddLineRequest is the wire form of a new line.
type AddLineRequest struct {
	Start [3]float64   `json:"start"`
	End   [3]float64   `json:"end"`
	Speed SpeedProfile `json:"speed"`
}

func (r AddLineRequest) Spec() (trajectory.Spec, error) {
	speed, err := r.Speed.constant()
	if err != nil {
		return trajectory.Spec{}, err
	}
	return trajectory.Spec{
		Kind:  trajectory.KindLine,
		Start: r.Start,
		End:   r.End,
		Speed: speed,
	}, nil
}

type LineFactory struct {
	base
}

var _ Factory = (*LineFactory)(nil)

func NewLineFactory(path Path, logger log.Log, opts ...Option) *LineFactory {
	return &LineFactory{base: newBase(LineFactoryName, DefaultLineService, path, logger, opts)}
}

func (f *LineFactory) Handle(_ context.Context, payload []byte) (Response, error) {
	var req AddLineRequest
	if err := f.decode(payload, &req); err != nil {
		return Response{Message: err.Error()}, err
	}

	spec, err := req.Spec()
	if err != nil {
		return Response{Message: err.Error()}, wrapInvalid(err)
	}

	f.logger.Info("Adding line to path",
		log.Float64("speed", spec.Speed),
		log.Float64s("start", spec.Start[:]),
		log.Float64s("end", spec.End[:]),
	)
	return f.add(spec)
}

func wrapInvalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}
