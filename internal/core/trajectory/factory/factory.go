// Package factory turns external segment requests into trajectories on the
// path. Each factory owns one request shape and one service route; the
// Registry plays the part of a plugin table keyed by factory name.
package factory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/core/trajectory"
	"github.com/zeusync/autopilot/internal/core/trajectory/manager"
)

// Path is where factories put the segments they build.
type Path interface {
	Add(spec trajectory.Spec, traj trajectory.ParametricTrajectory) (manager.Segment, error)
}

// Factory decodes one request type and adds the resulting segment to a Path.
type Factory interface {
	// Name identifies the factory in the registry.
	Name() string
	// Service is the route, relative to the vehicle namespace, the factory answers on.
	Service() string
	// Handle decodes payload, builds the segment and adds it to the path.
	Handle(ctx context.Context, payload []byte) (Response, error)
}

// Response is returned to the requester.
type Response struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// SpeedProfile carries the speed parameters of a request. Constant-speed
// segments read only the first parameter.
type SpeedProfile struct {
	Parameters []float64 `json:"parameters" yaml:"parameters"`
}

func (p SpeedProfile) constant() (float64, error) {
	if len(p.Parameters) == 0 {
		return 0, ErrMissingSpeed
	}
	return p.Parameters[0], nil
}

// Option configures a factory.
type Option func(*base)

// WithService overrides the default service route.
func WithService(service string) Option {
	return func(b *base) {
		if service != "" {
			b.service = service
		}
	}
}

// base holds what every factory shares.
type base struct {
	name    string
	service string
	path    Path
	logger  log.Log
}

func newBase(name, service string, path Path, logger log.Log, opts []Option) base {
	b := base{name: name, service: service, path: path, logger: logger}
	for _, opt := range opts {
		opt(&b)
	}
	if b.logger == nil {
		b.logger = log.NewNop()
	}
	b.logger = b.logger.With(log.String("factory", name))
	return b
}

func (b *base) Name() string    { return b.name }
func (b *base) Service() string { return b.service }

func (b *base) decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRequest, b.name, err)
	}
	return nil
}

// add builds spec and hands the segment to the path.
func (b *base) add(spec trajectory.Spec) (Response, error) {
	if err := spec.CheckFinite(); err != nil {
		return Response{Message: err.Error()}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	traj, err := spec.Build()
	if err != nil {
		return Response{Message: err.Error()}, err
	}
	seg, err := b.path.Add(spec, traj)
	if err != nil {
		b.logger.Warn("Segment rejected by path", log.Error(err))
		return Response{Message: err.Error()}, err
	}
	b.logger.Debug("Segment added", log.String("id", seg.ID), log.Uint64("fingerprint", seg.Fingerprint))
	return Response{Success: true, ID: seg.ID}, nil
}
