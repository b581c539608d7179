// Package injector assembles the path service from its configuration.
package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/autopilot/internal/config"
	"github.com/zeusync/autopilot/internal/core/events/bus"
	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/core/trajectory/factory"
	"github.com/zeusync/autopilot/internal/core/trajectory/manager"
	"github.com/zeusync/autopilot/internal/server"
)

// App is everything cmd/server needs to run.
type App struct {
	Config config.Config
	Logger *log.Logger
	Path   *manager.Manager
	Server *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvidePath,
	ProvideFactories,
	ProvideServer,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.New(cfg.LogLevel())
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

// ProvidePath creates the path and loads the segments listed in the config.
func ProvidePath(cfg config.Config, events bus.EventBus, logger *log.Logger) (*manager.Manager, error) {
	path := manager.New(
		manager.WithEventBus(events),
		manager.WithRejectDuplicates(cfg.Path.RejectDuplicates),
	)
	for i, spec := range cfg.Segments {
		if err := spec.CheckFinite(); err != nil {
			return nil, fmt.Errorf("preload segment %d: %w", i, err)
		}
		seg, err := path.AddSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("preload segment %d: %w", i, err)
		}
		logger.Info("Preloaded segment",
			log.String("id", seg.ID),
			log.String("kind", string(spec.Kind)))
	}
	return path, nil
}

func ProvideFactories(cfg config.Config, path *manager.Manager, logger *log.Logger) (*factory.Registry, error) {
	registry := factory.NewRegistry()
	for _, f := range []factory.Factory{
		factory.NewCircleFactory(path, logger, factory.WithService(cfg.Services.Circle)),
		factory.NewLineFactory(path, logger, factory.WithService(cfg.Services.Line)),
	} {
		if err := registry.Register(f); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func ProvideServer(cfg config.Config, logger *log.Logger, path *manager.Manager, registry *factory.Registry, events bus.EventBus) *server.Server {
	return server.New(cfg, logger, path, registry, events)
}
