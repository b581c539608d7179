package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/autopilot/internal/config"
	"github.com/zeusync/autopilot/internal/core/observability/log"
	"github.com/zeusync/autopilot/internal/injector"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	listenAddr := flag.String("listen", "", "override server.listen_addr")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	app, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing:", err)
		os.Exit(1)
	}
	defer func() { _ = app.Logger.Sync() }()

	if err = run(app); err != nil {
		app.Logger.Error("Server exited", log.Error(err))
		os.Exit(1)
	}
}

func run(app *injector.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Server.Start(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(app.Server.Wait)
	g.Go(func() error {
		<-ctx.Done()
		app.Logger.Info("Shutting down", log.Int("segments", app.Path.Len()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	})
	return g.Wait()
}
