package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jrazmi/minimaltodo/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/minimaltodo/bridge/scaffolding/mid"
	"github.com/jrazmi/minimaltodo/core/repositories"
	"github.com/jrazmi/minimaltodo/core/repositories/tasksrepo"
	"github.com/jrazmi/minimaltodo/core/services/taskservice"
	"github.com/jrazmi/minimaltodo/infrastructure/web"
	"github.com/jrazmi/minimaltodo/sdk/environment"
	"github.com/jrazmi/minimaltodo/sdk/logger"
	"github.com/jrazmi/minimaltodo/sdk/telemetry"
	"golang.org/x/sync/errgroup"
)

var build = "develop"
var appName = "TODO"

// Config is the process level configuration not owned by a component.
type Config struct {
	APIPrefix    string        `env:"API_PREFIX" default:"/api/v1"`
	DrainTimeout time.Duration `env:"DRAIN_TIMEOUT" default:"10s"`
}

func main() {
	environment.LoadEnv()

	log, err := logger.NewFromEnv(appName, logger.WithService("todo"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuring logger:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		if errors.Is(err, tasksrepo.ErrStorageUnavailable) {
			log.ErrorContext(ctx, "startup", "status", "task storage could not be opened")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	var cfg Config
	if err := environment.ParseEnvTags(appName, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	// REPOSITORIES
	repos, err := repositories.NewFromEnv(ctx, appName, log)
	if err != nil {
		return fmt.Errorf("opening repositories: %w", err)
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing task storage")
		if err := repos.Close(); err != nil {
			log.ErrorContext(ctx, "shutdown", "err", err)
		}
	}()
	log.InfoContext(ctx, "startup", "store", repos.Driver())

	// SERVICES
	svc, err := taskservice.NewFromEnv(appName, log, repos.Tasks)
	if err != nil {
		return fmt.Errorf("task service: %w", err)
	}

	// WEB
	tel := telemetry.NewTelemetry()
	handler, err := web.NewWebHandlerFromEnv(appName,
		web.WithLogging(log.Logger),
		web.WithTelemetry(tel),
		web.WithGlobalMiddleware(
			mid.Logger(log, tel),
			mid.Errors(log),
			mid.Panics(),
		),
	)
	if err != nil {
		return fmt.Errorf("webhandler: %w", err)
	}
	tasksrepobridge.AddHttpRoutes(handler.Group(cfg.APIPrefix), tasksrepobridge.Config{
		Log:            log,
		Service:        svc,
		StoreName:      repos.Driver(),
		StatusCheck:    repos.StatusCheck,
		AllowedOrigins: handler.CORSOrigins(),
	})

	server, err := web.NewServerFromEnv(appName,
		web.WithHandler(handler),
		web.WithErrorLog(logger.NewStdLogger(log, logger.LevelError)),
	)
	if err != nil {
		return fmt.Errorf("webserver: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// The worker outlives the HTTP server so accepted mutations can drain.
	g.Go(func() error {
		return svc.Run(context.WithoutCancel(gctx))
	})

	g.Go(func() error {
		defer stop()
		log.InfoContext(ctx, "startup", "status", "api router started", "host", server.Addr)
		err := server.Serve(gctx)
		log.InfoContext(ctx, "shutdown", "status", "api router stopped")

		dctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.DrainTimeout)
		defer cancel()
		if derr := svc.Drain(dctx); derr != nil {
			log.WarnContext(ctx, "shutdown", "status", "pending task writes abandoned", "pending", svc.Pending(), "err", derr)
		}
		svc.Stop()
		return err
	})

	err = g.Wait()
	log.InfoContext(ctx, "shutdown", "status", "shutdown complete")
	return err
}
