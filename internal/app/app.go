package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"aqdaily/internal/config"
	"aqdaily/internal/files"
	"aqdaily/internal/infrastructure"
	"aqdaily/internal/operations"
	"aqdaily/internal/services"
	"aqdaily/internal/storage"
	handlers "aqdaily/internal/transport/http"
	"aqdaily/internal/vendor"
	"aqdaily/pkg/contracts"
)

// Options override collaborators that New would otherwise build from the
// configuration.
type Options struct {
	Logger     *slog.Logger
	Uploader   storage.Uploader
	NewAdapter func(config.Manufacturer) (vendor.Adapter, error)
	Now        func() time.Time
}

// Application represents the main application container
type Application struct {
	Config     *config.Config
	Logger     *slog.Logger
	Metrics    *infrastructure.Metrics
	Tracing    *infrastructure.Tracing
	Files      *files.Manager
	Uploader   storage.Uploader
	Manager    *operations.Manager
	Operations *services.OperationService
	Router     http.Handler
	Server     *http.Server
}

// New wires the application from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		var err error
		if logger, err = infrastructure.InitializeLogger(cfg.Logging); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("manufacturers", len(cfg.Manufacturers)))

	if err := cfg.Paths.EnsureDirectories(logger); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	tracing, err := infrastructure.InitializeTracing(cfg.Tracing, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	uploader := opts.Uploader
	if uploader == nil {
		if uploader, err = storage.New(ctx, cfg.Upload, logger); err != nil {
			return nil, fmt.Errorf("failed to initialize uploader: %w", err)
		}
	}

	a := &Application{
		Config:   cfg,
		Logger:   logger,
		Metrics:  infrastructure.NewMetrics(),
		Tracing:  tracing,
		Files:    files.NewManager(cfg.Paths, logger),
		Uploader: uploader,
	}

	deps := operations.Dependencies{
		Config:     cfg,
		Files:      a.Files,
		Uploader:   uploader,
		Metrics:    a.Metrics,
		Logger:     logger,
		NewAdapter: opts.NewAdapter,
		Now:        opts.Now,
	}
	a.Manager = operations.NewManager(nil, a.Metrics, logger)
	for _, step := range []operations.Step{
		operations.NewScrapeStep(deps),
		operations.NewReportStep(deps),
		operations.NewProcessStep(deps),
	} {
		if err := a.Manager.RegisterStep(step); err != nil {
			return nil, fmt.Errorf("failed to register step %s: %w", step.ID(), err)
		}
	}
	a.Operations = services.NewOperationService(a.Manager, logger)

	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) setupRouter() {
	a.Router = handlers.NewRouter(handlers.RouterConfig{
		Health:     handlers.NewHealthHandler(services.NewHealthService(a.Config.Paths, a.Logger), a.Logger),
		Reports:    handlers.NewReportHandler(services.NewReportService(a.Files, a.Logger), a.Logger),
		Operations: handlers.NewOperationsHandler(a.Operations, a.Logger),
		Metrics:    a.Metrics,
		Logger:     a.Logger,
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// RunOperation runs steps over window in the foreground. The response is
// returned even when a step failed.
func (a *Application) RunOperation(ctx context.Context, steps []string, window operations.Window) (*operations.OperationResponse, error) {
	resp, err := a.Manager.Execute(ctx, operations.OperationRequest{Steps: steps, Window: window})
	if resp != nil {
		a.Logger.InfoContext(ctx, "Operation summary",
			slog.String("operation_id", resp.ID),
			slog.String("status", string(resp.Status)),
			slog.Duration("duration", resp.Duration))
	}
	return resp, err
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down.
func (a *Application) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	a.Logger.InfoContext(ctx, "Server started",
		slog.String("address", a.Server.Addr),
		slog.String("version", contracts.Version))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	}
	return a.Stop(context.WithoutCancel(ctx))
}

// Stop gracefully stops the server and waits for a background run.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := a.Operations.Wait(shutdownCtx); err != nil {
		a.Logger.WarnContext(ctx, "Background operation still running at shutdown",
			slog.String("error", err.Error()))
	}
	return a.Close(shutdownCtx)
}

// Close flushes tracing and writes the metrics textfile.
func (a *Application) Close(ctx context.Context) error {
	if err := a.Metrics.WriteTextfile(a.Config.Metrics.TextfilePath); err != nil {
		a.Logger.WarnContext(ctx, "Cannot write metrics textfile", slog.String("error", err.Error()))
	}
	if err := a.Tracing.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down tracing", slog.String("error", err.Error()))
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}
