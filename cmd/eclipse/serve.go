package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
	"github.com/goliatone/go-eclipse/components/eclipse/gorouter"
	"github.com/goliatone/go-eclipse/components/eclipse/httpapi"
	"github.com/goliatone/go-eclipse/pkg/analytics"
	"github.com/goliatone/go-eclipse/pkg/config"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Config    string   `short:"c" type:"path" help:"YAML configuration file."`
	EnvFile   []string `name:"env-file" default:".env" help:"dotenv files to load (missing files are skipped)."`
	Addr      string   `help:"Override server.addr."`
	Transport string   `help:"Override server.transport (fiber, nethttp)."`
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(cmd.Config, cmd.EnvFile...)
	if err != nil {
		return err
	}
	if cmd.Addr != "" {
		cfg.Server.Addr = cmd.Addr
	}
	if cmd.Transport != "" {
		cfg.Server.Transport = cmd.Transport
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
	}()

	logger.Info("eclipse server starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("base_path", a.basePath()),
		zap.String("transport", cfg.Server.Transport),
	)
	if cfg.Server.Transport == config.TransportNetHTTP {
		return a.serveHTTP(ctx)
	}
	return a.serveFiber(ctx)
}

// app holds the wired dashboard components for one server process.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	service    *eclipse.Service
	hook       *eclipse.BroadcastHook
	controller *eclipse.Controller
	api        *httpapi.Handlers
	closers    []func(context.Context) error
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &app{cfg: cfg, logger: logger, hook: eclipse.NewBroadcastHook()}

	doc, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	telemetry, err := a.buildTelemetry()
	if err != nil {
		return nil, err
	}

	a.service = eclipse.NewService(eclipse.Options{
		Store:      eclipse.NewInMemorySessionStore(eclipse.WithSessionTTL(cfg.Session.IdleTTL)),
		Catalog:    doc.Catalog(),
		Telemetry:  telemetry,
		Hook:       a.hook,
		Logger:     logger.Named("service"),
		ReplyDelay: cfg.Chat.ReplyDelay,
	})
	a.hook.Authorize(a.service)
	if cfg.Telemetry.PageViews {
		a.service.Inject(ctx)
	}

	renderer, err := eclipse.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("eclipse: templates: %w", err)
	}
	a.controller = eclipse.NewController(eclipse.ControllerOptions{
		Service:  a.service,
		Renderer: renderer,
		BasePath: a.basePath(),
		Logger:   logger.Named("controller"),
	})
	limiter := httpapi.NewChatLimiter(cfg.Chat.RateLimit.RPS, cfg.Chat.RateLimit.Burst)
	a.api = httpapi.NewHandlers(a.service, limiter, logger.Named("api"))
	return a, nil
}

func (a *app) buildTelemetry() (eclipse.Telemetry, error) {
	switch a.cfg.Telemetry.Sink {
	case config.SinkNoop:
		return nil, nil
	case config.SinkHTTP:
		client, err := analytics.NewHTTPClient(analytics.HTTPConfig{
			BaseURL: a.cfg.Telemetry.Endpoint,
			APIKey:  a.cfg.Telemetry.APIKey,
		})
		if err != nil {
			return nil, err
		}
		collector, err := analytics.NewCollector(analytics.CollectorConfig{
			Client: client,
			Logger: a.logger.Named("analytics"),
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, collector.Close)
		return eclipse.MultiTelemetry{collector, eclipse.NewLogTelemetry(a.logger.Named("telemetry"))}, nil
	default:
		return eclipse.NewLogTelemetry(a.logger.Named("telemetry")), nil
	}
}

func (a *app) basePath() string {
	base := strings.TrimRight(a.cfg.Server.BasePath, "/")
	if base == "" {
		return gorouter.DefaultBasePath
	}
	return base
}

// handler mounts the JSON API and transcript streams on a plain ServeMux.
func (a *app) handler() http.Handler {
	mux := http.NewServeMux()
	base := a.basePath()
	a.api.Routes(mux, base)
	mux.HandleFunc("GET "+base+"/ws", a.hook.ServeWebSocket)
	mux.HandleFunc("GET "+base+"/events", a.hook.ServeSSE)
	return mux
}

func (a *app) serveHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (a *app) serveFiber(ctx context.Context) error {
	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: a.controller,
		API:        a.api,
		Broadcast:  a.hook,
		Logger:     a.logger.Named("router"),
		BasePath:   a.basePath(),
	}); err != nil {
		return fmt.Errorf("eclipse: register routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(a.cfg.Server.Addr) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("eclipse server stopping")
		return nil
	}
}

// Close flushes asynchronous telemetry sinks.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
