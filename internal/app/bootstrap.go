package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"golang.org/x/sync/errgroup"

	"jobboard/internal/config"
	"jobboard/internal/delivery/http/handler"
	"jobboard/internal/delivery/http/middleware"
	"jobboard/internal/delivery/http/routes"
	v1 "jobboard/internal/delivery/http/routes/v1"
	"jobboard/internal/logging"
	"jobboard/internal/ws"
)

const shutdownTimeout = 10 * time.Second

// bodySlack leaves room for multipart headers and form fields around the resume itself.
const bodySlack = 1 << 20

type App struct {
	Fiber *fiber.App
	WS    *http.Server

	container *Container
	logger    logging.Logger
}

// New builds the HTTP surface over an already wired container.
func New(c *Container) *App {
	cfg := c.Config
	errMw := middleware.NewErrorMiddleware(cfg.IsProduction(), c.Logger).
		OnBodyTooLarge(handler.OversizedResume(cfg.App.MaxFileUpload))

	f := fiber.New(fiber.Config{
		AppName:      cfg.App.AppName,
		BodyLimit:    int(cfg.App.MaxFileUpload) + bodySlack,
		ErrorHandler: errMw.Handler(),
	})

	registerGlobalMiddleware(f, c, errMw)
	registerRoutes(f, c)

	a := &App{Fiber: f, container: c, logger: c.Logger}
	if wsAddr, err := ListenAddr(cfg.App.WSPort); err == nil {
		a.WS = ws.NewServer(wsAddr, ws.NewHandler(c.Hub, c.Logger))
	}
	return a
}

func Bootstrap(ctx context.Context, cfg config.Config, logger logging.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container, errMw *middleware.ErrorMiddleware) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(c.Logger).Middleware())
	app.Use(errMw.Middleware())
	app.Use(middleware.NewRateLimitMiddleware(c.Cache, c.Config.RateLimit.Max, c.Config.RateLimit.Window, c.Logger).Middleware())
	app.Use(middleware.RequestTimeout(c.Config.App.RequestTimeout))
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	sessions := handler.NewSessionWriter(c.Config.JWT.CookieExpires, c.Config.IsProduction())
	health := handler.NewHealthHandler(map[string]handler.Pinger{
		"database": c.DB,
		"cache":    c.Cache,
	})

	routes.NewRegistry(health, v1.Handlers{
		Auth:  middleware.NewAuthMiddleware(c.JWT, c.Users),
		Login: handler.NewAuthHandler(c.AuthService, sessions),
		Users: handler.NewUserHandler(c.UserService, c.AuthService, sessions),
		Jobs:  handler.NewJobsHandler(c.JobService),
	}).Register(app)
}

// Run serves until ctx is cancelled or a listener fails, then drains in-flight requests,
// stops the scheduler and closes the job feed.
func (a *App) Run(ctx context.Context) error {
	addr, err := ListenAddr(a.container.Config.App.HTTPPort)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.container.Hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.logger.Info(gctx, "http server listening", "addr", addr)
		if err := a.Fiber.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.WS != nil {
		g.Go(func() error {
			a.logger.Info(gctx, "job feed listening", "addr", a.WS.Addr)
			if err := a.WS.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("job feed: %w", err)
			}
			return nil
		})
	}

	a.container.Scheduler.Start()

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info(ctx, "shutting down")
	a.container.Scheduler.Stop(ctx)

	var errs []error
	if err := a.Fiber.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.WS != nil {
		if err := a.WS.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("job feed shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
