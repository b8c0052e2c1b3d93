package server

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"github.com/jackc/pgx/v5/pgxpool"

	"staffdesk/internal/domain/audit"
	"staffdesk/internal/domain/auth"
	"staffdesk/internal/domain/employees"
	"staffdesk/internal/platform/config"
	"staffdesk/internal/platform/db"
	"staffdesk/internal/platform/metrics"
	"staffdesk/internal/transport/http/api"
	authhandler "staffdesk/internal/transport/http/handlers/auth"
	employeeshandler "staffdesk/internal/transport/http/handlers/employees"
	"staffdesk/internal/transport/http/middleware"
	"staffdesk/internal/transport/http/web"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	app := &App{Config: cfg, DB: pool, Metrics: metrics.New()}
	router, err := app.routes()
	if err != nil {
		pool.Close()
		return nil, err
	}
	app.Router = router
	return app, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func (a *App) routes() (http.Handler, error) {
	cfg := a.Config
	sessions := web.NewSessions(secretBytes("SESSION_SECRET", cfg.SessionSecret), cfg.SessionTTL, cfg.CookieSecure)
	views, err := web.NewRenderer(sessions)
	if err != nil {
		return nil, err
	}

	authSvc := auth.NewService(auth.NewStore(a.DB), secretString("JWT_SECRET", cfg.JWTSecret), cfg.SessionTTL)
	employeeSvc := employees.NewService(employees.NewStore(a.DB))
	auditSvc := audit.New(a.DB)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Session(sessions, authSvc))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "db_unavailable", "database not ready", middleware.GetRequestID(r.Context()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	limited := views.Status(http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
	byIP := middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, middleware.WithLimitedHandler(limited))
	byUsername := middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute,
		middleware.WithKeyFunc(middleware.FormFieldOrIPKey("username")),
		middleware.WithLimitedHandler(limited),
	)
	loginLimit := func(next http.Handler) http.Handler {
		return byIP(byUsername(next))
	}
	registerLimit := middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, middleware.WithLimitedHandler(limited))

	requireManager := middleware.RequireManager(
		employeeSvc,
		views.Status(http.StatusForbidden, "This page is only available to managers."),
		views.Status(http.StatusInternalServerError, "Something went wrong. Please try again."),
	)

	router.Group(func(r chi.Router) {
		if !cfg.CookieSecure {
			r.Use(plaintextHTTP)
		}
		r.Use(csrf.Protect(
			secretBytes("CSRF_KEY", cfg.CSRFKey),
			csrf.Secure(cfg.CookieSecure),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				slog.Warn("csrf check failed", "reason", csrf.FailureReason(r), "path", r.URL.Path, "requestId", middleware.GetRequestID(r.Context()))
				views.RenderError(w, r, http.StatusForbidden, "Your form has expired. Please go back, reload the page and try again.")
			})),
		))

		authhandler.NewHandler(authSvc, sessions, views, a.Metrics).RegisterRoutes(r, loginLimit)
		employeeshandler.NewHandler(employeeSvc, authSvc, auditSvc, sessions, views).
			RegisterRoutes(r, middleware.RequireLogin, requireManager, registerLimit)
	})

	router.NotFound(views.Status(http.StatusNotFound, "The page you were looking for does not exist.").ServeHTTP)
	return router, nil
}

// plaintextHTTP tells the CSRF layer the site is served without TLS so it
// skips the HTTPS referer check.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// secretBytes returns a 32 byte key. Outside production an unset key is
// replaced by a random one, so sessions do not survive a restart.
func secretBytes(name, value string) []byte {
	if len(value) >= 32 {
		return []byte(value[:32])
	}
	if value != "" {
		slog.Warn(name+" is shorter than 32 bytes; using a random key for this process")
	} else {
		slog.Warn(name + " is not set; using a random key for this process")
	}
	return securecookie.GenerateRandomKey(32)
}

func secretString(name, value string) string {
	if value != "" {
		return value
	}
	return base64.RawURLEncoding.EncodeToString(secretBytes(name, ""))
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("staffdesk listening on %s", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "err", err)
		}
	}
}
