package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tudao164/KiemThuPhanMem/config"
	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/db"
	"github.com/tudao164/KiemThuPhanMem/internal/handlers"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/internal/mq"
	"github.com/tudao164/KiemThuPhanMem/internal/obs"
	"github.com/tudao164/KiemThuPhanMem/internal/services"
	"github.com/tudao164/KiemThuPhanMem/internal/storage"
	"github.com/tudao164/KiemThuPhanMem/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	queue      *mq.MQ
	logger     logging.Logger

	stopPruner context.CancelFunc
	prunerDone sync.WaitGroup
}

// repositories are the persistence dependencies of the API.
type repositories struct {
	users       services.UserRepository
	tasks       services.TaskRepository
	revocations auth.RevocationStore
	stats       services.StatsRepository
}

// api holds everything the routes are built from.
type api struct {
	authService  *services.AuthService
	userService  *services.UserService
	taskService  *services.TaskService
	adminService *services.AdminService
	authn        *handlers.Authenticator
	ledger       *auth.Ledger
}

// New connects every configured backend and builds the router.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := mq.Open(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	objects, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		if queue != nil {
			_ = queue.Close()
		}
		return nil, err
	}

	metrics := obs.NewMetrics()

	var publisher services.EventPublisher
	if queue != nil {
		publisher = countingPublisher{
			next:    mq.NewEventPublisher(queue, cfg.MQ.Channel),
			metrics: metrics,
		}
	}
	var snapshots services.SnapshotStore
	if objects != nil {
		snapshots = objects
	}

	repos := repositories{
		users:       store.NewUserRepository(dbConn),
		tasks:       store.NewTaskRepository(dbConn),
		revocations: store.NewRevocationRepository(dbConn),
		stats:       store.NewStatsRepository(dbConn),
	}
	deps, err := newAPI(cfg.Auth, repos, publisher, snapshots, metrics, logger)
	if err != nil {
		_ = dbConn.Close()
		if queue != nil {
			_ = queue.Close()
		}
		return nil, err
	}

	router := newRouter(cfg, deps, metrics, logger)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s := &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		queue:      queue,
		logger:     logger,
	}
	s.startPruner(deps.ledger, cfg.Auth.RevocationPruneEvery)

	logger.Info(ctx, "server configured",
		"port", port,
		"mq_backend", cfg.MQ.Backend,
		"storage_backend", cfg.Storage.Backend,
	)
	return s, nil
}

func newAPI(
	cfg config.AuthConfig,
	repos repositories,
	publisher services.EventPublisher,
	snapshots services.SnapshotStore,
	metrics *obs.Metrics,
	logger logging.Logger,
) (api, error) {
	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		return api{}, fmt.Errorf("token codec: %w", err)
	}
	ledger := auth.NewLedger(repos.revocations)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	resolver := auth.NewResolver(codec, ledger, repos.users, nil)

	var failures handlers.FailureRecorder
	if metrics != nil {
		failures = metrics
	}

	return api{
		authService:  services.NewAuthService(repos.users, hasher, codec, ledger, publisher, logger),
		userService:  services.NewUserService(repos.users),
		taskService:  services.NewTaskService(repos.tasks),
		adminService: services.NewAdminService(repos.users, repos.stats, snapshots, publisher, logger),
		authn:        handlers.NewAuthenticator(resolver, failures, logger),
		ledger:       ledger,
	}, nil
}

func newRouter(cfg config.Config, deps api, metrics *obs.Metrics, logger logging.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	if metrics != nil {
		router.Use(metrics.Instrument)
		router.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, deps.authService, deps.userService, deps.authn, logger)
		})
		r.Route("/tasks", func(r chi.Router) {
			handlers.TaskRouter(r, deps.taskService, deps.authn, logger)
		})
		r.Route("/admin", func(r chi.Router) {
			handlers.AdminRouter(r, deps.adminService, deps.authn, logger)
		})
	})

	if cfg.StaticDir != "" {
		router.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	return router
}

// startPruner deletes expired ledger entries every interval until Shutdown.
// A non-positive interval disables it.
func (s *Server) startPruner(ledger *auth.Ledger, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopPruner = cancel
	s.prunerDone.Add(1)
	go func() {
		defer s.prunerDone.Done()
		runPruner(ctx, ledger, interval, s.logger)
	}()
}

func runPruner(ctx context.Context, ledger *auth.Ledger, interval time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := ledger.Prune(ctx, now)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.Error(ctx, "prune revocation ledger", "error", err)
				}
				continue
			}
			if removed > 0 {
				logger.Info(ctx, "pruned revocation ledger", "removed", removed)
			}
		}
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, stops the pruner and closes the
// backends.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)

	if s.stopPruner != nil {
		s.stopPruner()
		s.prunerDone.Wait()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}
