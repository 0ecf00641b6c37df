package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cashmind/engine/internal/api"
	"github.com/cashmind/engine/internal/app/challenge"
	"github.com/cashmind/engine/internal/app/engagement"
	"github.com/cashmind/engine/internal/app/spending"
	"github.com/cashmind/engine/internal/health"
	_ "github.com/cashmind/engine/internal/infra/metrics" // Register Prometheus metrics
	"github.com/cashmind/engine/internal/infra/sqlite"
	"github.com/cashmind/engine/internal/security"
)

// Daemon is the core CashMind runtime. It wires together all services.
type Daemon struct {
	Config     Config
	DB         *sqlite.DB
	Spender    *spending.Aggregator
	Challenges *challenge.Manager
	Badges     *engagement.BadgeService
	Levels     *engagement.LevelService
	Server     *api.Server
	Health     *health.Checker
	cancel     context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dir := cfg.Database.Dir
	if dir == "" {
		dir = cashmindHome()
	}
	db, err := sqlite.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.SeedTemplates(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed templates: %w", err)
	}

	spender := spending.NewAggregator(db)
	badges := engagement.NewBadgeService(db)
	levels := engagement.NewLevelService(db)
	challenges := challenge.NewManager(db, spender, badges)

	// JWT mode without a configured secret gets a persistent generated one.
	authSecret := cfg.Auth.Secret
	if cfg.Auth.Mode == "jwt" && authSecret == "" {
		authSecret, err = security.LoadOrCreateSecret(dir)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("load auth secret: %w", err)
		}
	}
	verifier, err := api.NewVerifier(cfg.Auth.Mode, authSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configure auth: %w", err)
	}

	srv := api.NewServer(db, challenges, badges, levels, spender, verifier)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	checker := health.NewChecker(db, dir)
	srv.SetHealth(checker)

	return &Daemon{
		Config:     cfg,
		DB:         db,
		Spender:    spender,
		Challenges: challenges,
		Badges:     badges,
		Levels:     levels,
		Server:     srv,
		Health:     checker,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("CashMind serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
