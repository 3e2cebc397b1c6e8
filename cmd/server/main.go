package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kstrand/punchclock/internal/clock"
	"github.com/kstrand/punchclock/internal/config"
	"github.com/kstrand/punchclock/internal/domain/audit"
	"github.com/kstrand/punchclock/internal/domain/report"
	"github.com/kstrand/punchclock/internal/domain/timelog"
	"github.com/kstrand/punchclock/internal/sqlite"
	"github.com/kstrand/punchclock/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	timelogRepo := sqlite.NewTimeLogRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)

	clk := clock.System()
	audits := audit.NewService(auditRepo, clk)
	engine := timelog.NewService(timelogRepo, audits, clk, logger)
	reports := report.NewService(timelogRepo, clk, logger)

	var middleware func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		middleware = transport.AuthMiddleware(&apiKeyResolver{db: db})
	} else {
		middleware = transport.HeaderIdentityMiddleware
	}

	router := transport.NewServer(engine, reports, audits, clk, logger, middleware)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr, "auth", cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type apiKeyResolver struct {
	db *sqlite.DB
}

func (r *apiKeyResolver) ResolveIdentity(ctx context.Context, token string) (timelog.Identity, error) {
	hash := hashToken(token)
	var id timelog.Identity
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, org_id FROM api_keys WHERE key_hash = ?`, hash,
	).Scan(&id.UserID, &id.OrgID)
	if err != nil || id.UserID == "" || id.OrgID == "" {
		return timelog.Identity{}, transport.ErrUnauthorized
	}
	return id, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
