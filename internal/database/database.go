package database

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DefaultPoolConfig keeps ten connections, two of them warm.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:          10,
		MinConns:          2,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: 5 * time.Minute,
	}
}

// sessionSettings run on every new connection. Failures are logged only.
var sessionSettings = []string{
	"SET application_name = 'profile-service'",
	"SET timezone = 'UTC'",
}

// Connect opens a traced pool and pings it before returning.
func Connect(ctx context.Context, dsn string, poolCfg PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	cfg.ConnConfig.Tracer = otelpgx.NewTracer()

	cfg.MaxConns = poolCfg.MaxConns
	cfg.MinConns = poolCfg.MinConns
	cfg.MaxConnLifetime = poolCfg.MaxConnLifetime
	cfg.MaxConnIdleTime = poolCfg.MaxConnIdleTime
	cfg.HealthCheckPeriod = poolCfg.HealthCheckPeriod
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for _, stmt := range sessionSettings {
			if _, err := conn.Exec(ctx, stmt); err != nil {
				log.Warn().Err(err).Str("statement", stmt).Msg("Failed to apply session setting")
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info().
		Int32("max_conns", cfg.MaxConns).
		Int32("min_conns", cfg.MinConns).
		Msg("Database pool ready")
	return pool, nil
}

// StartConnectionMonitoring logs pool statistics every interval until ctx is done.
func StartConnectionMonitoring(ctx context.Context, db *pgxpool.Pool, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Info().Fields(PoolStats(db)).Msg("Database pool statistics")
			}
		}
	}()
}

// HealthCheck performs a round trip through a transaction.
func HealthCheck(ctx context.Context, db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return tx.Commit(ctx)
}

// PoolStats is served on /status/detailed and logged by the monitor.
func PoolStats(db *pgxpool.Pool) map[string]interface{} {
	stat := db.Stat()
	return map[string]interface{}{
		"total_connections":    stat.TotalConns(),
		"acquired_connections": stat.AcquiredConns(),
		"idle_connections":     stat.IdleConns(),
		"max_connections":      stat.MaxConns(),
		"acquire_count":        stat.AcquireCount(),
		"acquire_wait_ms":      stat.AcquireDuration().Milliseconds(),
		"canceled_acquires":    stat.CanceledAcquireCount(),
	}
}
