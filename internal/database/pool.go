package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type PoolStats struct {
	MaxOpenConns      int           `json:"max_open_connections"`
	OpenConns         int           `json:"open_connections"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// HealthCheck - результат проверки базы для /health
type HealthCheck struct {
	Status       string        `json:"status"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	Stats        PoolStats     `json:"stats"`
	Warnings     []string      `json:"warnings,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

func newPoolStats(stats sql.DBStats) PoolStats {
	return PoolStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

// HealthCheck pings the ledger database and reports pool pressure
func (db *DB) HealthCheck(ctx context.Context) HealthCheck {
	start := time.Now()
	stats := newPoolStats(db.Stats())
	hc := HealthCheck{
		Timestamp: start,
		Stats:     stats,
		Warnings:  PoolWarnings(stats),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.PingContext(pingCtx)
	hc.ResponseTime = time.Since(start)

	if err != nil {
		hc.Status = StatusUnhealthy
		hc.Error = err.Error()
		slog.Error("Database health check failed", "error", err)
		return hc
	}

	hc.Status = StatusHealthy
	for _, w := range hc.Warnings {
		slog.Warn("Database pool pressure", "warning", w)
	}
	return hc
}

// PoolWarnings flags connection leaks and waits. Продажи идут пачками перед
// спектаклем, поэтому ожидание соединений видно раньше ошибок.
func PoolWarnings(stats PoolStats) []string {
	var warnings []string

	if stats.MaxOpenConns > 0 && stats.InUse > stats.MaxOpenConns*9/10 {
		warnings = append(warnings, fmt.Sprintf("high connection usage: %d of %d in use", stats.InUse, stats.MaxOpenConns))
	}
	if stats.WaitCount > 0 && stats.WaitDuration > time.Second {
		warnings = append(warnings, fmt.Sprintf("connection waits: %d totalling %s", stats.WaitCount, stats.WaitDuration))
	}
	if stats.MaxIdleClosed > 1000 {
		warnings = append(warnings, fmt.Sprintf("%d idle connections closed, consider raising DB_MAX_IDLE_CONNS", stats.MaxIdleClosed))
	}

	return warnings
}

// QueryWithRetry retries reads on connection errors. Only for idempotent queries.
func (db *DB) QueryWithRetry(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	const maxRetries = 3
	const backoffDelay = 100 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		rows, err := db.QueryContext(ctx, query, args...)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}

		if attempt < maxRetries {
			slog.Warn("Database query failed, retrying", "attempt", attempt, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * backoffDelay):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d attempts: %w", maxRetries, lastErr)
}

// temporary connection-level failures
var retryableErrors = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"timeout",
	"driver: bad connection",
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, retryable := range retryableErrors {
		if strings.Contains(msg, retryable) {
			return true
		}
	}
	return false
}
