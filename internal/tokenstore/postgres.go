package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"school-portal/internal/model"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Set(ctx context.Context, scope string, token string) error {
	if strings.TrimSpace(scope) == "" {
		return model.ErrNoSession
	}

	now := time.Now().UTC()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO portal_tokens (scope, token, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (scope) DO UPDATE SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at`,
		scope, token, now)
	if err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, scope string) (string, error) {
	var token string
	err := p.pool.QueryRow(ctx,
		`SELECT token FROM portal_tokens WHERE scope = $1`, scope).Scan(&token)

	if errors.Is(err, pgx.ErrNoRows) || (err == nil && token == "") {
		return "", model.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (p *Postgres) Clear(ctx context.Context, scope string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM portal_tokens WHERE scope = $1`, scope)
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// CleanIdle drops tokens untouched since the cutoff. Abandoned browsers never
// log out, so their rows would otherwise accumulate.
func (p *Postgres) CleanIdle(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM portal_tokens WHERE updated_at <= $1`, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("clean idle tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// StartCleanupTicker runs CleanIdle once at startup and then hourly until ctx
// is done. A zero maxAge disables cleanup.
func (p *Postgres) StartCleanupTicker(ctx context.Context, maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	p.cleanIdle(ctx, maxAge)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.cleanIdle(ctx, maxAge)
		}
	}
}

func (p *Postgres) cleanIdle(ctx context.Context, maxAge time.Duration) {
	removed, err := p.CleanIdle(ctx, maxAge)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("token cleanup failed", "error", err)
		}
		return
	}
	if removed > 0 {
		slog.Info("idle tokens removed", "count", removed)
	}
}
