// Package postgres — key-value бэкенд поверх Postgres: одна таблица app_kv
// (key → value), upsert по первичному ключу. Схема накатывается миграциями
// при старте сервиса.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workdesk/internal/logger"
)

type Client struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	defer logger.DeferLogDuration("kv.Get", time.Now())()
	var val string
	err := c.pool.QueryRow(ctx,
		`SELECT value FROM app_kv WHERE key = $1`, key,
	).Scan(&val)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv.Get: %w", err)
	}
	return val, true, nil
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	defer logger.DeferLogDuration("kv.Set", time.Now())()
	_, err := c.pool.Exec(ctx,
		`INSERT INTO app_kv (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("kv.Set: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	defer logger.DeferLogDuration("kv.Delete", time.Now())()
	_, err := c.pool.Exec(ctx, `DELETE FROM app_kv WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("kv.Delete: %w", err)
	}
	return nil
}
