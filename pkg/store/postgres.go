/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTable = "counter_samples"

// querier is the part of *pgxpool.Pool the store relies on.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore keeps one row per key in a table holding the counters as
// jsonb.
type PostgresStore struct {
	db    querier
	table string
}

// NewPostgresStore connects and creates the table when missing.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	connString, err := cfg.connString()
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to parse connection string: %w", err)
	}

	// A plugin run does a handful of statements on one connection.
	poolConfig.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	s := newPostgresStore(pool, cfg.Table)
	if err := s.ensureTable(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return s, nil
}

func newPostgresStore(db querier, table string) *PostgresStore {
	if table == "" {
		table = defaultTable
	}

	return &PostgresStore{db: db, table: pgx.Identifier{table}.Sanitize()}
}

func (s *PostgresStore) ensureTable(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key         TEXT PRIMARY KEY,
	counters    JSONB NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL
)`, s.table))
	if err != nil {
		return fmt.Errorf("postgres: failed to create table %s: %w", s.table, err)
	}

	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) (Record, bool, error) {
	if key == "" {
		return Record{}, false, ErrEmptyKey
	}

	var (
		raw        []byte
		capturedAt time.Time
	)

	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT counters, captured_at FROM %s WHERE key = $1`, s.table),
		key,
	).Scan(&raw, &capturedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}

	if err != nil {
		return Record{}, false, fmt.Errorf("postgres: failed to load %s: %w", key, err)
	}

	doc := document{CapturedAt: capturedAt}
	if err := json.Unmarshal(raw, &doc.Counters); err != nil {
		return Record{}, false, fmt.Errorf("%w: key %s: %w", ErrInvalidRecord, key, err)
	}

	rec, err := doc.record()
	if err != nil {
		return Record{}, false, err
	}

	return rec, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, rec Record) error {
	if key == "" {
		return ErrEmptyKey
	}

	doc := newDocument(rec)

	counters, err := json.Marshal(doc.Counters)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", key, err)
	}

	_, err = s.db.Exec(ctx, fmt.Sprintf(`INSERT INTO %s (key, counters, captured_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET counters = EXCLUDED.counters, captured_at = EXCLUDED.captured_at`, s.table),
		key, counters, doc.CapturedAt)
	if err != nil {
		return fmt.Errorf("postgres: failed to save %s: %w", key, err)
	}

	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()

	return nil
}

// connString returns URL as is, or builds one from the discrete fields.
func (c PostgresConfig) connString() (string, error) {
	if c.URL != "" {
		return c.URL, nil
	}

	if c.Host == "" {
		return "", fmt.Errorf("%w: postgres", ErrMissingURL)
	}

	port := c.Port
	if port == 0 {
		port = 5432
	}

	connURL := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, port),
		Path:   "/" + c.Database,
	}

	if c.Username != "" {
		if c.Password != "" {
			connURL.User = url.UserPassword(c.Username, c.Password)
		} else {
			connURL.User = url.User(c.Username)
		}
	}

	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	query := connURL.Query()
	query.Set("sslmode", sslMode)
	query.Set("application_name", "monitoring-check")
	connURL.RawQuery = query.Encode()

	return connURL.String(), nil
}
