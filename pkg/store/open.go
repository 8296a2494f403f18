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
	"fmt"
	"os"

	"github.com/jbbarth/monitoring/pkg/config"
	"github.com/jbbarth/monitoring/pkg/logger"
)

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendNATS     = "nats"
	BackendPostgres = "postgres"
)

type Config struct {
	Backend string `json:"backend"`
	// Dir is where the file backend writes, the system temp dir by default.
	Dir string `json:"dir"`
	// MaxAge makes older records count as missing. Zero keeps them all.
	MaxAge   config.Duration `json:"max_age"`
	NATS     NATSConfig      `json:"nats"`
	Postgres PostgresConfig  `json:"postgres"`
}

type NATSConfig struct {
	URL     string          `json:"url"`
	Bucket  string          `json:"bucket"`
	TTL     config.Duration `json:"ttl"`
	Timeout config.Duration `json:"timeout"`
	// CredsFile is a NATS user credentials file.
	CredsFile string    `json:"creds_file,omitempty"`
	TLS       TLSConfig `json:"tls"`
}

type PostgresConfig struct {
	URL      string `json:"url"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"ssl_mode"`
	Table    string `json:"table"`
}

func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Dir:     os.TempDir(),
		NATS: NATSConfig{
			URL:    "nats://127.0.0.1:4222",
			Bucket: "monitoring-samples",
		},
		Postgres: PostgresConfig{Table: defaultTable},
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case "", BackendFile, BackendMemory:
	case BackendNATS:
		if c.NATS.URL == "" {
			return fmt.Errorf("%w: nats", ErrMissingURL)
		}
	case BackendPostgres:
		if c.Postgres.URL == "" && c.Postgres.Host == "" {
			return fmt.Errorf("%w: postgres", ErrMissingURL)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	return nil
}

// Open connects the configured backend.
func Open(ctx context.Context, cfg Config, log logger.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		s   Store
		err error
	)

	switch cfg.Backend {
	case BackendMemory:
		s = NewMemoryStore()
	case BackendNATS:
		s, err = NewNATSStore(ctx, cfg.NATS)
	case BackendPostgres:
		s, err = NewPostgresStore(ctx, cfg.Postgres)
	default:
		dir := cfg.Dir
		if dir == "" {
			dir = os.TempDir()
		}

		s, err = NewFileStore(dir)
	}

	if err != nil {
		return nil, err
	}

	if log != nil {
		log.Debug().Str("backend", cfg.Backend).Msg("Sample store opened")
	}

	return s, nil
}
