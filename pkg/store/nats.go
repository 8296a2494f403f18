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

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// kvBucket is the part of jetstream.KeyValue the store relies on.
type kvBucket interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
}

// NATSStore keeps records in a JetStream key-value bucket, so several
// pollers can share the previous samples of a target.
type NATSStore struct {
	nc *nats.Conn
	kv kvBucket
}

func NewNATSStore(ctx context.Context, cfg NATSConfig) (*NATSStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: nats", ErrMissingURL)
	}

	opts := []nats.Option{nats.Name("monitoring-check")}
	if cfg.Timeout > 0 {
		opts = append(opts, nats.Timeout(cfg.Timeout.Std()))
	}

	if cfg.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFile))
	}

	if cfg.TLS.enabled() {
		tlsConfig, err := cfg.TLS.clientConfig()
		if err != nil {
			return nil, err
		}

		opts = append(opts, nats.Secure(tlsConfig))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kvConfig := jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "last counter sample per monitored target",
		History:     1,
	}

	if cfg.TTL > 0 {
		kvConfig.TTL = cfg.TTL.Std()
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, kvConfig)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create KV bucket %s: %w", cfg.Bucket, err)
	}

	return &NATSStore{nc: nc, kv: kv}, nil
}

// Load falls back to the entry creation time when the record has no
// capture time.
func (n *NATSStore) Load(ctx context.Context, key string) (Record, bool, error) {
	name, err := sanitizeKey(key)
	if err != nil {
		return Record{}, false, err
	}

	entry, err := n.kv.Get(ctx, name)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return Record{}, false, nil
	}

	if err != nil {
		return Record{}, false, fmt.Errorf("failed to get key %s: %w", name, err)
	}

	var doc document
	if err := json.Unmarshal(entry.Value(), &doc); err != nil {
		return Record{}, false, fmt.Errorf("%w: key %s: %w", ErrInvalidRecord, name, err)
	}

	if doc.CapturedAt.IsZero() {
		doc.CapturedAt = entry.Created()
	}

	rec, err := doc.record()
	if err != nil {
		return Record{}, false, err
	}

	return rec, true, nil
}

func (n *NATSStore) Save(ctx context.Context, key string, rec Record) error {
	name, err := sanitizeKey(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(newDocument(rec))
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", name, err)
	}

	if _, err := n.kv.Put(ctx, name, data); err != nil {
		return fmt.Errorf("failed to put key %s: %w", name, err)
	}

	return nil
}

func (n *NATSStore) Close() error {
	if n.nc != nil {
		n.nc.Close()
	}

	return nil
}
