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

//go:generate mockgen -destination=mock_store.go -package=store github.com/jbbarth/monitoring/pkg/store Store

// Package store persists the last counter sample of each monitored target
// between plugin runs.
package store

import (
	"context"
	"time"

	"github.com/jbbarth/monitoring/pkg/counter"
)

// Record is a sample together with the time it was captured.
type Record struct {
	Sample     counter.Sample
	CapturedAt time.Time
}

// Age is how old the record is at now.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(r.CapturedAt)
}

// Store keeps one record per key. Save overwrites the previous record.
type Store interface {
	// Load returns the record for key, with found false when there is none.
	Load(ctx context.Context, key string) (rec Record, found bool, err error)
	Save(ctx context.Context, key string, rec Record) error
	Close() error
}

// Fresh reports whether rec is at most maxAge old. A zero maxAge accepts
// any age.
func Fresh(rec Record, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return true
	}

	return rec.Age(now) <= maxAge
}

// LoadFresh loads key and reports a stale record as absent.
func LoadFresh(ctx context.Context, s Store, key string, now time.Time, maxAge time.Duration) (Record, bool, error) {
	rec, found, err := s.Load(ctx, key)
	if err != nil || !found {
		return Record{}, false, err
	}

	if !Fresh(rec, now, maxAge) {
		return Record{}, false, nil
	}

	return rec, true, nil
}
