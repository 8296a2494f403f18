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

// Package checks implements the Nagios plugins on top of the counter
// evaluator. Each check gathers its counters, compares them with the
// previous run and reports a nagios.Result.
package checks

import (
	"context"
	"time"

	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/nagios"
	"github.com/jbbarth/monitoring/pkg/store"
)

// Check is one plugin run.
type Check interface {
	Run(ctx context.Context) nagios.Result
}

func nowOrDefault(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}

	return now()
}

func logOrNop(log logger.Logger) logger.Logger {
	if log == nil {
		return logger.NewTestLogger()
	}

	return log
}

// rotateSample loads the previous record of key and stores rec in its place.
// The new record is saved even when there is nothing to compare it with.
// Store failures are logged and read as "no previous sample".
func rotateSample(ctx context.Context, st store.Store, log logger.Logger, key string,
	rec store.Record, maxAge time.Duration) (store.Record, bool) {
	prev, found, err := store.LoadFresh(ctx, st, key, rec.CapturedAt, maxAge)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to load previous sample")

		found = false
	}

	if err := st.Save(ctx, key, rec); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to save sample")
	}

	if found {
		log.Debug().
			Str("key", key).
			Time("previous", prev.CapturedAt).
			Int("counters", prev.Sample.Len()).
			Msg("Loaded previous sample")
	}

	return prev, found
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
