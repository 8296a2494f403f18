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

package checks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jbbarth/monitoring/pkg/counter"
	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/nagios"
	"github.com/jbbarth/monitoring/pkg/store"
)

// CPUAverage reports the CPU usage of a host averaged since the previous run.
type CPUAverage struct {
	Host       string
	Thresholds nagios.Thresholds
	// MaxAge discards a previous sample older than this. Zero keeps any.
	MaxAge time.Duration

	Source CPUSource
	Store  store.Store
	Log    logger.Logger
	Now    func() time.Time
}

func (c *CPUAverage) Run(ctx context.Context) nagios.Result {
	log := logOrNop(c.Log)
	now := nowOrDefault(c.Now)

	cur, err := c.Source.Sample(ctx)
	if err != nil {
		return nagios.NewResult(nagios.Unknown, "CPU Used UNKNOWN: no response from %s: %v", c.Host, err)
	}

	if cur.Len() == 0 {
		return nagios.NewResult(nagios.Unknown, "CPU Used UNKNOWN: no CPU counters from %s", c.Host)
	}

	prev, found := rotateSample(ctx, c.Store, log, "cpu_avg_"+c.Host,
		store.Record{Sample: cur, CapturedAt: now}, c.MaxAge)
	if !found {
		return nagios.NewResult(nagios.Unknown, "No previous data, waiting for next check...")
	}

	deltas, total := c.Source.Evaluator().Evaluate(prev.Sample, cur)

	breakdown, err := counter.Percentages(deltas, total)
	if errors.Is(err, counter.ErrZeroTotal) {
		return nagios.NewResult(nagios.Unknown, "CPU Used UNKNOWN: maybe you should slow down your checks")
	}

	if err != nil {
		return nagios.NewResult(nagios.Unknown, "CPU Used UNKNOWN: %v from %s", err, c.Host)
	}

	idle, ok := breakdown.Percent("Idle")
	if !ok {
		return nagios.NewResult(nagios.Unknown, "CPU Used UNKNOWN: no Idle counter from %s", c.Host)
	}

	used := 100 - idle
	status := c.Thresholds.Classify(used)

	log.Debug().Float64("used", used).Uint64("ticks", total).Str("status", status.String()).Msg("CPU average")

	details := formatEntries(breakdown.Headline(true), func(e counter.Entry) string {
		return e.Label + "=" + nagios.FormatPercent(e.Percent)
	}, ", ")

	var res nagios.Result

	switch status {
	case nagios.Critical, nagios.Warning:
		res = nagios.NewResult(status, "CPU Used %s: %.1f%% > %s - %s",
			status, used, c.Thresholds.Limit(status), details)
	default:
		res = nagios.NewResult(status, "CPU Used %s: %.1f%% - %s", status, used, details)
	}

	res.AddPerf(cpuUsedPerf(used, c.Thresholds))

	return res
}

func cpuUsedPerf(used float64, t nagios.Thresholds) nagios.Perf {
	return nagios.Perf{
		Label: "cpu_used",
		Value: math.Round(used*10) / 10,
		UOM:   "%",
		Warn:  t.Limit(nagios.Warning),
		Crit:  t.Limit(nagios.Critical),
		Min:   "0",
		Max:   "100",
	}
}

func formatEntries(entries []counter.Entry, format func(counter.Entry) string, sep string) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, format(e))
	}

	return strings.Join(parts, sep)
}

// percentEntry renders label=12.34%.
func percentEntry(e counter.Entry) string {
	return fmt.Sprintf("%s=%.2f%%", e.Label, e.Percent)
}
