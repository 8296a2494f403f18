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
	"time"

	"github.com/jbbarth/monitoring/pkg/counter"
	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/nagios"
)

const (
	DefaultMaxCycles = 15
	DefaultMinTicks  = 2000
	DefaultInterval  = time.Second
)

// CPULoad samples the CPU counters repeatedly within one run until enough
// ticks have elapsed, then reports the usage over that window.
type CPULoad struct {
	Host       string
	Thresholds nagios.Thresholds
	MaxCycles  int
	MinTicks   uint64
	Interval   time.Duration

	Source CPUSource
	Log    logger.Logger
	// Sleep waits between cycles; it defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c *CPULoad) settings() (maxCycles int, minTicks uint64, interval time.Duration) {
	maxCycles, minTicks, interval = c.MaxCycles, c.MinTicks, c.Interval
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}

	if minTicks == 0 {
		minTicks = DefaultMinTicks
	}

	if interval <= 0 {
		interval = DefaultInterval
	}

	return maxCycles, minTicks, interval
}

func (c *CPULoad) Run(ctx context.Context) nagios.Result {
	log := logOrNop(c.Log)
	maxCycles, minTicks, interval := c.settings()

	sleep := c.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	eval := c.Source.Evaluator()

	var (
		prev   counter.Sample
		deltas counter.DeltaSet
		total  uint64
	)

	// The first cycle only sets the baseline.
	for cycle := 0; cycle < maxCycles && total < minTicks; cycle++ {
		if cycle > 0 {
			if err := sleep(ctx, interval); err != nil {
				return nagios.NewResult(nagios.Unknown, "CPU Used UNKNOWN: %v", err)
			}
		}

		cur, err := c.Source.Sample(ctx)
		if err != nil {
			return nagios.NewResult(nagios.Unknown, "CPU Used UNKNOWN: no response from %s: %v", c.Host, err)
		}

		if cycle > 0 {
			d, _ := eval.Evaluate(prev, cur)
			deltas = deltas.Merge(d)
			total = deltas.Total()
		}

		log.Debug().Int("cycle", cycle).Uint64("ticks", total).Msg("CPU load cycle")

		prev = cur
	}

	breakdown, err := counter.Percentages(deltas, total)
	if errors.Is(err, counter.ErrZeroTotal) {
		return nagios.NewResult(nagios.Unknown,
			"CPU Used UNKNOWN: maybe you should tune max_cycle and/or min_ticks settings")
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

	var res nagios.Result

	switch status {
	case nagios.Critical, nagios.Warning:
		res = nagios.NewResult(status, "CPU Used %s: %.2f%% > %s", status, used, c.Thresholds.Limit(status))
	default:
		res = nagios.NewResult(status, "CPU Used %s: %.2f%%", status, used)
	}

	res.Perf = []string{formatEntries(breakdown.Headline(false), percentEntry, ", ")}

	return res
}
