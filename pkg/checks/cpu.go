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

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/jbbarth/monitoring/pkg/counter"
	"github.com/jbbarth/monitoring/pkg/snmp"
)

// UCD-SNMP-MIB::systemStats
const ucdSystemStats = ".1.3.6.1.4.1.2021.11"

// ucdCPUCategories maps the ssCpuRaw* scalars to their report label.
var ucdCPUCategories = counter.CategoryMap{
	"50.0": "User",
	"51.0": "Nice",
	"52.0": "System",
	"53.0": "Idle",
	"54.0": "Wait",
	"55.0": "Kernel",
	"56.0": "Interrupt",
	"61.0": "SoftIRQ",
	"64.0": "Steal",
	"65.0": "Guest",
	"66.0": "GuestNice",
}

// CPUSource reads raw CPU tick counters.
type CPUSource interface {
	Sample(ctx context.Context) (counter.Sample, error)
	// Evaluator knows the width and labels of the counters Sample returns.
	Evaluator() counter.Evaluator
}

// SNMPCPUSource reads the ssCpuRaw* counters of a net-snmp agent.
type SNMPCPUSource struct {
	Client snmp.Client
}

func (s *SNMPCPUSource) Sample(ctx context.Context) (counter.Sample, error) {
	vars, err := s.Client.Walk(ctx, ucdSystemStats)
	if err != nil {
		return counter.Sample{}, err
	}

	counters := make([]counter.Counter, 0, len(ucdCPUCategories))

	for _, v := range vars {
		suffix, ok := v.Suffix(ucdSystemStats)
		if !ok {
			continue
		}

		if _, known := ucdCPUCategories[suffix]; !known || v.Missing() {
			continue
		}

		value, err := v.Uint64()
		if err != nil {
			return counter.Sample{}, err
		}

		counters = append(counters, counter.Counter{Name: suffix, Value: value})
	}

	return counter.NewSample(counters...)
}

func (*SNMPCPUSource) Evaluator() counter.Evaluator {
	return counter.Evaluator{
		Width:      counter.Width32,
		Policy:     counter.Wraparound,
		Categories: ucdCPUCategories,
	}
}

// HostCPUSource reads the CPU times of the local host, in hundredths of a
// second like the UCD counters.
type HostCPUSource struct {
	times func(ctx context.Context, perCPU bool) ([]cpu.TimesStat, error)
}

func NewHostCPUSource() *HostCPUSource {
	return &HostCPUSource{times: cpu.TimesWithContext}
}

var errNoCPUTimes = errors.New("no cpu times reported")

func (h *HostCPUSource) Sample(ctx context.Context) (counter.Sample, error) {
	stats, err := h.times(ctx, false)
	if err != nil {
		return counter.Sample{}, fmt.Errorf("failed to read cpu times: %w", err)
	}

	if len(stats) == 0 {
		return counter.Sample{}, errNoCPUTimes
	}

	t := stats[0]

	// Guest time is already accounted in User by the kernel.
	return counter.NewSample(
		counter.Counter{Name: "User", Value: ticks(t.User)},
		counter.Counter{Name: "Nice", Value: ticks(t.Nice)},
		counter.Counter{Name: "System", Value: ticks(t.System)},
		counter.Counter{Name: "Idle", Value: ticks(t.Idle)},
		counter.Counter{Name: "Wait", Value: ticks(t.Iowait)},
		counter.Counter{Name: "Interrupt", Value: ticks(t.Irq)},
		counter.Counter{Name: "SoftIRQ", Value: ticks(t.Softirq)},
		counter.Counter{Name: "Steal", Value: ticks(t.Steal)},
	)
}

// Evaluator clamps decreases to zero: kernel times never wrap in 64 bits,
// but iowait can go backwards between two reads.
func (*HostCPUSource) Evaluator() counter.Evaluator {
	return counter.Evaluator{Width: counter.Width64, Policy: counter.ClampNegative}
}

func ticks(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}

	return uint64(math.Round(seconds * 100))
}
