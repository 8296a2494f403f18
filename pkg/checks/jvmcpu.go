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
	"fmt"
	"math"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/jbbarth/monitoring/pkg/counter"
	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/nagios"
	"github.com/jbbarth/monitoring/pkg/snmp"
	"github.com/jbbarth/monitoring/pkg/store"
)

const (
	// JVM-MANAGEMENT-MIB::jvmRTName, "<pid>@<hostname>" on HotSpot.
	jvmRTNameOID = ".1.3.6.1.4.1.42.2.145.3.163.1.1.4.1.0"
	// HOST-RESOURCES-MIB::hrSWRunPerfCPU, in centiseconds.
	hrSWRunPerfCPU = ".1.3.6.1.2.1.25.5.1.1.1"

	DefaultJVMMaxAge     = 30 * time.Minute
	DefaultJVMMinElapsed = 5 * time.Second

	jvmCPUCounter = "cpu_ms"
)

var jvmPIDPattern = regexp.MustCompile(`(\d+)@`)

// JVMCPU reports the CPU usage of a JVM process. The JVM's own SNMP agent on
// Port tells its pid, and the host agent reports the CPU time of that pid.
type JVMCPU struct {
	Host       string
	Port       uint16
	Thresholds nagios.Thresholds
	MaxAge     time.Duration
	MinElapsed time.Duration

	// SNMP holds the credentials shared by both agents.
	SNMP  snmp.Config
	Dial  snmp.Dialer
	Store store.Store
	Log   logger.Logger
	Now   func() time.Time
}

func (j *JVMCPU) target() string {
	return net.JoinHostPort(j.Host, strconv.Itoa(int(j.Port)))
}

func noResponse(host string) nagios.Result {
	return nagios.Result{
		Status:     nagios.Unknown,
		Text:       "CPU(UNKNOWN): no snmp response from " + host,
		StderrOnly: true,
	}
}

func (j *JVMCPU) pid(ctx context.Context) (string, error) {
	client, err := j.Dial(ctx, j.SNMP.WithTarget(j.Host, j.Port))
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	vars, err := client.Get(ctx, jvmRTNameOID)
	if err != nil {
		return "", err
	}

	if len(vars) == 0 || vars[0].Missing() {
		return "", fmt.Errorf("%w: %s", snmp.ErrNoValue, jvmRTNameOID)
	}

	m := jvmPIDPattern.FindStringSubmatch(vars[0].String())
	if m == nil {
		return "", fmt.Errorf("%w: jvmRTName %q has no pid", snmp.ErrNoValue, vars[0].String())
	}

	return m[1], nil
}

// cpuMillis reads the CPU time of pid from the host agent.
func (j *JVMCPU) cpuMillis(ctx context.Context, pid string) (uint64, error) {
	client, err := j.Dial(ctx, j.SNMP.WithTarget(j.Host, 0))
	if err != nil {
		return 0, err
	}
	defer func() { _ = client.Close() }()

	oid := hrSWRunPerfCPU + "." + pid

	vars, err := client.Get(ctx, oid)
	if err != nil {
		return 0, err
	}

	if len(vars) == 0 {
		return 0, fmt.Errorf("%w: %s", snmp.ErrNoValue, oid)
	}

	centis, err := vars[0].Uint64()
	if err != nil {
		return 0, err
	}

	return centis * 10, nil
}

func (j *JVMCPU) Run(ctx context.Context) nagios.Result {
	log := logOrNop(j.Log)
	now := nowOrDefault(j.Now)

	maxAge, minElapsed := j.MaxAge, j.MinElapsed
	if maxAge <= 0 {
		maxAge = DefaultJVMMaxAge
	}

	if minElapsed <= 0 {
		minElapsed = DefaultJVMMinElapsed
	}

	pid, err := j.pid(ctx)
	if err != nil {
		log.Debug().Err(err).Str("target", j.target()).Msg("Failed to read JVM pid")

		return noResponse(j.target())
	}

	ms, err := j.cpuMillis(ctx, pid)
	if err != nil {
		log.Debug().Err(err).Str("host", j.Host).Str("pid", pid).Msg("Failed to read process CPU time")

		return noResponse(j.Host)
	}

	cur := counter.MustSample(counter.Counter{Name: jvmCPUCounter, Value: ms})
	key := fmt.Sprintf("jvm_cpu_%s_%s", j.target(), pid)

	prev, found := rotateSample(ctx, j.Store, log, key, store.Record{Sample: cur, CapturedAt: now}, maxAge)
	if _, ok := prev.Sample.Value(jvmCPUCounter); !found || !ok {
		return nagios.NewResult(nagios.Unknown, "CPU(UNKNOWN): No previous data, waiting for next check...")
	}

	elapsed := now.Sub(prev.CapturedAt)
	if err := counter.CheckElapsed(elapsed, minElapsed); err != nil {
		return nagios.NewResult(nagios.Unknown,
			"CPU(UNKNOWN): maybe you should slow down your checks ? (time difference <%s)", minElapsed)
	}

	eval := counter.Evaluator{Width: counter.Width64, Policy: counter.Wraparound}
	deltas, _ := eval.Evaluate(prev.Sample, cur)
	delta, _ := deltas.Value(jvmCPUCounter)

	// ms per second divided by 10 is a percentage of one core.
	percent := counter.Rate(delta, elapsed.Seconds(), 10)
	status := j.Thresholds.Classify(percent)

	var res nagios.Result

	switch status {
	case nagios.Critical, nagios.Warning:
		res = nagios.NewResult(status, "CPU(%s): %.1f%% > %s", status, percent, j.Thresholds.Limit(status))
	default:
		res = nagios.NewResult(status, "CPU(%s): %.1f%%", status, percent)
	}

	res.AddPerf(nagios.Perf{
		Label: "cpu",
		Value: math.Round(percent*10) / 10,
		UOM:   "%",
		Warn:  j.Thresholds.Limit(nagios.Warning),
		Crit:  j.Thresholds.Limit(nagios.Critical),
		Min:   "0",
	})

	return res
}
