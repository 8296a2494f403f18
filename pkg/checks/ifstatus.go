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
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jbbarth/monitoring/pkg/counter"
	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/nagios"
	"github.com/jbbarth/monitoring/pkg/snmp"
	"github.com/jbbarth/monitoring/pkg/store"
)

// IF-MIB::ifTable columns.
const (
	ifIndexOID     = ".1.3.6.1.2.1.2.2.1.1"
	ifDescrOID     = ".1.3.6.1.2.1.2.2.1.2"
	ifTypeOID      = ".1.3.6.1.2.1.2.2.1.3"
	ifOperStatus   = ".1.3.6.1.2.1.2.2.1.8"
	ifInOctetsOID  = ".1.3.6.1.2.1.2.2.1.10"
	ifOutOctetsOID = ".1.3.6.1.2.1.2.2.1.16"

	DefaultIfMinElapsed = time.Second
)

// ethernet-like IANAifType values.
var ethernetTypes = map[int64]struct{}{
	6:   {}, // ethernetCsmacd
	26:  {}, // ethernet3Mbit
	62:  {}, // fastEther
	69:  {}, // fastEtherFX
	117: {}, // gigabitEthernet
}

var wordChar = regexp.MustCompile(`\w`)

type ifEntry struct {
	real    int
	display int
	descr   string
	ifType  *int64
	oper    *int64
	in      *uint64
	out     *uint64
}

func (e *ifEntry) state() linkState {
	if e.oper == nil {
		return linkUnknown
	}

	switch *e.oper {
	case 1:
		return linkUp
	case 2, 7: // down, lowerLayerDown
		return linkDown
	default:
		return linkUnknown
	}
}

func (e *ifEntry) label() string {
	id := strconv.Itoa(e.display)
	if e.descr == "" || e.descr == id {
		return id
	}

	return id + "(" + e.descr + ")"
}

// perfName is how the interface is named in performance data.
func (e *ifEntry) perfName() string {
	if wordChar.MatchString(e.descr) && e.descr != strconv.Itoa(e.real) {
		return e.descr
	}

	return "interface_" + strconv.Itoa(e.real)
}

// IfStatus reports the link state of the ethernet interfaces of a host and
// their bandwidth since the previous run.
type IfStatus struct {
	Host       string
	Exclusions []string
	MaxAge     time.Duration
	MinElapsed time.Duration

	Client snmp.Client
	Store  store.Store
	Log    logger.Logger
	Now    func() time.Time
}

func (s *IfStatus) interfaces(ctx context.Context, log logger.Logger) (map[int]*ifEntry, error) {
	vars, err := s.Client.Walk(ctx, ifIndexOID)
	if err != nil {
		return nil, err
	}

	entries := make(map[int]*ifEntry, len(vars))

	for _, v := range vars {
		idx, err := v.Index()
		if err != nil {
			continue
		}

		entries[idx] = &ifEntry{real: idx}
	}

	columns := []struct {
		oid string
		set func(e *ifEntry, v snmp.Variable) error
	}{
		{ifDescrOID, func(e *ifEntry, v snmp.Variable) error {
			e.descr = v.String()
			return nil
		}},
		{ifTypeOID, func(e *ifEntry, v snmp.Variable) error {
			n, err := v.Int()
			if err != nil {
				return err
			}

			e.ifType = &n

			return nil
		}},
		{ifOperStatus, func(e *ifEntry, v snmp.Variable) error {
			n, err := v.Int()
			if err != nil {
				return err
			}

			e.oper = &n

			return nil
		}},
		{ifInOctetsOID, func(e *ifEntry, v snmp.Variable) error {
			n, err := v.Uint64()
			if err != nil {
				return err
			}

			e.in = &n

			return nil
		}},
		{ifOutOctetsOID, func(e *ifEntry, v snmp.Variable) error {
			n, err := v.Uint64()
			if err != nil {
				return err
			}

			e.out = &n

			return nil
		}},
	}

	for _, col := range columns {
		vars, err := s.Client.Walk(ctx, col.oid)
		if err != nil {
			log.Debug().Err(err).Str("oid", col.oid).Msg("Column walk failed")

			continue
		}

		for _, v := range vars {
			idx, err := v.Index()
			if err != nil {
				continue
			}

			e, ok := entries[idx]
			if !ok {
				continue
			}

			if err := col.set(e, v); err != nil {
				log.Debug().Err(err).Str("oid", v.OID).Msg("Unreadable interface value")
			}
		}
	}

	return entries, nil
}

func (s *IfStatus) Run(ctx context.Context) nagios.Result {
	log := logOrNop(s.Log)
	now := nowOrDefault(s.Now)

	entries, err := s.interfaces(ctx, log)
	if err != nil {
		return nagios.NewResult(nagios.Unknown, "SNMP walk failed on %s: %v", s.Host, err)
	}

	var ifaces []*ifEntry

	for _, e := range entries {
		if e.ifType != nil {
			if _, ok := ethernetTypes[*e.ifType]; !ok {
				continue
			}
		}

		ifaces = append(ifaces, e)
	}

	if len(ifaces) == 0 {
		return nagios.NewResult(nagios.Unknown, "No ethernet interface !")
	}

	sort.Slice(ifaces, func(i, j int) bool { return ifaces[i].real < ifaces[j].real })

	// Some switches number their ports from 128; show them from 1.
	translation := ifaces[0].real - 1
	for _, e := range ifaces {
		e.display = e.real - translation
	}

	log.Debug().Int("interfaces", len(ifaces)).Int("translation", translation).Msg("Ethernet interfaces")

	excluded := excludedSet(s.Exclusions)
	report := linkReport{excluded: s.Exclusions, suggest: true}

	for _, e := range ifaces {
		id := strconv.Itoa(e.display)
		_, skip := excluded[id]
		report.add(port{ID: id, Label: e.label()}, e.state(), skip)
	}

	res := report.result()
	res.AddPerf(s.bandwidth(ctx, log, ifaces, now)...)

	return res
}

func octetCounters(ifaces []*ifEntry) counter.Sample {
	var counters []counter.Counter

	for _, e := range ifaces {
		if e.in != nil {
			counters = append(counters, counter.Counter{Name: fmt.Sprintf("%d.in", e.real), Value: *e.in})
		}

		if e.out != nil {
			counters = append(counters, counter.Counter{Name: fmt.Sprintf("%d.out", e.real), Value: *e.out})
		}
	}

	return counter.MustSample(counters...)
}

func (s *IfStatus) bandwidth(ctx context.Context, log logger.Logger, ifaces []*ifEntry, now time.Time) []nagios.Perf {
	minElapsed := s.MinElapsed
	if minElapsed <= 0 {
		minElapsed = DefaultIfMinElapsed
	}

	cur := octetCounters(ifaces)

	prev, found := rotateSample(ctx, s.Store, log, "ifstatus_eth_"+s.Host,
		store.Record{Sample: cur, CapturedAt: now}, s.MaxAge)
	if !found {
		return nil
	}

	elapsed := now.Sub(prev.CapturedAt)
	if err := counter.CheckElapsed(elapsed, minElapsed); err != nil {
		log.Debug().Err(err).Msg("Skipping bandwidth")

		return nil
	}

	eval := counter.Evaluator{Width: counter.Width32, Policy: counter.ClampNegative}
	deltas, _ := eval.Evaluate(prev.Sample, cur)

	var perf []nagios.Perf

	for _, e := range ifaces {
		for _, dir := range []string{"in", "out"} {
			d, ok := deltas.Value(fmt.Sprintf("%d.%s", e.real, dir))
			if !ok {
				continue
			}

			perf = append(perf, nagios.Perf{
				Label: dir + "_" + e.perfName(),
				Value: math.Round(counter.Rate(d, elapsed.Seconds(), 1024)),
				UOM:   "KB",
				Min:   "0",
			})
		}
	}

	return perf
}
