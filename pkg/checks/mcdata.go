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

	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/nagios"
	"github.com/jbbarth/monitoring/pkg/snmp"
)

// McDATA FC switch port operational state table.
const mcdataPortState = ".1.3.6.1.4.1.289.2.1.1.2.3.1.1.2"

const (
	mcdataOnline  = 2
	mcdataOffline = 6
)

// McData reports the port states of a McDATA fiber switch. Ports keep the
// agent's walk order.
type McData struct {
	Host       string
	Exclusions []string

	Client snmp.Client
	Log    logger.Logger
}

func (m *McData) Run(ctx context.Context) nagios.Result {
	log := logOrNop(m.Log)

	vars, err := m.Client.Walk(ctx, mcdataPortState)
	if err != nil {
		return nagios.NewResult(nagios.Unknown, "SNMP walk failed on %s: %v", m.Host, err)
	}

	excluded := excludedSet(m.Exclusions)
	report := linkReport{excluded: m.Exclusions}
	seen := 0

	for _, v := range vars {
		id, ok := v.Suffix(mcdataPortState)
		if !ok {
			continue
		}

		seen++

		state := linkUnknown

		if code, err := v.Int(); err != nil {
			log.Debug().Err(err).Str("port", id).Msg("Unreadable port state")
		} else {
			switch code {
			case mcdataOnline:
				state = linkUp
			case mcdataOffline:
				state = linkDown
			}
		}

		_, skip := excluded[id]
		report.add(port{ID: id, Label: id}, state, skip)
	}

	if seen == 0 {
		return nagios.NewResult(nagios.Unknown, "No port state from %s", m.Host)
	}

	return report.result()
}
