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
	"strings"

	"github.com/jbbarth/monitoring/pkg/nagios"
)

type linkState int

const (
	linkUnknown linkState = iota
	linkUp
	linkDown
)

// port is a switch port as shown in the report. Label may add a
// description to ID.
type port struct {
	ID    string
	Label string
}

func joinPorts(ports []port, label bool) string {
	parts := make([]string, 0, len(ports))

	for _, p := range ports {
		if label {
			parts = append(parts, p.Label)
		} else {
			parts = append(parts, p.ID)
		}
	}

	return strings.Join(parts, ",")
}

// linkReport sorts ports by operational state and renders the
// interface-status lines shared by the switch checks.
type linkReport struct {
	down      []port
	ignoredUp []port
	unknown   []port
	up        []port
	// excluded is the exclusion list as given on the command line.
	excluded []string
	// suggest names the ignored ports that came back up.
	suggest bool
}

func (r *linkReport) add(p port, state linkState, excluded bool) {
	if excluded {
		if state == linkUp {
			r.ignoredUp = append(r.ignoredUp, p)
		}

		return
	}

	switch state {
	case linkUp:
		r.up = append(r.up, p)
	case linkDown:
		r.down = append(r.down, p)
	case linkUnknown:
		r.unknown = append(r.unknown, p)
	}
}

func (r *linkReport) lines() []string {
	var lines []string

	if len(r.down) > 0 {
		lines = append(lines, "Link DOWN on interfaces : "+joinPorts(r.down, true))
	}

	if len(r.ignoredUp) > 0 {
		line := "Link UP on IGNORED interfaces : " + joinPorts(r.ignoredUp, true) +
			"\n=> CHANGE THE SERVICE CONFIG !"

		if r.suggest {
			line += " Maybe unignore " + joinPorts(r.ignoredUp, false) + " ?"
		}

		lines = append(lines, line)
	}

	if len(r.unknown) > 0 {
		lines = append(lines, "State UNKNOWN : "+joinPorts(r.unknown, true))
	}

	if len(r.up) > 0 {
		lines = append(lines, "Link UP on interfaces : "+joinPorts(r.up, false))
	}

	if len(r.excluded) > 0 {
		lines = append(lines, "Ignored: "+strings.Join(r.excluded, ","))
	}

	return lines
}

func (r *linkReport) status() nagios.Status {
	switch {
	case len(r.down) > 0 || len(r.ignoredUp) > 0:
		return nagios.Critical
	case len(r.unknown) > 0:
		return nagios.Unknown
	default:
		return nagios.OK
	}
}

func (r *linkReport) result() nagios.Result {
	return nagios.Result{Status: r.status(), Text: strings.Join(r.lines(), "\n")}
}

// ParseExclusions splits a comma separated port list, dropping empty items.
func ParseExclusions(raw string) []string {
	var out []string

	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func excludedSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, p := range list {
		set[p] = struct{}{}
	}

	return set
}
