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

package nagios

import "fmt"

// Status is a plugin state. Its numeric value is the process exit code.
type Status int

const (
	OK Status = iota
	Warning
	Critical
	Unknown
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	case Unknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("STATUS(%d)", int(s))
	}
}

func (s Status) ExitCode() int {
	return int(s)
}

// CombineMax merges sub-check exit codes by taking the largest one, and
// returns UNKNOWN when there are none. Since UNKNOWN is 3 and CRITICAL is 2,
// an UNKNOWN sub-check hides a CRITICAL one. Existing alerting relies on
// this ordering.
// TODO: rank CRITICAL above UNKNOWN once the JVM service definitions are
// migrated to the new severity order.
func CombineMax(codes ...int) int {
	if len(codes) == 0 {
		return Unknown.ExitCode()
	}

	highest := codes[0]
	for _, c := range codes[1:] {
		if c > highest {
			highest = c
		}
	}

	return highest
}
