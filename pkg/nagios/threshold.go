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

import (
	"fmt"
	"strconv"
	"strings"
)

// Classify compares value to the limits with a strict greater-than, so a
// value equal to a limit does not trip it.
func Classify(value, warning, critical float64) Status {
	switch {
	case value > critical:
		return Critical
	case value > warning:
		return Warning
	default:
		return OK
	}
}

// Thresholds is a warning,critical pair as given on the command line.
type Thresholds struct {
	Warning  float64
	Critical float64

	warnText string
	critText string
}

func NewThresholds(warning, critical float64) Thresholds {
	return Thresholds{
		Warning:  warning,
		Critical: critical,
		warnText: strconv.FormatFloat(warning, 'f', -1, 64),
		critText: strconv.FormatFloat(critical, 'f', -1, 64),
	}
}

// ParseThresholds reads "warning,critical". Warning above critical is
// accepted as given.
func ParseThresholds(s string) (Thresholds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Thresholds{}, fmt.Errorf("%w: %q, expected warning,critical", ErrInvalidThresholds, s)
	}

	warnText := strings.TrimSpace(parts[0])
	critText := strings.TrimSpace(parts[1])

	warning, err := strconv.ParseFloat(warnText, 64)
	if err != nil {
		return Thresholds{}, fmt.Errorf("%w: warning %q: %w", ErrInvalidThresholds, warnText, err)
	}

	critical, err := strconv.ParseFloat(critText, 64)
	if err != nil {
		return Thresholds{}, fmt.Errorf("%w: critical %q: %w", ErrInvalidThresholds, critText, err)
	}

	return Thresholds{
		Warning:  warning,
		Critical: critical,
		warnText: warnText,
		critText: critText,
	}, nil
}

func (t Thresholds) Classify(value float64) Status {
	return Classify(value, t.Warning, t.Critical)
}

// Limit returns the limit text that status breached, as it was written.
func (t Thresholds) Limit(s Status) string {
	switch s {
	case Warning:
		return t.warnText
	case Critical:
		return t.critText
	default:
		return ""
	}
}

func (t Thresholds) String() string {
	return t.warnText + "," + t.critText
}
