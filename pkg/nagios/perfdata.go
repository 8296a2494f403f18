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

// Perf is one performance data metric, rendered as
// label=valueUOM;warn;crit;min;max. Empty fields stay empty.
type Perf struct {
	Label string
	Value float64
	UOM   string
	Warn  string
	Crit  string
	Min   string
	Max   string
}

func (p Perf) String() string {
	return fmt.Sprintf("%s=%s%s;%s;%s;%s;%s",
		quoteLabel(p.Label),
		strconv.FormatFloat(p.Value, 'f', -1, 64),
		p.UOM, p.Warn, p.Crit, p.Min, p.Max)
}

func quoteLabel(label string) string {
	if !strings.ContainsAny(label, " ='") {
		return label
	}

	return "'" + strings.ReplaceAll(label, "'", "''") + "'"
}

// FormatPercent renders v with one decimal and drops a trailing ".0",
// e.g. 50 -> "50%" and 12.34 -> "12.3%".
func FormatPercent(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', 1, 64), ".0") + "%"
}
