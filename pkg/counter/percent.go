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

package counter

import "math"

// Headline categories are reported on their own; every other label is
// folded into Other for display.
var headline = map[string]struct{}{
	"User":   {},
	"System": {},
	"Idle":   {},
	"Wait":   {},
	"Nice":   {},
}

const OtherLabel = "Other"

func IsHeadline(label string) bool {
	_, ok := headline[label]

	return ok
}

// Breakdown is the share of a total held by each label, in percent.
type Breakdown struct {
	labels []string
	values map[string]float64
}

// Percentages computes 100 * delta / total for every label of d.
// It fails with ErrZeroTotal when total is zero and with ErrTotalOverflow
// when a delta or the total saturated.
func Percentages(d DeltaSet, total uint64) (Breakdown, error) {
	if d.Overflowed() || total == math.MaxUint64 {
		return Breakdown{}, ErrTotalOverflow
	}

	if total == 0 {
		return Breakdown{}, ErrZeroTotal
	}

	b := Breakdown{
		labels: d.Labels(),
		values: make(map[string]float64, d.Len()),
	}

	for _, label := range d.labels {
		b.values[label] = 100 * float64(d.values[label]) / float64(total)
	}

	return b, nil
}

func (b Breakdown) Labels() []string {
	out := make([]string, len(b.labels))
	copy(out, b.labels)

	return out
}

func (b Breakdown) Percent(label string) (float64, bool) {
	v, ok := b.values[label]

	return v, ok
}

func (b Breakdown) Len() int {
	return len(b.labels)
}

// Other sums the percentages of non-headline labels. It does not take part
// in any threshold decision.
func (b Breakdown) Other() float64 {
	var sum float64

	for _, label := range b.labels {
		if !IsHeadline(label) {
			sum += b.values[label]
		}
	}

	return sum
}

// Entry is one labelled percentage.
type Entry struct {
	Label   string
	Percent float64
}

// Headline lists the headline labels present, in order, optionally followed
// by the Other aggregate.
func (b Breakdown) Headline(withOther bool) []Entry {
	out := make([]Entry, 0, len(headline)+1)

	for _, label := range b.labels {
		if IsHeadline(label) {
			out = append(out, Entry{Label: label, Percent: b.values[label]})
		}
	}

	if withOther {
		out = append(out, Entry{Label: OtherLabel, Percent: b.Other()})
	}

	return out
}
