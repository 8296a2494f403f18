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

import (
	"math"
	"math/bits"
)

// CategoryMap maps raw counter names to the label their deltas are reported
// under. Names absent from the map are their own label.
type CategoryMap map[string]string

func (m CategoryMap) Label(name string) string {
	if label, ok := m[name]; ok && label != "" {
		return label
	}

	return name
}

// DeltaSet holds non-negative deltas per label, in the order labels were
// first seen.
type DeltaSet struct {
	labels   []string
	values   map[string]uint64
	overflow bool
}

func (d DeltaSet) Labels() []string {
	out := make([]string, len(d.labels))
	copy(out, d.labels)

	return out
}

func (d DeltaSet) Value(label string) (uint64, bool) {
	v, ok := d.values[label]

	return v, ok
}

func (d DeltaSet) Len() int {
	return len(d.labels)
}

// Total sums every delta in the set, saturating at math.MaxUint64.
func (d DeltaSet) Total() uint64 {
	var total uint64
	for _, v := range d.values {
		total = addSaturating(total, v)
	}

	return total
}

// Overflowed reports whether a delta or the total no longer fits in 64 bits.
// Percentages of such a set are meaningless.
func (d DeltaSet) Overflowed() bool {
	return d.overflow || d.Total() == math.MaxUint64
}

func addSaturating(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}

	return sum
}

// Merge returns a new set with the deltas of o added to d. Labels new to d
// are appended in the order o holds them.
func (d DeltaSet) Merge(o DeltaSet) DeltaSet {
	out := DeltaSet{overflow: d.overflow || o.overflow}
	for _, label := range d.labels {
		out.add(label, d.values[label])
	}

	for _, label := range o.labels {
		out.add(label, o.values[label])
	}

	return out
}

func (d *DeltaSet) add(label string, v uint64) {
	if d.values == nil {
		d.values = make(map[string]uint64)
	}

	if _, ok := d.values[label]; !ok {
		d.labels = append(d.labels, label)
	}

	sum := addSaturating(d.values[label], v)
	if sum == math.MaxUint64 {
		d.overflow = true
	}

	d.values[label] = sum
}

// Evaluator turns two samples of the same target into labelled deltas.
type Evaluator struct {
	Width      Width
	Policy     Policy
	Categories CategoryMap
}

// Evaluate computes one delta per counter present in both samples and folds
// them into their category label. Counters only present in cur are ignored.
// The returned total is the sum of all deltas, saturating at
// math.MaxUint64.
func (e Evaluator) Evaluate(prev, cur Sample) (DeltaSet, uint64) {
	width := e.Width
	if !width.Valid() {
		width = Width64
	}

	var (
		set   DeltaSet
		total uint64
	)

	for _, name := range cur.names {
		before, ok := prev.values[name]
		if !ok {
			continue
		}

		d := e.Policy.Delta(before, cur.values[name], width)
		set.add(e.Categories.Label(name), d)
		total = addSaturating(total, d)
	}

	return set, total
}
