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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelta(t *testing.T) {
	tests := []struct {
		name     string
		prev     uint64
		cur      uint64
		width    Width
		expected uint64
	}{
		{name: "increase", prev: 100, cur: 150, width: Width32, expected: 50},
		{name: "unchanged", prev: 42, cur: 42, width: Width32, expected: 0},
		{name: "zero to max", prev: 0, cur: math.MaxUint32, width: Width32, expected: math.MaxUint32},
		{name: "wrap 32 near top", prev: 1<<32 - 5, cur: 10, width: Width32, expected: 15},
		{name: "wrap 32 small", prev: 4294967290, cur: 5, width: Width32, expected: 11},
		{name: "wrap 32 to zero", prev: math.MaxUint32, cur: 0, width: Width32, expected: 1},
		{name: "wrap 64", prev: math.MaxUint64 - 9, cur: 10, width: Width64, expected: 20},
		{name: "wrap 64 to zero", prev: math.MaxUint64, cur: 0, width: Width64, expected: 1},
		{name: "increase 64", prev: 1 << 40, cur: 1<<40 + 7, width: Width64, expected: 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Delta(tc.prev, tc.cur, tc.width))
		})
	}
}

func TestDeltaSameValueIsZero(t *testing.T) {
	for _, v := range []uint64{0, 1, 12345, math.MaxUint32} {
		assert.Zero(t, Delta(v, v, Width32))
		assert.Zero(t, Delta(v, v, Width64))
	}
}

func TestPolicyDelta(t *testing.T) {
	t.Run("wraparound", func(t *testing.T) {
		assert.Equal(t, uint64(11), Wraparound.Delta(4294967290, 5, Width32))
	})

	t.Run("clamp negative", func(t *testing.T) {
		assert.Zero(t, ClampNegative.Delta(4294967290, 5, Width32))
		assert.Zero(t, ClampNegative.Delta(10, 10, Width32))
		assert.Equal(t, uint64(90), ClampNegative.Delta(10, 100, Width32))
	})

	t.Run("names", func(t *testing.T) {
		assert.Equal(t, "wraparound", Wraparound.String())
		assert.Equal(t, "clamp", ClampNegative.String())
	})
}

func TestNewSample(t *testing.T) {
	t.Run("keeps order", func(t *testing.T) {
		s, err := NewSample(Counter{"b", 2}, Counter{"a", 1}, Counter{"c", 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, s.Names())
		assert.Equal(t, 3, s.Len())

		v, ok := s.Value("a")
		assert.True(t, ok)
		assert.Equal(t, uint64(1), v)

		_, ok = s.Value("missing")
		assert.False(t, ok)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := NewSample(Counter{"a", 1}, Counter{"a", 2})
		require.ErrorIs(t, err, ErrDuplicateCounter)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := NewSample(Counter{"", 1})
		require.ErrorIs(t, err, ErrEmptyCounterName)
	})

	t.Run("accessors return copies", func(t *testing.T) {
		s := MustSample(Counter{"a", 1})
		names := s.Names()
		names[0] = "changed"
		counters := s.Counters()
		counters[0].Value = 99

		assert.Equal(t, []string{"a"}, s.Names())
		v, _ := s.Value("a")
		assert.Equal(t, uint64(1), v)
	})
}

func TestEvaluate(t *testing.T) {
	t.Run("basic", testEvaluateBasic)
	t.Run("ignores new counters", testEvaluateIgnoresNewCounters)
	t.Run("groups categories", testEvaluateGroupsCategories)
	t.Run("clamp policy", testEvaluateClampPolicy)
}

func testEvaluateBasic(t *testing.T) {
	prev := MustSample(Counter{"User", 100}, Counter{"Idle", 900})
	cur := MustSample(Counter{"User", 150}, Counter{"Idle", 950})

	deltas, total := Evaluator{Width: Width32}.Evaluate(prev, cur)

	assert.Equal(t, []string{"User", "Idle"}, deltas.Labels())
	assertDelta(t, deltas, "User", 50)
	assertDelta(t, deltas, "Idle", 50)
	assert.Equal(t, uint64(100), total)
	assert.Equal(t, total, deltas.Total())
}

func testEvaluateIgnoresNewCounters(t *testing.T) {
	prev := MustSample(Counter{"User", 100})
	cur := MustSample(Counter{"User", 110}, Counter{"Steal", 5000})

	deltas, total := Evaluator{Width: Width32}.Evaluate(prev, cur)

	assert.Equal(t, 1, deltas.Len())
	assert.Equal(t, uint64(10), total)
	_, ok := deltas.Value("Steal")
	assert.False(t, ok)
}

func testEvaluateGroupsCategories(t *testing.T) {
	categories := CategoryMap{
		"ssCpuRawSoftIRQ.0": "SoftIRQ",
		"ssCpuRawSoftIRQ.1": "SoftIRQ",
		"ssCpuRawUser.0":    "User",
	}
	prev := MustSample(
		Counter{"ssCpuRawSoftIRQ.0", 10},
		Counter{"ssCpuRawUser.0", 10},
		Counter{"ssCpuRawSoftIRQ.1", 10},
		Counter{"unmapped", 1},
	)
	cur := MustSample(
		Counter{"ssCpuRawSoftIRQ.0", 15},
		Counter{"ssCpuRawUser.0", 30},
		Counter{"ssCpuRawSoftIRQ.1", 17},
		Counter{"unmapped", 2},
	)

	deltas, total := Evaluator{Width: Width32, Categories: categories}.Evaluate(prev, cur)

	assert.Equal(t, []string{"SoftIRQ", "User", "unmapped"}, deltas.Labels())
	assertDelta(t, deltas, "SoftIRQ", 12)
	assertDelta(t, deltas, "User", 20)
	assertDelta(t, deltas, "unmapped", 1)
	assert.Equal(t, uint64(33), total)
}

func testEvaluateClampPolicy(t *testing.T) {
	prev := MustSample(Counter{"in", 4294967290}, Counter{"out", 10})
	cur := MustSample(Counter{"in", 5}, Counter{"out", 1034})

	wrapped, _ := Evaluator{Width: Width32, Policy: Wraparound}.Evaluate(prev, cur)
	clamped, total := Evaluator{Width: Width32, Policy: ClampNegative}.Evaluate(prev, cur)

	assertDelta(t, wrapped, "in", 11)
	assertDelta(t, clamped, "in", 0)
	assertDelta(t, clamped, "out", 1024)
	assert.Equal(t, uint64(1024), total)
}

func TestDeltaSetMerge(t *testing.T) {
	a, _ := Evaluator{}.Evaluate(
		MustSample(Counter{"User", 0}, Counter{"Idle", 0}),
		MustSample(Counter{"User", 5}, Counter{"Idle", 10}),
	)
	b, _ := Evaluator{}.Evaluate(
		MustSample(Counter{"Idle", 0}, Counter{"Wait", 0}),
		MustSample(Counter{"Idle", 1}, Counter{"Wait", 2}),
	)

	merged := a.Merge(b)

	assert.Equal(t, []string{"User", "Idle", "Wait"}, merged.Labels())
	assertDelta(t, merged, "Idle", 11)
	assert.Equal(t, uint64(18), merged.Total())
	assertDelta(t, a, "Idle", 10)
}

func TestPercentages(t *testing.T) {
	t.Run("scenario half idle", func(t *testing.T) {
		prev := MustSample(Counter{"User", 100}, Counter{"Idle", 900})
		cur := MustSample(Counter{"User", 150}, Counter{"Idle", 950})
		deltas, total := Evaluator{Width: Width32}.Evaluate(prev, cur)

		b, err := Percentages(deltas, total)
		require.NoError(t, err)

		user, _ := b.Percent("User")
		idle, _ := b.Percent("Idle")
		assert.InDelta(t, 50.0, user, 1e-9)
		assert.InDelta(t, 50.0, idle, 1e-9)
		assert.InDelta(t, 50.0, 100-idle, 1e-9)
	})

	t.Run("sum to one hundred", func(t *testing.T) {
		prev := MustSample(Counter{"a", 0}, Counter{"b", 0}, Counter{"c", 0}, Counter{"d", 0})
		cur := MustSample(Counter{"a", 7}, Counter{"b", 13}, Counter{"c", 1}, Counter{"d", 977})
		deltas, total := Evaluator{Width: Width32}.Evaluate(prev, cur)

		b, err := Percentages(deltas, total)
		require.NoError(t, err)

		var sum float64
		for _, label := range b.Labels() {
			v, _ := b.Percent(label)
			sum += v
		}

		assert.InDelta(t, 100.0, sum, 1e-9)
	})

	t.Run("zero total", func(t *testing.T) {
		s := MustSample(Counter{"User", 100}, Counter{"Idle", 900})
		deltas, total := Evaluator{Width: Width32}.Evaluate(s, s)

		_, err := Percentages(deltas, total)
		require.ErrorIs(t, err, ErrZeroTotal)
	})

	t.Run("scenario idle below ten percent", func(t *testing.T) {
		prev := MustSample(Counter{"User", 100}, Counter{"Idle", 900})
		cur := MustSample(Counter{"User", 950}, Counter{"Idle", 950})
		deltas, total := Evaluator{Width: Width32}.Evaluate(prev, cur)

		b, err := Percentages(deltas, total)
		require.NoError(t, err)

		idle, _ := b.Percent("Idle")
		assert.Less(t, idle, 10.0)
		assert.InDelta(t, 94.444, 100-idle, 1e-3)
	})

	t.Run("overflowing total", func(t *testing.T) {
		tests := []struct {
			name string
			prev Sample
			cur  Sample
		}{
			{
				name: "single delta at the width maximum",
				prev: MustSample(Counter{"Idle", 100}, Counter{"Wait", 2000}),
				cur:  MustSample(Counter{"Idle", 200}, Counter{"Wait", 1999}),
			},
			{
				name: "sum past the width maximum",
				prev: MustSample(Counter{"Idle", 0}, Counter{"Wait", 100}),
				cur:  MustSample(Counter{"Idle", 100}, Counter{"Wait", 50}),
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				deltas, total := Evaluator{Width: Width64, Policy: Wraparound}.Evaluate(tc.prev, tc.cur)

				assert.Equal(t, uint64(math.MaxUint64), total)
				assert.Equal(t, uint64(math.MaxUint64), deltas.Total())
				assert.True(t, deltas.Overflowed())

				_, err := Percentages(deltas, total)
				require.ErrorIs(t, err, ErrTotalOverflow)
			})
		}
	})

	t.Run("clamped dip stays in range", func(t *testing.T) {
		prev := MustSample(Counter{"Idle", 100}, Counter{"Wait", 2000})
		cur := MustSample(Counter{"Idle", 200}, Counter{"Wait", 1999})
		deltas, total := Evaluator{Width: Width64, Policy: ClampNegative}.Evaluate(prev, cur)

		assert.Equal(t, uint64(100), total)
		assert.False(t, deltas.Overflowed())

		b, err := Percentages(deltas, total)
		require.NoError(t, err)

		wait, _ := b.Percent("Wait")
		assert.InDelta(t, 0.0, wait, 1e-9)
	})
}

func TestDeltaSetMergeSaturates(t *testing.T) {
	a, _ := Evaluator{}.Evaluate(MustSample(Counter{"Idle", 0}), MustSample(Counter{"Idle", math.MaxUint64 - 1}))
	b, _ := Evaluator{}.Evaluate(MustSample(Counter{"Idle", 0}), MustSample(Counter{"Idle", 5}))

	require.False(t, a.Overflowed())

	merged := a.Merge(b)

	assertDelta(t, merged, "Idle", math.MaxUint64)
	assert.True(t, merged.Overflowed())
}

func TestBreakdownHeadline(t *testing.T) {
	prev := MustSample(
		Counter{"User", 0}, Counter{"Nice", 0}, Counter{"System", 0}, Counter{"Idle", 0},
		Counter{"Wait", 0}, Counter{"Kernel", 0}, Counter{"Interrupt", 0},
	)
	cur := MustSample(
		Counter{"User", 20}, Counter{"Nice", 0}, Counter{"System", 10}, Counter{"Idle", 50},
		Counter{"Wait", 5}, Counter{"Kernel", 10}, Counter{"Interrupt", 5},
	)
	deltas, total := Evaluator{Width: Width32}.Evaluate(prev, cur)

	b, err := Percentages(deltas, total)
	require.NoError(t, err)

	assert.InDelta(t, 15.0, b.Other(), 1e-9)

	entries := b.Headline(true)
	labels := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.Label)
	}

	assert.Equal(t, []string{"User", "Nice", "System", "Idle", "Wait", OtherLabel}, labels)
	assert.Len(t, b.Headline(false), 5)
}

func TestRate(t *testing.T) {
	assert.InDelta(t, 102.4, Rate(1048576, 10, 1024), 1e-9)
	assert.InDelta(t, 5.0, Rate(50, 10, 0), 1e-9)
}

func TestCheckElapsed(t *testing.T) {
	require.NoError(t, CheckElapsed(6*time.Second, 5*time.Second))
	require.ErrorIs(t, CheckElapsed(5*time.Second, 5*time.Second), ErrElapsedTooShort)
	require.ErrorIs(t, CheckElapsed(-time.Second, 0), ErrElapsedTooShort)
}

func assertDelta(t *testing.T, d DeltaSet, label string, expected uint64) {
	t.Helper()

	v, ok := d.Value(label)
	require.True(t, ok, "missing label %s", label)
	assert.Equal(t, expected, v)
}
