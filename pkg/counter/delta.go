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

// Width is the bit width at which a counter wraps back to zero.
type Width uint8

const (
	Width32 Width = 32
	Width64 Width = 64
)

// Max returns the largest value a counter of this width can hold.
func (w Width) Max() uint64 {
	if w == Width32 {
		return math.MaxUint32
	}

	return math.MaxUint64
}

func (w Width) Valid() bool {
	return w == Width32 || w == Width64
}

// Delta returns the increase from prev to cur. A decrease is read as one
// wrap at the given width, so the result is 2^width - prev + cur.
// Both values are expected to fit the width. An agent restart looks the
// same as a wrap and yields a large, meaningless delta.
func Delta(prev, cur uint64, w Width) uint64 {
	if cur >= prev {
		return cur - prev
	}

	return (w.Max() - prev) + cur + 1
}

// Policy selects how a decreasing counter is interpreted.
type Policy int

const (
	// Wraparound treats a decrease as a counter wrap.
	Wraparound Policy = iota
	// ClampNegative treats a decrease as no traffic at all.
	ClampNegative
)

func (p Policy) String() string {
	switch p {
	case Wraparound:
		return "wraparound"
	case ClampNegative:
		return "clamp"
	default:
		return "unknown"
	}
}

// Delta applies the policy to one counter pair.
func (p Policy) Delta(prev, cur uint64, w Width) uint64 {
	if p == ClampNegative {
		if cur <= prev {
			return 0
		}

		return cur - prev
	}

	return Delta(prev, cur, w)
}
