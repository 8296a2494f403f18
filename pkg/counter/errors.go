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

// Package counter computes deltas, percentages and rates from successive
// samples of monotonically increasing counters.
package counter

import "errors"

var (
	ErrDuplicateCounter = errors.New("duplicate counter name")
	ErrEmptyCounterName = errors.New("empty counter name")
	ErrZeroTotal        = errors.New("total delta is zero")
	ErrTotalOverflow    = errors.New("total delta overflows 64 bits")
	ErrElapsedTooShort  = errors.New("elapsed time too short")
)
