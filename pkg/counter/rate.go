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
	"fmt"
	"time"
)

// Rate converts a delta observed over elapsedSeconds into units per second,
// dividing by unitDivisor (1024 for bytes to kilobytes). Callers guard the
// elapsed time with CheckElapsed first.
func Rate(delta uint64, elapsedSeconds, unitDivisor float64) float64 {
	if unitDivisor == 0 {
		unitDivisor = 1
	}

	return float64(delta) / elapsedSeconds / unitDivisor
}

// CheckElapsed requires elapsed to be strictly greater than minimum.
func CheckElapsed(elapsed, minimum time.Duration) error {
	if elapsed <= minimum {
		return fmt.Errorf("%w: %s <= %s", ErrElapsedTooShort, elapsed, minimum)
	}

	return nil
}
