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

import "fmt"

// Counter is one named raw value read from an agent.
type Counter struct {
	Name  string
	Value uint64
}

// Sample is an immutable, ordered set of counters captured at one point in time.
type Sample struct {
	names  []string
	values map[string]uint64
}

// NewSample builds a sample, keeping the order in which counters are given.
func NewSample(counters ...Counter) (Sample, error) {
	s := Sample{
		names:  make([]string, 0, len(counters)),
		values: make(map[string]uint64, len(counters)),
	}

	for _, c := range counters {
		if c.Name == "" {
			return Sample{}, ErrEmptyCounterName
		}

		if _, ok := s.values[c.Name]; ok {
			return Sample{}, fmt.Errorf("%w: %s", ErrDuplicateCounter, c.Name)
		}

		s.names = append(s.names, c.Name)
		s.values[c.Name] = c.Value
	}

	return s, nil
}

// MustSample is NewSample for fixed inputs known to be valid.
func MustSample(counters ...Counter) Sample {
	s, err := NewSample(counters...)
	if err != nil {
		panic(err)
	}

	return s
}

func (s Sample) Value(name string) (uint64, bool) {
	v, ok := s.values[name]

	return v, ok
}

func (s Sample) Len() int {
	return len(s.names)
}

func (s Sample) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)

	return out
}

func (s Sample) Counters() []Counter {
	out := make([]Counter, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, Counter{Name: name, Value: s.values[name]})
	}

	return out
}
