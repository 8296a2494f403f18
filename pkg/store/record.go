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

package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/jbbarth/monitoring/pkg/counter"
)

// document is the persisted shape of a Record, shared by every backend.
type document struct {
	CapturedAt time.Time      `json:"captured_at" yaml:"captured_at"`
	Counters   []counterEntry `json:"counters" yaml:"counters"`
}

type counterEntry struct {
	Name  string `json:"name" yaml:"name"`
	Value uint64 `json:"value" yaml:"value"`
}

func newDocument(rec Record) document {
	doc := document{CapturedAt: rec.CapturedAt.UTC()}
	for _, c := range rec.Sample.Counters() {
		doc.Counters = append(doc.Counters, counterEntry{Name: c.Name, Value: c.Value})
	}

	return doc
}

func (d document) record() (Record, error) {
	counters := make([]counter.Counter, 0, len(d.Counters))
	for _, c := range d.Counters {
		counters = append(counters, counter.Counter{Name: c.Name, Value: c.Value})
	}

	sample, err := counter.NewSample(counters...)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	return Record{Sample: sample, CapturedAt: d.CapturedAt}, nil
}

// sanitizeKey keeps letters, digits and "-_." and writes any other byte as
// "=XX" in hex, so distinct keys stay distinct as file names and NATS KV
// keys. A leading "." is escaped too.
func sanitizeKey(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	var b strings.Builder

	for i := 0; i < len(key); i++ {
		c := key[i]

		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '_' || (c == '.' && i > 0):
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "=%02X", c)
		}
	}

	return b.String(), nil
}
