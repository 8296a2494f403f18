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
	"io"
	"strings"
)

// Result is what a check reports for one run.
type Result struct {
	Status Status
	Text   string
	// Perf holds rendered performance data fragments, in output order.
	Perf []string
	// StderrOnly sends Text to stderr and leaves stdout empty.
	StderrOnly bool
}

func NewResult(status Status, format string, args ...any) Result {
	return Result{Status: status, Text: fmt.Sprintf(format, args...)}
}

func (r *Result) AddPerf(p ...Perf) {
	for _, m := range p {
		r.Perf = append(r.Perf, m.String())
	}
}

// String renders the plugin output. Performance data follows " | " on a
// single-line output and gets its own "| " line after a multi-line one.
func (r Result) String() string {
	if len(r.Perf) == 0 {
		return r.Text
	}

	perf := strings.Join(r.Perf, " ")
	if strings.Contains(r.Text, "\n") {
		return r.Text + "\n| " + perf
	}

	if r.Text == "" {
		return "| " + perf
	}

	return r.Text + " | " + perf
}

// Write prints the result on stdout or stderr.
func (r Result) Write(stdout, stderr io.Writer) error {
	w := stdout
	if r.StderrOnly {
		w = stderr
	}

	out := r.String()
	if out == "" {
		return nil
	}

	_, err := fmt.Fprintln(w, out)

	return err
}
