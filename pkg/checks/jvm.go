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

package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/nagios"
)

var ErrInvalidToggle = errors.New("invalid check toggle")

// Toggle enables a sub-check and carries its thresholds, written
// "enabled,warning,critical" with enabled 0 or 1.
type Toggle struct {
	Enabled    bool
	Thresholds nagios.Thresholds
}

func ParseToggle(s string) (Toggle, error) {
	flag, rest, ok := strings.Cut(s, ",")
	if !ok {
		return Toggle{}, fmt.Errorf("%w: %q, expected enabled,warning,critical", ErrInvalidToggle, s)
	}

	var t Toggle

	switch strings.TrimSpace(flag) {
	case "1":
		t.Enabled = true
	case "0":
	default:
		return Toggle{}, fmt.Errorf("%w: %q, enabled must be 0 or 1", ErrInvalidToggle, s)
	}

	th, err := nagios.ParseThresholds(rest)
	if err != nil {
		return Toggle{}, fmt.Errorf("%w: %w", ErrInvalidToggle, err)
	}

	t.Thresholds = th

	return t, nil
}

// Command is an external plugin invocation.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// CommandRunner runs a plugin and returns its stdout and exit code. An error
// means the plugin could not run at all.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (stdout string, exitCode int, err error)
}

// ExecRunner runs plugins as child processes. Their stderr is passed through
// to Stderr, os.Stderr when nil.
type ExecRunner struct {
	Stderr io.Writer
}

func (r ExecRunner) Run(ctx context.Context, cmd Command) (string, int, error) {
	var out bytes.Buffer

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Stdout = &out

	c.Stderr = r.Stderr
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	err := c.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.String(), exitErr.ExitCode(), nil
	}

	if err != nil {
		return "", 0, err
	}

	return out.String(), 0, nil
}

// JVM runs the JVM CPU, heap and thread plugins and merges their outputs
// into one result.
type JVM struct {
	Target    string
	Community string
	CPU       Toggle
	Memory    Toggle
	Threads   Toggle
	// Dir is where the sub-plugins are installed. Empty means $PATH.
	Dir string

	Runner CommandRunner
	Log    logger.Logger
}

func (j *JVM) path(name string) string {
	if j.Dir == "" {
		return name
	}

	return filepath.Join(j.Dir, name)
}

// Commands lists the enabled sub-plugins in output order.
func (j *JVM) Commands() []Command {
	var cmds []Command

	if j.CPU.Enabled {
		cmds = append(cmds, Command{
			Name: j.path("check_jvm_cpu"),
			Args: []string{j.Target, j.CPU.Thresholds.String(), j.Community},
		})
	}

	if j.Memory.Enabled {
		cmds = append(cmds, Command{
			Name: j.path("check_jvm_memory.sh"),
			Args: []string{j.Target, j.Community, j.Memory.Thresholds.String()},
		})
	}

	if j.Threads.Enabled {
		cmds = append(cmds, Command{
			Name: j.path("check_jvm_threads.sh"),
			Args: []string{j.Target, j.Community, j.Threads.Thresholds.String()},
		})
	}

	return cmds
}

type subResult struct {
	text string
	perf string
	code int
}

func splitOutput(stdout string) (text, perf string) {
	text, perf, _ = strings.Cut(stdout, "|")

	return strings.TrimSpace(text), strings.TrimSpace(perf)
}

func (j *JVM) Run(ctx context.Context) nagios.Result {
	log := logOrNop(j.Log)

	runner := j.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	cmds := j.Commands()
	results := make([]subResult, len(cmds))

	g, gctx := errgroup.WithContext(ctx)

	for i, cmd := range cmds {
		g.Go(func() error {
			stdout, code, err := runner.Run(gctx, cmd)
			if err != nil {
				log.Warn().Err(err).Str("command", cmd.String()).Msg("Failed to run sub-check")

				results[i] = subResult{text: err.Error(), code: nagios.Unknown.ExitCode()}

				return nil
			}

			log.Debug().Str("command", cmd.String()).Int("exit", code).Msg("Sub-check finished")

			text, perf := splitOutput(stdout)
			results[i] = subResult{text: text, perf: perf, code: code}

			return nil
		})
	}

	_ = g.Wait()

	var (
		texts []string
		perfs []string
		codes []int
	)

	for _, r := range results {
		if r.text != "" {
			texts = append(texts, r.text)
		}

		if r.perf != "" {
			perfs = append(perfs, r.perf)
		}

		codes = append(codes, r.code)
	}

	return nagios.Result{
		Status: nagios.Status(nagios.CombineMax(codes...)),
		Text:   strings.Join(texts, " / "),
		Perf:   perfs,
	}
}
