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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/jbbarth/monitoring/pkg/checks"
	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/nagios"
	"github.com/jbbarth/monitoring/pkg/snmp"
	"github.com/jbbarth/monitoring/pkg/store"
	"github.com/jbbarth/monitoring/pkg/version"
)

// UsageExitCode is returned on bad arguments, as the legacy plugins did.
const UsageExitCode = 2

// Plugin describes one plugin binary.
type Plugin struct {
	Name    string
	Args    string
	Example string
	MinArgs int
	MaxArgs int
	// Options is an optional go-flags group of plugin specific options.
	Options interface{}
	// Build turns the positional arguments into a check. Argument errors
	// wrap ErrUsage.
	Build func(ctx context.Context, env *Env, args []string) (checks.Check, error)
}

func (p *Plugin) usage(w io.Writer) {
	fmt.Fprintf(w, "USAGE: %s %s\n", p.Name, p.Args)

	if p.Example != "" {
		fmt.Fprintf(w, "\tExample: %s %s\n", p.Name, p.Example)
	}
}

// App runs plugins. Zero fields get the production collaborators.
type App struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Dial      snmp.Dialer
	OpenStore func(ctx context.Context, cfg store.Config, log logger.Logger) (store.Store, error)
	Now       func() time.Time
}

// Main runs p with the process arguments and exits with its status.
func Main(p *Plugin) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := (&App{}).Run(ctx, p, os.Args[1:])

	stop()
	os.Exit(code)
}

func (a *App) defaults() {
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}

	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}

	if a.Dial == nil {
		a.Dial = snmp.Dial
	}

	if a.OpenStore == nil {
		a.OpenStore = store.Open
	}

	if a.Now == nil {
		a.Now = time.Now
	}
}

// Run parses args, runs the check and prints its result. It returns the
// process exit code.
func (a *App) Run(ctx context.Context, p *Plugin, args []string) int {
	a.defaults()

	var opts Options

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = p.Name
	parser.Usage = "[OPTIONS] " + p.Args

	if p.Options != nil {
		if _, err := parser.AddGroup("Plugin Options", "", p.Options); err != nil {
			fmt.Fprintln(a.Stdout, err)

			return nagios.Unknown.ExitCode()
		}
	}

	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(a.Stdout, flagsErr.Message)

			return nagios.OK.ExitCode()
		}

		fmt.Fprintln(a.Stdout, err)
		p.usage(a.Stdout)

		return UsageExitCode
	}

	if opts.Version {
		fmt.Fprintln(a.Stdout, version.Banner(p.Name))

		return nagios.OK.ExitCode()
	}

	if len(rest) < p.MinArgs || len(rest) > p.MaxArgs {
		p.usage(a.Stdout)

		return UsageExitCode
	}

	return a.run(ctx, p, &opts, rest)
}

func (a *App) run(ctx context.Context, p *Plugin, opts *Options, args []string) int {
	settings, err := LoadSettings(ctx, opts)
	if err != nil {
		return a.unknown(fmt.Errorf("%s: %w", p.Name, err))
	}

	if err := logger.Init(&settings.Logging); err != nil {
		return a.unknown(fmt.Errorf("%s: logger: %w", p.Name, err))
	}

	log := logger.Wrap(logger.WithComponent(p.Name))

	env := &Env{
		Settings:  settings,
		Log:       log,
		Dial:      a.Dial,
		Now:       a.Now,
		Stderr:    a.Stderr,
		openStore: a.OpenStore,
	}
	defer env.Close()

	log.Debug().Str("plugin", p.Name).Strs("args", args).Str("store", settings.Store.Backend).Msg("Starting check")

	check, err := p.Build(ctx, env, args)
	if errors.Is(err, ErrUsage) {
		fmt.Fprintln(a.Stdout, err)
		p.usage(a.Stdout)

		return UsageExitCode
	}

	if err != nil {
		return a.unknown(err)
	}

	res := check.Run(ctx)
	if err := res.Write(a.Stdout, a.Stderr); err != nil {
		log.Error().Err(err).Msg("Failed to write result")
	}

	return res.Status.ExitCode()
}

func (a *App) unknown(err error) int {
	res := nagios.NewResult(nagios.Unknown, "UNKNOWN: %v", err)
	_ = res.Write(a.Stdout, a.Stderr)

	return res.Status.ExitCode()
}

// executableDir is where sibling plugins are looked up by default.
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}

	return filepath.Dir(exe)
}
