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
	"fmt"
	"time"

	"github.com/jbbarth/monitoring/pkg/checks"
	"github.com/jbbarth/monitoring/pkg/nagios"
	"github.com/jbbarth/monitoring/pkg/snmp"
)

// arg returns the i-th positional argument, or def when it is absent.
func arg(args []string, i int, def string) string {
	if i < len(args) && args[i] != "" {
		return args[i]
	}

	return def
}

func parseThresholds(s string) (nagios.Thresholds, error) {
	t, err := nagios.ParseThresholds(s)
	if err != nil {
		return nagios.Thresholds{}, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	return t, nil
}

func parseTarget(s string) (string, uint16, error) {
	host, port, err := snmp.SplitTarget(s)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	return host, port, nil
}

type cpuOptions struct {
	Local bool `long:"local" description:"Read the CPU times of this host instead of querying SNMP"`
}

func cpuSource(ctx context.Context, env *Env, target, community string, local bool) (checks.CPUSource, string, error) {
	host, port, err := parseTarget(target)
	if err != nil {
		return nil, "", err
	}

	if local {
		return checks.NewHostCPUSource(), host, nil
	}

	client, err := env.Client(ctx, host, port, community)
	if err != nil {
		return nil, "", err
	}

	return &checks.SNMPCPUSource{Client: client}, host, nil
}

// CPUAverage is check_cpu_avg.
func CPUAverage() *Plugin {
	opts := &cpuOptions{}

	return &Plugin{
		Name:    "check_cpu_avg",
		Args:    "<ip|host> [warning,critical] [snmp_community]",
		Example: "192.168.0.50 80,90 public",
		MinArgs: 1,
		MaxArgs: 3,
		Options: opts,
		Build: func(ctx context.Context, env *Env, args []string) (checks.Check, error) {
			th, err := parseThresholds(arg(args, 1, "80,90"))
			if err != nil {
				return nil, err
			}

			src, host, err := cpuSource(ctx, env, args[0], arg(args, 2, ""), opts.Local)
			if err != nil {
				return nil, err
			}

			st, err := env.Store(ctx)
			if err != nil {
				return nil, err
			}

			return &checks.CPUAverage{
				Host:       host,
				Thresholds: th,
				MaxAge:     env.MaxAge(),
				Source:     src,
				Store:      st,
				Log:        env.Log,
				Now:        env.Now,
			}, nil
		},
	}
}

type cpuLoadOptions struct {
	cpuOptions
	MaxCycles int           `long:"max-cycles" description:"Maximum number of samples" default:"15"`
	MinTicks  uint64        `long:"min-ticks" description:"Stop sampling after this many CPU ticks" default:"2000"`
	Interval  time.Duration `long:"interval" description:"Pause between samples" default:"1s"`
}

// CPULoad is check_cpu_load.
func CPULoad() *Plugin {
	opts := &cpuLoadOptions{}

	return &Plugin{
		Name:    "check_cpu_load",
		Args:    "<ip|host> [warning,critical] [snmp_community]",
		Example: "192.168.0.50 80,90 public",
		MinArgs: 1,
		MaxArgs: 3,
		Options: opts,
		Build: func(ctx context.Context, env *Env, args []string) (checks.Check, error) {
			th, err := parseThresholds(arg(args, 1, "80,90"))
			if err != nil {
				return nil, err
			}

			src, host, err := cpuSource(ctx, env, args[0], arg(args, 2, ""), opts.Local)
			if err != nil {
				return nil, err
			}

			return &checks.CPULoad{
				Host:       host,
				Thresholds: th,
				MaxCycles:  opts.MaxCycles,
				MinTicks:   opts.MinTicks,
				Interval:   opts.Interval,
				Source:     src,
				Log:        env.Log,
			}, nil
		},
	}
}

// JVMCPU is check_jvm_cpu.
func JVMCPU() *Plugin {
	return &Plugin{
		Name:    "check_jvm_cpu",
		Args:    "<ip|host>:<port> [warning,critical] [snmp_community]",
		Example: "192.168.0.50:1161 25,50 public",
		MinArgs: 1,
		MaxArgs: 3,
		Build: func(ctx context.Context, env *Env, args []string) (checks.Check, error) {
			host, port, err := parseTarget(args[0])
			if err != nil {
				return nil, err
			}

			if port == 0 {
				return nil, fmt.Errorf("%w: %q has no JVM agent port", ErrUsage, args[0])
			}

			th, err := parseThresholds(arg(args, 1, "80,90"))
			if err != nil {
				return nil, err
			}

			st, err := env.Store(ctx)
			if err != nil {
				return nil, err
			}

			maxAge := env.MaxAge()
			if maxAge <= 0 {
				maxAge = checks.DefaultJVMMaxAge
			}

			return &checks.JVMCPU{
				Host:       host,
				Port:       port,
				Thresholds: th,
				MaxAge:     maxAge,
				SNMP:       env.SNMPConfig(arg(args, 2, "")),
				Dial:       env.Dial,
				Store:      st,
				Log:        env.Log,
				Now:        env.Now,
			}, nil
		},
	}
}

type jvmOptions struct {
	PluginDir string `long:"plugin-dir" description:"Directory of the JVM sub-check plugins (default: next to this binary)"`
}

// JVM is check_jvm.
func JVM() *Plugin {
	opts := &jvmOptions{}

	return &Plugin{
		Name: "check_jvm",
		Args: "<ip|host:port> [community-string] [warning-cpu,critical-cpu] " +
			"[warning-heap,critical-heap] [warning-threads,critical-threads]",
		Example: "192.168.0.50:1161 public 1,25,50 1,80,90 0,75,100",
		MinArgs: 1,
		MaxArgs: 5,
		Options: opts,
		Build: func(_ context.Context, env *Env, args []string) (checks.Check, error) {
			if args[0] == "" {
				return nil, fmt.Errorf("%w: %w", ErrUsage, errNoHost)
			}

			var toggles [3]checks.Toggle

			for i, def := range []string{"1,25,50", "1,80,90", "1,75,100"} {
				t, err := checks.ParseToggle(arg(args, i+2, def))
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrUsage, err)
				}

				toggles[i] = t
			}

			dir := opts.PluginDir
			if dir == "" {
				dir = executableDir()
			}

			return &checks.JVM{
				Target:    args[0],
				Community: arg(args, 1, "public"),
				CPU:       toggles[0],
				Memory:    toggles[1],
				Threads:   toggles[2],
				Dir:       dir,
				Runner:    checks.ExecRunner{Stderr: env.Stderr},
				Log:       env.Log,
			}, nil
		},
	}
}

// IfStatus is check_ifstatus.
func IfStatus() *Plugin {
	return &Plugin{
		Name:    "check_ifstatus",
		Args:    "<ip|host> [snmp_community] [ports_number_to_exclude]",
		Example: "192.168.0.50 public 15,16,17",
		MinArgs: 1,
		MaxArgs: 3,
		Build: func(ctx context.Context, env *Env, args []string) (checks.Check, error) {
			host, port, err := parseTarget(args[0])
			if err != nil {
				return nil, err
			}

			client, err := env.Client(ctx, host, port, arg(args, 1, ""))
			if err != nil {
				return nil, err
			}

			st, err := env.Store(ctx)
			if err != nil {
				return nil, err
			}

			return &checks.IfStatus{
				Host:       host,
				Exclusions: checks.ParseExclusions(arg(args, 2, "")),
				MaxAge:     env.MaxAge(),
				Client:     client,
				Store:      st,
				Log:        env.Log,
				Now:        env.Now,
			}, nil
		},
	}
}

// McData is check_snmp_mcdata.
func McData() *Plugin {
	return &Plugin{
		Name:    "check_snmp_mcdata",
		Args:    "<ip|host> <snmp_community> [ports_number_to_exclude]",
		Example: "192.168.0.50 public 15,16,17",
		MinArgs: 2,
		MaxArgs: 3,
		Build: func(ctx context.Context, env *Env, args []string) (checks.Check, error) {
			host, port, err := parseTarget(args[0])
			if err != nil {
				return nil, err
			}

			client, err := env.Client(ctx, host, port, args[1])
			if err != nil {
				return nil, err
			}

			return &checks.McData{
				Host:       host,
				Exclusions: checks.ParseExclusions(arg(args, 2, "")),
				Client:     client,
				Log:        env.Log,
			}, nil
		},
	}
}
