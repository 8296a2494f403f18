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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jbbarth/monitoring/pkg/checks"
	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/snmp"
	"github.com/jbbarth/monitoring/pkg/store"
)

const mcdataPortState = ".1.3.6.1.4.1.289.2.1.1.2.3.1.1.2"

type testApp struct {
	App
	stdout bytes.Buffer
	stderr bytes.Buffer
	dialed []snmp.Config
}

func newTestApp(t *testing.T, client snmp.Client) *testApp {
	t.Helper()

	t.Setenv("CONFIG_SOURCE", "")

	a := &testApp{}
	a.Stdout = &a.stdout
	a.Stderr = &a.stderr
	a.Dial = func(_ context.Context, cfg snmp.Config) (snmp.Client, error) {
		a.dialed = append(a.dialed, cfg)

		if client == nil {
			return nil, errors.New("unexpected dial")
		}

		return client, nil
	}
	a.OpenStore = func(context.Context, store.Config, logger.Logger) (store.Store, error) {
		return store.NewMemoryStore(), nil
	}

	return a
}

func portStates(states ...int) []snmp.Variable {
	vars := make([]snmp.Variable, 0, len(states))
	for i, s := range states {
		vars = append(vars, snmp.Variable{
			OID:   mcdataPortState + "." + strconv.Itoa(i+1),
			Type:  gosnmp.Integer,
			Value: s,
		})
	}

	return vars
}

func TestAppRunsCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := snmp.NewMockClient(ctrl)
	client.EXPECT().Walk(gomock.Any(), mcdataPortState).Return(portStates(2, 6, 2), nil)
	client.EXPECT().Close().Return(nil)

	a := newTestApp(t, client)
	code := a.Run(context.Background(), McData(), []string{"--snmp-timeout", "2s", "san_a", "secret", "3"})

	assert.Equal(t, 2, code)
	assert.Equal(t, "Link DOWN on interfaces : 2\n"+
		"Link UP on IGNORED interfaces : 3\n=> CHANGE THE SERVICE CONFIG !\n"+
		"Link UP on interfaces : 1\n"+
		"Ignored: 3\n", a.stdout.String())

	require.Len(t, a.dialed, 1)
	assert.Equal(t, "san_a", a.dialed[0].Host)
	assert.Equal(t, uint16(snmp.DefaultPort), a.dialed[0].Port)
	assert.Equal(t, "secret", a.dialed[0].Community)
	assert.Equal(t, 2*time.Second, a.dialed[0].Timeout.Std())
}

func TestAppFirstCPUAverage(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := snmp.NewMockClient(ctrl)
	client.EXPECT().Walk(gomock.Any(), ".1.3.6.1.4.1.2021.11").Return([]snmp.Variable{
		{OID: ".1.3.6.1.4.1.2021.11.50.0", Type: gosnmp.Counter32, Value: uint(10)},
		{OID: ".1.3.6.1.4.1.2021.11.53.0", Type: gosnmp.Counter32, Value: uint(90)},
	}, nil)
	client.EXPECT().Close().Return(nil)

	a := newTestApp(t, client)
	code := a.Run(context.Background(), CPUAverage(), []string{"web1"})

	assert.Equal(t, 3, code)
	assert.Equal(t, "No previous data, waiting for next check...\n", a.stdout.String())
	assert.Equal(t, "public", a.dialed[0].Community)
}

func TestAppUsage(t *testing.T) {
	tests := []struct {
		name     string
		plugin   *Plugin
		args     []string
		contains string
	}{
		{name: "missing community", plugin: McData(), args: []string{"san_a"},
			contains: "USAGE: check_snmp_mcdata <ip|host> <snmp_community> [ports_number_to_exclude]\n" +
				"\tExample: check_snmp_mcdata 192.168.0.50 public 15,16,17\n"},
		{name: "no arguments", plugin: CPUAverage(), args: nil, contains: "USAGE: check_cpu_avg"},
		{name: "too many arguments", plugin: IfStatus(), args: []string{"a", "b", "c", "d"}, contains: "USAGE: check_ifstatus"},
		{name: "bad thresholds", plugin: CPUAverage(), args: []string{"web1", "80"}, contains: "invalid arguments"},
		{name: "jvm target without port", plugin: JVMCPU(), args: []string{"app1"}, contains: "no JVM agent port"},
		{name: "bad toggle", plugin: JVM(), args: []string{"app1:8161", "public", "yes"}, contains: "invalid check toggle"},
		{name: "unknown flag", plugin: CPULoad(), args: []string{"--bogus", "web1"}, contains: "unknown flag"},
		{name: "bad store choice", plugin: CPUAverage(), args: []string{"--store", "redis", "web1"}, contains: "USAGE:"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestApp(t, nil)
			code := a.Run(context.Background(), tc.plugin, tc.args)

			assert.Equal(t, UsageExitCode, code)
			assert.Contains(t, a.stdout.String(), tc.contains)
			assert.Empty(t, a.dialed)
		})
	}
}

func TestAppVersionAndHelp(t *testing.T) {
	a := newTestApp(t, nil)
	assert.Equal(t, 0, a.Run(context.Background(), CPUAverage(), []string{"-V"}))
	assert.Equal(t, "check_cpu_avg dev (build: dev)\n", a.stdout.String())

	a = newTestApp(t, nil)
	assert.Equal(t, 0, a.Run(context.Background(), CPULoad(), []string{"--help"}))
	assert.Contains(t, a.stdout.String(), "check_cpu_load")
	assert.Contains(t, a.stdout.String(), "--max-cycles")
}

func TestAppCollaboratorFailure(t *testing.T) {
	a := newTestApp(t, nil)
	code := a.Run(context.Background(), IfStatus(), []string{"sw1"})

	assert.Equal(t, 3, code)
	assert.Equal(t, "UNKNOWN: unexpected dial\n", a.stdout.String())
}

func TestAppBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitoring.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store": {"backend": "redis"}}`), 0o600))

	a := newTestApp(t, nil)
	code := a.Run(context.Background(), CPUAverage(), []string{"-c", path, "web1"})

	assert.Equal(t, 3, code)
	assert.Contains(t, a.stdout.String(), "UNKNOWN: check_cpu_avg: failed to load config")
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := filepath.Join(t.TempDir(), "monitoring.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"store": {"backend": "file", "dir": "/var/lib/monitoring", "max_age": "10m"},
		"snmp": {"version": "1", "retries": 3, "timeout": 2}
	}`), 0o600))

	t.Run("file", func(t *testing.T) {
		s, err := LoadSettings(context.Background(), &Options{Config: path, SNMPRetries: -1})
		require.NoError(t, err)

		assert.Equal(t, "/var/lib/monitoring", s.Store.Dir)
		assert.Equal(t, 10*time.Minute, s.Store.MaxAge.Std())
		assert.Equal(t, snmp.Version1, s.SNMP.Version)
		assert.Equal(t, 3, s.SNMP.Retries)
		assert.Equal(t, 2*time.Second, s.SNMP.Timeout.Std())
		assert.Equal(t, "public", s.SNMP.Community)
	})

	t.Run("flags override the file", func(t *testing.T) {
		s, err := LoadSettings(context.Background(), &Options{
			Config:      path,
			Debug:       true,
			Store:       store.BackendMemory,
			StoreDir:    "/override",
			MaxAge:      time.Hour,
			SNMPRetries: 0,
			SNMPVersion: snmp.Version2c,
		})
		require.NoError(t, err)

		assert.True(t, s.Logging.Debug)
		assert.Equal(t, store.BackendMemory, s.Store.Backend)
		assert.Equal(t, "/override", s.Store.Dir)
		assert.Equal(t, time.Hour, s.Store.MaxAge.Std())
		assert.Equal(t, 0, s.SNMP.Retries)
		assert.Equal(t, snmp.Version2c, s.SNMP.Version)
	})

	t.Run("defaults without a file", func(t *testing.T) {
		s, err := LoadSettings(context.Background(), &Options{SNMPRetries: -1})
		require.NoError(t, err)

		assert.Equal(t, DefaultSettings().Store, s.Store)
		assert.Equal(t, 1, s.SNMP.Retries)
	})

	t.Run("invalid snmp version", func(t *testing.T) {
		_, err := LoadSettings(context.Background(), &Options{SNMPRetries: -1, SNMPVersion: "4"})
		require.ErrorIs(t, err, snmp.ErrUnsupportedVersion)
	})
}

func TestEnvClosesWhatItOpened(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := snmp.NewMockClient(ctrl)
	st := store.NewMockStore(ctrl)

	gomock.InOrder(
		st.EXPECT().Close().Return(nil),
		client.EXPECT().Close().Return(errors.New("already closed")),
	)

	opened := 0
	env := &Env{
		Settings: DefaultSettings(),
		Log:      logger.NewTestLogger(),
		Dial: func(context.Context, snmp.Config) (snmp.Client, error) {
			return client, nil
		},
		openStore: func(context.Context, store.Config, logger.Logger) (store.Store, error) {
			opened++
			return st, nil
		},
	}

	ctx := context.Background()

	_, err := env.Client(ctx, "sw1", 0, "")
	require.NoError(t, err)

	for range 2 {
		s, err := env.Store(ctx)
		require.NoError(t, err)
		assert.Same(t, st, s)
	}

	assert.Equal(t, 1, opened)

	env.Close()
}

func TestJVMBuild(t *testing.T) {
	var stderr bytes.Buffer

	env := &Env{Settings: DefaultSettings(), Log: logger.NewTestLogger(), Stderr: &stderr}

	p := JVM()
	p.Options.(*jvmOptions).PluginDir = "/usr/lib/nagios/plugins"

	check, err := p.Build(context.Background(), env, []string{"app1:8161", "", "0,25,50"})
	require.NoError(t, err)

	j, ok := check.(*checks.JVM)
	require.True(t, ok)

	assert.Equal(t, "public", j.Community)
	assert.False(t, j.CPU.Enabled)
	assert.True(t, j.Memory.Enabled)
	assert.Equal(t, "75,100", j.Threads.Thresholds.String())
	assert.Equal(t, "/usr/lib/nagios/plugins", j.Dir)
	assert.Equal(t, checks.ExecRunner{Stderr: &stderr}, j.Runner)
}
