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
	"io"
	"time"

	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/snmp"
	"github.com/jbbarth/monitoring/pkg/store"
)

// Env hands a plugin its collaborators. Anything it opens is closed once
// the check has run.
type Env struct {
	Settings Settings
	Log      logger.Logger
	Dial     snmp.Dialer
	Now      func() time.Time
	// Stderr receives the stderr of child plugins.
	Stderr   io.Writer

	openStore func(ctx context.Context, cfg store.Config, log logger.Logger) (store.Store, error)
	store     store.Store
	closers   []io.Closer
}

// Client connects to the agent at host, with port 0 meaning the configured
// one. A non-empty community overrides the settings.
func (e *Env) Client(ctx context.Context, host string, port uint16, community string) (snmp.Client, error) {
	client, err := e.Dial(ctx, e.SNMPConfig(community).WithTarget(host, port))
	if err != nil {
		return nil, err
	}

	e.closers = append(e.closers, client)

	return client, nil
}

func (e *Env) SNMPConfig(community string) snmp.Config {
	cfg := e.Settings.SNMP
	if community != "" {
		cfg.Community = community
	}

	return cfg
}

// Store opens the configured sample store on first use.
func (e *Env) Store(ctx context.Context) (store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}

	s, err := e.openStore(ctx, e.Settings.Store, e.Log)
	if err != nil {
		return nil, err
	}

	e.store = s
	e.closers = append(e.closers, s)

	return s, nil
}

func (e *Env) MaxAge() time.Duration {
	return e.Settings.Store.MaxAge.Std()
}

func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			e.Log.Warn().Err(err).Msg("Failed to close")
		}
	}

	e.closers = nil
}
