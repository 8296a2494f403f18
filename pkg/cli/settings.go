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

// Package cli is the command-line shell shared by the plugin binaries:
// option parsing, settings, logging and the sample store.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jbbarth/monitoring/pkg/config"
	"github.com/jbbarth/monitoring/pkg/logger"
	"github.com/jbbarth/monitoring/pkg/snmp"
	"github.com/jbbarth/monitoring/pkg/store"
)

// Settings is the configuration document of every plugin.
type Settings struct {
	Logging logger.Config `json:"logging"`
	Store   store.Config  `json:"store"`
	SNMP    snmp.Config   `json:"snmp"`
}

func DefaultSettings() Settings {
	return Settings{
		Logging: *logger.DefaultConfig(),
		Store:   store.DefaultConfig(),
		SNMP:    snmp.DefaultConfig(),
	}
}

func (s *Settings) Validate() error {
	if err := s.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	if err := s.SNMP.Validate(); err != nil {
		return fmt.Errorf("snmp: %w", err)
	}

	return nil
}

// Options are accepted by every plugin ahead of its positional arguments.
type Options struct {
	Config      string        `short:"c" long:"config" description:"JSON settings file"`
	Debug       bool          `short:"d" long:"debug" description:"Log debug details on stderr"`
	Store       string        `long:"store" description:"Sample store backend" choice:"file" choice:"memory" choice:"nats" choice:"postgres"`
	StoreDir    string        `long:"store-dir" description:"Directory of the file store"`
	MaxAge      time.Duration `long:"max-age" description:"Ignore previous samples older than this"`
	SNMPTimeout time.Duration `long:"snmp-timeout" description:"SNMP request timeout"`
	SNMPRetries int           `long:"snmp-retries" description:"SNMP retries" default:"-1"`
	SNMPVersion string        `long:"snmp-version" description:"SNMP version" choice:"1" choice:"2c" choice:"3"`
	Version     bool          `short:"V" long:"version" description:"Print the version and exit"`
}

// apply lets command-line options override the settings file.
func (o *Options) apply(s *Settings) {
	if o.Debug {
		s.Logging.Debug = true
	}

	if o.Store != "" {
		s.Store.Backend = o.Store
	}

	if o.StoreDir != "" {
		s.Store.Dir = o.StoreDir
	}

	if o.MaxAge > 0 {
		s.Store.MaxAge = config.Duration(o.MaxAge)
	}

	if o.SNMPTimeout > 0 {
		s.SNMP.Timeout = config.Duration(o.SNMPTimeout)
	}

	if o.SNMPRetries >= 0 {
		s.SNMP.Retries = o.SNMPRetries
	}

	if o.SNMPVersion != "" {
		s.SNMP.Version = o.SNMPVersion
	}
}

// LoadSettings reads the settings file or environment named by CONFIG_SOURCE
// and applies the command-line overrides.
func LoadSettings(ctx context.Context, opts *Options) (Settings, error) {
	settings := DefaultSettings()

	if err := config.NewConfig(nil).LoadAndValidate(ctx, opts.Config, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to load config: %w", err)
	}

	opts.apply(&settings)

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}
