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

package snmp

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jbbarth/monitoring/pkg/config"
)

const (
	Version1  = "1"
	Version2c = "2c"
	Version3  = "3"

	DefaultPort = 161
)

// Config describes how to reach one SNMP agent.
type Config struct {
	Host      string          `json:"host,omitempty"`
	Port      uint16          `json:"port"`
	Community string          `json:"community,omitempty"`
	Version   string          `json:"version"`
	Timeout   config.Duration `json:"timeout"`
	Retries   int             `json:"retries"`

	// SNMPv3 user security.
	Username     string `json:"username,omitempty"`
	AuthProtocol string `json:"auth_protocol,omitempty"`
	AuthPassword string `json:"auth_password,omitempty"`
	PrivProtocol string `json:"priv_protocol,omitempty"`
	PrivPassword string `json:"priv_password,omitempty"`
}

// DefaultConfig matches the snmpwalk invocation of the legacy plugins.
func DefaultConfig() Config {
	return Config{
		Port:      DefaultPort,
		Community: "public",
		Version:   Version2c,
		Timeout:   config.Duration(5 * time.Second),
		Retries:   1,
	}
}

func (c *Config) Validate() error {
	switch c.Version {
	case "", Version1, Version2c, Version3:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, c.Version)
	}
}

// WithTarget returns a copy pointed at host and port. A zero port keeps the
// configured one.
func (c Config) WithTarget(host string, port uint16) Config {
	c.Host = host
	if port != 0 {
		c.Port = port
	}

	return c
}

// SplitTarget splits "host:port". A bare host gets port 0.
func SplitTarget(target string) (string, uint16, error) {
	host, portText, err := net.SplitHostPort(target)
	if err != nil {
		// no port given
		if target == "" {
			return "", 0, fmt.Errorf("%w: empty", ErrInvalidTarget)
		}

		return target, 0, nil
	}

	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil || host == "" {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}

	return host, uint16(port), nil
}
