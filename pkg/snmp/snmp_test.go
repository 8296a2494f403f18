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
	"context"
	"math"
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbbarth/monitoring/pkg/config"
)

func TestVariableUint64(t *testing.T) {
	tests := []struct {
		name     string
		pdu      gosnmp.SnmpPDU
		expected uint64
		wantErr  error
	}{
		{
			name:     "counter32",
			pdu:      gosnmp.SnmpPDU{Name: ".1.3.6.1.4.1.2021.11.50.0", Type: gosnmp.Counter32, Value: uint(1376927)},
			expected: 1376927,
		},
		{
			name:     "counter64 above int64",
			pdu:      gosnmp.SnmpPDU{Name: ".1.3.6.1.2.1.31.1.1.1.6.1", Type: gosnmp.Counter64, Value: uint64(math.MaxUint64 - 1)},
			expected: math.MaxUint64 - 1,
		},
		{
			name:     "integer",
			pdu:      gosnmp.SnmpPDU{Name: ".1.3.6.1.2.1.25.5.1.1.1.24631", Type: gosnmp.Integer, Value: 22352},
			expected: 22352,
		},
		{
			name:    "negative integer",
			pdu:     gosnmp.SnmpPDU{Name: ".1.2", Type: gosnmp.Integer, Value: -4},
			wantErr: ErrNegativeValue,
		},
		{
			name:    "octet string",
			pdu:     gosnmp.SnmpPDU{Name: ".1.2", Type: gosnmp.OctetString, Value: []byte("12")},
			wantErr: ErrNotNumeric,
		},
		{
			name:    "no such instance",
			pdu:     gosnmp.SnmpPDU{Name: ".1.2", Type: gosnmp.NoSuchInstance},
			wantErr: ErrNoValue,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := fromPDU(tc.pdu).Uint64()
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestVariableInt(t *testing.T) {
	v, err := fromPDU(gosnmp.SnmpPDU{Name: ".1.3.6.1.2.1.2.2.1.8.3", Type: gosnmp.Integer, Value: 2}).Int()
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = fromPDU(gosnmp.SnmpPDU{Name: ".1", Type: gosnmp.EndOfMibView}).Int()
	require.ErrorIs(t, err, ErrNoValue)
}

func TestVariableString(t *testing.T) {
	assert.Equal(t, "24631@app1.example.org",
		Variable{Type: gosnmp.OctetString, Value: []byte("24631@app1.example.org")}.String())
	assert.Equal(t, "eth0", Variable{Value: "eth0"}.String())
	assert.Equal(t, "6", Variable{Type: gosnmp.Integer, Value: 6}.String())
	assert.Empty(t, Variable{}.String())
}

func TestVariableIndex(t *testing.T) {
	idx, err := Variable{OID: ".1.3.6.1.2.1.2.2.1.1.128"}.Index()
	require.NoError(t, err)
	assert.Equal(t, 128, idx)

	_, err = Variable{OID: ".1.3.6.1.x"}.Index()
	require.ErrorIs(t, err, ErrInvalidIndex)
}

func TestVariableSuffix(t *testing.T) {
	v := Variable{OID: ".1.3.6.1.4.1.2021.11.53.0"}

	s, ok := v.Suffix(".1.3.6.1.4.1.2021.11")
	assert.True(t, ok)
	assert.Equal(t, "53.0", s)

	s, ok = v.Suffix("1.3.6.1.4.1.2021.11.53")
	assert.True(t, ok)
	assert.Equal(t, "0", s)

	_, ok = v.Suffix(".1.3.6.1.4.1.2021.1")
	assert.False(t, ok)
}

func TestSplitTarget(t *testing.T) {
	host, port, err := SplitTarget("app1:10093")
	require.NoError(t, err)
	assert.Equal(t, "app1", host)
	assert.Equal(t, uint16(10093), port)

	host, port, err = SplitTarget("app1")
	require.NoError(t, err)
	assert.Equal(t, "app1", host)
	assert.Zero(t, port)

	_, _, err = SplitTarget("app1:99999")
	require.ErrorIs(t, err, ErrInvalidTarget)

	_, _, err = SplitTarget("")
	require.ErrorIs(t, err, ErrInvalidTarget)
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	target := cfg.WithTarget("app1", 10093)
	assert.Equal(t, "app1", target.Host)
	assert.Equal(t, uint16(10093), target.Port)
	assert.Equal(t, uint16(DefaultPort), cfg.WithTarget("app1", 0).Port)

	cfg.Version = "4"
	require.ErrorIs(t, cfg.Validate(), ErrUnsupportedVersion)
}

func TestNewGoSNMP(t *testing.T) {
	ctx := context.Background()

	t.Run("v2c defaults", func(t *testing.T) {
		client, err := newGoSNMP(ctx, Config{Host: "switch-a", Community: "private"})
		require.NoError(t, err)
		assert.Equal(t, gosnmp.Version2c, client.Version)
		assert.Equal(t, uint16(DefaultPort), client.Port)
		assert.Equal(t, "private", client.Community)
		assert.Equal(t, 5*time.Second, client.Timeout)
		assert.True(t, client.ExponentialTimeout)
	})

	t.Run("v1", func(t *testing.T) {
		client, err := newGoSNMP(ctx, Config{Host: "h", Version: Version1, Timeout: config.Duration(time.Second)})
		require.NoError(t, err)
		assert.Equal(t, gosnmp.Version1, client.Version)
		assert.Equal(t, time.Second, client.Timeout)
	})

	t.Run("v3 auth priv", func(t *testing.T) {
		client, err := newGoSNMP(ctx, Config{
			Host: "h", Version: Version3, Username: "nagios",
			AuthProtocol: "sha256", AuthPassword: "a", PrivProtocol: "aes256", PrivPassword: "p",
		})
		require.NoError(t, err)
		assert.Equal(t, gosnmp.AuthPriv, client.MsgFlags)
		assert.Equal(t, gosnmp.UserSecurityModel, client.SecurityModel)

		usm, ok := client.SecurityParameters.(*gosnmp.UsmSecurityParameters)
		require.True(t, ok)
		assert.Equal(t, gosnmp.SHA256, usm.AuthenticationProtocol)
		assert.Equal(t, gosnmp.AES256, usm.PrivacyProtocol)
	})

	t.Run("v3 no auth", func(t *testing.T) {
		client, err := newGoSNMP(ctx, Config{Host: "h", Version: Version3, Username: "ro"})
		require.NoError(t, err)
		assert.Equal(t, gosnmp.NoAuthNoPriv, client.MsgFlags)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := newGoSNMP(ctx, Config{})
		require.ErrorIs(t, err, ErrMissingHost)

		_, err = newGoSNMP(ctx, Config{Host: "h", Version: "5"})
		require.ErrorIs(t, err, ErrUnsupportedVersion)
	})
}
