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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCA(t *testing.T, dir string) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "monitoring test CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	path := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))

	return path
}

func TestTLSConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("disabled", func(t *testing.T) {
		assert.False(t, TLSConfig{ServerName: "nats"}.enabled())
	})

	t.Run("ca only", func(t *testing.T) {
		cfg := TLSConfig{CAFile: writeCA(t, dir), ServerName: "nats.internal"}
		require.True(t, cfg.enabled())

		tlsCfg, err := cfg.clientConfig()
		require.NoError(t, err)

		assert.NotNil(t, tlsCfg.RootCAs)
		assert.Empty(t, tlsCfg.Certificates)
		assert.Equal(t, "nats.internal", tlsCfg.ServerName)
		assert.Equal(t, uint16(tls.VersionTLS13), tlsCfg.MinVersion)
	})

	t.Run("garbage CA", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

		_, err := TLSConfig{CAFile: path}.clientConfig()
		require.ErrorIs(t, err, ErrCAParsingFailed)
	})

	t.Run("missing client certificate", func(t *testing.T) {
		_, err := TLSConfig{CertFile: filepath.Join(dir, "nope.pem"), KeyFile: filepath.Join(dir, "nope.key")}.clientConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load client certificate")
	})

	t.Run("nats store refuses a bad CA before dialing", func(t *testing.T) {
		_, err := NewNATSStore(t.Context(), NATSConfig{
			URL: "nats://127.0.0.1:1",
			TLS: TLSConfig{CAFile: filepath.Join(dir, "missing.pem")},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read CA certificate")
	})
}
