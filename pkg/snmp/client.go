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

//go:generate mockgen -destination=mock_client.go -package=snmp github.com/jbbarth/monitoring/pkg/snmp Client

// Package snmp reads counters and tables from SNMP agents.
package snmp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// Client is an open session with one agent.
type Client interface {
	// Walk returns every variable below root, in agent order.
	Walk(ctx context.Context, root string) ([]Variable, error)
	Get(ctx context.Context, oids ...string) ([]Variable, error)
	Close() error
}

// Dialer opens a Client. Checks take one so tests can swap the transport.
type Dialer func(ctx context.Context, cfg Config) (Client, error)

// GoSNMPClient is the Client backed by gosnmp.
type GoSNMPClient struct {
	client *gosnmp.GoSNMP
}

var _ Client = (*GoSNMPClient)(nil)

// Dial connects to the agent described by cfg.
func Dial(ctx context.Context, cfg Config) (Client, error) {
	client, err := newGoSNMP(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", cfg.Host, client.Port, err)
	}

	return &GoSNMPClient{client: client}, nil
}

func newGoSNMP(ctx context.Context, cfg Config) (*gosnmp.GoSNMP, error) {
	if cfg.Host == "" {
		return nil, ErrMissingHost
	}

	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}

	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &gosnmp.GoSNMP{
		Context:            ctx,
		Target:             cfg.Host,
		Port:               port,
		Community:          cfg.Community,
		Timeout:            timeout,
		Retries:            cfg.Retries,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     10,
		ExponentialTimeout: true,
	}

	if err := configureVersion(client, cfg); err != nil {
		return nil, err
	}

	return client, nil
}

func configureVersion(client *gosnmp.GoSNMP, cfg Config) error {
	switch cfg.Version {
	case Version1:
		client.Version = gosnmp.Version1
	case Version2c, "":
		client.Version = gosnmp.Version2c
	case Version3:
		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel

		usm := &gosnmp.UsmSecurityParameters{UserName: cfg.Username}
		client.MsgFlags = gosnmp.NoAuthNoPriv

		if cfg.AuthProtocol != "" {
			usm.AuthenticationProtocol = authProtocol(cfg.AuthProtocol)
			usm.AuthenticationPassphrase = cfg.AuthPassword
			client.MsgFlags = gosnmp.AuthNoPriv
		}

		if cfg.AuthProtocol != "" && cfg.PrivProtocol != "" {
			usm.PrivacyProtocol = privProtocol(cfg.PrivProtocol)
			usm.PrivacyPassphrase = cfg.PrivPassword
			client.MsgFlags = gosnmp.AuthPriv
		}

		client.SecurityParameters = usm
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedVersion, cfg.Version)
	}

	return nil
}

func authProtocol(name string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToUpper(name) {
	case "MD5":
		return gosnmp.MD5
	case "SHA224":
		return gosnmp.SHA224
	case "SHA256":
		return gosnmp.SHA256
	case "SHA384":
		return gosnmp.SHA384
	case "SHA512":
		return gosnmp.SHA512
	default:
		return gosnmp.SHA
	}
}

func privProtocol(name string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToUpper(name) {
	case "DES":
		return gosnmp.DES
	case "AES192":
		return gosnmp.AES192
	case "AES256":
		return gosnmp.AES256
	case "AES192C":
		return gosnmp.AES192C
	case "AES256C":
		return gosnmp.AES256C
	default:
		return gosnmp.AES
	}
}

// Walk uses GETBULK except on SNMPv1 agents, which only know GETNEXT.
func (c *GoSNMPClient) Walk(ctx context.Context, root string) ([]Variable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var vars []Variable

	walkFn := func(pdu gosnmp.SnmpPDU) error {
		vars = append(vars, fromPDU(pdu))

		return nil
	}

	var err error
	if c.client.Version == gosnmp.Version1 {
		err = c.client.Walk(root, walkFn)
	} else {
		err = c.client.BulkWalk(root, walkFn)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSNMPWalkFailed, root, err)
	}

	return vars, nil
}

func (c *GoSNMPClient) Get(ctx context.Context, oids ...string) ([]Variable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := c.client.Get(oids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSNMPGetFailed, err)
	}

	if result.Error != gosnmp.NoError {
		return nil, fmt.Errorf("%w: %s", ErrSNMPError, result.Error)
	}

	vars := make([]Variable, 0, len(result.Variables))
	for _, pdu := range result.Variables {
		vars = append(vars, fromPDU(pdu))
	}

	return vars, nil
}

func (c *GoSNMPClient) Close() error {
	if c.client.Conn == nil {
		return nil
	}

	return c.client.Conn.Close()
}
