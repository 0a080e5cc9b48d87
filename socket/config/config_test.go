/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package config_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"

	libptc "github.com/nabbar/netcore/network/protocol"
	"github.com/nabbar/netcore/socket/config"
)

func TestClientValidate(t *testing.T) {
	cases := []struct {
		name    string
		c       config.Client
		wantErr bool
	}{
		{"tcp valid", config.Client{Network: libptc.NetworkTCP, Address: "localhost:8080"}, false},
		{"tcp invalid address", config.Client{Network: libptc.NetworkTCP, Address: "not-an-address"}, true},
		{"unix valid", config.Client{Network: libptc.NetworkUnix, Address: "/tmp/test.sock"}, false},
		{"unix empty path", config.Client{Network: libptc.NetworkUnix, Address: ""}, true},
		{"no network", config.Client{Address: "localhost:8080"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.c.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestServerValidateRequiresMaxConnections(t *testing.T) {
	s := config.Default()
	s.Network = libptc.NetworkTCP
	s.Address = ":8080"

	if err := s.Validate(); err == nil {
		t.Fatal("Validate() with MaxConnections=0 should fail")
	}

	s.MaxConnections = 100
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestServerValidateRejectsUnknownBackend(t *testing.T) {
	s := config.Default()
	s.Network = libptc.NetworkTCP
	s.Address = ":8080"
	s.MaxConnections = 10
	s.NotifierBackend = "bogus"

	if err := s.Validate(); err == nil {
		t.Fatal("Validate() with an unknown notifier_backend should fail")
	}
}

func TestLoadDecodesDurationsAndProtocol(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	raw := []byte(`
network: tcp4
address: "0.0.0.0:9000"
max_connections: 50
recv_timeout_seconds: "90s"
heartbeat_seconds: "30s"
accept_timeout_seconds: "1m"
overload_wait_seconds: "5s"
acceptor_threads: 4
notifier_backend: auto
`)
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		t.Fatalf("ReadConfig error: %v", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Network != libptc.NetworkTCP4 {
		t.Errorf("Network = %v, want NetworkTCP4", cfg.Network)
	}
	if cfg.MaxConnections != 50 {
		t.Errorf("MaxConnections = %d, want 50", cfg.MaxConnections)
	}
	if cfg.RecvTimeout.Time() != 90*time.Second {
		t.Errorf("RecvTimeout = %v, want 90s", cfg.RecvTimeout.Time())
	}
	if cfg.AcceptorThreads != 4 {
		t.Errorf("AcceptorThreads = %d, want 4", cfg.AcceptorThreads)
	}
}
