package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{
				"-d", "/tmp/s.db", "-b", "postgres", "-r", "postgres://x", "-a", "gw:1",
				"-i", "30", "-o", "2", "-t", "9", "-u", "ana", "-p", "till-1", "-l", "",
			},
			expected: &Config{
				DatabasePath:        "/tmp/s.db",
				RemoteBackend:       BackendPostgres,
				RemoteDSN:           "postgres://x",
				GatewayAddr:         "gw:1",
				SyncInterval:        30 * time.Second,
				OnlineCheckInterval: 2 * time.Second,
				RemoteTimeout:       9 * time.Second,
				Username:            "ana",
				ClientInfo:          "till-1",
			},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"-x", "1", "-b", "memory"},
			expected: &Config{RemoteBackend: BackendMemory},
		},
		{
			name:     "zero interval disables background sync",
			args:     []string{"-i", "0"},
			expected: &Config{},
		},
		{
			name:        "bad interval panics",
			args:        []string{"-i", "often"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)
			cfg := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
