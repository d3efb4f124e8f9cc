package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BILLKHATA_API_URL", "https://api.example.com")
	t.Setenv("BILLKHATA_API_KEY", "test-key")
	t.Setenv("KHATA_ID", "khata-1")
	t.Setenv("KHATA_USER_ID", "user-1")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 10, cfg.API.TimeoutSeconds)
	assert.Equal(t, "redis", cfg.Realtime.Transport)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 100, cfg.Realtime.EventBufferSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
	assert.Equal(t, "khata-1", cfg.Room.KhataID)
}

func TestLoadConfigWebsocketTransport(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("REALTIME_TRANSPORT", "websocket")
	t.Setenv("REALTIME_WEBSOCKET_URL", "wss://rt.example.com/subscribe")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "websocket", cfg.Realtime.Transport)
	assert.Equal(t, "wss://rt.example.com/subscribe", cfg.Realtime.WebsocketURL)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name: "missing api url",
			setup: func(t *testing.T) {
				t.Setenv("KHATA_ID", "khata-1")
			},
		},
		{
			name: "missing khata id",
			setup: func(t *testing.T) {
				t.Setenv("BILLKHATA_API_URL", "https://api.example.com")
			},
		},
		{
			name: "unknown transport",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("REALTIME_TRANSPORT", "carrier-pigeon")
			},
		},
		{
			name: "websocket transport without gateway url",
			setup: func(t *testing.T) {
				setRequiredEnv(t)
				t.Setenv("REALTIME_TRANSPORT", "websocket")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
