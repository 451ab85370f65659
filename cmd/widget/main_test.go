package main

import (
	"testing"

	"github.com/deepgram/chatdesk/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdDefaults(t *testing.T) {
	cmd := newRootCmd()

	server, err := cmd.Flags().GetString("server")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", server)

	transport, err := cmd.Flags().GetString("transport")
	require.NoError(t, err)
	assert.Equal(t, "http", transport)

	singleFlight, err := cmd.Flags().GetBool("single-flight")
	require.NoError(t, err)
	assert.False(t, singleFlight)
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name      string
		opts      options
		wantErr   bool
		checkType func(t *testing.T, b widget.Backend)
	}{
		{
			name: "http",
			opts: options{server: "http://localhost:8080", transport: "http"},
			checkType: func(t *testing.T, b widget.Backend) {
				assert.IsType(t, &widget.HTTPBackend{}, b)
			},
		},
		{
			name: "websocket",
			opts: options{server: "https://chat.example.com", transport: "ws"},
			checkType: func(t *testing.T, b widget.Backend) {
				assert.IsType(t, &widget.WebSocketBackend{}, b)
			},
		},
		{
			name:    "websocket with bad scheme",
			opts:    options{server: "ftp://example.com", transport: "ws"},
			wantErr: true,
		},
		{
			name:    "unknown transport",
			opts:    options{server: "http://localhost:8080", transport: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, closeBackend, err := newBackend(&tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer closeBackend()
			tt.checkType(t, backend)
		})
	}
}
