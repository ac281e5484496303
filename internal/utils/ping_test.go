package utils

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"http://authz.local", "authz.local:80", false},
		{"https://authz.local", "authz.local:443", false},
		{"https://authz.local:8443/path", "authz.local:8443", false},
		{"redis://cache", "cache:6379", false},
		{"ftp://files", "files:80", false},
		{"://nope", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ServiceAddress(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestPingURL(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	assert.NoError(t, Dial(context.Background(), ln.Addr().String(), time.Second))
	assert.NoError(t, PingURL(context.Background(), "http://"+ln.Addr().String(), time.Second))
}

func TestDialUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	assert.Error(t, Dial(context.Background(), addr, 200*time.Millisecond))
}
