package rpcconn_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/rpcconn"
)

// fakeProber records every address it was asked to dial, and succeeds
// only for addresses present in ok.
type fakeProber struct {
	ok      map[string]bool
	dialed  []string
}

func (f *fakeProber) Dial(ctx context.Context, addr string) (any, error) {
	f.dialed = append(f.dialed, addr)
	if !f.ok[addr] {
		return nil, errors.New("connection refused")
	}
	return addr, nil
}

func (f *fakeProber) Probe(ctx context.Context, client any) error {
	return nil
}

func TestBind_SucceedsDirectly(t *testing.T) {
	p := &fakeProber{ok: map[string]bool{"http://example.com:8080": true}}
	got, err := rpcconn.Bind(context.Background(), zerolog.Nop(), "test", "http://example.com:8080/", time.Second, p)
	require.NoError(t, err)
	require.Equal(t, "http://example.com:8080", got)
}

func TestBind_RejectsInvalidScheme(t *testing.T) {
	p := &fakeProber{}
	_, err := rpcconn.Bind(context.Background(), zerolog.Nop(), "test", "ftp://example.com", time.Second, p)
	require.Error(t, err)
	require.True(t, bridge.IsUnrecoverable(err))
}

func TestBind_LocalhostFallsBackToIPv4(t *testing.T) {
	p := &fakeProber{ok: map[string]bool{"http://127.0.0.1:9090": true}}
	got, err := rpcconn.Bind(context.Background(), zerolog.Nop(), "test", "http://localhost:9090", time.Second, p)
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:9090", got)
}

func TestBind_LocalhostFallsBackToIPv6(t *testing.T) {
	p := &fakeProber{ok: map[string]bool{"http://[::1]:9090": true}}
	got, err := rpcconn.Bind(context.Background(), zerolog.Nop(), "test", "http://localhost:9090", time.Second, p)
	require.NoError(t, err)
	require.Equal(t, "http://[::1]:9090", got)
}

func TestBind_HTTPSUpgradeFallsBackToPort443(t *testing.T) {
	p := &fakeProber{ok: map[string]bool{"https://example.com:443": true}}
	got, err := rpcconn.Bind(context.Background(), zerolog.Nop(), "test", "http://example.com", time.Second, p)
	require.NoError(t, err)
	require.Equal(t, "https://example.com:443", got)
}

func TestBind_AllFallbacksFailIsUnrecoverable(t *testing.T) {
	p := &fakeProber{}
	_, err := rpcconn.Bind(context.Background(), zerolog.Nop(), "test", "http://unreachable.example.com", time.Second, p)
	require.Error(t, err)
	require.True(t, bridge.IsUnrecoverable(err))
}
