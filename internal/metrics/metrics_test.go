package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cosmos-bridge/orchestrator/internal/metrics"
)

func TestNew_ReturnsUsableSink(t *testing.T) {
	sink := metrics.New("test_service")
	require.NotNil(t, sink)
}

func TestWithTiming_PropagatesUnderlyingError(t *testing.T) {
	wantErr := errors.New("boom")
	err := metrics.WithTiming(context.Background(), "oracle", func(ctx context.Context) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestWithTiming_RunsFnExactlyOnce(t *testing.T) {
	calls := 0
	err := metrics.WithTiming(context.Background(), "signer", func(ctx context.Context) error {
		calls++
		time.Sleep(time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestCounters_DoNotPanic(t *testing.T) {
	require.NotPanics(t, func() {
		metrics.IncrRPCError("oracle")
		metrics.IncrValidationError("relayer")
		metrics.IncrNonceStall()
		metrics.ObserveIterationDuration("signer", 5*time.Millisecond)
	})
}
