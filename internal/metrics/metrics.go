// Package metrics records the orchestrator's operational counters
// using hashicorp/go-metrics, the same library the pack's cosmos/evm
// keeper wraps with cosmos-sdk's telemetry helpers in
// x/vm/keeper/msg_server.go. Metrics export over HTTP is a Non-goal
// per spec.md; this package only records counters and exposes them
// through an in-memory sink an operator can wire into their own
// collector.
package metrics

import (
	"context"
	"time"

	gometrics "github.com/hashicorp/go-metrics"
)

// New builds a go-metrics in-memory sink, registers it as the global
// metrics sink under serviceName, and returns it. This package does
// not start an HTTP server.
func New(serviceName string) *gometrics.InmemSink {
	sink := gometrics.NewInmemSink(10*time.Second, time.Minute)
	cfg := gometrics.DefaultConfig(serviceName)
	cfg.EnableHostname = false
	gometrics.NewGlobal(cfg, sink)
	return sink
}

// IncrRPCError increments the RPC error counter for the named loop
// ("oracle", "signer", "relayer"), per spec.md §7's RpcError
// telemetry requirement.
func IncrRPCError(loop string) {
	gometrics.IncrCounterWithLabels([]string{"rpc_errors"}, 1, []gometrics.Label{{Name: "loop", Value: loop}})
}

// IncrValidationError increments the validation error counter for the
// named loop, per spec.md §7's ValidationError telemetry requirement.
func IncrValidationError(loop string) {
	gometrics.IncrCounterWithLabels([]string{"validation_errors"}, 1, []gometrics.Label{{Name: "loop", Value: loop}})
}

// IncrNonceStall increments the counter for an oracle iteration whose
// claim transaction failed to advance last_event_nonce.
func IncrNonceStall() {
	gometrics.IncrCounter([]string{"oracle", "nonce_stall"}, 1)
}

// ObserveIterationDuration records how long one loop iteration took.
func ObserveIterationDuration(loop string, d time.Duration) {
	gometrics.AddSampleWithLabels([]string{"iteration_duration_ms"}, float32(d.Milliseconds()), []gometrics.Label{{Name: "loop", Value: loop}})
}

// WithTiming runs fn and records its duration under loop's iteration
// timer regardless of whether fn returns an error.
func WithTiming(ctx context.Context, loop string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	ObserveIterationDuration(loop, time.Since(start))
	return err
}
