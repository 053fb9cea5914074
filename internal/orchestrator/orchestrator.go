// Package orchestrator wires identity, connections, startup
// validation, and the three concurrent loops together into the
// process supervisor described in spec.md §4.6. Grounded in the
// pack's use of golang.org/x/sync/errgroup for concurrent JSON-RPC
// handler groups (zeta-chain-evm/server/json_rpc.go): the first loop
// to return an *bridge.UnrecoverableError cancels the group's
// context, and every other error is caught and retried inside each
// loop's own wrapper before it would ever reach the errgroup.
package orchestrator

import (
	"context"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/oracle"
	"github.com/cosmos-bridge/orchestrator/internal/prices"
	"github.com/cosmos-bridge/orchestrator/internal/relayer"
	"github.com/cosmos-bridge/orchestrator/internal/signer"
	"github.com/cosmos-bridge/orchestrator/internal/startup"
)

// Options bundles everything the supervisor needs beyond identity and
// connections: whether the relayer loop runs at all, its
// configuration, the event signatures and log decoder the oracle
// needs, and the relayer's tx builder and gas/price adapters.
type Options struct {
	RelayerEnabled    bool
	RelayerConfig     relayer.Config
	EventSignatures   oracle.Signatures
	LogDecoder        oracle.LogDecoder
	RelayerTxBuilder  relayer.TxBuilder
	GasEstimator      relayer.GasEstimator
	PriceOracle       prices.Oracle
	CLIBridgeContract *ethcommon.Address
	// RPCTimeout bounds every RPC call each loop makes in a single
	// iteration. Per spec.md §5 it must be no larger than the fastest
	// configured loop period, computed by the caller as
	// min(oracle.IterationPeriod, signer.IterationPeriod,
	// RelayerConfig.LoopSpeed), so no transaction can outlive one loop
	// period.
	RPCTimeout time.Duration
}

// Run performs startup validation and then runs the oracle, signer,
// and (if enabled) relayer loops concurrently until ctx is cancelled
// or one of them returns an unrecoverable error, which is propagated
// to the caller so main can exit with a non-zero status.
func Run(ctx context.Context, log zerolog.Logger, conns *bridge.Connections, id *bridge.OrchestratorIdentity, opts Options) error {
	params, err := startup.Run(ctx, log, conns, id, opts.CLIBridgeContract)
	if err != nil {
		return err
	}
	id.BridgeContract = params.BridgeContract
	id.BridgeID = params.BridgeID

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return oracle.Loop(groupCtx, log.With().Str("loop", "oracle").Logger(), conns, id, opts.EventSignatures, opts.LogDecoder, 0, opts.RPCTimeout)
	})

	group.Go(func() error {
		return signer.Loop(groupCtx, log.With().Str("loop", "signer").Logger(), conns, id, opts.RPCTimeout)
	})

	if opts.RelayerEnabled {
		group.Go(func() error {
			return relayer.Loop(groupCtx, log.With().Str("loop", "relayer").Logger(), conns, id, params, opts.RelayerConfig, opts.RelayerTxBuilder, opts.GasEstimator, opts.PriceOracle, opts.RPCTimeout)
		})
	}

	return group.Wait()
}
