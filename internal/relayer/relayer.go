// Package relayer implements the relayer loop: submitting
// sufficiently-signed valset updates, batches, and logic calls to the
// EVM bridge contract so outbound state settles on chain. Grounded in
// the teacher's relayFromCosmosToEth in cmd/relay_tx.go for the
// DynamicFeeTx construction and signing pattern, and in
// original_source/orchestrator/gravity_utils/src/prices.rs for the
// profitability check (internal/prices).
package relayer

import (
	"context"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/prices"
)

// BatchRequestMode governs whether the relayer additionally asks the
// Cosmos module to create new outbound batches after relaying, per
// spec.md §4.5.
type BatchRequestMode int

const (
	BatchRequestModeNone BatchRequestMode = iota
	BatchRequestModeProfitableOnly
	BatchRequestModeAlways
)

// ParseBatchRequestMode parses the config string (None/ProfitableOnly/Always).
func ParseBatchRequestMode(s string) (BatchRequestMode, error) {
	switch s {
	case "", "None":
		return BatchRequestModeNone, nil
	case "ProfitableOnly":
		return BatchRequestModeProfitableOnly, nil
	case "Always":
		return BatchRequestModeAlways, nil
	default:
		return 0, bridge.NewUnrecoverableError("unrecognized relayer.batch_request_mode %q: must be one of None, ProfitableOnly, Always", s)
	}
}

// Config holds the relayer loop's operator-configurable knobs from
// spec.md §4.5/§6.
type Config struct {
	LoopSpeed        time.Duration
	BatchRequestMode BatchRequestMode
	// RequestDenoms lists the token denoms eligible for batch requests
	// when BatchRequestMode is not None.
	RequestDenoms []string
}

// relayGasLimit is the fixed gas limit attached to every relay
// transaction, matching the teacher's GetTransactOpts in
// cmd/utils/eth_helpers.go (txOpts.GasLimit = 1_500_000).
const relayGasLimit = 1_500_000

// GasEstimator quotes the EVM gas cost in wei of relaying a given
// payload, used by the profitability check, and the EIP-1559 priority
// fee every submitted transaction's GasTipCap is built from. Production
// code backs this with ethclient.SuggestGasPrice/SuggestGasTipCap;
// tests substitute fixed quotes.
type GasEstimator interface {
	EstimateGasCostWei(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
}

// gasCaps derives GasFeeCap/GasTipCap from the estimator's quotes,
// matching the teacher's GetTransactOpts pattern: the tip comes
// straight from SuggestGasTipCap, and the fee cap covers the
// per-gas-unit price implied by gasCostWei plus that tip, so a
// transaction is never underpriced relative to the cost the
// profitability check itself was computed against.
func gasCaps(gasCostWei, gasTipCap *big.Int) (gasFeeCap *big.Int) {
	pricePerGas := new(big.Int).Div(gasCostWei, big.NewInt(relayGasLimit))
	return new(big.Int).Add(pricePerGas, gasTipCap)
}

// TxBuilder constructs the calldata for each relayable item kind. The
// bridge contract ABI is an external collaborator, exactly as for
// internal/oracle's LogDecoder.
type TxBuilder interface {
	BuildValsetUpdate(v bridge.SignedValset) ([]byte, error)
	BuildSubmitBatch(b bridge.SignedBatch) ([]byte, error)
	BuildSubmitLogicCall(c bridge.SignedLogicCall) ([]byte, error)
}

// Loop drives the relayer forever until ctx is cancelled or an
// unrecoverable error occurs. It only runs at all when
// orchestrator.relayer_enabled is true; the caller is responsible for
// not launching it otherwise. rpcTimeout bounds every iteration's RPC
// calls so a stalled node can never hold a call open past the shared
// deadline computed in cmd/orchestrator/main.go, per spec.md §5.
func Loop(ctx context.Context, log zerolog.Logger, conns *bridge.Connections, id *bridge.OrchestratorIdentity, params bridge.BridgeParams, cfg Config, builder TxBuilder, gas GasEstimator, oracle prices.Oracle, rpcTimeout time.Duration) error {
	errCount := 0
	for {
		start := time.Now()

		iterCtx, cancel := context.WithTimeout(ctx, rpcTimeout)
		err := RunIteration(iterCtx, conns, id, params, cfg, builder, gas, oracle)
		cancel()
		if err != nil {
			if bridge.IsUnrecoverable(err) {
				return err
			}
			errCount++
			log.Warn().Err(err).Int("error_count", errCount).Msg("relayer iteration failed, retrying next period")
		}

		elapsed := time.Since(start)
		if elapsed < cfg.LoopSpeed {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.LoopSpeed - elapsed):
			}
		}
	}
}

// RunIteration executes one relayer pass: query pending relay items,
// filter by power threshold and (optionally) profitability, submit
// the qualifying EVM transactions, and optionally request new
// outbound batches, per spec.md §4.5.
func RunIteration(ctx context.Context, conns *bridge.Connections, id *bridge.OrchestratorIdentity, params bridge.BridgeParams, cfg Config, builder TxBuilder, gas GasEstimator, oracle prices.Oracle) error {
	pending, err := conns.CosmosQuery.PendingRelayItems(ctx)
	if err != nil {
		return err
	}

	gasCostWei, err := gas.EstimateGasCostWei(ctx)
	if err != nil {
		return err
	}
	gasTipCap, err := gas.SuggestGasTipCap(ctx)
	if err != nil {
		return err
	}
	gasFeeCap := gasCaps(gasCostWei, gasTipCap)

	nonce, err := conns.Evm.PendingNonceAt(ctx, id.EvmAddress())
	if err != nil {
		return err
	}

	for _, v := range pending.Valsets {
		if v.Power <= params.PowerThreshold {
			continue
		}
		calldata, err := builder.BuildValsetUpdate(v)
		if err != nil {
			return bridge.NewValidationError("failed to build valset update calldata for nonce %d: %v", v.Valset.Nonce, err)
		}
		if err := submit(ctx, conns.Evm, id, params.BridgeContract, calldata, nonce, gasFeeCap, gasTipCap); err != nil {
			return err
		}
		nonce++
	}

	for _, b := range pending.Batches {
		if b.Power <= params.PowerThreshold {
			continue
		}
		if cfg.BatchRequestMode == BatchRequestModeProfitableOnly {
			rewardWei, err := oracle.QuoteInWei(ctx, b.Batch.Erc20, big.NewInt(1))
			if err != nil {
				return err
			}
			if !prices.IsProfitable(rewardWei, gasCostWei) {
				continue
			}
		}
		calldata, err := builder.BuildSubmitBatch(b)
		if err != nil {
			return bridge.NewValidationError("failed to build batch calldata for nonce %d: %v", b.Batch.BatchNonce, err)
		}
		if err := submit(ctx, conns.Evm, id, params.BridgeContract, calldata, nonce, gasFeeCap, gasTipCap); err != nil {
			return err
		}
		nonce++
	}

	for _, c := range pending.LogicCalls {
		if c.Power <= params.PowerThreshold {
			continue
		}
		calldata, err := builder.BuildSubmitLogicCall(c)
		if err != nil {
			return bridge.NewValidationError("failed to build logic call calldata for invalidation id %x: %v", c.Call.InvalidationID, err)
		}
		if err := submit(ctx, conns.Evm, id, params.BridgeContract, calldata, nonce, gasFeeCap, gasTipCap); err != nil {
			return err
		}
		nonce++
	}

	if cfg.BatchRequestMode != BatchRequestModeNone {
		if err := requestNewBatches(ctx, conns, id, cfg); err != nil {
			return err
		}
	}

	return nil
}

// submit builds, signs with the EVM delegate key, and sends a
// DynamicFeeTx carrying calldata to the bridge contract, the same
// transaction shape and GetTransactOpts-style fee construction the
// teacher's relayFromCosmosToEth builds: a real pending nonce so two
// items relayed in the same iteration don't collide, and GasFeeCap/
// GasTipCap derived from the gas estimator rather than left at zero.
func submit(ctx context.Context, evm bridge.EvmClient, id *bridge.OrchestratorIdentity, contract ethcommon.Address, calldata []byte, nonce uint64, gasFeeCap, gasTipCap *big.Int) error {
	chainID, err := evm.ChainID(ctx)
	if err != nil {
		return err
	}

	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(chainID),
		Nonce:     nonce,
		To:        &contract,
		Data:      calldata,
		Gas:       relayGasLimit,
		GasFeeCap: gasFeeCap,
		GasTipCap: gasTipCap,
	})

	signer := ethtypes.NewLondonSigner(new(big.Int).SetUint64(chainID))
	signedTx, err := ethtypes.SignTx(tx, signer, id.EvmSigningKey)
	if err != nil {
		return bridge.NewValidationError("failed to sign relay transaction: %v", err)
	}

	if err := evm.SendTransaction(ctx, signedTx); err != nil {
		return err
	}
	return nil
}

// requestNewBatches asks the Cosmos module to build new outbound
// batches for each eligible denom, after first verifying the Cosmos
// fee balance is sufficient, per spec.md §4.5's batch-request-mode
// requirement.
func requestNewBatches(ctx context.Context, conns *bridge.Connections, id *bridge.OrchestratorIdentity, cfg Config) error {
	bal, err := conns.CosmosQuery.AccountBalance(ctx, id.CosmosAddress(), id.Fee.Denom)
	if err != nil {
		return err
	}
	if bal.Amount.LT(id.Fee.Amount) {
		return bridge.NewValidationError("insufficient %s balance to request new batches: have %s, need at least %s", id.Fee.Denom, bal.Amount, id.Fee.Amount)
	}

	for _, denom := range cfg.RequestDenoms {
		if _, err := conns.CosmosBroadcast.SendRequestBatchTx(ctx, id, denom); err != nil {
			return err
		}
	}
	return nil
}
