// Package signer implements the eth signer loop: signing, with the
// EVM delegate key, the bridge-contract payloads the Cosmos bridge
// module currently has pending this validator's signature. Grounded
// in the same source tree's eth_signer module described in spec.md
// §4.4, with the hash construction done the way the teacher's
// Ethereum helpers use go-ethereum's crypto and abi packages.
package signer

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
)

// IterationPeriod is the nominal eth signer loop period from spec.md
// §4.4.
const IterationPeriod = 11 * time.Second

var (
	uint256Type, _ = abi.NewType("uint256", "", nil)
	addressType, _ = abi.NewType("address", "", nil)
	bytes32Type, _ = abi.NewType("bytes32", "", nil)
	stringType, _  = abi.NewType("string", "", nil)
)

// Loop drives the eth signer forever until ctx is cancelled or an
// unrecoverable error occurs. rpcTimeout bounds every iteration's RPC
// calls so a stalled node can never hold a call open past the shared
// deadline computed in cmd/orchestrator/main.go, per spec.md §5.
func Loop(ctx context.Context, log zerolog.Logger, conns *bridge.Connections, id *bridge.OrchestratorIdentity, rpcTimeout time.Duration) error {
	errCount := 0
	for {
		start := time.Now()

		iterCtx, cancel := context.WithTimeout(ctx, rpcTimeout)
		err := RunIteration(iterCtx, conns, id)
		cancel()
		if err != nil {
			if bridge.IsUnrecoverable(err) {
				return err
			}
			errCount++
			log.Warn().Err(err).Int("error_count", errCount).Msg("signer iteration failed, retrying next period")
		}

		elapsed := time.Since(start)
		if elapsed < IterationPeriod {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(IterationPeriod - elapsed):
			}
		}
	}
}

// RunIteration executes the four-step algorithm of spec.md §4.4 once:
// query pending signatures, hash each payload, sign with the EVM
// delegate key, and submit the confirmations. Each kind that has any
// confirmations (valsets, batches, logic calls) goes out in its own
// Cosmos transaction; the three kinds are not bundled into one.
func RunIteration(ctx context.Context, conns *bridge.Connections, id *bridge.OrchestratorIdentity) error {
	pending, err := conns.CosmosQuery.PendingSignatures(ctx, id.CosmosAddress())
	if err != nil {
		return err
	}
	if len(pending.Valsets) == 0 && len(pending.Batches) == 0 && len(pending.LogicCalls) == 0 {
		return nil
	}

	valsetConfirms := make([]bridge.ValsetConfirm, 0, len(pending.Valsets))
	for _, v := range pending.Valsets {
		hash := ValsetHash(id.BridgeID, v)
		sig, err := sign(id, hash)
		if err != nil {
			return bridge.NewValidationError("failed to sign valset %d: %v", v.Nonce, err)
		}
		valsetConfirms = append(valsetConfirms, bridge.ValsetConfirm{Nonce: v.Nonce, Signature: sig})
	}

	batchConfirms := make([]bridge.BatchConfirm, 0, len(pending.Batches))
	for _, b := range pending.Batches {
		hash := BatchHash(id.BridgeID, b)
		sig, err := sign(id, hash)
		if err != nil {
			return bridge.NewValidationError("failed to sign batch %d: %v", b.BatchNonce, err)
		}
		batchConfirms = append(batchConfirms, bridge.BatchConfirm{BatchNonce: b.BatchNonce, Erc20: b.Erc20, Signature: sig})
	}

	logicCallConfirms := make([]bridge.LogicCallConfirm, 0, len(pending.LogicCalls))
	for _, c := range pending.LogicCalls {
		hash := LogicCallHash(id.BridgeID, c)
		sig, err := sign(id, hash)
		if err != nil {
			return bridge.NewValidationError("failed to sign logic call %x: %v", c.InvalidationID, err)
		}
		logicCallConfirms = append(logicCallConfirms, bridge.LogicCallConfirm{InvalidationID: c.InvalidationID, InvalidationNonce: c.InvalidationNonce, Signature: sig})
	}

	if len(valsetConfirms) > 0 {
		if _, err := conns.CosmosBroadcast.SendValsetConfirms(ctx, id, valsetConfirms); err != nil {
			return err
		}
	}
	if len(batchConfirms) > 0 {
		if _, err := conns.CosmosBroadcast.SendBatchConfirms(ctx, id, batchConfirms); err != nil {
			return err
		}
	}
	if len(logicCallConfirms) > 0 {
		if _, err := conns.CosmosBroadcast.SendLogicCallConfirms(ctx, id, logicCallConfirms); err != nil {
			return err
		}
	}
	return nil
}

// sign computes an Ethereum personal-sign-style signature over hash
// with the delegate EVM key. The bridge contract verifies signatures
// produced this way via ecrecover.
func sign(id *bridge.OrchestratorIdentity, hash ethcommon.Hash) ([]byte, error) {
	digest := crypto.Keccak256([]byte("\x19Ethereum Signed Message:\n32"), hash.Bytes())
	return crypto.Sign(digest, id.EvmSigningKey)
}

// ValsetHash computes the keccak-style hash the bridge contract
// verifies for a validator-set update, mixing in bridgeID to prevent
// cross-bridge replay per spec.md §4.4 step 2.
func ValsetHash(bridgeID string, v bridge.UnsignedValset) ethcommon.Hash {
	addrs := make([]ethcommon.Address, len(v.Members))
	powers := make([]*big.Int, len(v.Members))
	for i, m := range v.Members {
		addrs[i] = m.EthereumAddress
		powers[i] = new(big.Int).SetUint64(m.Power)
	}
	addressArrayType, _ := abi.NewType("address[]", "", nil)
	uint256ArrayType, _ := abi.NewType("uint256[]", "", nil)
	packed := packOrPanic(
		[]abi.Type{stringType, bytes32Type, uint256Type, addressArrayType, uint256ArrayType, addressType},
		"checkpoint", ethcommon.HexToHash(bridgeID), new(big.Int).SetUint64(v.Nonce), addrs, powers, v.RewardTo,
	)
	return crypto.Keccak256Hash(packed)
}

// BatchHash computes the keccak-style hash the bridge contract
// verifies for an outbound ERC20 batch.
func BatchHash(bridgeID string, b bridge.UnsignedBatch) ethcommon.Hash {
	packed := packOrPanic(
		[]abi.Type{stringType, bytes32Type, addressType, uint256Type},
		"transactionBatch", ethcommon.HexToHash(bridgeID), b.Erc20, new(big.Int).SetUint64(b.BatchNonce),
	)
	return crypto.Keccak256Hash(packed)
}

// LogicCallHash computes the keccak-style hash the bridge contract
// verifies for an outbound logic call.
func LogicCallHash(bridgeID string, c bridge.UnsignedLogicCall) ethcommon.Hash {
	packed := packOrPanic(
		[]abi.Type{stringType, bytes32Type, bytes32Type, uint256Type},
		"logicCall", ethcommon.HexToHash(bridgeID), ethcommon.BytesToHash(c.InvalidationID), new(big.Int).SetUint64(c.InvalidationNonce),
	)
	return crypto.Keccak256Hash(packed)
}

// packOrPanic ABI-packs values against types. The argument shapes here
// are fixed at compile time, so a packing failure indicates a bug in
// this file, not bad input.
func packOrPanic(types []abi.Type, values ...any) []byte {
	args := make(abi.Arguments, len(types))
	for i, t := range types {
		args[i] = abi.Argument{Type: t}
	}
	packed, err := args.Pack(values...)
	if err != nil {
		panic(err)
	}
	return packed
}
