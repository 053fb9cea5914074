// Package startup implements the one-time validation pass the
// orchestrator runs after connection bring-up and before any loop
// starts: delegate-key consistency, fee/balance checks, and bridge
// parameter resolution. It is ported from check_delegate_addresses,
// wait_for_cosmos_node_ready, and the inline fee/balance/parameter
// checks in the original orchestrator's gbt/src/orchestrator.rs.
package startup

import (
	"context"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
)

const syncPollInterval = 10 * time.Second

// WaitForCosmosReady polls the Cosmos node's sync status every 10
// seconds until it reports caught up. Transport errors are logged as
// warnings and retried indefinitely; there is no timeout, matching
// spec.md §4.2 step 1.
func WaitForCosmosReady(ctx context.Context, q bridge.CosmosQueryClient, log zerolog.Logger) error {
	ticker := time.NewTicker(syncPollInterval)
	defer ticker.Stop()

	for {
		syncing, err := q.SyncingStatus(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to query cosmos sync status, retrying")
		} else if !syncing {
			return nil
		} else {
			log.Info().Msg("cosmos node is still catching up, waiting")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CheckDelegateAddresses verifies that evmAddr and cosmosAddr are
// mutually registered as a delegate pair with the bridge module, per
// spec.md §4.2 step 2: both records must exist, both must name the
// same validator operator, and each must reverse-resolve to the
// address the other side was queried with.
func CheckDelegateAddresses(ctx context.Context, q bridge.CosmosQueryClient, evmAddr ethcommon.Address, cosmosAddr sdk.AccAddress) error {
	byEth, ethErr := q.DelegateKeyByEth(ctx, evmAddr)
	byOrch, orchErr := q.DelegateKeyByOrchestrator(ctx, cosmosAddr)

	ethRegistered := ethErr == nil
	orchRegistered := orchErr == nil

	switch {
	case !ethRegistered && !orchRegistered:
		return bridge.NewUnrecoverableError(
			"this validator has not registered delegate keys: neither the EVM address %s nor the Cosmos address %s is known to the bridge module; run the delegate key registration command sequence before starting the orchestrator",
			evmAddr, cosmosAddr,
		)
	case !ethRegistered && orchRegistered:
		return bridge.NewUnrecoverableError(
			"your EVM delegate is wrong: the bridge module has no record for EVM address %s, but the Cosmos address %s is registered to validator %s",
			evmAddr, cosmosAddr, byOrch.ValidatorAddress,
		)
	case ethRegistered && !orchRegistered:
		return bridge.NewUnrecoverableError(
			"your Cosmos delegate is wrong: the bridge module has no record for Cosmos address %s, but the EVM address %s is registered to validator %s",
			cosmosAddr, evmAddr, byEth.ValidatorAddress,
		)
	}

	if byEth.ValidatorAddress != byOrch.ValidatorAddress {
		return bridge.NewUnrecoverableError(
			"both your EVM delegate and your Cosmos delegate are wrong: EVM address %s is registered to validator %s but Cosmos address %s is registered to validator %s — these must be the same validator",
			evmAddr, byEth.ValidatorAddress, cosmosAddr, byOrch.ValidatorAddress,
		)
	}
	if byEth.OrchestratorAddress.String() != cosmosAddr.String() {
		return bridge.NewUnrecoverableError(
			"your EVM delegate is wrong: EVM address %s reverse-resolves to orchestrator address %s, not the configured %s",
			evmAddr, byEth.OrchestratorAddress, cosmosAddr,
		)
	}
	if byOrch.EvmAddress != evmAddr {
		return bridge.NewUnrecoverableError(
			"your Cosmos delegate is wrong: Cosmos address %s reverse-resolves to EVM address %s, not the configured %s",
			cosmosAddr, byOrch.EvmAddress, evmAddr,
		)
	}
	return nil
}

// CheckFeeBalance requires the Cosmos delegate to hold a non-zero
// balance of the fee denom. Insufficient balance is fatal per spec.md
// §4.2 step 3.
func CheckFeeBalance(ctx context.Context, q bridge.CosmosQueryClient, addr sdk.AccAddress, fee sdk.Coin) error {
	bal, err := q.AccountBalance(ctx, addr, fee.Denom)
	if err != nil {
		return bridge.NewUnrecoverableError("failed to query %s balance for %s: %v", fee.Denom, addr, err)
	}
	if bal.IsZero() {
		return bridge.NewUnrecoverableError(
			"the Cosmos delegate %s holds no %s; fund it before starting the orchestrator so it can pay transaction fees",
			addr, fee.Denom,
		)
	}
	return nil
}

// CheckEthBalance requires the EVM delegate to hold a non-zero ETH
// balance. Insufficient balance is fatal per spec.md §4.2 step 3.
func CheckEthBalance(ctx context.Context, e bridge.EvmClient, addr ethcommon.Address) error {
	bal, err := e.Balance(ctx, addr)
	if err != nil {
		return bridge.NewUnrecoverableError("failed to query ETH balance for %s: %v", addr, err)
	}
	if bal.Sign() <= 0 {
		return bridge.NewUnrecoverableError(
			"the EVM delegate %s holds no ETH; fund it with gas money before starting the orchestrator",
			addr,
		)
	}
	return nil
}

// ResolveBridgeContract decides which bridge contract address the
// orchestrator uses: an operator-supplied CLI override takes
// precedence, otherwise the chain parameter is used; a zero-address
// chain parameter with no override is fatal, per spec.md §4.2 step 4.
func ResolveBridgeContract(ctx context.Context, q bridge.CosmosQueryClient, cliOverride *ethcommon.Address) (ethcommon.Address, error) {
	if cliOverride != nil {
		return *cliOverride, nil
	}
	params, err := q.BridgeParams(ctx)
	if err != nil {
		return ethcommon.Address{}, bridge.NewUnrecoverableError("failed to fetch bridge module parameters: %v", err)
	}
	if params.BridgeContract == (ethcommon.Address{}) {
		return ethcommon.Address{}, bridge.NewUnrecoverableError(
			"the bridge module has no bridge_contract parameter set and none was supplied on the command line; pass --gravity-contract-address explicitly",
		)
	}
	return params.BridgeContract, nil
}

// Run executes the full startup validation sequence in order, failing
// fast on the first unrecoverable condition. It returns the resolved
// bridge parameters for the caller to thread into the three loops.
func Run(ctx context.Context, log zerolog.Logger, conns *bridge.Connections, id *bridge.OrchestratorIdentity, cliBridgeContract *ethcommon.Address) (bridge.BridgeParams, error) {
	if err := WaitForCosmosReady(ctx, conns.CosmosQuery, log); err != nil {
		return bridge.BridgeParams{}, err
	}
	log.Info().Msg("cosmos node is caught up")

	evmAddr := id.EvmAddress()
	cosmosAddr := id.CosmosAddress()

	if err := CheckDelegateAddresses(ctx, conns.CosmosQuery, evmAddr, cosmosAddr); err != nil {
		return bridge.BridgeParams{}, err
	}
	log.Info().Str("evm", evmAddr.Hex()).Str("cosmos", cosmosAddr.String()).Msg("delegate keys verified")

	if err := CheckFeeBalance(ctx, conns.CosmosQuery, cosmosAddr, id.Fee); err != nil {
		return bridge.BridgeParams{}, err
	}
	if err := CheckEthBalance(ctx, conns.Evm, evmAddr); err != nil {
		return bridge.BridgeParams{}, err
	}
	log.Info().Msg("delegate balances verified")

	contract, err := ResolveBridgeContract(ctx, conns.CosmosQuery, cliBridgeContract)
	if err != nil {
		return bridge.BridgeParams{}, err
	}
	params, err := conns.CosmosQuery.BridgeParams(ctx)
	if err != nil {
		return bridge.BridgeParams{}, bridge.NewUnrecoverableError("failed to fetch bridge module parameters: %v", err)
	}
	params.BridgeContract = contract
	log.Info().Str("bridge_contract", contract.Hex()).Uint64("power_threshold", params.PowerThreshold).Msg("bridge parameters resolved")

	return params, nil
}
