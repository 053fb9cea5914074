// Package oracle implements the event oracle loop: observing
// bridge-contract events on the EVM chain up to a reorg-safe horizon
// and forwarding any this validator has not yet acknowledged as a
// single Cosmos claim transaction. Ported from check_for_events and
// get_block_delay in the original orchestrator's
// orchestrator/src/ethereum_event_watcher.rs.
package oracle

import (
	"context"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
)

// IterationPeriod is the nominal oracle loop period from spec.md §4.3.
const IterationPeriod = 13 * time.Second

const defaultBlockDelay = 35

// localTestnetChainIDs are the two chain ids with instant finality
// recognized by spec.md §4.3 step 2.
var localTestnetChainIDs = map[uint64]bool{15: true, 31337: true}

// BlockDelay returns the reorg-safety delay for chainID: zero for the
// recognized local testnet chain ids, 35 for everything else.
func BlockDelay(chainID uint64) uint64 {
	if localTestnetChainIDs[chainID] {
		return 0
	}
	return defaultBlockDelay
}

// Signatures names the five bridge-contract log topic-zero values the
// oracle recognizes, injected by the caller per spec.md §6 ("the
// specific 32-byte signatures are whatever the bridge contract emits;
// the core is parameterized on them as constants").
type Signatures struct {
	SentToCosmos             ethcommon.Hash
	TransactionBatchExecuted ethcommon.Hash
	ValsetUpdated            ethcommon.Hash
	ERC20Deployed            ethcommon.Hash
	LogicCallExecuted        ethcommon.Hash
}

func (s Signatures) all() []ethcommon.Hash {
	return []ethcommon.Hash{s.SentToCosmos, s.TransactionBatchExecuted, s.ValsetUpdated, s.ERC20Deployed, s.LogicCallExecuted}
}

// LogDecoder turns raw EVM logs into the five typed event variants.
// The bridge contract ABI is an external collaborator; production code
// backs this with the hand-maintained internal/bridgeabi.Decoder, tests
// with a fake.
type LogDecoder interface {
	DecodeSendToCosmos(logs []ethtypes.Log) ([]*bridge.SendToCosmosEvent, error)
	DecodeBatchExecuted(logs []ethtypes.Log) ([]*bridge.TransactionBatchExecutedEvent, error)
	DecodeValsetUpdated(logs []ethtypes.Log) ([]*bridge.ValsetUpdatedEvent, error)
	DecodeErc20Deployed(logs []ethtypes.Log) ([]*bridge.Erc20DeployedEvent, error)
	DecodeLogicCallExecuted(logs []ethtypes.Log) ([]*bridge.LogicCallExecutedEvent, error)
}

// CheckedNonces is the plain result of one oracle iteration: never
// persisted, only logged and fed back as the next iteration's
// starting_block argument.
type CheckedNonces struct {
	Horizon        uint64
	LastEventNonce uint64
}

// Loop drives the event oracle forever until ctx is cancelled or a
// single unrecoverable error occurs. Recoverable errors are logged and
// swallowed so the caller's errgroup never sees them. rpcTimeout bounds
// every iteration's RPC calls so a stalled node can never hold a call
// open past the shared deadline computed in cmd/orchestrator/main.go,
// per spec.md §5.
func Loop(ctx context.Context, log zerolog.Logger, conns *bridge.Connections, id *bridge.OrchestratorIdentity, sigs Signatures, decoder LogDecoder, startingBlock uint64, rpcTimeout time.Duration) error {
	cursor := startingBlock
	metricsErrCount := 0

	for {
		start := time.Now()

		iterCtx, cancel := context.WithTimeout(ctx, rpcTimeout)
		next, err := RunIteration(iterCtx, conns, id, sigs, decoder, cursor)
		cancel()
		if err != nil {
			if bridge.IsUnrecoverable(err) {
				return err
			}
			metricsErrCount++
			log.Warn().Err(err).Int("error_count", metricsErrCount).Msg("oracle iteration failed, retrying next period")
		} else {
			log.Debug().Uint64("horizon", next.Horizon).Uint64("last_event_nonce", next.LastEventNonce).Msg("oracle iteration complete")
			// starting_block intentionally overlaps the prior horizon by
			// one block so that a crash mid-block can be re-scanned
			// without double-claiming, per spec.md §4.3 Rationale.
			cursor = next.Horizon
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

// RunIteration executes the nine-step algorithm of spec.md §4.3 once.
func RunIteration(ctx context.Context, conns *bridge.Connections, id *bridge.OrchestratorIdentity, sigs Signatures, decoder LogDecoder, startingBlock uint64) (CheckedNonces, error) {
	latest, err := conns.Evm.LatestBlock(ctx)
	if err != nil {
		return CheckedNonces{}, err
	}

	chainID, err := conns.Evm.ChainID(ctx)
	if err != nil {
		return CheckedNonces{}, err
	}
	delay := BlockDelay(chainID)
	if latest < delay {
		return CheckedNonces{}, bridge.NewUnrecoverableError("chain too young: latest block %d is below the required reorg-safety delay of %d blocks", latest, delay)
	}
	horizon := latest - delay

	lowerCursor := startingBlock
	lastEventNonce, err := conns.CosmosQuery.LastEventNonceForValidator(ctx, id.CosmosAddress())
	if err != nil {
		return CheckedNonces{}, err
	}
	if lowerCursor == 0 {
		lowerCursor, err = conns.CosmosQuery.FirstObservedHeight(ctx, id.CosmosAddress())
		if err != nil {
			return CheckedNonces{}, err
		}
	}
	if lowerCursor > horizon {
		// Nothing new to scan this iteration; the cursor already caught
		// up with the horizon on a prior pass.
		return CheckedNonces{Horizon: horizon, LastEventNonce: lastEventNonce}, nil
	}

	logs, err := conns.Evm.CheckForEvents(ctx, lowerCursor, horizon, id.BridgeContract, sigs.all())
	if err != nil {
		return CheckedNonces{}, err
	}

	claims, err := decodeAndFilter(logs, sigs, decoder, lastEventNonce)
	if err != nil {
		return CheckedNonces{}, err
	}

	if !claims.Empty() {
		txHash, err := conns.CosmosBroadcast.SendEthereumClaims(ctx, id, claims)
		if err != nil {
			return CheckedNonces{}, err
		}

		newNonce, err := conns.CosmosQuery.LastEventNonceForValidator(ctx, id.CosmosAddress())
		if err != nil {
			return CheckedNonces{}, err
		}
		if newNonce == lastEventNonce {
			return CheckedNonces{}, bridge.NewValidationError("claim transaction %s did not advance last_event_nonce past %d; it may have been rejected or lost, retrying next iteration", txHash, lastEventNonce)
		}
		lastEventNonce = newNonce
	}

	return CheckedNonces{Horizon: horizon, LastEventNonce: lastEventNonce}, nil
}

// decodeAndFilter parses every log kind to its typed event and drops
// anything already claimed, per spec.md §4.3 steps 5-6. The output
// preserves canonical claim order: valsets, batches, deposits, erc20
// deploys, logic calls.
func decodeAndFilter(logs []ethtypes.Log, sigs Signatures, decoder LogDecoder, lastEventNonce uint64) (bridge.Claims, error) {
	byTopic := make(map[ethcommon.Hash][]ethtypes.Log)
	for _, l := range logs {
		if len(l.Topics) == 0 {
			continue
		}
		byTopic[l.Topics[0]] = append(byTopic[l.Topics[0]], l)
	}

	valsetLogs := byTopic[sigs.ValsetUpdated]
	batchLogs := byTopic[sigs.TransactionBatchExecuted]
	depositLogs := byTopic[sigs.SentToCosmos]
	deployLogs := byTopic[sigs.ERC20Deployed]
	logicLogs := byTopic[sigs.LogicCallExecuted]

	valsets, err := decoder.DecodeValsetUpdated(valsetLogs)
	if err != nil {
		return bridge.Claims{}, bridge.NewValidationError("failed to parse ValsetUpdated logs: %v", err)
	}
	batches, err := decoder.DecodeBatchExecuted(batchLogs)
	if err != nil {
		return bridge.Claims{}, bridge.NewValidationError("failed to parse TransactionBatchExecuted logs: %v", err)
	}
	deposits, err := decoder.DecodeSendToCosmos(depositLogs)
	if err != nil {
		return bridge.Claims{}, bridge.NewValidationError("failed to parse SendToCosmos logs: %v", err)
	}
	deploys, err := decoder.DecodeErc20Deployed(deployLogs)
	if err != nil {
		return bridge.Claims{}, bridge.NewValidationError("failed to parse ERC20Deployed logs: %v", err)
	}
	logicCalls, err := decoder.DecodeLogicCallExecuted(logicLogs)
	if err != nil {
		return bridge.Claims{}, bridge.NewValidationError("failed to parse LogicCallExecuted logs: %v", err)
	}

	return bridge.Claims{
		Valsets:    bridge.FilterByEventNonce(lastEventNonce, valsets),
		Batches:    bridge.FilterByEventNonce(lastEventNonce, batches),
		Deposits:   bridge.FilterByEventNonce(lastEventNonce, deposits),
		Deploys:    bridge.FilterByEventNonce(lastEventNonce, deploys),
		LogicCalls: bridge.FilterByEventNonce(lastEventNonce, logicCalls),
	}, nil
}
