package bridge

import (
	"context"
	"math/big"

	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// EvmClient is the interface the core consumes for all EVM JSON-RPC
// access. The concrete implementation (internal/gravityrpc) wraps
// go-ethereum's ethclient.Client; this interface exists so tests can
// substitute a fake chain without dialing anything.
type EvmClient interface {
	// LatestBlock returns the current chain head height.
	LatestBlock(ctx context.Context) (uint64, error)
	// ChainID returns the EVM chain id used to derive the reorg-safety
	// block delay.
	ChainID(ctx context.Context) (uint64, error)
	// Balance returns the ETH balance of addr in wei.
	Balance(ctx context.Context, addr ethcommon.Address) (*big.Int, error)
	// PendingNonceAt returns the next nonce addr should use, including
	// transactions still in the mempool. The relayer fetches this once
	// per iteration and increments it locally for each further
	// transaction it sends that iteration.
	PendingNonceAt(ctx context.Context, addr ethcommon.Address) (uint64, error)
	// CheckForEvents fetches logs for the given topic-zero signatures on
	// contract within [fromBlock, toBlock] inclusive.
	CheckForEvents(ctx context.Context, fromBlock, toBlock uint64, contract ethcommon.Address, sigs []ethcommon.Hash) ([]ethtypes.Log, error)
	// SendTransaction submits a signed EVM transaction for the relayer.
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}

// CosmosQueryClient is the interface the core consumes for read access to
// the Cosmos chain: sync status, the bridge module's delegate records,
// this validator's last acknowledged event nonce, bridge parameters, and
// pending-signature/pending-relay queues.
type CosmosQueryClient interface {
	SyncingStatus(ctx context.Context) (syncing bool, err error)
	LastEventNonceForValidator(ctx context.Context, validator sdk.AccAddress) (uint64, error)
	// FirstObservedHeight returns the first EVM block height at which this
	// validator observed the bridge contract, used to seed the oracle
	// cursor on a cold start when no event nonce has been claimed yet.
	FirstObservedHeight(ctx context.Context, validator sdk.AccAddress) (uint64, error)
	DelegateKeyByEth(ctx context.Context, evmAddr ethcommon.Address) (DelegateRecord, error)
	DelegateKeyByOrchestrator(ctx context.Context, cosmosAddr sdk.AccAddress) (DelegateRecord, error)
	BridgeParams(ctx context.Context) (BridgeParams, error)
	AccountBalance(ctx context.Context, addr sdk.AccAddress, denom string) (sdk.Coin, error)
	AccountInfo(ctx context.Context, addr sdk.AccAddress) (accountNumber, sequence uint64, err error)
	PendingSignatures(ctx context.Context, validator sdk.AccAddress) (PendingSignatures, error)
	PendingRelayItems(ctx context.Context) (PendingRelayItems, error)
	// CurrentValset returns the validator set the bridge contract last
	// adopted, which the relayer must pass alongside every batch/logic
	// call submission so the contract can verify accumulated signatures.
	CurrentValset(ctx context.Context) (UnsignedValset, error)
}

// CosmosBroadcastClient is the interface the core consumes for
// transaction submission to the Cosmos chain.
type CosmosBroadcastClient interface {
	SendEthereumClaims(ctx context.Context, id *OrchestratorIdentity, claims Claims) (txHash string, err error)
	SendValsetConfirms(ctx context.Context, id *OrchestratorIdentity, confirms []ValsetConfirm) (txHash string, err error)
	SendBatchConfirms(ctx context.Context, id *OrchestratorIdentity, confirms []BatchConfirm) (txHash string, err error)
	SendLogicCallConfirms(ctx context.Context, id *OrchestratorIdentity, confirms []LogicCallConfirm) (txHash string, err error)
	SendRequestBatchTx(ctx context.Context, id *OrchestratorIdentity, denom string) (txHash string, err error)
}

// Connections holds the validated trio of client handles produced by
// bring-up. Each slot is populated independently; the connection
// bring-up package is responsible for making sure every slot required by
// the orchestrator is non-nil before startup proceeds.
type Connections struct {
	Evm              EvmClient
	CosmosQuery      CosmosQueryClient
	CosmosBroadcast  CosmosBroadcastClient
}

// DelegateRecord is the bridge module's record of one validator's
// delegate key pair.
type DelegateRecord struct {
	EvmAddress         ethcommon.Address
	OrchestratorAddress sdk.AccAddress
	ValidatorAddress   string
}

// BridgeParams holds the bridge module parameters the startup validator
// and the signer/relayer loops depend on.
type BridgeParams struct {
	BridgeContract  ethcommon.Address
	BridgeID        string
	PowerThreshold  uint64
}

// PendingSignatures is the set of items awaiting this validator's
// signature, queried fresh from Cosmos every signer iteration. It has no
// persistence between iterations.
type PendingSignatures struct {
	Valsets    []UnsignedValset
	Batches    []UnsignedBatch
	LogicCalls []UnsignedLogicCall
}

// PendingRelayItems is the set of already-signed items the relayer loop
// may submit to the EVM chain.
type PendingRelayItems struct {
	Valsets    []SignedValset
	Batches    []SignedBatch
	LogicCalls []SignedLogicCall
}

// Claims bundles one iteration's filtered events in the canonical order
// required by spec.md §4.3 and §8: valsets, batches, deposits, erc20
// deploys, logic calls.
type Claims struct {
	Valsets    []*ValsetUpdatedEvent
	Batches    []*TransactionBatchExecutedEvent
	Deposits   []*SendToCosmosEvent
	Deploys    []*Erc20DeployedEvent
	LogicCalls []*LogicCallExecutedEvent
}

// Empty reports whether every slice in the claim bundle is empty.
func (c Claims) Empty() bool {
	return len(c.Valsets) == 0 && len(c.Batches) == 0 && len(c.Deposits) == 0 &&
		len(c.Deploys) == 0 && len(c.LogicCalls) == 0
}
