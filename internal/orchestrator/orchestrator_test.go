package orchestrator_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/orchestrator"
)

type fakeEvm struct{}

func (fakeEvm) LatestBlock(ctx context.Context) (uint64, error) { return 0, nil }
func (fakeEvm) ChainID(ctx context.Context) (uint64, error)     { return 1, nil }
func (fakeEvm) Balance(ctx context.Context, addr ethcommon.Address) (*big.Int, error) {
	return big.NewInt(1), nil
}
func (fakeEvm) PendingNonceAt(ctx context.Context, addr ethcommon.Address) (uint64, error) {
	return 0, nil
}
func (fakeEvm) CheckForEvents(ctx context.Context, from, to uint64, contract ethcommon.Address, sigs []ethcommon.Hash) ([]ethtypes.Log, error) {
	return nil, nil
}
func (fakeEvm) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error { return nil }

// fakeQuery never registers any delegate keys, so CheckDelegateAddresses
// always fails fast with an UnrecoverableError before any loop starts.
type fakeQuery struct{}

func (fakeQuery) SyncingStatus(ctx context.Context) (bool, error) { return false, nil }
func (fakeQuery) LastEventNonceForValidator(ctx context.Context, validator sdk.AccAddress) (uint64, error) {
	return 0, nil
}
func (fakeQuery) FirstObservedHeight(ctx context.Context, validator sdk.AccAddress) (uint64, error) {
	return 0, nil
}
func (fakeQuery) DelegateKeyByEth(ctx context.Context, evmAddr ethcommon.Address) (bridge.DelegateRecord, error) {
	return bridge.DelegateRecord{}, errors.New("not registered")
}
func (fakeQuery) DelegateKeyByOrchestrator(ctx context.Context, cosmosAddr sdk.AccAddress) (bridge.DelegateRecord, error) {
	return bridge.DelegateRecord{}, errors.New("not registered")
}
func (fakeQuery) BridgeParams(ctx context.Context) (bridge.BridgeParams, error) {
	return bridge.BridgeParams{}, nil
}
func (fakeQuery) AccountBalance(ctx context.Context, addr sdk.AccAddress, denom string) (sdk.Coin, error) {
	return sdk.NewCoin(denom, sdk.OneInt()), nil
}
func (fakeQuery) AccountInfo(ctx context.Context, addr sdk.AccAddress) (uint64, uint64, error) {
	return 0, 0, nil
}
func (fakeQuery) PendingSignatures(ctx context.Context, validator sdk.AccAddress) (bridge.PendingSignatures, error) {
	return bridge.PendingSignatures{}, nil
}
func (fakeQuery) PendingRelayItems(ctx context.Context) (bridge.PendingRelayItems, error) {
	return bridge.PendingRelayItems{}, nil
}
func (fakeQuery) CurrentValset(ctx context.Context) (bridge.UnsignedValset, error) {
	return bridge.UnsignedValset{}, nil
}

type fakeBroadcast struct{}

func (fakeBroadcast) SendEthereumClaims(ctx context.Context, id *bridge.OrchestratorIdentity, claims bridge.Claims) (string, error) {
	return "", nil
}
func (fakeBroadcast) SendValsetConfirms(ctx context.Context, id *bridge.OrchestratorIdentity, confirms []bridge.ValsetConfirm) (string, error) {
	return "", nil
}
func (fakeBroadcast) SendBatchConfirms(ctx context.Context, id *bridge.OrchestratorIdentity, confirms []bridge.BatchConfirm) (string, error) {
	return "", nil
}
func (fakeBroadcast) SendLogicCallConfirms(ctx context.Context, id *bridge.OrchestratorIdentity, confirms []bridge.LogicCallConfirm) (string, error) {
	return "", nil
}
func (fakeBroadcast) SendRequestBatchTx(ctx context.Context, id *bridge.OrchestratorIdentity, denom string) (string, error) {
	return "", nil
}

func testIdentity(t *testing.T) *bridge.OrchestratorIdentity {
	t.Helper()
	evmKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &bridge.OrchestratorIdentity{
		CosmosSigningKey: secp256k1.GenPrivKey(),
		EvmSigningKey:    evmKey,
		Fee:              sdk.NewCoin("ugraviton", sdk.OneInt()),
		AddressPrefix:    "cosmos",
	}
}

func TestRun_PropagatesStartupFailureWithoutStartingLoops(t *testing.T) {
	conns := &bridge.Connections{Evm: fakeEvm{}, CosmosQuery: fakeQuery{}, CosmosBroadcast: fakeBroadcast{}}
	err := orchestrator.Run(context.Background(), zerolog.Nop(), conns, testIdentity(t), orchestrator.Options{})
	require.Error(t, err)
	require.True(t, bridge.IsUnrecoverable(err))
}
