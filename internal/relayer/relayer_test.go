package relayer_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/relayer"
)

type fakeEvm struct {
	chainID uint64
	nonce   uint64
	sent    []*ethtypes.Transaction
}

func (f *fakeEvm) LatestBlock(ctx context.Context) (uint64, error) { return 0, nil }
func (f *fakeEvm) ChainID(ctx context.Context) (uint64, error)     { return f.chainID, nil }
func (f *fakeEvm) Balance(ctx context.Context, addr ethcommon.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}
func (f *fakeEvm) PendingNonceAt(ctx context.Context, addr ethcommon.Address) (uint64, error) {
	return f.nonce, nil
}
func (f *fakeEvm) CheckForEvents(ctx context.Context, from, to uint64, contract ethcommon.Address, sigs []ethcommon.Hash) ([]ethtypes.Log, error) {
	return nil, nil
}
func (f *fakeEvm) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

type fakeQuery struct {
	pending       bridge.PendingRelayItems
	balance       sdk.Coin
	currentValset bridge.UnsignedValset
}

func (f *fakeQuery) SyncingStatus(ctx context.Context) (bool, error) { return false, nil }
func (f *fakeQuery) LastEventNonceForValidator(ctx context.Context, validator sdk.AccAddress) (uint64, error) {
	return 0, nil
}
func (f *fakeQuery) FirstObservedHeight(ctx context.Context, validator sdk.AccAddress) (uint64, error) {
	return 0, nil
}
func (f *fakeQuery) DelegateKeyByEth(ctx context.Context, evmAddr ethcommon.Address) (bridge.DelegateRecord, error) {
	return bridge.DelegateRecord{}, nil
}
func (f *fakeQuery) DelegateKeyByOrchestrator(ctx context.Context, cosmosAddr sdk.AccAddress) (bridge.DelegateRecord, error) {
	return bridge.DelegateRecord{}, nil
}
func (f *fakeQuery) BridgeParams(ctx context.Context) (bridge.BridgeParams, error) {
	return bridge.BridgeParams{}, nil
}
func (f *fakeQuery) AccountBalance(ctx context.Context, addr sdk.AccAddress, denom string) (sdk.Coin, error) {
	return f.balance, nil
}
func (f *fakeQuery) AccountInfo(ctx context.Context, addr sdk.AccAddress) (uint64, uint64, error) {
	return 0, 0, nil
}
func (f *fakeQuery) PendingSignatures(ctx context.Context, validator sdk.AccAddress) (bridge.PendingSignatures, error) {
	return bridge.PendingSignatures{}, nil
}
func (f *fakeQuery) PendingRelayItems(ctx context.Context) (bridge.PendingRelayItems, error) {
	return f.pending, nil
}
func (f *fakeQuery) CurrentValset(ctx context.Context) (bridge.UnsignedValset, error) {
	return f.currentValset, nil
}

type fakeBroadcast struct {
	requestedDenoms []string
}

func (f *fakeBroadcast) SendEthereumClaims(ctx context.Context, id *bridge.OrchestratorIdentity, claims bridge.Claims) (string, error) {
	return "", nil
}
func (f *fakeBroadcast) SendValsetConfirms(ctx context.Context, id *bridge.OrchestratorIdentity, confirms []bridge.ValsetConfirm) (string, error) {
	return "", nil
}
func (f *fakeBroadcast) SendBatchConfirms(ctx context.Context, id *bridge.OrchestratorIdentity, confirms []bridge.BatchConfirm) (string, error) {
	return "", nil
}
func (f *fakeBroadcast) SendLogicCallConfirms(ctx context.Context, id *bridge.OrchestratorIdentity, confirms []bridge.LogicCallConfirm) (string, error) {
	return "", nil
}
func (f *fakeBroadcast) SendRequestBatchTx(ctx context.Context, id *bridge.OrchestratorIdentity, denom string) (string, error) {
	f.requestedDenoms = append(f.requestedDenoms, denom)
	return "0xbatchreq", nil
}

type fakeBuilder struct{}

func (fakeBuilder) BuildValsetUpdate(v bridge.SignedValset) ([]byte, error)     { return []byte{0x01}, nil }
func (fakeBuilder) BuildSubmitBatch(b bridge.SignedBatch) ([]byte, error)       { return []byte{0x02}, nil }
func (fakeBuilder) BuildSubmitLogicCall(c bridge.SignedLogicCall) ([]byte, error) { return []byte{0x03}, nil }

type fakeGasEstimator struct{ costWei *big.Int }

func (f fakeGasEstimator) EstimateGasCostWei(ctx context.Context) (*big.Int, error) { return f.costWei, nil }
func (f fakeGasEstimator) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

type fakeOracle struct{ quoteWei *big.Int }

func (f fakeOracle) QuoteInWei(ctx context.Context, token ethcommon.Address, amount *big.Int) (*big.Int, error) {
	return f.quoteWei, nil
}

func testIdentity(t *testing.T) *bridge.OrchestratorIdentity {
	t.Helper()
	evmKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &bridge.OrchestratorIdentity{
		CosmosSigningKey: secp256k1.GenPrivKey(),
		EvmSigningKey:    evmKey,
		Fee:              sdk.NewInt64Coin("ugraviton", 100),
	}
}

func TestRunIteration_SkipsBelowPowerThreshold(t *testing.T) {
	evm := &fakeEvm{chainID: 1}
	query := &fakeQuery{pending: bridge.PendingRelayItems{
		Batches: []bridge.SignedBatch{{Power: 10}},
	}}
	broadcast := &fakeBroadcast{}
	conns := &bridge.Connections{Evm: evm, CosmosQuery: query, CosmosBroadcast: broadcast}
	params := bridge.BridgeParams{PowerThreshold: 66}
	cfg := relayer.Config{BatchRequestMode: relayer.BatchRequestModeNone}

	err := relayer.RunIteration(context.Background(), conns, testIdentity(t), params, cfg, fakeBuilder{}, fakeGasEstimator{costWei: big.NewInt(1)}, fakeOracle{quoteWei: big.NewInt(1)})
	require.NoError(t, err)
	require.Empty(t, evm.sent)
}

func TestRunIteration_RelaysSufficientlySignedBatch(t *testing.T) {
	evm := &fakeEvm{chainID: 1}
	query := &fakeQuery{pending: bridge.PendingRelayItems{
		Batches: []bridge.SignedBatch{{Power: 100, Batch: bridge.UnsignedBatch{BatchNonce: 5}}},
	}}
	broadcast := &fakeBroadcast{}
	conns := &bridge.Connections{Evm: evm, CosmosQuery: query, CosmosBroadcast: broadcast}
	params := bridge.BridgeParams{PowerThreshold: 66}
	cfg := relayer.Config{BatchRequestMode: relayer.BatchRequestModeNone}

	err := relayer.RunIteration(context.Background(), conns, testIdentity(t), params, cfg, fakeBuilder{}, fakeGasEstimator{costWei: big.NewInt(1)}, fakeOracle{quoteWei: big.NewInt(1)})
	require.NoError(t, err)
	require.Len(t, evm.sent, 1)
}

func TestRunIteration_EachSubmissionGetsAFreshNonceAndNonZeroFeeCaps(t *testing.T) {
	evm := &fakeEvm{chainID: 1, nonce: 42}
	query := &fakeQuery{pending: bridge.PendingRelayItems{
		Valsets: []bridge.SignedValset{{Power: 100, Valset: bridge.UnsignedValset{Nonce: 1}}},
		Batches: []bridge.SignedBatch{{Power: 100, Batch: bridge.UnsignedBatch{BatchNonce: 5}}},
	}}
	broadcast := &fakeBroadcast{}
	conns := &bridge.Connections{Evm: evm, CosmosQuery: query, CosmosBroadcast: broadcast}
	params := bridge.BridgeParams{PowerThreshold: 66}
	cfg := relayer.Config{BatchRequestMode: relayer.BatchRequestModeNone}

	err := relayer.RunIteration(context.Background(), conns, testIdentity(t), params, cfg, fakeBuilder{}, fakeGasEstimator{costWei: big.NewInt(1_500_000_000)}, fakeOracle{quoteWei: big.NewInt(1)})
	require.NoError(t, err)
	require.Len(t, evm.sent, 2)

	require.Equal(t, uint64(42), evm.sent[0].Nonce())
	require.Equal(t, uint64(43), evm.sent[1].Nonce())

	for _, tx := range evm.sent {
		require.Equal(t, 1, tx.GasFeeCap().Sign())
		require.Equal(t, big.NewInt(1), tx.GasTipCap())
	}
}

func TestRunIteration_SkipsUnprofitableBatchInProfitableOnlyMode(t *testing.T) {
	evm := &fakeEvm{chainID: 1}
	query := &fakeQuery{pending: bridge.PendingRelayItems{
		Batches: []bridge.SignedBatch{{Power: 100, Batch: bridge.UnsignedBatch{BatchNonce: 5}}},
	}}
	broadcast := &fakeBroadcast{}
	conns := &bridge.Connections{Evm: evm, CosmosQuery: query, CosmosBroadcast: broadcast}
	params := bridge.BridgeParams{PowerThreshold: 66}
	cfg := relayer.Config{BatchRequestMode: relayer.BatchRequestModeProfitableOnly}

	err := relayer.RunIteration(context.Background(), conns, testIdentity(t), params, cfg, fakeBuilder{}, fakeGasEstimator{costWei: big.NewInt(1000)}, fakeOracle{quoteWei: big.NewInt(1)})
	require.NoError(t, err)
	require.Empty(t, evm.sent)
}

func TestRunIteration_RequestsNewBatchesWhenEnabledAndFunded(t *testing.T) {
	evm := &fakeEvm{chainID: 1}
	query := &fakeQuery{balance: sdk.NewInt64Coin("ugraviton", 1000)}
	broadcast := &fakeBroadcast{}
	conns := &bridge.Connections{Evm: evm, CosmosQuery: query, CosmosBroadcast: broadcast}
	params := bridge.BridgeParams{}
	cfg := relayer.Config{BatchRequestMode: relayer.BatchRequestModeAlways, RequestDenoms: []string{"uusdc"}}

	err := relayer.RunIteration(context.Background(), conns, testIdentity(t), params, cfg, fakeBuilder{}, fakeGasEstimator{costWei: big.NewInt(1)}, fakeOracle{quoteWei: big.NewInt(1)})
	require.NoError(t, err)
	require.Equal(t, []string{"uusdc"}, broadcast.requestedDenoms)
}

func TestRunIteration_InsufficientFeeBalanceBlocksBatchRequest(t *testing.T) {
	evm := &fakeEvm{chainID: 1}
	query := &fakeQuery{balance: sdk.NewInt64Coin("ugraviton", 0)}
	broadcast := &fakeBroadcast{}
	conns := &bridge.Connections{Evm: evm, CosmosQuery: query, CosmosBroadcast: broadcast}
	params := bridge.BridgeParams{}
	cfg := relayer.Config{BatchRequestMode: relayer.BatchRequestModeAlways, RequestDenoms: []string{"uusdc"}}

	err := relayer.RunIteration(context.Background(), conns, testIdentity(t), params, cfg, fakeBuilder{}, fakeGasEstimator{costWei: big.NewInt(1)}, fakeOracle{quoteWei: big.NewInt(1)})
	require.Error(t, err)
	require.True(t, bridge.IsValidation(err))
	require.Empty(t, broadcast.requestedDenoms)
}

func TestParseBatchRequestMode(t *testing.T) {
	mode, err := relayer.ParseBatchRequestMode("ProfitableOnly")
	require.NoError(t, err)
	require.Equal(t, relayer.BatchRequestModeProfitableOnly, mode)

	_, err = relayer.ParseBatchRequestMode("Bogus")
	require.Error(t, err)
}
