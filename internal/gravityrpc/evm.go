// Package gravityrpc provides the concrete adapters that satisfy the
// bridge.EvmClient, bridge.CosmosQueryClient, and bridge.CosmosBroadcastClient
// interfaces, plus the connection bring-up entry point that wires them
// together using internal/rpcconn's probing and repair logic.
package gravityrpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/relayer"
)

// EvmAdapter implements bridge.EvmClient over a real go-ethereum JSON-RPC
// client, the same client the teacher dials in cmd/relay_tx.go and
// cmd/utils/eth_helpers.go. It also implements relayer.GasEstimator so
// the CLI can hand the same adapter to both roles.
type EvmAdapter struct {
	client *ethclient.Client
}

var _ bridge.EvmClient = (*EvmAdapter)(nil)
var _ relayer.GasEstimator = (*EvmAdapter)(nil)

func NewEvmAdapter(client *ethclient.Client) *EvmAdapter {
	return &EvmAdapter{client: client}
}

func (a *EvmAdapter) LatestBlock(ctx context.Context) (uint64, error) {
	n, err := a.client.BlockNumber(ctx)
	if err != nil {
		return 0, bridge.NewRPCError(err, "eth_blockNumber failed")
	}
	return n, nil
}

func (a *EvmAdapter) ChainID(ctx context.Context) (uint64, error) {
	id, err := a.client.ChainID(ctx)
	if err != nil {
		return 0, bridge.NewRPCError(err, "eth_chainId failed")
	}
	return id.Uint64(), nil
}

func (a *EvmAdapter) Balance(ctx context.Context, addr ethcommon.Address) (*big.Int, error) {
	bal, err := a.client.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, bridge.NewRPCError(err, "eth_getBalance failed for %s", addr)
	}
	return bal, nil
}

func (a *EvmAdapter) PendingNonceAt(ctx context.Context, addr ethcommon.Address) (uint64, error) {
	nonce, err := a.client.PendingNonceAt(ctx, addr)
	if err != nil {
		return 0, bridge.NewRPCError(err, "eth_getTransactionCount(pending) failed for %s", addr)
	}
	return nonce, nil
}

func (a *EvmAdapter) CheckForEvents(ctx context.Context, fromBlock, toBlock uint64, contract ethcommon.Address, sigs []ethcommon.Hash) ([]ethtypes.Log, error) {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []ethcommon.Address{contract},
		Topics:    [][]ethcommon.Hash{sigs},
	}
	logs, err := a.client.FilterLogs(ctx, q)
	if err != nil {
		return nil, bridge.NewRPCError(err, "eth_getLogs failed for block range [%d,%d]", fromBlock, toBlock)
	}
	return logs, nil
}

func (a *EvmAdapter) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	if err := a.client.SendTransaction(ctx, tx); err != nil {
		return bridge.NewRPCError(err, "eth_sendRawTransaction failed for %s", tx.Hash())
	}
	return nil
}

// relayGasLimit mirrors the fixed gas limit internal/relayer's submit
// helper attaches to every relay transaction.
const relayGasLimit = 1_500_000

// EstimateGasCostWei implements relayer.GasEstimator by multiplying the
// network's current suggested gas price by the relayer's fixed per-tx
// gas limit.
func (a *EvmAdapter) EstimateGasCostWei(ctx context.Context) (*big.Int, error) {
	gasPrice, err := a.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, bridge.NewRPCError(err, "eth_gasPrice failed")
	}
	return new(big.Int).Mul(gasPrice, big.NewInt(relayGasLimit)), nil
}

// SuggestGasTipCap implements relayer.GasEstimator's EIP-1559 priority
// fee suggestion, the same eth_maxPriorityFeePerGas call the teacher's
// GetTransactOpts in cmd/utils/eth_helpers.go uses to build GasTipCap.
func (a *EvmAdapter) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	tipCap, err := a.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, bridge.NewRPCError(err, "eth_maxPriorityFeePerGas failed")
	}
	return tipCap, nil
}

// evmProber adapts ethclient.Dial/BlockNumber to the rpcconn.Prober
// contract used during bring-up.
type evmProber struct{}

func (evmProber) Dial(ctx context.Context, addr string) (any, error) {
	c, err := ethclient.DialContext(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return c, nil
}

func (evmProber) Probe(ctx context.Context, client any) error {
	c := client.(*ethclient.Client)
	_, err := c.BlockNumber(ctx)
	return err
}
