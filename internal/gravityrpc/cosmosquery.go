package gravityrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
)

// Bridge module gRPC method paths. The bridge module's own .proto file
// defines the real paths; these mirror the Gravity Bridge query service
// layout from the original orchestrator's grpc_client usage.
const (
	methodDelegateKeyByEth          = "/gravity.v1.Query/DelegateKeysByEth"
	methodDelegateKeyByOrchestrator = "/gravity.v1.Query/DelegateKeysByOrchestrator"
	methodParams                    = "/gravity.v1.Query/Params"
	methodLastEventNonce            = "/gravity.v1.Query/LastEventNonceByAddr"
	methodFirstObservedHeight       = "/gravity.v1.Query/GetFirstObservedHeight" // #nosec G101 -- not a credential
	methodPendingSignatures         = "/gravity.v1.Query/PendingSignatures"
	methodPendingRelay              = "/gravity.v1.Query/PendingRelay"
	methodCurrentValset             = "/gravity.v1.Query/CurrentValset"
)

// CosmosQueryAdapter implements bridge.CosmosQueryClient over a single
// gRPC channel, using the real cosmos-sdk bank/auth query services for
// generic account data and a thin gRPC Invoke wrapper for the bridge
// module's own (out-of-scope) query service — see messages.go.
type CosmosQueryAdapter struct {
	conn     *grpc.ClientConn
	bank     banktypes.QueryClient
	auth     authtypes.QueryClient
	legacyRPC *legacyRESTClient
}

var _ bridge.CosmosQueryClient = (*CosmosQueryAdapter)(nil)

// NewCosmosQueryAdapter builds an adapter from a dialed gRPC channel and
// an optional legacy Tendermint RPC client used only for sync status
// (spec.md §4.2 step 1).
func NewCosmosQueryAdapter(conn *grpc.ClientConn, legacyRPC *legacyRESTClient) *CosmosQueryAdapter {
	return &CosmosQueryAdapter{
		conn:      conn,
		bank:      banktypes.NewQueryClient(conn),
		auth:      authtypes.NewQueryClient(conn),
		legacyRPC: legacyRPC,
	}
}

func (a *CosmosQueryAdapter) SyncingStatus(ctx context.Context) (bool, error) {
	if a.legacyRPC == nil {
		return false, bridge.NewRPCError(nil, "no legacy Cosmos RPC endpoint configured for sync status")
	}
	return a.legacyRPC.SyncingStatus(ctx)
}

func (a *CosmosQueryAdapter) LastEventNonceForValidator(ctx context.Context, validator sdk.AccAddress) (uint64, error) {
	req := &queryLastEventNonceByAddrRequest{Address: validator.String()}
	resp := &queryLastEventNonceByAddrResponse{}
	if err := a.conn.Invoke(ctx, methodLastEventNonce, req, resp); err != nil {
		return 0, bridge.NewRPCError(err, "failed to query last event nonce for %s", validator)
	}
	return resp.EventNonce, nil
}

func (a *CosmosQueryAdapter) FirstObservedHeight(ctx context.Context, validator sdk.AccAddress) (uint64, error) {
	req := &queryFirstObservedHeightRequest{Address: validator.String()}
	resp := &queryFirstObservedHeightResponse{}
	if err := a.conn.Invoke(ctx, methodFirstObservedHeight, req, resp); err != nil {
		return 0, bridge.NewRPCError(err, "failed to query first observed height for %s", validator)
	}
	return resp.Height, nil
}

func (a *CosmosQueryAdapter) DelegateKeyByEth(ctx context.Context, evmAddr ethcommon.Address) (bridge.DelegateRecord, error) {
	req := &queryDelegateKeysByEthAddressRequest{EthAddress: evmAddr.Hex()}
	resp := &queryDelegateKeysByEthAddressResponse{}
	if err := a.conn.Invoke(ctx, methodDelegateKeyByEth, req, resp); err != nil {
		return bridge.DelegateRecord{}, bridge.NewRPCError(err, "failed to query delegate key by eth address %s", evmAddr)
	}
	orchAddr, err := sdk.AccAddressFromBech32(resp.OrchestratorAddress)
	if err != nil {
		return bridge.DelegateRecord{}, bridge.NewValidationError("delegate record returned an unparsable orchestrator address %q: %v", resp.OrchestratorAddress, err)
	}
	return bridge.DelegateRecord{
		EvmAddress:          evmAddr,
		OrchestratorAddress: orchAddr,
		ValidatorAddress:    resp.ValidatorAddress,
	}, nil
}

func (a *CosmosQueryAdapter) DelegateKeyByOrchestrator(ctx context.Context, cosmosAddr sdk.AccAddress) (bridge.DelegateRecord, error) {
	req := &queryDelegateKeysByOrchestratorAddressRequest{OrchestratorAddress: cosmosAddr.String()}
	resp := &queryDelegateKeysByOrchestratorAddressResponse{}
	if err := a.conn.Invoke(ctx, methodDelegateKeyByOrchestrator, req, resp); err != nil {
		return bridge.DelegateRecord{}, bridge.NewRPCError(err, "failed to query delegate key by orchestrator address %s", cosmosAddr)
	}
	if !ethcommon.IsHexAddress(resp.EthAddress) {
		return bridge.DelegateRecord{}, bridge.NewValidationError("delegate record returned an unparsable eth address %q", resp.EthAddress)
	}
	return bridge.DelegateRecord{
		EvmAddress:          ethcommon.HexToAddress(resp.EthAddress),
		OrchestratorAddress: cosmosAddr,
		ValidatorAddress:    resp.ValidatorAddress,
	}, nil
}

func (a *CosmosQueryAdapter) BridgeParams(ctx context.Context) (bridge.BridgeParams, error) {
	req := &queryParamsRequest{}
	resp := &queryParamsResponse{}
	if err := a.conn.Invoke(ctx, methodParams, req, resp); err != nil {
		return bridge.BridgeParams{}, bridge.NewRPCError(err, "failed to query bridge module parameters")
	}
	return bridge.BridgeParams{
		BridgeContract: ethcommon.HexToAddress(resp.BridgeContract),
		BridgeID:       resp.BridgeID,
		PowerThreshold: resp.PowerThreshold,
	}, nil
}

func (a *CosmosQueryAdapter) AccountBalance(ctx context.Context, addr sdk.AccAddress, denom string) (sdk.Coin, error) {
	resp, err := a.bank.Balance(ctx, &banktypes.QueryBalanceRequest{Address: addr.String(), Denom: denom})
	if err != nil {
		return sdk.Coin{}, bridge.NewRPCError(err, "failed to query balance of %s for %s", denom, addr)
	}
	if resp.Balance == nil {
		return sdk.NewCoin(denom, sdk.ZeroInt()), nil
	}
	return *resp.Balance, nil
}

func (a *CosmosQueryAdapter) AccountInfo(ctx context.Context, addr sdk.AccAddress) (uint64, uint64, error) {
	resp, err := a.auth.AccountInfo(ctx, &authtypes.QueryAccountInfoRequest{Address: addr.String()})
	if err != nil {
		return 0, 0, bridge.NewRPCError(err, "failed to query account info for %s", addr)
	}
	return resp.Info.AccountNumber, resp.Info.Sequence, nil
}

func (a *CosmosQueryAdapter) PendingSignatures(ctx context.Context, validator sdk.AccAddress) (bridge.PendingSignatures, error) {
	req := &queryPendingSignaturesRequest{Address: validator.String()}
	resp := &queryPendingSignaturesResponse{}
	if err := a.conn.Invoke(ctx, methodPendingSignatures, req, resp); err != nil {
		return bridge.PendingSignatures{}, bridge.NewRPCError(err, "failed to query pending signatures for %s", validator)
	}
	out := bridge.PendingSignatures{}
	for _, v := range resp.Valsets {
		out.Valsets = append(out.Valsets, bridge.UnsignedValset{Nonce: v.Nonce, RewardTo: v.RewardTo, Members: toMembers(v.Members)})
	}
	for _, b := range resp.Batches {
		out.Batches = append(out.Batches, bridge.UnsignedBatch{BatchNonce: b.BatchNonce, Erc20: b.Erc20, Timeout: b.Timeout})
	}
	for _, l := range resp.LogicCalls {
		out.LogicCalls = append(out.LogicCalls, bridge.UnsignedLogicCall{InvalidationID: l.InvalidationID, InvalidationNonce: l.InvalidationNonce})
	}
	return out, nil
}

func (a *CosmosQueryAdapter) PendingRelayItems(ctx context.Context) (bridge.PendingRelayItems, error) {
	req := &queryPendingRelayRequest{}
	resp := &queryPendingRelayResponse{}
	if err := a.conn.Invoke(ctx, methodPendingRelay, req, resp); err != nil {
		return bridge.PendingRelayItems{}, bridge.NewRPCError(err, "failed to query pending relay items")
	}
	out := bridge.PendingRelayItems{}
	for _, v := range resp.Valsets {
		out.Valsets = append(out.Valsets, bridge.SignedValset{
			Valset:     bridge.UnsignedValset{Nonce: v.Valset.Nonce, RewardTo: v.Valset.RewardTo, Members: toMembers(v.Valset.Members)},
			Signatures: toValsetConfirms(v.Signatures),
			Power:      v.Power,
		})
	}
	for _, b := range resp.Batches {
		out.Batches = append(out.Batches, bridge.SignedBatch{
			Batch:      bridge.UnsignedBatch{BatchNonce: b.Batch.BatchNonce, Erc20: b.Batch.Erc20, Timeout: b.Batch.Timeout},
			Signatures: toBatchConfirms(b.Signatures),
			Power:      b.Power,
			Reward:     b.Reward,
		})
	}
	for _, l := range resp.LogicCalls {
		out.LogicCalls = append(out.LogicCalls, bridge.SignedLogicCall{
			Call:       bridge.UnsignedLogicCall{InvalidationID: l.Call.InvalidationID, InvalidationNonce: l.Call.InvalidationNonce},
			Signatures: toLogicCallConfirms(l.Signatures),
			Power:      l.Power,
		})
	}
	return out, nil
}

func (a *CosmosQueryAdapter) CurrentValset(ctx context.Context) (bridge.UnsignedValset, error) {
	req := &queryCurrentValsetRequest{}
	resp := &queryCurrentValsetResponse{}
	if err := a.conn.Invoke(ctx, methodCurrentValset, req, resp); err != nil {
		return bridge.UnsignedValset{}, bridge.NewRPCError(err, "failed to query current valset")
	}
	v := resp.Valset
	return bridge.UnsignedValset{Nonce: v.Nonce, RewardTo: v.RewardTo, Members: toMembers(v.Members)}, nil
}

func toMembers(ms []bridgeValsetMember) []bridge.ValsetMember {
	out := make([]bridge.ValsetMember, len(ms))
	for i, m := range ms {
		out[i] = bridge.ValsetMember{EthereumAddress: m.EthereumAddress, Power: m.Power}
	}
	return out
}

func toValsetConfirms(cs []bridgeValsetConfirm) []bridge.ValsetConfirm {
	out := make([]bridge.ValsetConfirm, len(cs))
	for i, c := range cs {
		out[i] = bridge.ValsetConfirm{Nonce: c.Nonce, Signature: c.Signature}
	}
	return out
}

func toBatchConfirms(cs []bridgeBatchConfirm) []bridge.BatchConfirm {
	out := make([]bridge.BatchConfirm, len(cs))
	for i, c := range cs {
		out[i] = bridge.BatchConfirm{BatchNonce: c.BatchNonce, Erc20: c.Erc20, Signature: c.Signature}
	}
	return out
}

func toLogicCallConfirms(cs []bridgeLogicCallConfirm) []bridge.LogicCallConfirm {
	out := make([]bridge.LogicCallConfirm, len(cs))
	for i, c := range cs {
		out[i] = bridge.LogicCallConfirm{InvalidationID: c.InvalidationID, InvalidationNonce: c.InvalidationNonce, Signature: c.Signature}
	}
	return out
}

// grpcProber dials the Cosmos gRPC channel and probes it by issuing a
// trivial bank params query, matching the teacher's cmd/utils/grpc.go
// GetGRPC helper's TLS/insecure branching.
type grpcProber struct{}

func (grpcProber) Dial(ctx context.Context, addr string) (any, error) {
	creds := insecure.NewCredentials()
	if isTLSAddr(addr) {
		creds = credentials.NewTLS(nil)
	}
	conn, err := grpc.NewClient(stripScheme(addr), grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("dial cosmos grpc %s: %w", addr, err)
	}
	return conn, nil
}

func (grpcProber) Probe(ctx context.Context, client any) error {
	conn := client.(*grpc.ClientConn)
	bank := banktypes.NewQueryClient(conn)
	_, err := bank.Params(ctx, &banktypes.QueryParamsRequest{})
	return err
}

func isTLSAddr(addr string) bool {
	return len(addr) >= 8 && addr[:8] == "https://"
}

func stripScheme(addr string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if len(addr) > len(prefix) && addr[:len(prefix)] == prefix {
			return addr[len(prefix):]
		}
	}
	return addr
}

// legacyRESTClient wraps the Cosmos legacy REST (Tendermint RPC)
// sync-status endpoint used by spec.md §4.2 step 1 and the bring-up
// probe for the legacy RPC endpoint.
type legacyRESTClient struct {
	baseURL string
	http    *http.Client
}

func newLegacyRESTClient(baseURL string, timeout time.Duration) *legacyRESTClient {
	return &legacyRESTClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

type tendermintStatusResponse struct {
	Result struct {
		SyncInfo struct {
			CatchingUp bool `json:"catching_up"`
		} `json:"sync_info"`
	} `json:"result"`
}

func (c *legacyRESTClient) SyncingStatus(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d from %s/status", resp.StatusCode, c.baseURL)
	}
	var out tendermintStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode sync status: %w", err)
	}
	return out.Result.SyncInfo.CatchingUp, nil
}

// legacyRESTProber probes the legacy REST endpoint's sync-status call,
// mirroring the original orchestrator's Contact::get_syncing_status
// probe in connection_prep.rs.
type legacyRESTProber struct {
	timeout time.Duration
}

func (p legacyRESTProber) Dial(ctx context.Context, addr string) (any, error) {
	return newLegacyRESTClient(addr, p.timeout), nil
}

func (legacyRESTProber) Probe(ctx context.Context, client any) error {
	c := client.(*legacyRESTClient)
	_, err := c.SyncingStatus(ctx)
	return err
}
