package gravityrpc

import (
	"context"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/tx"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	txtypes "github.com/cosmos/cosmos-sdk/types/tx"
	"github.com/cosmos/cosmos-sdk/types/tx/signing"
	authsigning "github.com/cosmos/cosmos-sdk/x/auth/signing"
	authtx "github.com/cosmos/cosmos-sdk/x/auth/tx"
	"google.golang.org/grpc"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
)

const defaultGasLimit = uint64(500_000)

// CosmosBroadcastAdapter implements bridge.CosmosBroadcastClient by
// building, signing, and submitting a single Cosmos transaction per
// call, the way the teacher's cmd/relay_tx.go builds and signs a
// transaction before calling BroadcastTx.
type CosmosBroadcastAdapter struct {
	query    *CosmosQueryAdapter
	txConfig client.TxConfig
	txClient txtypes.ServiceClient
}

var _ bridge.CosmosBroadcastClient = (*CosmosBroadcastAdapter)(nil)

func NewCosmosBroadcastAdapter(conn *grpc.ClientConn, query *CosmosQueryAdapter) *CosmosBroadcastAdapter {
	registry := cdctypes.NewInterfaceRegistry()
	protoCodec := codec.NewProtoCodec(registry)
	return &CosmosBroadcastAdapter{
		query:    query,
		txConfig: authtx.NewTxConfig(protoCodec, authtx.DefaultSignModes),
		txClient: txtypes.NewServiceClient(conn),
	}
}

// submit builds, signs with id's Cosmos delegate key, and broadcasts a
// transaction carrying msgs. Every Cosmos transaction the orchestrator
// submits pays id.Fee, per spec.md §3.
func (a *CosmosBroadcastAdapter) submit(ctx context.Context, id *bridge.OrchestratorIdentity, msgs ...sdk.Msg) (string, error) {
	accountNumber, sequence, err := a.query.AccountInfo(ctx, id.CosmosAddress())
	if err != nil {
		return "", err
	}

	builder := a.txConfig.NewTxBuilder()
	if err := builder.SetMsgs(msgs...); err != nil {
		return "", bridge.NewValidationError("failed to set messages on tx builder: %v", err)
	}
	builder.SetGasLimit(defaultGasLimit)
	builder.SetFeeAmount(sdk.NewCoins(id.Fee))

	signMode := a.txConfig.SignModeHandler().DefaultMode()

	placeholder := signing.SignatureV2{
		PubKey:   id.CosmosSigningKey.PubKey(),
		Data:     &signing.SingleSignatureData{SignMode: signMode},
		Sequence: sequence,
	}
	if err := builder.SetSignatures(placeholder); err != nil {
		return "", bridge.NewValidationError("failed to set placeholder signature: %v", err)
	}

	signerData := authsigning.SignerData{
		Address:       id.CosmosAddress().String(),
		ChainID:       id.BridgeID,
		AccountNumber: accountNumber,
		Sequence:      sequence,
		PubKey:        id.CosmosSigningKey.PubKey(),
	}
	finalSig, err := tx.SignWithPrivKey(
		ctx,
		signMode,
		signerData,
		builder,
		id.CosmosSigningKey,
		a.txConfig,
		sequence,
	)
	if err != nil {
		return "", bridge.NewValidationError("failed to sign transaction: %v", err)
	}
	if err := builder.SetSignatures(finalSig); err != nil {
		return "", bridge.NewValidationError("failed to set final signature: %v", err)
	}

	txBytes, err := a.txConfig.TxEncoder()(builder.GetTx())
	if err != nil {
		return "", bridge.NewValidationError("failed to encode transaction: %v", err)
	}

	resp, err := a.txClient.BroadcastTx(ctx, &txtypes.BroadcastTxRequest{
		Mode:    txtypes.BroadcastMode_BROADCAST_MODE_SYNC,
		TxBytes: txBytes,
	})
	if err != nil {
		return "", bridge.NewRPCError(err, "failed to broadcast transaction")
	}
	if resp.TxResponse.Code != 0 {
		return resp.TxResponse.TxHash, bridge.NewValidationError("transaction %s rejected with code %d: %s", resp.TxResponse.TxHash, resp.TxResponse.Code, resp.TxResponse.RawLog)
	}
	return resp.TxResponse.TxHash, nil
}

func (a *CosmosBroadcastAdapter) SendEthereumClaims(ctx context.Context, id *bridge.OrchestratorIdentity, claims bridge.Claims) (string, error) {
	msgs := buildClaimMessages(id, claims)
	return a.submit(ctx, id, msgs...)
}

func (a *CosmosBroadcastAdapter) SendValsetConfirms(ctx context.Context, id *bridge.OrchestratorIdentity, confirms []bridge.ValsetConfirm) (string, error) {
	msgs := make([]sdk.Msg, len(confirms))
	for i, c := range confirms {
		msgs[i] = &msgValsetConfirm{Orchestrator: id.CosmosAddress().String(), Nonce: c.Nonce, Signature: c.Signature}
	}
	return a.submit(ctx, id, msgs...)
}

func (a *CosmosBroadcastAdapter) SendBatchConfirms(ctx context.Context, id *bridge.OrchestratorIdentity, confirms []bridge.BatchConfirm) (string, error) {
	msgs := make([]sdk.Msg, len(confirms))
	for i, c := range confirms {
		msgs[i] = &msgBatchConfirm{Orchestrator: id.CosmosAddress().String(), BatchNonce: c.BatchNonce, TokenContract: c.Erc20.Hex(), Signature: c.Signature}
	}
	return a.submit(ctx, id, msgs...)
}

func (a *CosmosBroadcastAdapter) SendLogicCallConfirms(ctx context.Context, id *bridge.OrchestratorIdentity, confirms []bridge.LogicCallConfirm) (string, error) {
	msgs := make([]sdk.Msg, len(confirms))
	for i, c := range confirms {
		msgs[i] = &msgLogicCallConfirm{Orchestrator: id.CosmosAddress().String(), InvalidationID: c.InvalidationID, InvalidationNonce: c.InvalidationNonce, Signature: c.Signature}
	}
	return a.submit(ctx, id, msgs...)
}

func (a *CosmosBroadcastAdapter) SendRequestBatchTx(ctx context.Context, id *bridge.OrchestratorIdentity, denom string) (string, error) {
	msg := &msgRequestBatch{Orchestrator: id.CosmosAddress().String(), Denom: denom}
	return a.submit(ctx, id, msg)
}

// buildClaimMessages assembles one claim message per observed event, in
// the canonical order required by spec.md §4.3/§8: valsets, batches,
// deposits, erc20 deploys, logic calls. Deterministic claim ordering is
// what lets independent validators produce byte-identical transactions
// for identical EVM observations.
func buildClaimMessages(id *bridge.OrchestratorIdentity, claims bridge.Claims) []sdk.Msg {
	orchestrator := id.CosmosAddress().String()
	msgs := make([]sdk.Msg, 0, len(claims.Valsets)+len(claims.Batches)+len(claims.Deposits)+len(claims.Deploys)+len(claims.LogicCalls))
	for _, v := range claims.Valsets {
		msgs = append(msgs, &msgValsetUpdatedClaim{Orchestrator: orchestrator, EventNonce: v.EventNonce(), BlockHeight: v.BlockHeight(), ValsetNonce: v.ValsetNonce})
	}
	for _, b := range claims.Batches {
		msgs = append(msgs, &msgBatchExecutedClaim{Orchestrator: orchestrator, EventNonce: b.EventNonce(), BlockHeight: b.BlockHeight(), BatchNonce: b.BatchNonce, TokenContract: b.Erc20.Hex()})
	}
	for _, d := range claims.Deposits {
		msgs = append(msgs, &msgSendToCosmosClaim{
			Orchestrator: orchestrator, EventNonce: d.EventNonce(), BlockHeight: d.BlockHeight(),
			TokenContract: d.Erc20.Hex(), Amount: d.Amount.String(), EthereumSender: d.SenderEvm.Hex(), CosmosReceiver: d.DestinationCosmos,
		})
	}
	for _, dep := range claims.Deploys {
		msgs = append(msgs, &msgErc20DeployedClaim{
			Orchestrator: orchestrator, EventNonce: dep.EventNonce(), BlockHeight: dep.BlockHeight(),
			CosmosDenom: dep.CosmosDenom, TokenContract: dep.Erc20Address.Hex(), Name: dep.Name, Symbol: dep.Symbol, Decimals: uint64(dep.Decimals),
		})
	}
	for _, lc := range claims.LogicCalls {
		msgs = append(msgs, &msgLogicCallExecutedClaim{Orchestrator: orchestrator, EventNonce: lc.EventNonce(), BlockHeight: lc.BlockHeight(), InvalidationID: lc.InvalidationID, InvalidationNonce: lc.InvalidationNonce})
	}
	return msgs
}
