package gravityrpc

// The bridge module itself (its keeper, its message types, its generated
// gRPC client) is explicitly out of scope per spec.md §1: "does not
// implement the Cosmos bridge module". In a production deployment these
// request/response shapes come from that module's own generated
// *.pb.go package; the core only ever touches them through
// bridge.CosmosQueryClient / bridge.CosmosBroadcastClient. The types
// below are the minimal wire shape this adapter needs to drive those
// interfaces over the module's gRPC service, kept here so the adapter
// compiles against a concrete method set instead of an unresolved
// external import.

import ethcommon "github.com/ethereum/go-ethereum/common"

type queryDelegateKeysByEthAddressRequest struct {
	EthAddress string
}

type queryDelegateKeysByEthAddressResponse struct {
	OrchestratorAddress string
	ValidatorAddress    string
}

type queryDelegateKeysByOrchestratorAddressRequest struct {
	OrchestratorAddress string
}

type queryDelegateKeysByOrchestratorAddressResponse struct {
	EthAddress       string
	ValidatorAddress string
}

type queryParamsRequest struct{}

type queryParamsResponse struct {
	BridgeContract string
	BridgeID       string
	PowerThreshold uint64
}

type queryLastEventNonceByAddrRequest struct {
	Address string
}

type queryLastEventNonceByAddrResponse struct {
	EventNonce uint64
}

type queryFirstObservedHeightRequest struct {
	Address string
}

type queryFirstObservedHeightResponse struct {
	Height uint64
}

type queryPendingSignaturesRequest struct {
	Address string
}

type queryPendingSignaturesResponse struct {
	Valsets    []bridgeUnsignedValset
	Batches    []bridgeUnsignedBatch
	LogicCalls []bridgeUnsignedLogicCall
}

type bridgeUnsignedValset struct {
	Nonce    uint64
	Members  []bridgeValsetMember
	RewardTo ethcommon.Address
}

type bridgeValsetMember struct {
	EthereumAddress ethcommon.Address
	Power           uint64
}

type bridgeUnsignedBatch struct {
	BatchNonce uint64
	Erc20      ethcommon.Address
	Timeout    uint64
}

type bridgeUnsignedLogicCall struct {
	InvalidationID    []byte
	InvalidationNonce uint64
}

type queryCurrentValsetRequest struct{}

type queryCurrentValsetResponse struct {
	Valset bridgeUnsignedValset
}

type queryPendingRelayRequest struct{}

type queryPendingRelayResponse struct {
	Valsets    []bridgeSignedValset
	Batches    []bridgeSignedBatch
	LogicCalls []bridgeSignedLogicCall
}

type bridgeSignedValset struct {
	Valset     bridgeUnsignedValset
	Signatures []bridgeValsetConfirm
	Power      uint64
}

type bridgeValsetConfirm struct {
	Nonce     uint64
	Signature []byte
}

type bridgeSignedBatch struct {
	Batch      bridgeUnsignedBatch
	Signatures []bridgeBatchConfirm
	Power      uint64
	Reward     ethcommon.Address
}

type bridgeBatchConfirm struct {
	BatchNonce uint64
	Erc20      ethcommon.Address
	Signature  []byte
}

type bridgeSignedLogicCall struct {
	Call       bridgeUnsignedLogicCall
	Signatures []bridgeLogicCallConfirm
	Power      uint64
}

type bridgeLogicCallConfirm struct {
	InvalidationID    []byte
	InvalidationNonce uint64
	Signature         []byte
}

// The message types below stand in for the bridge module's own generated
// Msg* request types (MsgSendToCosmosClaim and friends). sdk.Msg requires
// only gogoproto.Message (Reset/String/ProtoMessage) in this cosmos-sdk
// version, which these minimal implementations satisfy without depending
// on the module's own generated code.

type msgValsetConfirm struct {
	Orchestrator string
	Nonce        uint64
	Signature    []byte
}

func (m *msgValsetConfirm) Reset()         { *m = msgValsetConfirm{} }
func (m *msgValsetConfirm) String() string { return "msgValsetConfirm" }
func (m *msgValsetConfirm) ProtoMessage()  {}

type msgBatchConfirm struct {
	Orchestrator  string
	BatchNonce    uint64
	TokenContract string
	Signature     []byte
}

func (m *msgBatchConfirm) Reset()         { *m = msgBatchConfirm{} }
func (m *msgBatchConfirm) String() string { return "msgBatchConfirm" }
func (m *msgBatchConfirm) ProtoMessage()  {}

type msgLogicCallConfirm struct {
	Orchestrator      string
	InvalidationID    []byte
	InvalidationNonce uint64
	Signature         []byte
}

func (m *msgLogicCallConfirm) Reset()         { *m = msgLogicCallConfirm{} }
func (m *msgLogicCallConfirm) String() string { return "msgLogicCallConfirm" }
func (m *msgLogicCallConfirm) ProtoMessage()  {}

type msgRequestBatch struct {
	Orchestrator string
	Denom        string
}

func (m *msgRequestBatch) Reset()         { *m = msgRequestBatch{} }
func (m *msgRequestBatch) String() string { return "msgRequestBatch" }
func (m *msgRequestBatch) ProtoMessage()  {}

type msgValsetUpdatedClaim struct {
	Orchestrator string
	EventNonce   uint64
	BlockHeight  uint64
	ValsetNonce  uint64
}

func (m *msgValsetUpdatedClaim) Reset()         { *m = msgValsetUpdatedClaim{} }
func (m *msgValsetUpdatedClaim) String() string { return "msgValsetUpdatedClaim" }
func (m *msgValsetUpdatedClaim) ProtoMessage()  {}

type msgBatchExecutedClaim struct {
	Orchestrator  string
	EventNonce    uint64
	BlockHeight   uint64
	BatchNonce    uint64
	TokenContract string
}

func (m *msgBatchExecutedClaim) Reset()         { *m = msgBatchExecutedClaim{} }
func (m *msgBatchExecutedClaim) String() string { return "msgBatchExecutedClaim" }
func (m *msgBatchExecutedClaim) ProtoMessage()  {}

type msgSendToCosmosClaim struct {
	Orchestrator   string
	EventNonce     uint64
	BlockHeight    uint64
	TokenContract  string
	Amount         string
	EthereumSender string
	CosmosReceiver string
}

func (m *msgSendToCosmosClaim) Reset()         { *m = msgSendToCosmosClaim{} }
func (m *msgSendToCosmosClaim) String() string { return "msgSendToCosmosClaim" }
func (m *msgSendToCosmosClaim) ProtoMessage()  {}

type msgErc20DeployedClaim struct {
	Orchestrator  string
	EventNonce    uint64
	BlockHeight   uint64
	CosmosDenom   string
	TokenContract string
	Name          string
	Symbol        string
	Decimals      uint64
}

func (m *msgErc20DeployedClaim) Reset()         { *m = msgErc20DeployedClaim{} }
func (m *msgErc20DeployedClaim) String() string { return "msgErc20DeployedClaim" }
func (m *msgErc20DeployedClaim) ProtoMessage()  {}

type msgLogicCallExecutedClaim struct {
	Orchestrator      string
	EventNonce        uint64
	BlockHeight       uint64
	InvalidationID    []byte
	InvalidationNonce uint64
}

func (m *msgLogicCallExecutedClaim) Reset()         { *m = msgLogicCallExecutedClaim{} }
func (m *msgLogicCallExecutedClaim) String() string { return "msgLogicCallExecutedClaim" }
func (m *msgLogicCallExecutedClaim) ProtoMessage()  {}
