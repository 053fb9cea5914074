package bridge

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
)

// UnsignedValset is a validator-set update the bridge module has not yet
// collected this validator's signature for.
type UnsignedValset struct {
	Nonce   uint64
	Members []ValsetMember
	RewardTo ethcommon.Address
}

// UnsignedBatch is an outbound ERC20 batch awaiting this validator's
// signature.
type UnsignedBatch struct {
	BatchNonce uint64
	Erc20      ethcommon.Address
	Timeout    uint64
}

// UnsignedLogicCall is an outbound logic call awaiting this validator's
// signature.
type UnsignedLogicCall struct {
	InvalidationID    []byte
	InvalidationNonce uint64
}

// ValsetConfirm is this validator's signature over a valset update hash.
type ValsetConfirm struct {
	Nonce     uint64
	Signature []byte
}

// BatchConfirm is this validator's signature over a batch hash.
type BatchConfirm struct {
	BatchNonce uint64
	Erc20      ethcommon.Address
	Signature  []byte
}

// LogicCallConfirm is this validator's signature over a logic call hash.
type LogicCallConfirm struct {
	InvalidationID    []byte
	InvalidationNonce uint64
	Signature         []byte
}

// SignedValset is a valset update that has accumulated enough signatures
// (per BridgeParams.PowerThreshold) to be relayed to the EVM chain.
type SignedValset struct {
	Valset     UnsignedValset
	Signatures []ValsetConfirm
	Power      uint64
}

// SignedBatch is a batch that has accumulated enough signatures to be
// relayed.
type SignedBatch struct {
	Batch      UnsignedBatch
	Signatures []BatchConfirm
	Power      uint64
	// Reward is the reward address the pending-relay query reports for
	// this batch. The relayer's profitability check does not read it; it
	// quotes one unit of Batch.Erc20 instead.
	Reward ethcommon.Address
}

// SignedLogicCall is a logic call that has accumulated enough signatures
// to be relayed.
type SignedLogicCall struct {
	Call       UnsignedLogicCall
	Signatures []LogicCallConfirm
	Power      uint64
}
