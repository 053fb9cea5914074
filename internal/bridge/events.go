package bridge

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Event is the shared accessor implemented by all five bridge-contract
// event variants. Polymorphism is modeled as a tagged variant with a
// per-type parsing function, never a class hierarchy — see spec.md §9
// Design Notes.
type Event interface {
	EventNonce() uint64
	BlockHeight() uint64
}

// EventSignature identifies one of the five log topic-zero values the
// oracle recognizes. The concrete 32-byte values belong to the bridge
// contract ABI and are injected as constants by the caller; the core
// only needs to compare them.
type EventSignature ethcommon.Hash

// SendToCosmosEvent is emitted when a user locks an ERC20 for transfer to
// the Cosmos chain.
type SendToCosmosEvent struct {
	SenderEvm          ethcommon.Address
	DestinationCosmos  string
	Erc20              ethcommon.Address
	Amount             *big.Int
	Nonce              uint64
	Height             uint64
}

func (e *SendToCosmosEvent) EventNonce() uint64  { return e.Nonce }
func (e *SendToCosmosEvent) BlockHeight() uint64 { return e.Height }

// TransactionBatchExecutedEvent is emitted when an outbound ERC20 batch
// settles on the EVM chain.
type TransactionBatchExecutedEvent struct {
	BatchNonce uint64
	Erc20      ethcommon.Address
	Nonce      uint64
	Height     uint64
}

func (e *TransactionBatchExecutedEvent) EventNonce() uint64  { return e.Nonce }
func (e *TransactionBatchExecutedEvent) BlockHeight() uint64 { return e.Height }

// ValsetUpdatedEvent is emitted whenever the bridge contract adopts a new
// validator set.
type ValsetUpdatedEvent struct {
	ValsetNonce uint64
	Members     []ValsetMember
	Rewards     *big.Int
	Nonce       uint64
	Height      uint64
}

func (e *ValsetUpdatedEvent) EventNonce() uint64  { return e.Nonce }
func (e *ValsetUpdatedEvent) BlockHeight() uint64 { return e.Height }

// ValsetMember is one entry of a ValsetUpdatedEvent's member list.
type ValsetMember struct {
	EthereumAddress ethcommon.Address
	Power           uint64
}

// Erc20DeployedEvent is emitted when the bridge contract deploys a new
// wrapped ERC20 representation of a Cosmos denom.
type Erc20DeployedEvent struct {
	CosmosDenom  string
	Name         string
	Symbol       string
	Decimals     uint8
	Erc20Address ethcommon.Address
	Nonce        uint64
	Height       uint64
}

func (e *Erc20DeployedEvent) EventNonce() uint64  { return e.Nonce }
func (e *Erc20DeployedEvent) BlockHeight() uint64 { return e.Height }

// LogicCallExecutedEvent is emitted when a signed outbound logic call
// executes on the EVM chain.
type LogicCallExecutedEvent struct {
	InvalidationID    []byte
	InvalidationNonce uint64
	Nonce             uint64
	Height            uint64
}

func (e *LogicCallExecutedEvent) EventNonce() uint64  { return e.Nonce }
func (e *LogicCallExecutedEvent) BlockHeight() uint64 { return e.Height }

// FilterByEventNonce drops every event whose nonce is not strictly
// greater than lastEventNonce. This is the exactly-once filter described
// in spec.md §4.3: nonces, not block boundaries, decide what has already
// been claimed.
func FilterByEventNonce[E Event](lastEventNonce uint64, events []E) []E {
	out := make([]E, 0, len(events))
	for _, e := range events {
		if e.EventNonce() > lastEventNonce {
			out = append(out, e)
		}
	}
	return out
}
