package bridgeabi

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/oracle"
)

// Decoder implements oracle.LogDecoder against ParsedABI.
type Decoder struct{}

var _ oracle.LogDecoder = (*Decoder)(nil)

func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) DecodeSendToCosmos(logs []ethtypes.Log) ([]*bridge.SendToCosmosEvent, error) {
	out := make([]*bridge.SendToCosmosEvent, 0, len(logs))
	for _, l := range logs {
		fields, err := unpackNonIndexed("SendToCosmosEvent", l.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, &bridge.SendToCosmosEvent{
			Erc20:             topicAddress(l, 1),
			SenderEvm:         topicAddress(l, 2),
			DestinationCosmos: fields["_destination"].(string),
			Amount:            fields["_amount"].(*big.Int),
			Nonce:             fields["_eventNonce"].(*big.Int).Uint64(),
			Height:            l.BlockNumber,
		})
	}
	return out, nil
}

func (d *Decoder) DecodeBatchExecuted(logs []ethtypes.Log) ([]*bridge.TransactionBatchExecutedEvent, error) {
	out := make([]*bridge.TransactionBatchExecutedEvent, 0, len(logs))
	for _, l := range logs {
		fields, err := unpackNonIndexed("TransactionBatchExecutedEvent", l.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, &bridge.TransactionBatchExecutedEvent{
			BatchNonce: topicUint64(l, 1),
			Erc20:      topicAddress(l, 2),
			Nonce:      fields["_eventNonce"].(*big.Int).Uint64(),
			Height:     l.BlockNumber,
		})
	}
	return out, nil
}

func (d *Decoder) DecodeValsetUpdated(logs []ethtypes.Log) ([]*bridge.ValsetUpdatedEvent, error) {
	out := make([]*bridge.ValsetUpdatedEvent, 0, len(logs))
	for _, l := range logs {
		fields, err := unpackNonIndexed("ValsetUpdatedEvent", l.Data)
		if err != nil {
			return nil, err
		}
		validators := fields["_validators"].([]ethcommon.Address)
		powers := fields["_powers"].([]*big.Int)
		members := make([]bridge.ValsetMember, len(validators))
		for i := range validators {
			members[i] = bridge.ValsetMember{EthereumAddress: validators[i], Power: powers[i].Uint64()}
		}
		out = append(out, &bridge.ValsetUpdatedEvent{
			ValsetNonce: topicUint64(l, 1),
			Members:     members,
			Rewards:     fields["_rewardAmount"].(*big.Int),
			Nonce:       fields["_eventNonce"].(*big.Int).Uint64(),
			Height:      l.BlockNumber,
		})
	}
	return out, nil
}

func (d *Decoder) DecodeErc20Deployed(logs []ethtypes.Log) ([]*bridge.Erc20DeployedEvent, error) {
	out := make([]*bridge.Erc20DeployedEvent, 0, len(logs))
	for _, l := range logs {
		fields, err := unpackNonIndexed("ERC20DeployedEvent", l.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, &bridge.Erc20DeployedEvent{
			CosmosDenom:  fields["_cosmosDenom"].(string),
			Erc20Address: topicAddress(l, 1),
			Name:         fields["_name"].(string),
			Symbol:       fields["_symbol"].(string),
			Decimals:     fields["_decimals"].(uint8),
			Nonce:        fields["_eventNonce"].(*big.Int).Uint64(),
			Height:       l.BlockNumber,
		})
	}
	return out, nil
}

func (d *Decoder) DecodeLogicCallExecuted(logs []ethtypes.Log) ([]*bridge.LogicCallExecutedEvent, error) {
	out := make([]*bridge.LogicCallExecutedEvent, 0, len(logs))
	for _, l := range logs {
		fields, err := unpackNonIndexed("LogicCallEvent", l.Data)
		if err != nil {
			return nil, err
		}
		invalidationID := fields["_invalidationId"].([32]byte)
		out = append(out, &bridge.LogicCallExecutedEvent{
			InvalidationID:    invalidationID[:],
			InvalidationNonce: fields["_invalidationNonce"].(*big.Int).Uint64(),
			Nonce:             fields["_eventNonce"].(*big.Int).Uint64(),
			Height:            l.BlockNumber,
		})
	}
	return out, nil
}

func unpackNonIndexed(eventName string, data []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := ParsedABI.UnpackIntoMap(out, eventName, data); err != nil {
		return nil, err
	}
	return out, nil
}

func topicAddress(l ethtypes.Log, i int) ethcommon.Address {
	return ethcommon.BytesToAddress(l.Topics[i].Bytes())
}

func topicUint64(l ethtypes.Log, i int) uint64 {
	return new(big.Int).SetBytes(l.Topics[i].Bytes()).Uint64()
}
