package bridgeabi_test

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/bridgeabi"
)

func TestDecodeSendToCosmos_RoundTrips(t *testing.T) {
	erc20 := ethcommon.HexToAddress("0x1111111111111111111111111111111111111111")
	sender := ethcommon.HexToAddress("0x2222222222222222222222222222222222222222")

	nonIndexed := bridgeabi.ParsedABI.Events["SendToCosmosEvent"].Inputs.NonIndexed()
	data, err := nonIndexed.Pack("cosmos1abc", big.NewInt(500), big.NewInt(7))
	require.NoError(t, err)

	log := ethtypes.Log{
		Topics: []ethcommon.Hash{
			bridgeabi.ParsedABI.Events["SendToCosmosEvent"].ID,
			ethcommon.BytesToHash(erc20.Bytes()),
			ethcommon.BytesToHash(sender.Bytes()),
		},
		Data:        data,
		BlockNumber: 1000,
	}

	d := bridgeabi.NewDecoder()
	events, err := d.DecodeSendToCosmos([]ethtypes.Log{log})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, erc20, events[0].Erc20)
	require.Equal(t, sender, events[0].SenderEvm)
	require.Equal(t, "cosmos1abc", events[0].DestinationCosmos)
	require.Equal(t, big.NewInt(500), events[0].Amount)
	require.Equal(t, uint64(7), events[0].Nonce)
	require.Equal(t, uint64(1000), events[0].Height)
}

func TestDecodeValsetUpdated_RoundTrips(t *testing.T) {
	val1 := ethcommon.HexToAddress("0x3333333333333333333333333333333333333333")
	val2 := ethcommon.HexToAddress("0x4444444444444444444444444444444444444444")

	nonIndexed := bridgeabi.ParsedABI.Events["ValsetUpdatedEvent"].Inputs.NonIndexed()
	data, err := nonIndexed.Pack(
		big.NewInt(9),
		big.NewInt(0),
		ethcommon.Address{},
		[]ethcommon.Address{val1, val2},
		[]*big.Int{big.NewInt(100), big.NewInt(200)},
	)
	require.NoError(t, err)

	log := ethtypes.Log{
		Topics: []ethcommon.Hash{
			bridgeabi.ParsedABI.Events["ValsetUpdatedEvent"].ID,
			ethcommon.BigToHash(big.NewInt(3)),
		},
		Data:        data,
		BlockNumber: 42,
	}

	d := bridgeabi.NewDecoder()
	events, err := d.DecodeValsetUpdated([]ethtypes.Log{log})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, uint64(3), events[0].ValsetNonce)
	require.Equal(t, uint64(9), events[0].Nonce)
	require.Len(t, events[0].Members, 2)
	require.Equal(t, val1, events[0].Members[0].EthereumAddress)
	require.Equal(t, uint64(100), events[0].Members[0].Power)
}

func TestTxBuilder_BuildSubmitBatch_EncodesMethodSelector(t *testing.T) {
	current := bridge.UnsignedValset{
		Nonce:   1,
		Members: []bridge.ValsetMember{{EthereumAddress: ethcommon.HexToAddress("0x55"), Power: 100}},
	}
	builder := bridgeabi.NewTxBuilder(func() (bridge.UnsignedValset, error) { return current, nil })

	batch := bridge.SignedBatch{
		Batch: bridge.UnsignedBatch{BatchNonce: 4, Erc20: ethcommon.HexToAddress("0x66"), Timeout: 9999},
		Signatures: []bridge.BatchConfirm{
			{BatchNonce: 4, Signature: make([]byte, 65)},
		},
	}

	calldata, err := builder.BuildSubmitBatch(batch)
	require.NoError(t, err)
	require.True(t, len(calldata) >= 4)

	method, err := bridgeabi.ParsedABI.MethodById(calldata[:4])
	require.NoError(t, err)
	require.Equal(t, "submitBatch", method.Name)
}

func TestTxBuilder_BuildValsetUpdate_RejectsMalformedSignature(t *testing.T) {
	builder := bridgeabi.NewTxBuilder(func() (bridge.UnsignedValset, error) { return bridge.UnsignedValset{}, nil })

	_, err := builder.BuildValsetUpdate(bridge.SignedValset{
		Valset:     bridge.UnsignedValset{Nonce: 1},
		Signatures: []bridge.ValsetConfirm{{Nonce: 1, Signature: []byte{0x01}}},
	})
	require.Error(t, err)
}
