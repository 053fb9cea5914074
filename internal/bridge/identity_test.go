package bridge_test

import (
	"testing"

	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
)

func TestOrchestratorIdentity_CosmosAddressMatchesPubKey(t *testing.T) {
	priv := secp256k1.GenPrivKey()
	id := &bridge.OrchestratorIdentity{CosmosSigningKey: priv}
	require.Equal(t, sdk.AccAddress(priv.PubKey().Address()), id.CosmosAddress())
}

func TestOrchestratorIdentity_EvmAddressMatchesPubKey(t *testing.T) {
	evmKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	id := &bridge.OrchestratorIdentity{EvmSigningKey: evmKey}
	require.Equal(t, crypto.PubkeyToAddress(evmKey.PublicKey), id.EvmAddress())
}
