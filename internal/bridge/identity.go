package bridge

import (
	"crypto/ecdsa"

	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// OrchestratorIdentity is immutable for the process lifetime and shared
// by reference with all three loops. Nothing in this struct is ever
// mutated after Connect/Startup finish.
type OrchestratorIdentity struct {
	// CosmosSigningKey derives the validator's delegate Cosmos address.
	CosmosSigningKey cryptotypes.PrivKey
	// EvmSigningKey derives the validator's delegate EVM address.
	EvmSigningKey *ecdsa.PrivateKey
	// BridgeContract is the 20-byte EVM address of the bridge contract.
	BridgeContract ethcommon.Address
	// BridgeID domain-separates signatures for this bridge instance.
	BridgeID string
	// Fee is paid on every Cosmos transaction the orchestrator submits.
	Fee sdk.Coin
	// AddressPrefix is the bech32 human-readable prefix for Cosmos
	// addresses on this chain (e.g. "cosmos").
	AddressPrefix string
}

// CosmosAddress derives the Cosmos account address of the delegate key.
// AddressPrefix is not read here; the address's bech32 string form uses
// the account prefix set in the global sdk config.
func (id *OrchestratorIdentity) CosmosAddress() sdk.AccAddress {
	return sdk.AccAddress(id.CosmosSigningKey.PubKey().Address())
}

// EvmAddress derives the 20-byte EVM address of the delegate key.
func (id *OrchestratorIdentity) EvmAddress() ethcommon.Address {
	return crypto.PubkeyToAddress(id.EvmSigningKey.PublicKey)
}
