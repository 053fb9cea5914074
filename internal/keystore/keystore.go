// Package keystore is the external collaborator spec.md §6 describes
// for loading the operator's delegate key material from disk: a
// Cosmos bech32 mnemonic and/or a hex EVM private key. CLI flags take
// precedence over the stored values; if neither is present the core
// aborts with a user-facing explanation, per spec.md §6.
package keystore

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/BurntSushi/toml"
	hd "github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	bip39 "github.com/cosmos/go-bip39"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
)

// Keys is the on-disk (or CLI-supplied) delegate key material.
type Keys struct {
	OrchestratorPhrase *string `toml:"orchestrator_phrase,omitempty" json:"orchestrator_phrase,omitempty"`
	EthereumPrivateKey *string `toml:"ethereum_private_key,omitempty" json:"ethereum_private_key,omitempty"`
}

// Load reads Keys from a TOML or JSON file at path, chosen by
// extension (encoding/json for .json, BurntSushi/toml otherwise).
func Load(path string) (*Keys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var keys Keys
	if len(path) > 5 && path[len(path)-5:] == ".json" {
		if err := json.Unmarshal(data, &keys); err != nil {
			return nil, err
		}
		return &keys, nil
	}
	if _, err := toml.Decode(string(data), &keys); err != nil {
		return nil, err
	}
	return &keys, nil
}

// Resolve merges CLI-supplied overrides over stored keys, preferring
// the CLI value when both are present.
func Resolve(stored *Keys, cliPhrase, cliEthKey *string) Keys {
	out := Keys{}
	if stored != nil {
		out = *stored
	}
	if cliPhrase != nil {
		out.OrchestratorPhrase = cliPhrase
	}
	if cliEthKey != nil {
		out.EthereumPrivateKey = cliEthKey
	}
	return out
}

// gravityHDPath is the BIP44 derivation path used for the Cosmos
// delegate key, matching the default coin type 118 path cosmos-sdk
// wallets use.
const gravityHDPath = "m/44'/118'/0'/0/0"

// CosmosKeyFromMnemonic derives a secp256k1 private key from a BIP39
// mnemonic phrase using the standard Cosmos HD path.
func CosmosKeyFromMnemonic(mnemonic string) (cryptotypes.PrivKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, bridge.NewUnrecoverableError("stored orchestrator_phrase is not a valid BIP39 mnemonic")
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, bridge.NewUnrecoverableError("failed to derive seed from mnemonic: %v", err)
	}
	master, ch := hd.ComputeMastersFromSeed(seed)
	derived, err := hd.DerivePrivateKeyForPath(master, ch, gravityHDPath)
	if err != nil {
		return nil, bridge.NewUnrecoverableError("failed to derive key at path %s: %v", gravityHDPath, err)
	}
	return &secp256k1.PrivKey{Key: derived}, nil
}

// EthereumKeyFromHex parses a hex-encoded ECDSA private key, with or
// without a leading 0x.
func EthereumKeyFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	trimmed := hexKey
	if len(trimmed) > 2 && trimmed[:2] == "0x" {
		trimmed = trimmed[2:]
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, bridge.NewUnrecoverableError("stored ethereum_private_key is not valid hex: %v", err)
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, bridge.NewUnrecoverableError("stored ethereum_private_key is not a valid secp256k1 key: %v", err)
	}
	return key, nil
}
