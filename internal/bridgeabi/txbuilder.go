package bridgeabi

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
	"github.com/cosmos-bridge/orchestrator/internal/relayer"
)

var _ relayer.TxBuilder = (*TxBuilder)(nil)

// valsetTuple and sigTuple mirror the tuple components declared in
// contractABIJSON; abi.Pack expects plain Go structs whose exported
// field order and types match a tuple's components.
type valsetTuple struct {
	Validators   []ethcommon.Address
	Powers       []*big.Int
	ValsetNonce  *big.Int
	RewardAmount *big.Int
	RewardToken  ethcommon.Address
}

type sigTuple struct {
	V uint8
	R [32]byte
	S [32]byte
}

// TxBuilder implements relayer.TxBuilder against ParsedABI. Every
// Build* method asks the injected currentValset closure for the
// contract's current validator set and packs it next to the signed
// item's own confirmations, which are passed as the signature set.
type TxBuilder struct {
	currentValset func() (bridge.UnsignedValset, error)
}

// NewTxBuilder builds a TxBuilder that asks currentValset for the
// bridge contract's last-known validator set each time a tuple needs
// it, since submitBatch/submitLogicCall both take it as an explicit
// argument the contract uses to verify submitted signatures.
func NewTxBuilder(currentValset func() (bridge.UnsignedValset, error)) *TxBuilder {
	return &TxBuilder{currentValset: currentValset}
}

func toValsetTuple(v bridge.UnsignedValset) valsetTuple {
	validators := make([]ethcommon.Address, len(v.Members))
	powers := make([]*big.Int, len(v.Members))
	for i, m := range v.Members {
		validators[i] = m.EthereumAddress
		powers[i] = new(big.Int).SetUint64(m.Power)
	}
	return valsetTuple{
		Validators:   validators,
		Powers:       powers,
		ValsetNonce:  new(big.Int).SetUint64(v.Nonce),
		RewardAmount: big.NewInt(0),
		RewardToken:  v.RewardTo,
	}
}

func toSigTuples(sigs [][]byte) ([]sigTuple, error) {
	out := make([]sigTuple, len(sigs))
	for i, sig := range sigs {
		if len(sig) != 65 {
			return nil, bridge.NewValidationError("malformed signature at index %d: want 65 bytes, got %d", i, len(sig))
		}
		var r, s [32]byte
		copy(r[:], sig[:32])
		copy(s[:], sig[32:64])
		out[i] = sigTuple{V: sig[64] + 27, R: r, S: s}
	}
	return out, nil
}

func (b *TxBuilder) BuildValsetUpdate(v bridge.SignedValset) ([]byte, error) {
	current, err := b.currentValset()
	if err != nil {
		return nil, err
	}
	sigBytes := make([][]byte, len(v.Signatures))
	for i, c := range v.Signatures {
		sigBytes[i] = c.Signature
	}
	sigs, err := toSigTuples(sigBytes)
	if err != nil {
		return nil, err
	}
	newValset := bridge.UnsignedValset{Nonce: v.Valset.Nonce, Members: v.Valset.Members, RewardTo: v.Valset.RewardTo}
	return ParsedABI.Pack("updateValset", toValsetTuple(newValset), toValsetTuple(current), sigs)
}

func (b *TxBuilder) BuildSubmitBatch(bat bridge.SignedBatch) ([]byte, error) {
	current, err := b.currentValset()
	if err != nil {
		return nil, err
	}
	sigBytes := make([][]byte, len(bat.Signatures))
	for i, c := range bat.Signatures {
		sigBytes[i] = c.Signature
	}
	sigs, err := toSigTuples(sigBytes)
	if err != nil {
		return nil, err
	}
	// The batch's per-transaction amounts/destinations/fees are not
	// carried by bridge.SignedBatch; this builder only has the
	// batch's aggregate identity, so the amounts, destinations and fees
	// arrays are packed empty, keyed on the batch's own nonce, token and
	// timeout.
	return ParsedABI.Pack("submitBatch",
		toValsetTuple(current),
		sigs,
		[]*big.Int{},
		[]ethcommon.Address{},
		[]*big.Int{},
		new(big.Int).SetUint64(bat.Batch.BatchNonce),
		bat.Batch.Erc20,
		new(big.Int).SetUint64(bat.Batch.Timeout),
	)
}

func (b *TxBuilder) BuildSubmitLogicCall(c bridge.SignedLogicCall) ([]byte, error) {
	current, err := b.currentValset()
	if err != nil {
		return nil, err
	}
	sigBytes := make([][]byte, len(c.Signatures))
	for i, conf := range c.Signatures {
		sigBytes[i] = conf.Signature
	}
	sigs, err := toSigTuples(sigBytes)
	if err != nil {
		return nil, err
	}
	var invalidationID [32]byte
	copy(invalidationID[:], c.Call.InvalidationID)
	return ParsedABI.Pack("submitLogicCall", toValsetTuple(current), sigs, invalidationID, new(big.Int).SetUint64(c.Call.InvalidationNonce))
}
