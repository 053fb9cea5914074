// Package prices provides the relayer's profitability check: an
// adapter over a Uniswap-style price quote used to compare an
// outbound item's reward against the EVM gas cost of relaying it.
// Grounded in get_weth_price and get_dai_price from the original
// orchestrator's gravity_utils/src/prices.rs, translated to a Go
// interface so the price feed stays an external collaborator per
// spec.md §4.5.
package prices

import (
	"context"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

// Oracle quotes the value of amount units of token, denominated in
// wei of the chain's native asset, using whatever on-chain liquidity
// source it is configured against.
type Oracle interface {
	QuoteInWei(ctx context.Context, token ethcommon.Address, amount *big.Int) (*big.Int, error)
}

// AlwaysProfitable is the default Oracle used when no price feed is
// configured: it consults no price source and quotes amount units of
// any token as the same number of wei. Whether a quote then passes
// IsProfitable depends on the amount quoted and the gas cost. This is a
// GO-NATIVE EXPANSION — spec.md describes the adapter's shape but not a
// default implementation.
type AlwaysProfitable struct{}

func (AlwaysProfitable) QuoteInWei(ctx context.Context, token ethcommon.Address, amount *big.Int) (*big.Int, error) {
	return new(big.Int).Set(amount), nil
}

// IsProfitable reports whether rewardWei at least covers gasCostWei.
// Used by the relayer loop's ProfitableOnly batch_request_mode check.
func IsProfitable(rewardWei, gasCostWei *big.Int) bool {
	return rewardWei.Cmp(gasCostWei) >= 0
}
