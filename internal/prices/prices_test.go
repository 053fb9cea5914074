package prices_test

import (
	"context"
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/cosmos-bridge/orchestrator/internal/prices"
)

func TestAlwaysProfitable_QuotesAmountUnchanged(t *testing.T) {
	o := prices.AlwaysProfitable{}
	amount := big.NewInt(42)
	got, err := o.QuoteInWei(context.Background(), ethcommon.Address{}, amount)
	require.NoError(t, err)
	require.Equal(t, amount, got)
}

func TestIsProfitable(t *testing.T) {
	require.True(t, prices.IsProfitable(big.NewInt(100), big.NewInt(100)))
	require.True(t, prices.IsProfitable(big.NewInt(101), big.NewInt(100)))
	require.False(t, prices.IsProfitable(big.NewInt(99), big.NewInt(100)))
}
