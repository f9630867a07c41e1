package swap

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/treasury-ledger/internal/models"
	"github.com/custodia-labs/treasury-ledger/internal/tokens"
)

var (
	usdcAsset = models.Asset{Address: "usdc", Symbol: "USDC", Decimals: 6}
	daiAsset  = models.Asset{Address: "dai", Symbol: "DAI", Decimals: 18}
)

func newRouter() (*FixedRateRouter, *tokens.Token, *tokens.Token) {
	usdc := tokens.NewToken(usdcAsset.Address, usdcAsset.Symbol, usdcAsset.Decimals)
	dai := tokens.NewToken(daiAsset.Address, daiAsset.Symbol, daiAsset.Decimals)
	router := NewFixedRateRouter("router", "treasury", usdcAsset, daiAsset, usdc, dai)
	return router, usdc, dai
}

func TestSwapRescalesSixToEighteen(t *testing.T) {
	router, usdc, dai := newRouter()
	ctx := context.Background()

	usdc.Mint("treasury", decimal.New(5000, 6))
	require.NoError(t, router.AddLiquidity(daiAsset.Address, decimal.New(10000, 18)))

	assetOut, amountOut, err := router.Swap(ctx, usdcAsset.Address, decimal.New(5000, 6))
	require.NoError(t, err)
	assert.Equal(t, daiAsset.Address, assetOut)
	assert.True(t, amountOut.Equal(decimal.New(5000, 18)), "got %s", amountOut)

	// Funds actually moved.
	assert.True(t, usdc.BalanceOf("treasury").IsZero())
	assert.True(t, dai.BalanceOf("treasury").Equal(decimal.New(5000, 18)))
}

func TestSwapRescalesEighteenToSixFloors(t *testing.T) {
	router, usdc, dai := newRouter()
	ctx := context.Background()

	// 1.5 DAI in raw units plus sub-unit dust that cannot survive the
	// precision drop.
	amountIn := decimal.New(15, 17).Add(decimal.NewFromInt(999))
	dai.Mint("treasury", amountIn)
	require.NoError(t, router.AddLiquidity(usdcAsset.Address, decimal.New(10, 6)))

	assetOut, amountOut, err := router.Swap(ctx, daiAsset.Address, amountIn)
	require.NoError(t, err)
	assert.Equal(t, usdcAsset.Address, assetOut)
	assert.True(t, amountOut.Equal(decimal.New(15, 5)), "got %s", amountOut)
	assert.True(t, usdc.BalanceOf("treasury").Equal(decimal.New(15, 5)))
}

func TestSwapFailsWithoutLiquidity(t *testing.T) {
	router, usdc, _ := newRouter()
	ctx := context.Background()

	usdc.Mint("treasury", decimal.New(5000, 6))

	_, _, err := router.Swap(ctx, usdcAsset.Address, decimal.New(5000, 6))
	require.Error(t, err)

	// The input was refunded: a failed venue takes nothing.
	assert.True(t, usdc.BalanceOf("treasury").Equal(decimal.New(5000, 6)))
}

func TestSwapRejectsUnknownAsset(t *testing.T) {
	router, _, _ := newRouter()

	_, _, err := router.Swap(context.Background(), "wbtc", decimal.NewFromInt(1))
	require.Error(t, err)
}

func TestSwapRejectsDustInput(t *testing.T) {
	router, _, dai := newRouter()
	ctx := context.Background()

	// Less than one raw unit of the 6-decimal side.
	dai.Mint("treasury", decimal.NewFromInt(999))
	require.NoError(t, router.AddLiquidity(usdcAsset.Address, decimal.New(10, 6)))

	_, _, err := router.Swap(ctx, daiAsset.Address, decimal.NewFromInt(999))
	require.Error(t, err)
	assert.True(t, dai.BalanceOf("treasury").Equal(decimal.NewFromInt(999)))
}
