package interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// SwapPort routes an amount of one asset through an external venue and
// reports which asset came back and how much of it. It may fail on
// liquidity or price conditions; callers treat any failure as atomic.
type SwapPort interface {
	Swap(ctx context.Context, assetIn string, amountIn decimal.Decimal) (assetOut string, amountOut decimal.Decimal, err error)
}
