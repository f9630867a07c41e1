package interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// AssetTransferPort moves units of a single asset between the treasury's
// custody account and external principals. TransferIn requires the holder
// to have pre-authorized the treasury; failures are external conditions
// and are reported as-is.
type AssetTransferPort interface {
	TransferIn(ctx context.Context, from string, amount decimal.Decimal) error
	TransferOut(ctx context.Context, to string, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, holder string) (decimal.Decimal, error)
}
