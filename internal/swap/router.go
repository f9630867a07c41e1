package swap

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/treasury-ledger/internal/interfaces"
	"github.com/custodia-labs/treasury-ledger/internal/models"
	"github.com/custodia-labs/treasury-ledger/internal/tokens"
)

// FixedRateRouter is a swap venue for a stable pair: it converts between
// the two assets at a 1:1 rate adjusted for decimal precision, bounded by
// its own reserves. Output is floored to whole raw units of the out
// asset, so swapping 6-decimal dust into an 18-decimal asset never mints
// value out of rounding.
type FixedRateRouter struct {
	account  string // router's own reserve account at both tokens
	treasury string

	tokens map[string]*tokens.Token
	assets map[string]models.Asset
	pair   map[string]string // assetIn -> assetOut
}

// NewFixedRateRouter wires a router between assets a and b. The treasury
// account is both the payer of assetIn and the receiver of assetOut, as
// with an on-chain router swapping on behalf of the calling contract.
func NewFixedRateRouter(account, treasury string, a, b models.Asset, tokenA, tokenB *tokens.Token) *FixedRateRouter {
	return &FixedRateRouter{
		account:  account,
		treasury: treasury,
		tokens: map[string]*tokens.Token{
			a.Address: tokenA,
			b.Address: tokenB,
		},
		assets: map[string]models.Asset{
			a.Address: a,
			b.Address: b,
		},
		pair: map[string]string{
			a.Address: b.Address,
			b.Address: a.Address,
		},
	}
}

// AddLiquidity mints reserve units of an asset to the router so it can
// pay out swaps.
func (r *FixedRateRouter) AddLiquidity(asset string, amount decimal.Decimal) error {
	token, ok := r.tokens[asset]
	if !ok {
		return fmt.Errorf("router: unknown asset %s", asset)
	}
	token.Mint(r.account, amount)
	return nil
}

func (r *FixedRateRouter) Swap(ctx context.Context, assetIn string, amountIn decimal.Decimal) (string, decimal.Decimal, error) {
	assetOut, ok := r.pair[assetIn]
	if !ok {
		return "", decimal.Zero, fmt.Errorf("router: unknown asset %s", assetIn)
	}
	if !amountIn.IsPositive() {
		return "", decimal.Zero, fmt.Errorf("router: non-positive input amount")
	}

	amountOut := amountIn.Shift(r.assets[assetOut].Decimals - r.assets[assetIn].Decimals).Floor()
	if !amountOut.IsPositive() {
		return "", decimal.Zero, fmt.Errorf("router: input too small to convert")
	}

	if err := r.tokens[assetIn].Transfer(r.treasury, r.account, amountIn); err != nil {
		return "", decimal.Zero, fmt.Errorf("router: pull input: %w", err)
	}
	if err := r.tokens[assetOut].Transfer(r.account, r.treasury, amountOut); err != nil {
		// Insufficient reserves: give the input back so the venue fails
		// without taking funds. The refund draws on the amountIn the
		// account received just above, so it cannot come up short.
		if rbErr := r.tokens[assetIn].Transfer(r.account, r.treasury, amountIn); rbErr != nil {
			return "", decimal.Zero, fmt.Errorf("router: refund input: %w", rbErr)
		}
		return "", decimal.Zero, fmt.Errorf("router: pay output: %w", err)
	}

	return assetOut, amountOut, nil
}

var _ interfaces.SwapPort = (*FixedRateRouter)(nil)
