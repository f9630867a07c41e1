package tokens

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/treasury-ledger/internal/interfaces"
)

// Port adapts a Token to the treasury's AssetTransferPort, bound to the
// treasury's custody account. TransferIn spends the depositor's approval
// of the treasury; TransferOut pays out of treasury custody.
type Port struct {
	token    *Token
	treasury string
}

func NewPort(token *Token, treasury string) *Port {
	return &Port{
		token:    token,
		treasury: treasury,
	}
}

func (p *Port) TransferIn(ctx context.Context, from string, amount decimal.Decimal) error {
	return p.token.TransferFrom(p.treasury, from, p.treasury, amount)
}

func (p *Port) TransferOut(ctx context.Context, to string, amount decimal.Decimal) error {
	return p.token.Transfer(p.treasury, to, amount)
}

func (p *Port) BalanceOf(ctx context.Context, holder string) (decimal.Decimal, error) {
	return p.token.BalanceOf(holder), nil
}

var _ interfaces.AssetTransferPort = (*Port)(nil)
