package tokens

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Token is an in-process fungible asset ledger with approve/transferFrom
// semantics. It stands in for the external token contracts behind the
// AssetTransferPort boundary; the treasury core never talks to it
// directly.
type Token struct {
	address  string
	symbol   string
	decimals int32

	mu         sync.Mutex
	balances   map[string]decimal.Decimal
	allowances map[string]map[string]decimal.Decimal // owner -> spender -> remaining
}

func NewToken(address, symbol string, decimals int32) *Token {
	return &Token{
		address:    address,
		symbol:     symbol,
		decimals:   decimals,
		balances:   make(map[string]decimal.Decimal),
		allowances: make(map[string]map[string]decimal.Decimal),
	}
}

func (t *Token) Address() string { return t.address }
func (t *Token) Symbol() string  { return t.symbol }
func (t *Token) Decimals() int32 { return t.decimals }

// Mint credits freshly created units to a holder.
func (t *Token) Mint(to string, amount decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.balances[to] = t.balances[to].Add(amount)
}

func (t *Token) BalanceOf(holder string) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.balances[holder]
}

// Approve lets spender move up to amount units out of owner's balance.
// The allowance is absolute, not additive.
func (t *Token) Approve(owner, spender string, amount decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.allowances[owner]; !ok {
		t.allowances[owner] = make(map[string]decimal.Decimal)
	}
	t.allowances[owner][spender] = amount
}

// Allowance reports how much spender may still move out of owner's
// balance.
func (t *Token) Allowance(owner, spender string) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.allowances[owner][spender]
}

// Transfer moves units between holders, bounded by the sender's balance.
func (t *Token) Transfer(from, to string, amount decimal.Decimal) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.move(from, to, amount)
}

// TransferFrom moves units out of from's balance on behalf of spender,
// consuming spender's allowance.
func (t *Token) TransferFrom(spender, from, to string, amount decimal.Decimal) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.allowances[from][spender]
	if amount.GreaterThan(remaining) {
		return fmt.Errorf("%s: allowance exceeded for %s", t.symbol, spender)
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	t.allowances[from][spender] = remaining.Sub(amount)
	return nil
}

// move assumes the lock is held.
func (t *Token) move(from, to string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%s: negative transfer amount", t.symbol)
	}
	if amount.GreaterThan(t.balances[from]) {
		return fmt.Errorf("%s: insufficient balance for %s", t.symbol, from)
	}
	t.balances[from] = t.balances[from].Sub(amount)
	t.balances[to] = t.balances[to].Add(amount)
	return nil
}
