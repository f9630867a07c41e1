package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/custodia-labs/treasury-ledger/internal/models"
	events "github.com/custodia-labs/treasury-ledger/internal/models/events"
)

// WithdrawProtocolAllocation withdraws from the allocation of the
// protocol whose registered recipient is destination. Admin-only. A zero
// amount withdraws the full current allocation; a positive amount must
// not exceed it. The ledger debit is committed before the external
// transfer, and a failed transfer is reversed before the operation ends.
//
// Returns the amount actually withdrawn.
func (t *Treasury) WithdrawProtocolAllocation(ctx context.Context, caller, asset, destination string, amount decimal.Decimal) (decimal.Decimal, error) {
	release, err := t.begin()
	if err != nil {
		return decimal.Zero, err
	}
	defer release()

	if caller != t.admin {
		return decimal.Zero, ErrUnauthorized
	}
	port, err := t.port(asset)
	if err != nil {
		return decimal.Zero, err
	}
	p, err := t.reg.forRecipient(destination)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}

	balance, err := t.store.Balance(ctx, asset, p.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read allocation: %w", err)
	}
	if amount.IsZero() {
		amount = balance
	}
	if amount.GreaterThan(balance) {
		return decimal.Zero, ErrInsufficientAllocation
	}
	if amount.IsZero() {
		return decimal.Zero, nil
	}

	withdrawalID := uuid.New().String()
	debit := newEntry(withdrawalID+"-debit", asset, p.ID, amount.Neg(), models.EntryWithdrawal)
	if err := t.store.SaveEntry(ctx, debit); err != nil {
		return decimal.Zero, fmt.Errorf("save debit: %w", err)
	}

	if err := port.TransferOut(ctx, destination, amount); err != nil {
		reversal := newEntry(withdrawalID+"-reversal", asset, p.ID, amount, models.EntryReversal)
		if rbErr := t.store.SaveEntry(ctx, reversal); rbErr != nil {
			t.log.Error().Err(rbErr).
				Str("asset", asset).
				Str("protocol", p.ID).
				Msg("Withdrawal reversal failed; allocation understates holdings")
		}
		return decimal.Zero, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	t.log.Info().
		Str("asset", asset).
		Str("protocol", p.ID).
		Str("destination", destination).
		Str("amount", amount.String()).
		Msg("Protocol allocation withdrawn")

	t.publish(events.TopicWithdrawals, events.AllocationWithdrawn{
		WithdrawalID: withdrawalID,
		Asset:        asset,
		ProtocolID:   p.ID,
		Destination:  destination,
		Amount:       amount,
		OccurredAt:   time.Now().UTC(),
	})
	return amount, nil
}

// Withdraw is the admin sweep: it moves amount units of asset out of
// treasury custody without touching any protocol allocation. It draws
// from the un-allocated remainder plus anything sent to the treasury
// outside the deposit path, bounded by the actual held balance.
func (t *Treasury) Withdraw(ctx context.Context, caller string, amount decimal.Decimal, asset, destination string) error {
	release, err := t.begin()
	if err != nil {
		return err
	}
	defer release()

	if caller != t.admin {
		return ErrUnauthorized
	}
	port, err := t.port(asset)
	if err != nil {
		return err
	}
	if amount.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidAmount
	}

	held, err := port.BalanceOf(ctx, t.account)
	if err != nil {
		return fmt.Errorf("read treasury balance: %w", err)
	}
	if amount.GreaterThan(held) {
		return ErrInsufficientTreasuryBalance
	}

	if err := port.TransferOut(ctx, destination, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	t.log.Info().
		Str("asset", asset).
		Str("destination", destination).
		Str("amount", amount.String()).
		Msg("Treasury swept")

	t.publish(events.TopicWithdrawals, events.TreasurySwept{
		Asset:       asset,
		Destination: destination,
		Amount:      amount,
		OccurredAt:  time.Now().UTC(),
	})
	return nil
}
