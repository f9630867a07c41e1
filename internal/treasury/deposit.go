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

var oneHundred = decimal.NewFromInt(100)

// Deposit pulls amount units of asset from the caller into treasury
// custody and credits each registered protocol floor(amount*share/100)
// in registration order. Truncation remainders stay un-allocated in
// treasury custody and are reachable only through the admin sweep.
//
// The caller must have pre-authorized the treasury at the asset port;
// a rejected pull surfaces as ErrTransferFailed.
func (t *Treasury) Deposit(ctx context.Context, caller, asset string, amount decimal.Decimal) error {
	release, err := t.begin()
	if err != nil {
		return err
	}
	defer release()

	if amount.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidAmount
	}
	port, err := t.port(asset)
	if err != nil {
		return err
	}

	if err := port.TransferIn(ctx, caller, amount); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	depositID := uuid.New().String()
	allocated := decimal.Zero
	var entries []models.AllocationEntry
	for _, p := range t.reg.list() {
		portion := amount.Mul(decimal.NewFromInt(int64(p.Share))).Div(oneHundred).Floor()
		if portion.IsZero() {
			continue
		}
		entries = append(entries, newEntry(depositID+"-"+p.ID, asset, p.ID, portion, models.EntryDeposit))
		allocated = allocated.Add(portion)
	}

	if err := t.store.SaveEntries(ctx, entries); err != nil {
		// The pull already happened; push the funds back so a failed
		// deposit leaves no effect at all.
		if rbErr := port.TransferOut(ctx, caller, amount); rbErr != nil {
			t.log.Error().Err(rbErr).
				Str("asset", asset).
				Str("depositor", caller).
				Msg("Deposit rollback transfer failed; funds remain sweepable")
		}
		return fmt.Errorf("save allocations: %w", err)
	}

	t.log.Info().
		Str("asset", asset).
		Str("depositor", caller).
		Str("amount", amount.String()).
		Str("allocated", allocated.String()).
		Int("protocols", len(entries)).
		Msg("Deposit allocated")

	t.publish(events.TopicDeposits, events.DepositAllocated{
		DepositID:  depositID,
		Depositor:  caller,
		Asset:      asset,
		Amount:     amount,
		Allocated:  allocated,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
