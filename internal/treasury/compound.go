package treasury

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/treasury-ledger/internal/models"
	events "github.com/custodia-labs/treasury-ledger/internal/models/events"
)

// Compound routes a compounding-flagged protocol's full allocation in
// fromAsset through the swap venue and credits whatever asset and amount
// came back to the same protocol. Admin-only. A zero allocation is a
// no-op. The debit is committed before the swap; if the swap fails or
// returns nothing, the debit is reversed before the operation ends, so a
// failed compound leaves both balances exactly as they were.
func (t *Treasury) Compound(ctx context.Context, caller, protocolID, fromAsset string) error {
	release, err := t.begin()
	if err != nil {
		return err
	}
	defer release()

	if caller != t.admin {
		return ErrUnauthorized
	}
	return t.compoundLocked(ctx, protocolID, fromAsset)
}

// CompoundAll compounds every compounding-flagged protocol from
// fromAsset. Protocols fail independently; the joined error reports all
// failures. Used by the scheduled trigger.
func (t *Treasury) CompoundAll(ctx context.Context, caller, fromAsset string) error {
	release, err := t.begin()
	if err != nil {
		return err
	}
	defer release()

	if caller != t.admin {
		return ErrUnauthorized
	}

	var errs []error
	for _, p := range t.reg.compounding() {
		if err := t.compoundLocked(ctx, p.ID, fromAsset); err != nil {
			errs = append(errs, fmt.Errorf("compound %s: %w", p.ID, err))
		}
	}
	return errors.Join(errs...)
}

// compoundLocked runs one compounding cycle. The caller holds the
// operation guard and has already authorized.
func (t *Treasury) compoundLocked(ctx context.Context, protocolID, fromAsset string) error {
	p, err := t.reg.get(protocolID)
	if err != nil {
		return err
	}
	if !p.Compounding {
		return ErrNotCompounding
	}
	if _, err := t.port(fromAsset); err != nil {
		return err
	}

	amount, err := t.store.Balance(ctx, fromAsset, p.ID)
	if err != nil {
		return fmt.Errorf("read allocation: %w", err)
	}
	if amount.IsZero() {
		return nil
	}

	compoundID := uuid.New().String()
	debit := newEntry(compoundID+"-debit", fromAsset, p.ID, amount.Neg(), models.EntryCompoundDebit)
	if err := t.store.SaveEntry(ctx, debit); err != nil {
		return fmt.Errorf("save debit: %w", err)
	}

	assetOut, received, swapErr := t.swap.Swap(ctx, fromAsset, amount)
	if swapErr == nil && !received.IsPositive() {
		swapErr = errors.New("venue returned no output")
	}
	if swapErr != nil {
		reversal := newEntry(compoundID+"-reversal", fromAsset, p.ID, amount, models.EntryReversal)
		if rbErr := t.store.SaveEntry(ctx, reversal); rbErr != nil {
			t.log.Error().Err(rbErr).
				Str("asset", fromAsset).
				Str("protocol", p.ID).
				Msg("Compound reversal failed; allocation understates holdings")
		}
		return fmt.Errorf("%w: %v", ErrSwapFailed, swapErr)
	}

	credit := newEntry(compoundID+"-credit", assetOut, p.ID, received, models.EntryCompoundCredit)
	if err := t.store.SaveEntry(ctx, credit); err != nil {
		return fmt.Errorf("save credit: %w", err)
	}

	t.log.Info().
		Str("protocol", p.ID).
		Str("asset_in", fromAsset).
		Str("asset_out", assetOut).
		Str("amount_in", amount.String()).
		Str("amount_out", received.String()).
		Msg("Allocation compounded")

	t.publish(events.TopicCompounding, events.AllocationCompounded{
		ProtocolID: p.ID,
		AssetIn:    fromAsset,
		AssetOut:   assetOut,
		AmountIn:   amount,
		AmountOut:  received,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
