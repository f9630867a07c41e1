package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies how an allocation entry came to exist.
type EntryKind string

const (
	EntryDeposit        EntryKind = "deposit"
	EntryWithdrawal     EntryKind = "withdrawal"
	EntryCompoundDebit  EntryKind = "compound_debit"
	EntryCompoundCredit EntryKind = "compound_credit"
	EntryReversal       EntryKind = "reversal"
)

// AllocationEntry is a single signed ledger record for an (asset, protocol)
// pair. A protocol's allocation in an asset is the sum of its entries;
// credits are positive, debits negative.
type AllocationEntry struct {
	ID         string          `json:"id"`
	Asset      string          `json:"asset"`
	ProtocolID string          `json:"protocol_id"`
	Amount     decimal.Decimal `json:"amount"` // raw token units, signed
	Kind       EntryKind       `json:"kind"`
	CreatedAt  time.Time       `json:"created_at"`
}
