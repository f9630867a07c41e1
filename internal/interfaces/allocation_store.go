package interfaces

import (
	"context"

	"github.com/custodia-labs/treasury-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// AllocationStore persists the signed allocation entry log and answers
// balance queries over it. Balance must equal the sum of all entries for
// the (asset, protocol) pair, zero when no entries exist.
type AllocationStore interface {
	SaveEntry(ctx context.Context, entry models.AllocationEntry) error
	// SaveEntries persists a batch atomically: either every entry is
	// recorded or none is.
	SaveEntries(ctx context.Context, entries []models.AllocationEntry) error
	Balance(ctx context.Context, asset, protocolID string) (decimal.Decimal, error)
	EntriesByProtocol(ctx context.Context, protocolID string) ([]models.AllocationEntry, error)
	Entries(ctx context.Context) ([]models.AllocationEntry, error)
}
