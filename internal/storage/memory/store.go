package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/treasury-ledger/internal/interfaces"
	"github.com/custodia-labs/treasury-ledger/internal/models"
)

// MemoryAllocationStore is an in-memory implementation of
// interfaces.AllocationStore. It keeps the full entry log plus a running
// balance per (asset, protocol) pair so balance reads do not rescan the
// log. Safe for concurrent use.
type MemoryAllocationStore struct {
	mu       sync.Mutex
	entries  []models.AllocationEntry
	balances map[balanceKey]decimal.Decimal
}

type balanceKey struct {
	asset      string
	protocolID string
}

// NewMemoryAllocationStore creates an empty store.
func NewMemoryAllocationStore() *MemoryAllocationStore {
	return &MemoryAllocationStore{
		balances: make(map[balanceKey]decimal.Decimal),
	}
}

func (m *MemoryAllocationStore) SaveEntry(ctx context.Context, entry models.AllocationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.apply(entry)
	return nil
}

// SaveEntries appends the batch under one lock acquisition; in memory the
// batch cannot partially fail.
func (m *MemoryAllocationStore) SaveEntries(ctx context.Context, entries []models.AllocationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range entries {
		m.apply(entry)
	}
	return nil
}

// apply assumes the lock is held.
func (m *MemoryAllocationStore) apply(entry models.AllocationEntry) {
	m.entries = append(m.entries, entry)
	key := balanceKey{asset: entry.Asset, protocolID: entry.ProtocolID}
	m.balances[key] = m.balances[key].Add(entry.Amount)
}

func (m *MemoryAllocationStore) Balance(ctx context.Context, asset, protocolID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.balances[balanceKey{asset: asset, protocolID: protocolID}], nil
}

func (m *MemoryAllocationStore) EntriesByProtocol(ctx context.Context, protocolID string) ([]models.AllocationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []models.AllocationEntry
	for _, e := range m.entries {
		if e.ProtocolID == protocolID {
			result = append(result, e)
		}
	}
	return result, nil
}

// Entries returns a copy so callers cannot mutate internal state.
func (m *MemoryAllocationStore) Entries(ctx context.Context) ([]models.AllocationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]models.AllocationEntry, len(m.entries))
	copy(copied, m.entries)
	return copied, nil
}

// Compile-time check: MemoryAllocationStore implements AllocationStore.
var _ interfaces.AllocationStore = (*MemoryAllocationStore)(nil)
