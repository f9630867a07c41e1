package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/treasury-ledger/internal/interfaces"
	"github.com/custodia-labs/treasury-ledger/internal/models"
)

// PostgresAllocationStore persists allocation entries in Postgres.
// Balances are computed with SUM over the entry log, so the log stays the
// single source of truth across restarts.
type PostgresAllocationStore struct {
	db *sql.DB
}

func NewPostgresAllocationStore(db *sql.DB) *PostgresAllocationStore {
	return &PostgresAllocationStore{
		db: db,
	}
}

const schema = `CREATE TABLE IF NOT EXISTS allocation_entries (
	id          TEXT PRIMARY KEY,
	asset       TEXT        NOT NULL,
	protocol_id TEXT        NOT NULL,
	amount      NUMERIC     NOT NULL,
	kind        TEXT        NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS allocation_entries_pair_idx
	ON allocation_entries (asset, protocol_id);`

// EnsureSchema creates the entry table if it does not exist yet.
func (p *PostgresAllocationStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresAllocationStore) SaveEntry(ctx context.Context, entry models.AllocationEntry) error {
	const query = `INSERT INTO allocation_entries (id, asset, protocol_id, amount, kind, created_at)
	VALUES ($1,$2,$3,$4,$5,$6)`

	_, err := p.db.ExecContext(ctx, query,
		entry.ID, entry.Asset, entry.ProtocolID, entry.Amount, string(entry.Kind), entry.CreatedAt)
	return err
}

// SaveEntries writes the batch in one transaction: all entries land or
// none do.
func (p *PostgresAllocationStore) SaveEntries(ctx context.Context, entries []models.AllocationEntry) error {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const query = `INSERT INTO allocation_entries (id, asset, protocol_id, amount, kind, created_at)
	VALUES ($1,$2,$3,$4,$5,$6)`

	for _, entry := range entries {
		_, err = dbTx.ExecContext(ctx, query,
			entry.ID, entry.Asset, entry.ProtocolID, entry.Amount, string(entry.Kind), entry.CreatedAt)
		if err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

func (p *PostgresAllocationStore) Balance(ctx context.Context, asset, protocolID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM allocation_entries
	WHERE asset = $1 AND protocol_id = $2`

	var balance decimal.Decimal
	if err := p.db.QueryRowContext(ctx, query, asset, protocolID).Scan(&balance); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (p *PostgresAllocationStore) EntriesByProtocol(ctx context.Context, protocolID string) ([]models.AllocationEntry, error) {
	const query = `SELECT id, asset, protocol_id, amount, kind, created_at FROM allocation_entries
	WHERE protocol_id = $1 ORDER BY created_at`

	rows, err := p.db.QueryContext(ctx, query, protocolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (p *PostgresAllocationStore) Entries(ctx context.Context) ([]models.AllocationEntry, error) {
	const query = `SELECT id, asset, protocol_id, amount, kind, created_at FROM allocation_entries
	ORDER BY created_at`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.AllocationEntry, error) {
	var entries []models.AllocationEntry
	for rows.Next() {
		var entry models.AllocationEntry
		var kind string
		if err := rows.Scan(&entry.ID, &entry.Asset, &entry.ProtocolID, &entry.Amount, &kind, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Kind = models.EntryKind(kind)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ interfaces.AllocationStore = (*PostgresAllocationStore)(nil)
