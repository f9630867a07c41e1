package treasury

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/custodia-labs/treasury-ledger/internal/interfaces"
	"github.com/custodia-labs/treasury-ledger/internal/models"
)

// Treasury is the allocation and withdrawal accounting engine. It splits
// deposits across registered protocols, tracks per-(asset, protocol)
// allocations as a signed entry log in the store, and gates every
// fund-moving operation on the admin principal fixed at construction.
//
// Operations are atomic: one guard covers the whole treasury, every
// mutation runs to completion under it, and a failed operation leaves no
// partial state behind.
type Treasury struct {
	admin   string
	account string // treasury's own custody address at the asset ports

	store  interfaces.AllocationStore
	ports  map[string]interfaces.AssetTransferPort
	assets map[string]models.Asset
	swap   interfaces.SwapPort
	events interfaces.EventPublisher
	log    zerolog.Logger

	reg *registry

	// inFlight rejects re-entrant invocation: external transfer and swap
	// calls happen while an operation is open, and a malicious destination
	// could otherwise call back in against a not-yet-settled balance.
	inFlight atomic.Bool
}

// Config wires a Treasury. Admin and Account are required; Events may be
// nil, in which case events are dropped.
type Config struct {
	Admin   string
	Account string
	Assets  []models.Asset
	Ports   map[string]interfaces.AssetTransferPort
	Swap    interfaces.SwapPort
	Store   interfaces.AllocationStore
	Events  interfaces.EventPublisher
	Log     zerolog.Logger
}

// New creates a Treasury. The admin principal is fixed here and never
// changes afterwards.
func New(cfg Config) *Treasury {
	assets := make(map[string]models.Asset, len(cfg.Assets))
	for _, a := range cfg.Assets {
		assets[a.Address] = a
	}

	events := cfg.Events
	if events == nil {
		events = noopPublisher{}
	}

	return &Treasury{
		admin:   cfg.Admin,
		account: cfg.Account,
		store:   cfg.Store,
		ports:   cfg.Ports,
		assets:  assets,
		swap:    cfg.Swap,
		events:  events,
		log:     cfg.Log.With().Str("component", "treasury").Logger(),
		reg:     newRegistry(),
	}
}

// AddProtocol registers a new protocol. Admin-only; the share must keep
// the cumulative registered total within 100 and the ID must be new.
func (t *Treasury) AddProtocol(ctx context.Context, caller string, p models.Protocol) error {
	release, err := t.begin()
	if err != nil {
		return err
	}
	defer release()

	if caller != t.admin {
		return ErrUnauthorized
	}
	if err := t.reg.add(p); err != nil {
		return err
	}

	t.log.Info().
		Str("protocol", p.ID).
		Int("share", p.Share).
		Bool("compounding", p.Compounding).
		Msg("Protocol registered")
	return nil
}

// Share returns a protocol's registered share percentage.
func (t *Treasury) Share(id string) (int, error) {
	p, err := t.reg.get(id)
	if err != nil {
		return 0, err
	}
	return p.Share, nil
}

// Recipient returns the principal authorized to receive a protocol's
// withdrawals.
func (t *Treasury) Recipient(id string) (string, error) {
	p, err := t.reg.get(id)
	if err != nil {
		return "", err
	}
	return p.Recipient, nil
}

// IsCompounding reports whether the compounding engine touches the
// protocol.
func (t *Treasury) IsCompounding(id string) (bool, error) {
	p, err := t.reg.get(id)
	if err != nil {
		return false, err
	}
	return p.Compounding, nil
}

// Protocols returns all registered protocols in registration order.
func (t *Treasury) Protocols() []models.Protocol {
	return t.reg.list()
}

// BalanceOf returns the current unwithdrawn allocation for the
// (asset, protocol) pair; zero when nothing was ever credited.
func (t *Treasury) BalanceOf(ctx context.Context, asset, protocolID string) (decimal.Decimal, error) {
	return t.store.Balance(ctx, asset, protocolID)
}

// Entries returns the full allocation entry log.
func (t *Treasury) Entries(ctx context.Context) ([]models.AllocationEntry, error) {
	return t.store.Entries(ctx)
}

// begin opens an operation. Any invocation while another operation is in
// flight, including a re-entrant callback from a transfer or swap port,
// is rejected before it can observe or touch state.
func (t *Treasury) begin() (release func(), err error) {
	if !t.inFlight.CompareAndSwap(false, true) {
		return nil, ErrOperationInProgress
	}
	return func() { t.inFlight.Store(false) }, nil
}

func (t *Treasury) port(asset string) (interfaces.AssetTransferPort, error) {
	p, ok := t.ports[asset]
	if !ok {
		return nil, ErrUnsupportedAsset
	}
	return p, nil
}

func newEntry(id, asset, protocolID string, amount decimal.Decimal, kind models.EntryKind) models.AllocationEntry {
	return models.AllocationEntry{
		ID:         id,
		Asset:      asset,
		ProtocolID: protocolID,
		Amount:     amount,
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
	}
}

func (t *Treasury) publish(topic string, event any) {
	if err := t.events.Publish(topic, event); err != nil {
		t.log.Error().Err(err).Str("topic", topic).Msg("Event publish failed")
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, any) error { return nil }
