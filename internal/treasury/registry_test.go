package treasury_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/treasury-ledger/internal/interfaces"
	"github.com/custodia-labs/treasury-ledger/internal/models"
	"github.com/custodia-labs/treasury-ledger/internal/storage/memory"
	"github.com/custodia-labs/treasury-ledger/internal/tokens"
	"github.com/custodia-labs/treasury-ledger/internal/treasury"
)

func newRegistryFixture() *treasury.Treasury {
	usdc := tokens.NewToken(usdcAsset.Address, usdcAsset.Symbol, usdcAsset.Decimals)
	return treasury.New(treasury.Config{
		Admin:   owner,
		Account: treasuryAddr,
		Assets:  []models.Asset{usdcAsset},
		Ports:   map[string]interfaces.AssetTransferPort{usdcAsset.Address: tokens.NewPort(usdc, treasuryAddr)},
		Store:   memory.NewMemoryAllocationStore(),
		Log:     zerolog.Nop(),
	})
}

func TestAddProtocolShareInvariant(t *testing.T) {
	tests := []struct {
		name   string
		shares []int
		fail   int // index of the registration expected to fail, -1 for none
	}{
		{name: "two at fifty", shares: []int{50, 50}, fail: -1},
		{name: "sums beyond hundred", shares: []int{60, 50}, fail: 1},
		{name: "single share above hundred", shares: []int{101}, fail: 0},
		{name: "negative share", shares: []int{-1}, fail: 0},
		{name: "exact hundred then any", shares: []int{100, 1}, fail: 1},
		{name: "zero share allowed", shares: []int{100, 0}, fail: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newRegistryFixture()
			for i, share := range tt.shares {
				err := tr.AddProtocol(context.Background(), owner, models.Protocol{
					ID:        protocolID(i),
					Share:     share,
					Recipient: protocolID(i),
				})
				if i == tt.fail {
					require.ErrorIs(t, err, treasury.ErrInvalidShare)
				} else {
					require.NoError(t, err)
				}
			}
		})
	}
}

func protocolID(i int) string {
	return string(rune('a' + i))
}

func TestAddProtocolRejectsDuplicate(t *testing.T) {
	tr := newRegistryFixture()
	ctx := context.Background()

	require.NoError(t, tr.AddProtocol(ctx, owner, models.Protocol{ID: protoAlice, Share: 40, Recipient: alice}))
	err := tr.AddProtocol(ctx, owner, models.Protocol{ID: protoAlice, Share: 10, Recipient: alice})
	require.ErrorIs(t, err, treasury.ErrProtocolRegistered)

	// The failed registration must not consume share budget.
	require.NoError(t, tr.AddProtocol(ctx, owner, models.Protocol{ID: protoOwner, Share: 60, Recipient: owner}))
}

func TestAddProtocolRejectsDuplicateRecipient(t *testing.T) {
	tr := newRegistryFixture()
	ctx := context.Background()

	require.NoError(t, tr.AddProtocol(ctx, owner, models.Protocol{ID: protoAlice, Share: 40, Recipient: alice}))
	err := tr.AddProtocol(ctx, owner, models.Protocol{ID: protoOwner, Share: 40, Recipient: alice})
	require.ErrorIs(t, err, treasury.ErrRecipientRegistered)

	// The rejected protocol consumed neither its ID nor share budget.
	require.NoError(t, tr.AddProtocol(ctx, owner, models.Protocol{ID: protoOwner, Share: 60, Recipient: owner}))
}

func TestAddProtocolUnauthorized(t *testing.T) {
	tr := newRegistryFixture()

	err := tr.AddProtocol(context.Background(), alice, models.Protocol{ID: protoAlice, Share: 50, Recipient: alice})
	require.ErrorIs(t, err, treasury.ErrUnauthorized)
	assert.Empty(t, tr.Protocols())
}

func TestProtocolAccessors(t *testing.T) {
	tr := newRegistryFixture()
	ctx := context.Background()

	require.NoError(t, tr.AddProtocol(ctx, owner, models.Protocol{
		ID: protoOwner, Share: 50, Recipient: owner, Compounding: true,
	}))

	share, err := tr.Share(protoOwner)
	require.NoError(t, err)
	assert.Equal(t, 50, share)

	recipient, err := tr.Recipient(protoOwner)
	require.NoError(t, err)
	assert.Equal(t, owner, recipient)

	compounding, err := tr.IsCompounding(protoOwner)
	require.NoError(t, err)
	assert.True(t, compounding)

	_, err = tr.Share("missing")
	require.ErrorIs(t, err, treasury.ErrUnknownProtocol)
	_, err = tr.Recipient("missing")
	require.ErrorIs(t, err, treasury.ErrUnknownProtocol)
	_, err = tr.IsCompounding("missing")
	require.ErrorIs(t, err, treasury.ErrUnknownProtocol)
}

func TestProtocolsPreserveRegistrationOrder(t *testing.T) {
	tr := newRegistryFixture()
	ctx := context.Background()

	ids := []string{"p3", "p1", "p2"}
	for _, id := range ids {
		require.NoError(t, tr.AddProtocol(ctx, owner, models.Protocol{ID: id, Share: 10, Recipient: id}))
	}

	registered := tr.Protocols()
	require.Len(t, registered, 3)
	for i, id := range ids {
		assert.Equal(t, id, registered[i].ID)
	}
}
