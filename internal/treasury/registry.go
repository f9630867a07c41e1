package treasury

import "github.com/custodia-labs/treasury-ledger/internal/models"

// registry holds the registered protocols and enforces the share-sum
// invariant: the cumulative share of all protocols never exceeds 100.
// Registration order is preserved because it is also the deposit split
// order.
type registry struct {
	byID        map[string]models.Protocol
	byRecipient map[string]string // recipient -> protocol ID, unique per protocol
	order       []string
	totalShare  int
}

func newRegistry() *registry {
	return &registry{
		byID:        make(map[string]models.Protocol),
		byRecipient: make(map[string]string),
	}
}

func (r *registry) add(p models.Protocol) error {
	if p.Share < 0 || p.Share > 100 || r.totalShare+p.Share > 100 {
		return ErrInvalidShare
	}
	if _, exists := r.byID[p.ID]; exists {
		return ErrProtocolRegistered
	}
	// Withdrawals address protocols by recipient, so a shared recipient
	// would leave the later protocol unreachable.
	if _, taken := r.byRecipient[p.Recipient]; taken {
		return ErrRecipientRegistered
	}

	r.byID[p.ID] = p
	r.order = append(r.order, p.ID)
	r.totalShare += p.Share
	r.byRecipient[p.Recipient] = p.ID
	return nil
}

func (r *registry) get(id string) (models.Protocol, error) {
	p, ok := r.byID[id]
	if !ok {
		return models.Protocol{}, ErrUnknownProtocol
	}
	return p, nil
}

func (r *registry) forRecipient(recipient string) (models.Protocol, error) {
	id, ok := r.byRecipient[recipient]
	if !ok {
		return models.Protocol{}, ErrUnknownProtocol
	}
	return r.byID[id], nil
}

// list returns protocols in registration order.
func (r *registry) list() []models.Protocol {
	out := make([]models.Protocol, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func (r *registry) compounding() []models.Protocol {
	var out []models.Protocol
	for _, id := range r.order {
		if p := r.byID[id]; p.Compounding {
			out = append(out, p)
		}
	}
	return out
}
