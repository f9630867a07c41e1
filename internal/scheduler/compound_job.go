package scheduler

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/treasury-ledger/internal/treasury"
)

// CompoundJob periodically compounds every flagged protocol's allocation
// in the configured from-asset. It runs as the admin principal; a cycle
// that lands while another operation holds the treasury guard is skipped
// and retried on the next tick.
type CompoundJob struct {
	treasury  *treasury.Treasury
	admin     string
	fromAsset string
	log       zerolog.Logger
}

func NewCompoundJob(t *treasury.Treasury, admin, fromAsset string, log zerolog.Logger) *CompoundJob {
	return &CompoundJob{
		treasury:  t,
		admin:     admin,
		fromAsset: fromAsset,
		log:       log.With().Str("job", "compound").Logger(),
	}
}

func (j *CompoundJob) Name() string { return "compound-allocations" }

func (j *CompoundJob) Run() error {
	err := j.treasury.CompoundAll(context.Background(), j.admin, j.fromAsset)
	if errors.Is(err, treasury.ErrOperationInProgress) {
		j.log.Debug().Msg("Treasury busy, skipping compound cycle")
		return nil
	}
	return err
}
