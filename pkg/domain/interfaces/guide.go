package interfaces

import (
	"context"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
)

// GuideRepository is the durable guide cache. Entries move through two
// states: a Pending reservation held for the duration of one generation
// attempt, and a Committed guide that is immutable afterwards. Pending
// entries are never visible through Get or GetByFingerprint.
type GuideRepository interface {
	// Get retrieves a committed guide by its canonical (title-derived) id.
	// Returns types.ErrNotFound when absent or still pending.
	Get(ctx context.Context, id types.GuideID) (*model.RepairGuide, error)

	// GetByFingerprint retrieves a committed guide by its pre-generation
	// dedup key. Returns types.ErrNotFound when absent or still pending.
	GetByFingerprint(ctx context.Context, fp types.Fingerprint) (*model.RepairGuide, error)

	// Reserve atomically transitions fp from absent to Pending. Returns
	// types.ErrAlreadyReserved when a pending or committed entry exists, so
	// at most one generation per fingerprint is ever in flight.
	Reserve(ctx context.Context, fp types.Fingerprint) error

	// Commit transitions the Pending entry for fp to Committed and indexes
	// guide.ID as an alias. A committed entry is never overwritten.
	Commit(ctx context.Context, fp types.Fingerprint, guide *model.RepairGuide) error

	// Abort drops the Pending marker for fp so a later call can retry from
	// scratch. It never touches a committed entry.
	Abort(ctx context.Context, fp types.Fingerprint) error
}
