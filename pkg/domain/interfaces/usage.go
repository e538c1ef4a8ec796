package interfaces

import (
	"context"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
)

// UsageRepository persists per-subject, per-period generation counters.
// ChargeGeneration must be atomic (transaction or compare-and-swap); a plain
// read-then-write is not acceptable for the quota gate.
type UsageRepository interface {
	// Get retrieves the usage record for (subjectID, period). Returns
	// types.ErrNotFound when the subject has no usage in the period.
	Get(ctx context.Context, subjectID types.SubjectID, period types.PeriodKey) (*model.UsageRecord, error)

	// ChargeGeneration atomically increments the counter and records fp for
	// (subjectID, period), creating the record on first use. Charging the
	// same fingerprint twice in one period is a no-op, so a retried commit
	// can never double-charge.
	ChargeGeneration(ctx context.Context, subjectID types.SubjectID, period types.PeriodKey, fp types.Fingerprint) (*model.UsageRecord, error)
}
