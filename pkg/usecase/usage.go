package usecase

import (
	"context"
	"errors"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// allowGeneration is the usage gate. It decides whether subject may start a
// new generation for fp; it never consumes quota itself. The counter moves
// only in chargeGeneration, after a genuinely new generation committed.
//
// Premium subjects are always allowed. Free subjects are allowed while
// under the limit, and always allowed to repeat a fingerprint they were
// already charged for: the quota gates new generations, not views.
func (uc *UseCases) allowGeneration(ctx context.Context, subject types.Subject, fp types.Fingerprint) error {
	if !subject.Plan.Metered() {
		return nil
	}

	record, err := uc.repo.Usage().Get(ctx, subject.ID, types.CurrentPeriod())
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// First generation of the period
			return nil
		}
		return goerr.Wrap(err, "failed to read usage record", goerr.V("subjectID", subject.ID))
	}

	if record.HasGenerated(fp) {
		return nil
	}
	if record.GenerationsUsed < uc.freeLimit {
		return nil
	}

	return goerr.Wrap(types.ErrQuotaExhausted, "generation denied",
		goerr.V("subjectID", subject.ID),
		goerr.V("used", record.GenerationsUsed),
		goerr.V("limit", uc.freeLimit))
}

// chargeGeneration records one new generation against a metered subject.
// Exempt (premium) subjects are never counted.
func (uc *UseCases) chargeGeneration(ctx context.Context, subject types.Subject, fp types.Fingerprint) (*model.UsageRecord, error) {
	if !subject.Plan.Metered() {
		return nil, nil
	}

	record, err := uc.repo.Usage().ChargeGeneration(ctx, subject.ID, types.CurrentPeriod(), fp)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to charge usage",
			goerr.V("subjectID", subject.ID),
			goerr.V("fingerprint", fp))
	}
	return record, nil
}

// Usage returns the current-period usage record for a subject, or nil when
// the subject has no usage yet
func (uc *UseCases) Usage(ctx context.Context, subjectID types.SubjectID) (*model.UsageRecord, error) {
	record, err := uc.repo.Usage().Get(ctx, subjectID, types.CurrentPeriod())
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
