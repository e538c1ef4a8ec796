package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/garage-lab/gearbox/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// ProduceGuide is the end-to-end pipeline: validate, check the cache, gate
// usage, generate text with retries, illustrate steps sequentially, commit,
// and charge quota. A cache hit returns immediately and never consumes
// quota. Callers distinguish outcomes with errors.Is against the sentinels
// in pkg/domain/types; types.ErrQuotaExhausted is the paywall signal, not a
// failure.
func (uc *UseCases) ProduceGuide(ctx context.Context, req model.GuideRequest, subject types.Subject) (*model.RepairGuide, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	fp := req.Fingerprint()

	guide, err := uc.repo.Guide().GetByFingerprint(ctx, fp)
	if err == nil {
		return guide, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, goerr.Wrap(err, "guide cache lookup failed", goerr.V("fingerprint", fp))
	}

	if err := uc.allowGeneration(ctx, subject, fp); err != nil {
		return nil, err
	}

	// Identical in-process requests coalesce into one generation; every
	// waiter gets the same committed guide.
	result, err, _ := uc.flight.Do(string(fp), func() (any, error) {
		return uc.generateAndCommit(ctx, req, subject, fp)
	})
	if err != nil {
		return nil, err
	}

	return result.(*model.RepairGuide), nil
}

// GetCached replays a previously generated guide by canonical id or
// fingerprint, without invoking generation or charging usage
func (uc *UseCases) GetCached(ctx context.Context, key string) (*model.RepairGuide, error) {
	guide, err := uc.repo.Guide().Get(ctx, types.GuideID(key))
	if err == nil {
		return guide, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	return uc.repo.Guide().GetByFingerprint(ctx, types.Fingerprint(key))
}

func (uc *UseCases) generateAndCommit(ctx context.Context, req model.GuideRequest, subject types.Subject, fp types.Fingerprint) (*model.RepairGuide, error) {
	logger := logging.From(ctx)

	if err := uc.repo.Guide().Reserve(ctx, fp); err != nil {
		if errors.Is(err, types.ErrAlreadyReserved) {
			// A concurrent caller (possibly in another process) holds the
			// reservation. Wait for its committed result instead of
			// duplicating the generation call.
			return uc.awaitCommitted(ctx, fp)
		}
		return nil, goerr.Wrap(err, "failed to reserve guide cache entry", goerr.V("fingerprint", fp))
	}

	body, err := withRetry(ctx, uc.maxAttempts, uc.retryDelay, func(ctx context.Context) (*model.GuideBody, error) {
		return uc.textGen.Generate(ctx, req)
	})
	if err != nil {
		if abortErr := uc.repo.Guide().Abort(ctx, fp); abortErr != nil {
			logger.Error("failed to release reservation after generation failure",
				"fingerprint", fp,
				"error", abortErr.Error(),
			)
		}
		if errors.Is(err, types.ErrGenerationFailed) {
			return nil, err
		}
		return nil, goerr.Wrap(types.ErrGenerationFailed, "text generation exhausted retries",
			goerr.V("fingerprint", fp),
			goerr.V("cause", err.Error()))
	}

	guide := model.NewRepairGuide(req, body)
	guide.Steps = uc.synthesizer.Illustrate(ctx, guide.Steps)

	if err := uc.repo.Guide().Commit(ctx, fp, guide); err != nil {
		// No partial commit: drop the reservation so a later call can retry
		// from scratch.
		if abortErr := uc.repo.Guide().Abort(ctx, fp); abortErr != nil {
			logger.Error("failed to release reservation after commit failure",
				"fingerprint", fp,
				"error", abortErr.Error(),
			)
		}
		return nil, goerr.Wrap(err, "failed to commit guide", goerr.V("fingerprint", fp))
	}

	if _, err := uc.chargeGeneration(ctx, subject, fp); err != nil {
		// The guide is committed and usable; a failed charge must not undo
		// that. It is logged and reconciled out of band.
		logger.Error("failed to charge usage after commit",
			"subjectID", subject.ID,
			"fingerprint", fp,
			"error", err.Error(),
		)
	}

	logger.Info("guide generated",
		"id", guide.ID,
		"fingerprint", fp,
		"steps", len(guide.Steps),
		"subjectID", subject.ID,
	)

	return guide, nil
}

// awaitCommitted polls for the committed result of another caller's
// in-flight generation, bounded by the wait budget
func (uc *UseCases) awaitCommitted(ctx context.Context, fp types.Fingerprint) (*model.RepairGuide, error) {
	deadline := time.Now().Add(uc.waitBudget)
	ticker := time.NewTicker(uc.waitInterval)
	defer ticker.Stop()

	for {
		guide, err := uc.repo.Guide().GetByFingerprint(ctx, fp)
		if err == nil {
			return guide, nil
		}
		if !errors.Is(err, types.ErrNotFound) {
			return nil, goerr.Wrap(err, "guide cache lookup failed", goerr.V("fingerprint", fp))
		}

		if time.Now().After(deadline) {
			return nil, goerr.Wrap(types.ErrGenerationInFlight, "wait budget exhausted", goerr.V("fingerprint", fp))
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
