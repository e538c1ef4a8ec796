package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/garage-lab/gearbox/pkg/domain/interfaces"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/garage-lab/gearbox/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func testSubjectID(prefix string) types.SubjectID {
	return types.SubjectID(fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()))
}

func runUsageRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const period = types.PeriodKey("2026-08")

	t.Run("Get on an uncharged subject fails with not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Usage().Get(ctx, testSubjectID("uncharged"), period)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("ChargeGeneration creates the record lazily", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		subjectID := testSubjectID("lazy-create")
		fp := testFingerprint("charge")

		record, err := repo.Usage().ChargeGeneration(ctx, subjectID, period, fp)
		gt.NoError(t, err).Required()
		gt.Number(t, record.GenerationsUsed).Equal(1)
		gt.Bool(t, record.HasGenerated(fp)).True()
		gt.Bool(t, record.UpdatedAt.IsZero()).False()

		got, err := repo.Usage().Get(ctx, subjectID, period)
		gt.NoError(t, err).Required()
		gt.Number(t, got.GenerationsUsed).Equal(1)
	})

	t.Run("repeat charge for the same fingerprint does not count twice", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		subjectID := testSubjectID("idempotent")
		fp := testFingerprint("repeat")

		_, err := repo.Usage().ChargeGeneration(ctx, subjectID, period, fp)
		gt.NoError(t, err).Required()

		record, err := repo.Usage().ChargeGeneration(ctx, subjectID, period, fp)
		gt.NoError(t, err).Required()
		gt.Number(t, record.GenerationsUsed).Equal(1)
		gt.Array(t, record.Fingerprints).Length(1)
	})

	t.Run("distinct fingerprints each count", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		subjectID := testSubjectID("distinct")

		_, err := repo.Usage().ChargeGeneration(ctx, subjectID, period, testFingerprint("first"))
		gt.NoError(t, err).Required()

		record, err := repo.Usage().ChargeGeneration(ctx, subjectID, period, testFingerprint("second"))
		gt.NoError(t, err).Required()
		gt.Number(t, record.GenerationsUsed).Equal(2)
	})

	t.Run("periods are accounted independently", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		subjectID := testSubjectID("periods")
		fp := testFingerprint("rollover")

		_, err := repo.Usage().ChargeGeneration(ctx, subjectID, period, fp)
		gt.NoError(t, err).Required()

		next := types.PeriodKey("2026-09")
		record, err := repo.Usage().ChargeGeneration(ctx, subjectID, next, fp)
		gt.NoError(t, err).Required()
		gt.Number(t, record.GenerationsUsed).Equal(1)

		previous, err := repo.Usage().Get(ctx, subjectID, period)
		gt.NoError(t, err).Required()
		gt.Number(t, previous.GenerationsUsed).Equal(1)
	})
}

func TestMemoryUsageRepository(t *testing.T) {
	runUsageRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreUsageRepository(t *testing.T) {
	runUsageRepositoryTest(t, newFirestoreRepository)
}
