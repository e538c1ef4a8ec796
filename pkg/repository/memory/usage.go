package memory

import (
	"context"
	"sync"
	"time"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type usageKey struct {
	subjectID types.SubjectID
	period    types.PeriodKey
}

type usageRepository struct {
	mu      sync.Mutex
	records map[usageKey]*model.UsageRecord
}

func newUsageRepository() *usageRepository {
	return &usageRepository{
		records: make(map[usageKey]*model.UsageRecord),
	}
}

func (r *usageRepository) Get(ctx context.Context, subjectID types.SubjectID, period types.PeriodKey) (*model.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[usageKey{subjectID: subjectID, period: period}]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "usage record not found",
			goerr.V("subjectID", subjectID),
			goerr.V("period", period))
	}
	return record.Clone(), nil
}

func (r *usageRepository) ChargeGeneration(ctx context.Context, subjectID types.SubjectID, period types.PeriodKey, fp types.Fingerprint) (*model.UsageRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := usageKey{subjectID: subjectID, period: period}
	record, exists := r.records[key]
	if !exists {
		record = &model.UsageRecord{
			SubjectID: subjectID,
			PeriodKey: period,
		}
		r.records[key] = record
	}

	if !record.HasGenerated(fp) {
		record.GenerationsUsed++
		record.Fingerprints = append(record.Fingerprints, fp)
	}
	record.UpdatedAt = time.Now().UTC()

	return record.Clone(), nil
}
