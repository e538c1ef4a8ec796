package memory

import (
	"context"
	"sync"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type entryState int

const (
	statePending entryState = iota
	stateCommitted
)

type guideEntry struct {
	state entryState
	guide *model.RepairGuide
}

type guideRepository struct {
	mu      sync.Mutex
	entries map[types.Fingerprint]*guideEntry
	aliases map[types.GuideID]types.Fingerprint
}

func newGuideRepository() *guideRepository {
	return &guideRepository{
		entries: make(map[types.Fingerprint]*guideEntry),
		aliases: make(map[types.GuideID]types.Fingerprint),
	}
}

func (r *guideRepository) Get(ctx context.Context, id types.GuideID) (*model.RepairGuide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fp, exists := r.aliases[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrNotFound, "guide not found", goerr.V("id", id))
	}
	return r.committed(fp)
}

func (r *guideRepository) GetByFingerprint(ctx context.Context, fp types.Fingerprint) (*model.RepairGuide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed(fp)
}

// committed returns the guide for fp only when it is in the committed state.
// Callers must hold r.mu.
func (r *guideRepository) committed(fp types.Fingerprint) (*model.RepairGuide, error) {
	entry, exists := r.entries[fp]
	if !exists || entry.state != stateCommitted {
		return nil, goerr.Wrap(types.ErrNotFound, "guide not found", goerr.V("fingerprint", fp))
	}
	return entry.guide.Clone(), nil
}

func (r *guideRepository) Reserve(ctx context.Context, fp types.Fingerprint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[fp]; exists {
		return goerr.Wrap(types.ErrAlreadyReserved, "reservation exists", goerr.V("fingerprint", fp))
	}
	r.entries[fp] = &guideEntry{state: statePending}
	return nil
}

func (r *guideRepository) Commit(ctx context.Context, fp types.Fingerprint, guide *model.RepairGuide) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[fp]
	if !exists || entry.state != statePending {
		return goerr.New("commit without pending reservation", goerr.V("fingerprint", fp))
	}

	entry.state = stateCommitted
	entry.guide = guide.Clone()
	r.aliases[guide.ID] = fp
	return nil
}

func (r *guideRepository) Abort(ctx context.Context, fp types.Fingerprint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[fp]
	if !exists {
		return nil
	}
	if entry.state == stateCommitted {
		return nil
	}
	delete(r.entries, fp)
	return nil
}
