package model

import (
	"slices"
	"time"

	"github.com/garage-lab/gearbox/pkg/domain/types"
)

// UsageRecord tracks free-tier consumption for one subject in one period.
// It is created lazily on first charge and resets implicitly when the period
// key rolls over. Mutated only through UsageRepository.ChargeGeneration.
type UsageRecord struct {
	SubjectID       types.SubjectID
	PeriodKey       types.PeriodKey
	GenerationsUsed int
	// Fingerprints lists the requests already charged to this subject, so a
	// repeat of an already-generated guide never consumes quota again.
	Fingerprints []types.Fingerprint
	UpdatedAt    time.Time
}

// HasGenerated reports whether this subject was already charged for fp in
// this period
func (r *UsageRecord) HasGenerated(fp types.Fingerprint) bool {
	if r == nil {
		return false
	}
	return slices.Contains(r.Fingerprints, fp)
}

// Clone returns a deep copy of the record
func (r *UsageRecord) Clone() *UsageRecord {
	if r == nil {
		return nil
	}
	copied := *r
	copied.Fingerprints = append([]types.Fingerprint(nil), r.Fingerprints...)
	return &copied
}
