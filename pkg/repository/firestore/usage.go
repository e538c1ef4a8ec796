package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type usageDoc struct {
	SubjectID       types.SubjectID `firestore:"SubjectID"`
	PeriodKey       types.PeriodKey `firestore:"PeriodKey"`
	GenerationsUsed int             `firestore:"GenerationsUsed"`
	Fingerprints    []string        `firestore:"Fingerprints,omitempty"`
	UpdatedAt       time.Time       `firestore:"UpdatedAt"`
}

func fromUsageDoc(d *usageDoc) *model.UsageRecord {
	record := &model.UsageRecord{
		SubjectID:       d.SubjectID,
		PeriodKey:       d.PeriodKey,
		GenerationsUsed: d.GenerationsUsed,
		UpdatedAt:       d.UpdatedAt,
	}
	for _, fp := range d.Fingerprints {
		record.Fingerprints = append(record.Fingerprints, types.Fingerprint(fp))
	}
	return record
}

type usageRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUsageRepository(client *firestore.Client) *usageRepository {
	return &usageRepository{client: client}
}

func (r *usageRepository) usagesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_usages"
	}
	return "usages"
}

func (r *usageRepository) usageDoc(subjectID types.SubjectID, period types.PeriodKey) *firestore.DocumentRef {
	docID := fmt.Sprintf("%s_%s", subjectID, period)
	return r.client.Collection(r.usagesCollection()).Doc(docID)
}

func (r *usageRepository) Get(ctx context.Context, subjectID types.SubjectID, period types.PeriodKey) (*model.UsageRecord, error) {
	doc, err := r.usageDoc(subjectID, period).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "usage record not found",
				goerr.V("subjectID", subjectID),
				goerr.V("period", period))
		}
		return nil, goerr.Wrap(err, "failed to get usage record", goerr.V("subjectID", subjectID))
	}

	var d usageDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode usage record", goerr.V("subjectID", subjectID))
	}
	return fromUsageDoc(&d), nil
}

func (r *usageRepository) ChargeGeneration(ctx context.Context, subjectID types.SubjectID, period types.PeriodKey, fp types.Fingerprint) (*model.UsageRecord, error) {
	docRef := r.usageDoc(subjectID, period)

	var charged usageDoc
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get usage record")
			}
			charged = usageDoc{
				SubjectID:       subjectID,
				PeriodKey:       period,
				GenerationsUsed: 1,
				Fingerprints:    []string{string(fp)},
				UpdatedAt:       time.Now().UTC(),
			}
			return tx.Set(docRef, &charged)
		}

		if err := doc.DataTo(&charged); err != nil {
			return goerr.Wrap(err, "failed to decode usage record")
		}

		for _, existing := range charged.Fingerprints {
			if existing == string(fp) {
				return nil
			}
		}

		charged.GenerationsUsed++
		charged.Fingerprints = append(charged.Fingerprints, string(fp))
		charged.UpdatedAt = time.Now().UTC()
		return tx.Set(docRef, &charged)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to charge generation",
			goerr.V("subjectID", subjectID),
			goerr.V("period", period),
			goerr.V("fingerprint", fp))
	}

	return fromUsageDoc(&charged), nil
}
