package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	statusPending   = "pending"
	statusCommitted = "committed"
)

// guideDoc is the Firestore document representation of a cache entry. A
// pending document carries only the state flag and reservation time.
type guideDoc struct {
	Status         string             `firestore:"Status"`
	ID             types.GuideID      `firestore:"ID,omitempty"`
	Fingerprint    types.Fingerprint  `firestore:"Fingerprint"`
	Title          string             `firestore:"Title,omitempty"`
	VehicleLabel   string             `firestore:"VehicleLabel,omitempty"`
	SafetyWarnings []string           `firestore:"SafetyWarnings,omitempty"`
	Tools          []string           `firestore:"Tools,omitempty"`
	Parts          []string           `firestore:"Parts,omitempty"`
	Steps          []stepDoc          `firestore:"Steps,omitempty"`
	Sources        []sourceDoc        `firestore:"Sources,omitempty"`
	CreatedAt      time.Time          `firestore:"CreatedAt"`
}

type stepDoc struct {
	Number      int    `firestore:"Number"`
	Instruction string `firestore:"Instruction"`
	ImagePrompt string `firestore:"ImagePrompt"`
	ImageURL    string `firestore:"ImageURL,omitempty"`
}

type sourceDoc struct {
	URI   string `firestore:"URI"`
	Title string `firestore:"Title"`
}

// aliasDoc maps a canonical guide id to the fingerprint document
type aliasDoc struct {
	Fingerprint types.Fingerprint `firestore:"Fingerprint"`
}

func toGuideDoc(guide *model.RepairGuide) *guideDoc {
	doc := &guideDoc{
		Status:         statusCommitted,
		ID:             guide.ID,
		Fingerprint:    guide.Fingerprint,
		Title:          guide.Title,
		VehicleLabel:   guide.VehicleLabel,
		SafetyWarnings: guide.SafetyWarnings,
		Tools:          guide.Tools,
		Parts:          guide.Parts,
		CreatedAt:      guide.CreatedAt,
	}
	for _, s := range guide.Steps {
		doc.Steps = append(doc.Steps, stepDoc(s))
	}
	for _, s := range guide.Sources {
		doc.Sources = append(doc.Sources, sourceDoc(s))
	}
	return doc
}

func fromGuideDoc(d *guideDoc) *model.RepairGuide {
	guide := &model.RepairGuide{
		ID:             d.ID,
		Fingerprint:    d.Fingerprint,
		Title:          d.Title,
		VehicleLabel:   d.VehicleLabel,
		SafetyWarnings: d.SafetyWarnings,
		Tools:          d.Tools,
		Parts:          d.Parts,
		CreatedAt:      d.CreatedAt,
	}
	for _, s := range d.Steps {
		guide.Steps = append(guide.Steps, model.RepairStep(s))
	}
	for _, s := range d.Sources {
		guide.Sources = append(guide.Sources, model.SourceRef(s))
	}
	return guide
}

type guideRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newGuideRepository(client *firestore.Client) *guideRepository {
	return &guideRepository{client: client}
}

func (r *guideRepository) guidesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_guides"
	}
	return "guides"
}

func (r *guideRepository) aliasesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_guide_aliases"
	}
	return "guide_aliases"
}

func (r *guideRepository) guideDoc(fp types.Fingerprint) *firestore.DocumentRef {
	return r.client.Collection(r.guidesCollection()).Doc(string(fp))
}

func (r *guideRepository) aliasDoc(id types.GuideID) *firestore.DocumentRef {
	return r.client.Collection(r.aliasesCollection()).Doc(string(id))
}

func (r *guideRepository) Get(ctx context.Context, id types.GuideID) (*model.RepairGuide, error) {
	doc, err := r.aliasDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "guide not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get guide alias", goerr.V("id", id))
	}

	var alias aliasDoc
	if err := doc.DataTo(&alias); err != nil {
		return nil, goerr.Wrap(err, "failed to decode guide alias", goerr.V("id", id))
	}

	return r.GetByFingerprint(ctx, alias.Fingerprint)
}

func (r *guideRepository) GetByFingerprint(ctx context.Context, fp types.Fingerprint) (*model.RepairGuide, error) {
	doc, err := r.guideDoc(fp).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "guide not found", goerr.V("fingerprint", fp))
		}
		return nil, goerr.Wrap(err, "failed to get guide", goerr.V("fingerprint", fp))
	}

	var d guideDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode guide", goerr.V("fingerprint", fp))
	}
	if d.Status != statusCommitted {
		return nil, goerr.Wrap(types.ErrNotFound, "guide not committed", goerr.V("fingerprint", fp))
	}

	return fromGuideDoc(&d), nil
}

func (r *guideRepository) Reserve(ctx context.Context, fp types.Fingerprint) error {
	docRef := r.guideDoc(fp)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(docRef)
		if err == nil {
			return goerr.Wrap(types.ErrAlreadyReserved, "reservation exists", goerr.V("fingerprint", fp))
		}
		if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to check reservation")
		}

		return tx.Create(docRef, &guideDoc{
			Status:      statusPending,
			Fingerprint: fp,
			CreatedAt:   time.Now().UTC(),
		})
	})
	if err != nil {
		return err
	}
	return nil
}

func (r *guideRepository) Commit(ctx context.Context, fp types.Fingerprint, guide *model.RepairGuide) error {
	docRef := r.guideDoc(fp)
	aliasRef := r.aliasDoc(guide.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return goerr.Wrap(err, "failed to get reservation", goerr.V("fingerprint", fp))
		}

		var d guideDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to decode reservation")
		}
		if d.Status != statusPending {
			return goerr.New("commit without pending reservation",
				goerr.V("fingerprint", fp),
				goerr.V("status", d.Status))
		}

		if err := tx.Set(docRef, toGuideDoc(guide)); err != nil {
			return goerr.Wrap(err, "failed to commit guide")
		}
		return tx.Set(aliasRef, &aliasDoc{Fingerprint: fp})
	})
	if err != nil {
		return goerr.Wrap(err, "failed to commit guide", goerr.V("fingerprint", fp))
	}
	return nil
}

func (r *guideRepository) Abort(ctx context.Context, fp types.Fingerprint) error {
	docRef := r.guideDoc(fp)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return goerr.Wrap(err, "failed to get reservation")
		}

		var d guideDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to decode reservation")
		}
		if d.Status != statusPending {
			return nil
		}
		return tx.Delete(docRef)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to abort reservation", goerr.V("fingerprint", fp))
	}
	return nil
}
