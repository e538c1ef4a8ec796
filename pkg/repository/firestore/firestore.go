package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/garage-lab/gearbox/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Firestore is the production repository. One document per fingerprint holds
// the guide payload plus its state flag; alias documents map canonical guide
// ids back to fingerprints; one document per (subject, period) holds usage.
type Firestore struct {
	client *firestore.Client
	guide  *guideRepository
	usage  *usageRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, used by tests to isolate
// runs against a shared project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.guide.collectionPrefix = prefix
		f.usage.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client: client,
		guide:  newGuideRepository(client),
		usage:  newUsageRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Guide() interfaces.GuideRepository {
	return f.guide
}

func (f *Firestore) Usage() interfaces.UsageRepository {
	return f.usage
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
