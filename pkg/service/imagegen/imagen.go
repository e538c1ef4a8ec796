package imagegen

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/garage-lab/gearbox/pkg/utils/safe"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// DefaultImagenModel is the image generation model used when none is
// configured
const DefaultImagenModel = "imagen-3.0-generate-002"

// imagenBackend renders illustrations with Imagen on Vertex AI and stores
// the bytes in a GCS bucket, returning the public object URL.
type imagenBackend struct {
	client  *genai.Client
	storage *storage.Client
	bucket  string
	model   string
}

// BackendOption is a functional option for imagenBackend configuration
type BackendOption func(*imagenBackend)

// WithModel overrides the Imagen model name
func WithModel(model string) BackendOption {
	return func(b *imagenBackend) {
		b.model = model
	}
}

// NewImagenBackend creates a Backend that generates images with Imagen and
// uploads them to the given GCS bucket
func NewImagenBackend(ctx context.Context, projectID, location, bucket string, opts ...BackendOption) (Backend, error) {
	if projectID == "" || bucket == "" {
		return nil, goerr.New("project ID and bucket are required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client", goerr.V("projectID", projectID))
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	b := &imagenBackend{
		client:  client,
		storage: storageClient,
		bucket:  bucket,
		model:   DefaultImagenModel,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

func (b *imagenBackend) Render(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Models.GenerateImages(ctx, b.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return "", goerr.Wrap(err, "image generation call failed")
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", goerr.New("image backend returned no image")
	}

	return b.upload(ctx, resp.GeneratedImages[0].Image.ImageBytes)
}

func (b *imagenBackend) upload(ctx context.Context, data []byte) (string, error) {
	objectName := fmt.Sprintf("steps/%s.png", uuid.New().String())

	w := b.storage.Bucket(b.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = "image/png"

	if _, err := w.Write(data); err != nil {
		safe.Close(ctx, w)
		return "", goerr.Wrap(err, "failed to write image object", goerr.V("object", objectName))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize image object", goerr.V("object", objectName))
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, objectName), nil
}
