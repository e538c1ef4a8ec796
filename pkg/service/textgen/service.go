package textgen

import (
	"context"
	"encoding/json"
	"time"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// Service generates the structured body of a repair guide for one
// (vehicle, task) request. Implementations have no cache or usage side
// effects beyond the external model call.
type Service interface {
	Generate(ctx context.Context, req model.GuideRequest) (*model.GuideBody, error)
}

// client implements Service on top of a gollem LLM client
type client struct {
	llmClient gollem.LLMClient
	timeout   time.Duration
}

// Option is a functional option for client configuration
type Option func(*client)

// WithTimeout bounds each generation call
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// New creates a text generation service with the provided LLM client
func New(llmClient gollem.LLMClient, opts ...Option) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &client{
		llmClient: llmClient,
		timeout:   60 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Generate runs one model call and returns a validated guide body. The
// response is untrusted: code fences are stripped, the JSON is parsed, and
// the structural contract is enforced before anything is returned.
func (c *client) Generate(ctx context.Context, req model.GuideRequest) (*model.GuideBody, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(buildUserPrompt(req)))
	if err != nil {
		return nil, goerr.Wrap(types.ErrGenerationFailed, "text generation call failed",
			goerr.V("vehicle", req.Vehicle.Label()),
			goerr.V("cause", err.Error()))
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.Wrap(types.ErrGenerationFailed, "empty model response",
			goerr.V("vehicle", req.Vehicle.Label()))
	}

	raw := StripCodeFences(resp.Texts[0])

	var body model.GuideBody
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, goerr.Wrap(types.ErrGenerationFailed, "malformed model response",
			goerr.V("response", raw),
			goerr.V("cause", err.Error()))
	}

	if err := body.Validate(); err != nil {
		return nil, goerr.Wrap(types.ErrGenerationFailed, "model response violates guide contract",
			goerr.V("cause", err.Error()))
	}

	return &body, nil
}
