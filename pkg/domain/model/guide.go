package model

import (
	"time"

	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// RepairStep is one ordered instruction of a guide. Number values are
// contiguous from 1 in generator order and are never reordered. An empty
// ImageURL means the illustration was omitted; the step stays usable.
type RepairStep struct {
	Number      int    `json:"step"`
	Instruction string `json:"instruction"`
	ImagePrompt string `json:"image_prompt"`
	ImageURL    string `json:"image_url,omitempty"`
}

// SourceRef is a grounding reference returned by the text backend
type SourceRef struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GuideBody is the untrusted structured output of the text generation
// backend. It must pass Validate before any downstream use.
type GuideBody struct {
	Title          string       `json:"title"`
	VehicleLabel   string       `json:"vehicle_label"`
	SafetyWarnings []string     `json:"safety_warnings"`
	Tools          []string     `json:"tools"`
	Parts          []string     `json:"parts"`
	Steps          []RepairStep `json:"steps"`
	Sources        []SourceRef  `json:"sources,omitempty"`
}

// Validate enforces the structural contract on generator output: non-empty
// title, at least one step, step numbers contiguous from 1, and non-empty
// instruction and image prompt per step. Violations are generation failures,
// never passed through.
func (b *GuideBody) Validate() error {
	if b.Title == "" {
		return goerr.New("guide title is empty")
	}
	if len(b.Steps) == 0 {
		return goerr.New("guide has no steps", goerr.V("title", b.Title))
	}
	for i, step := range b.Steps {
		if step.Number != i+1 {
			return goerr.New("step numbers must be contiguous from 1",
				goerr.V("index", i),
				goerr.V("number", step.Number))
		}
		if step.Instruction == "" {
			return goerr.New("step instruction is empty", goerr.V("number", step.Number))
		}
		if step.ImagePrompt == "" {
			return goerr.New("step image prompt is empty", goerr.V("number", step.Number))
		}
	}
	return nil
}

// RepairGuide is a committed, immutable guide. Image URLs are filled in
// during construction and never mutated by a later request.
type RepairGuide struct {
	ID             types.GuideID
	Fingerprint    types.Fingerprint
	Title          string
	VehicleLabel   string
	SafetyWarnings []string
	Tools          []string
	Parts          []string
	Steps          []RepairStep
	Sources        []SourceRef
	CreatedAt      time.Time
}

// NewRepairGuide assembles a guide from a validated body and its request.
// The canonical id is derived from the generated title, so it can only be
// computed here, after generation.
func NewRepairGuide(req GuideRequest, body *GuideBody) *RepairGuide {
	label := body.VehicleLabel
	if label == "" {
		label = req.Vehicle.Label()
	}

	return &RepairGuide{
		ID:             types.NewGuideID(req.Vehicle.Year, req.Vehicle.Make, req.Vehicle.Model, body.Title),
		Fingerprint:    req.Fingerprint(),
		Title:          body.Title,
		VehicleLabel:   label,
		SafetyWarnings: body.SafetyWarnings,
		Tools:          body.Tools,
		Parts:          body.Parts,
		Steps:          body.Steps,
		Sources:        body.Sources,
		CreatedAt:      time.Now().UTC(),
	}
}

// Clone returns a deep copy so repository callers can never alias the
// stored guide
func (g *RepairGuide) Clone() *RepairGuide {
	if g == nil {
		return nil
	}
	copied := *g
	copied.SafetyWarnings = append([]string(nil), g.SafetyWarnings...)
	copied.Tools = append([]string(nil), g.Tools...)
	copied.Parts = append([]string(nil), g.Parts...)
	copied.Steps = append([]RepairStep(nil), g.Steps...)
	copied.Sources = append([]SourceRef(nil), g.Sources...)
	return &copied
}
