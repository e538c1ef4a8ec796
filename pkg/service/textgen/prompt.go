package textgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/m-mizutani/gollem"
)

const systemPrompt = `You are an experienced automotive repair writer. Given a vehicle and a repair task, produce a structured step-by-step repair guide for a home mechanic.

## Instructions:

1. Write for the exact vehicle given; reference its actual layout, fasteners and fluids where relevant.
2. Start safety_warnings with anything that can injure the reader (jack stands, hot parts, battery disconnect, airbag precautions).
3. List every tool and part needed before the first step.
4. Number steps from 1 and keep each step one concrete action.
5. Give each step an image_prompt describing a clear illustrative photo of that action on this vehicle.
6. If the task is a symptom or diagnostic code rather than a named repair, write a diagnosis-first guide.`

// buildUserPrompt renders the per-request prompt with the vehicle label and
// the raw task text
func buildUserPrompt(req model.GuideRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Vehicle\n\n%s\n\n", req.Vehicle.Label())
	fmt.Fprintf(&sb, "## Task\n\n%s\n", req.Task)

	return sb.String()
}

// buildResponseSchema creates the JSON schema for structured output
func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "RepairGuideBody",
		Description: "A structured step-by-step vehicle repair guide",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"title": {
				Type:        gollem.TypeString,
				Description: "Short name of the repair, e.g. 'Front Brake Pad Replacement'",
				Required:    true,
			},
			"vehicle_label": {
				Type:        gollem.TypeString,
				Description: "Human-readable vehicle name, e.g. '2015 Honda Civic'",
			},
			"safety_warnings": {
				Type:        gollem.TypeArray,
				Description: "Safety warnings in order of severity",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
				Required:    true,
			},
			"tools": {
				Type:        gollem.TypeArray,
				Description: "Tools needed for the whole job",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
				Required:    true,
			},
			"parts": {
				Type:        gollem.TypeArray,
				Description: "Replacement parts and consumables",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
				Required:    true,
			},
			"steps": {
				Type:        gollem.TypeArray,
				Description: "Ordered repair steps, numbered from 1",
				Required:    true,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"step": {
							Type:        gollem.TypeInteger,
							Description: "Step number, starting at 1",
							Required:    true,
						},
						"instruction": {
							Type:        gollem.TypeString,
							Description: "One concrete action",
							Required:    true,
						},
						"image_prompt": {
							Type:        gollem.TypeString,
							Description: "Description of an illustrative photo of this step",
							Required:    true,
						},
					},
				},
			},
			"sources": {
				Type:        gollem.TypeArray,
				Description: "Reference sources, if any",
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"uri":   {Type: gollem.TypeString, Required: true},
						"title": {Type: gollem.TypeString},
					},
				},
			},
		},
	}
}

var codeFencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripCodeFences removes a wrapping markdown code fence from a model
// response. Some models wrap JSON output in fences even when asked for raw
// JSON.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if m := codeFencePattern.FindStringSubmatch(trimmed); len(m) == 2 {
		return m[1]
	}
	return trimmed
}
