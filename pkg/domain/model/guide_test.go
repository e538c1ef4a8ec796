package model_test

import (
	"testing"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func validBody() *model.GuideBody {
	return &model.GuideBody{
		Title:          "Front Brake Pad Replacement",
		VehicleLabel:   "2015 Honda Civic",
		SafetyWarnings: []string{"Support the car on jack stands"},
		Tools:          []string{"Jack", "Lug wrench"},
		Parts:          []string{"Front brake pads"},
		Steps: []model.RepairStep{
			{Number: 1, Instruction: "Loosen the lug nuts", ImagePrompt: "Lug wrench on a front wheel"},
			{Number: 2, Instruction: "Raise the car and remove the wheel", ImagePrompt: "Car on jack stands"},
		},
	}
}

func TestGuideBodyValidate(t *testing.T) {
	t.Run("valid body passes", func(t *testing.T) {
		gt.NoError(t, validBody().Validate())
	})

	t.Run("empty title", func(t *testing.T) {
		body := validBody()
		body.Title = ""
		gt.Error(t, body.Validate())
	})

	t.Run("no steps", func(t *testing.T) {
		body := validBody()
		body.Steps = nil
		gt.Error(t, body.Validate())
	})

	t.Run("non-contiguous step numbers", func(t *testing.T) {
		body := validBody()
		body.Steps[1].Number = 3
		gt.Error(t, body.Validate())
	})

	t.Run("numbering must start at 1", func(t *testing.T) {
		body := validBody()
		body.Steps = body.Steps[1:]
		gt.Error(t, body.Validate())
	})

	t.Run("empty instruction", func(t *testing.T) {
		body := validBody()
		body.Steps[0].Instruction = ""
		gt.Error(t, body.Validate())
	})

	t.Run("empty image prompt", func(t *testing.T) {
		body := validBody()
		body.Steps[1].ImagePrompt = ""
		gt.Error(t, body.Validate())
	})
}

func TestNewRepairGuide(t *testing.T) {
	v, err := model.NewVehicle("2015", "Honda", "Civic")
	gt.NoError(t, err).Required()
	req := model.GuideRequest{Vehicle: v, Task: "replace front brakes"}

	t.Run("id derives from title, fingerprint from task", func(t *testing.T) {
		guide := model.NewRepairGuide(req, validBody())

		gt.Value(t, guide.ID).Equal(types.GuideID("2015-honda-civic-front-brake-pad-replacement"))
		gt.Value(t, guide.Fingerprint).Equal(types.Fingerprint("2015-honda-civic-replace-front-brakes"))
		gt.Value(t, guide.Title).Equal("Front Brake Pad Replacement")
		gt.Value(t, guide.VehicleLabel).Equal("2015 Honda Civic")
		gt.Array(t, guide.Steps).Length(2)
		gt.Bool(t, guide.CreatedAt.IsZero()).False()
	})

	t.Run("missing label falls back to the request vehicle", func(t *testing.T) {
		body := validBody()
		body.VehicleLabel = ""
		guide := model.NewRepairGuide(req, body)
		gt.Value(t, guide.VehicleLabel).Equal("2015 Honda Civic")
	})
}

func TestRepairGuideClone(t *testing.T) {
	v, err := model.NewVehicle("2015", "Honda", "Civic")
	gt.NoError(t, err).Required()
	guide := model.NewRepairGuide(model.GuideRequest{Vehicle: v, Task: "replace front brakes"}, validBody())

	copied := guide.Clone()
	copied.Steps[0].ImageURL = "https://example.com/mutated.png"
	copied.Tools[0] = "Mutated"

	gt.Value(t, guide.Steps[0].ImageURL).Equal("")
	gt.Value(t, guide.Tools[0]).Equal("Jack")

	var nilGuide *model.RepairGuide
	gt.Value(t, nilGuide.Clone()).Nil()
}

func TestUsageRecord(t *testing.T) {
	fp := types.Fingerprint("2015-honda-civic-replace-front-brakes")

	t.Run("nil record has no charges", func(t *testing.T) {
		var record *model.UsageRecord
		gt.Bool(t, record.HasGenerated(fp)).False()
	})

	t.Run("charged fingerprints are remembered", func(t *testing.T) {
		record := &model.UsageRecord{
			SubjectID:       "user-1",
			PeriodKey:       "2026-08",
			GenerationsUsed: 1,
			Fingerprints:    []types.Fingerprint{fp},
		}
		gt.Bool(t, record.HasGenerated(fp)).True()
		gt.Bool(t, record.HasGenerated("2015-honda-civic-other-task")).False()
	})

	t.Run("clone does not alias fingerprints", func(t *testing.T) {
		record := &model.UsageRecord{Fingerprints: []types.Fingerprint{fp}}
		copied := record.Clone()
		copied.Fingerprints[0] = "mutated"
		gt.Value(t, record.Fingerprints[0]).Equal(fp)
	})
}
