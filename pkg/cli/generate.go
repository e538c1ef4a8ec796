package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/garage-lab/gearbox/pkg/cli/config"
	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdGenerate() *cli.Command {
	var (
		year      string
		makeName  string
		modelName string
		task      string
		subjectID string
		plan      string

		repoCfg    config.Repository
		geminiCfg  config.Gemini
		imagenCfg  config.Imagen
		quotaCfg   config.Quota
		catalogCfg config.Catalog
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "year",
			Usage:       "Vehicle production year (4 digits)",
			Required:    true,
			Destination: &year,
		},
		&cli.StringFlag{
			Name:        "make",
			Usage:       "Vehicle make",
			Required:    true,
			Destination: &makeName,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Vehicle model",
			Required:    true,
			Destination: &modelName,
		},
		&cli.StringFlag{
			Name:        "task",
			Usage:       "Repair task, symptom or diagnostic code",
			Required:    true,
			Destination: &task,
		},
		&cli.StringFlag{
			Name:        "subject",
			Usage:       "Subject ID for usage accounting",
			Value:       "cli",
			Destination: &subjectID,
		},
		&cli.StringFlag{
			Name:        "plan",
			Usage:       "Billing plan of the subject (free or premium)",
			Value:       string(types.PlanPremium),
			Destination: &plan,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, imagenCfg.Flags()...)
	flags = append(flags, quotaCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"g"},
		Usage:   "Generate one repair guide and print it",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := quotaCfg.Validate(); err != nil {
				return err
			}

			vehicle, err := model.NewVehicle(year, makeName, modelName)
			if err != nil {
				return err
			}

			subjectPlan := types.Plan(plan)
			if !subjectPlan.IsValid() {
				return fmt.Errorf("invalid plan %q", plan)
			}

			uc, closeRepo, err := buildUseCases(ctx, &repoCfg, &geminiCfg, &imagenCfg, &quotaCfg, &catalogCfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			guide, err := uc.ProduceGuide(ctx,
				model.GuideRequest{Vehicle: vehicle, Task: task},
				types.Subject{ID: types.SubjectID(subjectID), Plan: subjectPlan},
			)
			if err != nil {
				if errors.Is(err, types.ErrQuotaExhausted) {
					color.Yellow("Free generation quota exhausted for subject %s", subjectID)
					return nil
				}
				return err
			}

			printGuide(guide)
			return nil
		},
	}
}

func printGuide(guide *model.RepairGuide) {
	title := color.New(color.FgCyan, color.Bold)
	section := color.New(color.FgGreen, color.Bold)

	title.Printf("%s: %s\n", guide.VehicleLabel, guide.Title)
	fmt.Printf("id: %s\n\n", guide.ID)

	if len(guide.SafetyWarnings) > 0 {
		section.Println("Safety warnings")
		for _, warning := range guide.SafetyWarnings {
			color.Red("  ! %s", warning)
		}
		fmt.Println()
	}

	if len(guide.Tools) > 0 {
		section.Println("Tools")
		for _, tool := range guide.Tools {
			fmt.Printf("  - %s\n", tool)
		}
		fmt.Println()
	}

	if len(guide.Parts) > 0 {
		section.Println("Parts")
		for _, part := range guide.Parts {
			fmt.Printf("  - %s\n", part)
		}
		fmt.Println()
	}

	section.Println("Steps")
	for _, step := range guide.Steps {
		fmt.Printf("  %d. %s\n", step.Number, step.Instruction)
		if step.ImageURL != "" {
			fmt.Printf("     image: %s\n", step.ImageURL)
		}
	}

	if len(guide.Sources) > 0 {
		fmt.Println()
		section.Println("Sources")
		for _, src := range guide.Sources {
			fmt.Printf("  - %s (%s)\n", src.Title, src.URI)
		}
	}
}
