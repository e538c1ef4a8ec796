package imagegen_test

import (
	"context"
	"testing"
	"time"

	"github.com/garage-lab/gearbox/pkg/domain/model"
	"github.com/garage-lab/gearbox/pkg/service/imagegen"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type backendMock struct {
	render func(ctx context.Context, prompt string) (string, error)
	calls  []string
}

func (m *backendMock) Render(ctx context.Context, prompt string) (string, error) {
	m.calls = append(m.calls, prompt)
	return m.render(ctx, prompt)
}

func makeSteps(n int) []model.RepairStep {
	steps := make([]model.RepairStep, n)
	for i := range steps {
		steps[i] = model.RepairStep{
			Number:      i + 1,
			Instruction: "do the thing",
			ImagePrompt: string(rune('a' + i)),
		}
	}
	return steps
}

func TestIllustrate(t *testing.T) {
	t.Run("renders every step in order", func(t *testing.T) {
		mock := &backendMock{
			render: func(ctx context.Context, prompt string) (string, error) {
				return "https://img.example.com/" + prompt, nil
			},
		}
		s := imagegen.NewSynthesizer(mock)

		out := s.Illustrate(context.Background(), makeSteps(3))
		gt.Array(t, out).Length(3)
		gt.Value(t, mock.calls).Equal([]string{"a", "b", "c"})
		for i, step := range out {
			gt.Number(t, step.Number).Equal(i + 1)
			gt.Value(t, step.ImageURL).Equal("https://img.example.com/" + step.ImagePrompt)
		}
	})

	t.Run("one failed render leaves that step without an image", func(t *testing.T) {
		mock := &backendMock{
			render: func(ctx context.Context, prompt string) (string, error) {
				if prompt == "c" {
					return "", goerr.New("render failed")
				}
				return "https://img.example.com/" + prompt, nil
			},
		}
		s := imagegen.NewSynthesizer(mock)

		out := s.Illustrate(context.Background(), makeSteps(6))
		gt.Array(t, out).Length(6)
		// Every step after the failure is still rendered, in order
		gt.Value(t, mock.calls).Equal([]string{"a", "b", "c", "d", "e", "f"})
		for i, step := range out {
			gt.Number(t, step.Number).Equal(i + 1)
			if i == 2 {
				gt.Value(t, step.ImageURL).Equal("")
				continue
			}
			gt.Value(t, step.ImageURL).Equal("https://img.example.com/" + step.ImagePrompt)
		}
	})

	t.Run("nil backend leaves all steps unillustrated", func(t *testing.T) {
		s := imagegen.NewSynthesizer(nil)

		out := s.Illustrate(context.Background(), makeSteps(2))
		gt.Array(t, out).Length(2)
		for _, step := range out {
			gt.Value(t, step.ImageURL).Equal("")
		}
	})

	t.Run("input slice is never mutated", func(t *testing.T) {
		mock := &backendMock{
			render: func(ctx context.Context, prompt string) (string, error) {
				return "https://img.example.com/x", nil
			},
		}
		s := imagegen.NewSynthesizer(mock)

		in := makeSteps(2)
		_ = s.Illustrate(context.Background(), in)
		gt.Value(t, in[0].ImageURL).Equal("")
	})

	t.Run("step timeout bounds each render", func(t *testing.T) {
		mock := &backendMock{
			render: func(ctx context.Context, prompt string) (string, error) {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(time.Second):
					return "https://img.example.com/slow", nil
				}
			},
		}
		s := imagegen.NewSynthesizer(mock, imagegen.WithStepTimeout(10*time.Millisecond))

		out := s.Illustrate(context.Background(), makeSteps(1))
		gt.Value(t, out[0].ImageURL).Equal("")
	})
}
