package estimator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fitguru-bot/internal/bodymetrics"
	"fitguru-bot/internal/llm"
)

type fakeTextGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeTextGenerator) GenerateContent(ctx context.Context, system, prompt string) (llm.ContentResponse, error) {
	f.lastPrompt = prompt
	if f.err != nil {
		return llm.ContentResponse{}, f.err
	}
	return llm.ContentResponse{Content: f.response}, nil
}

const goodResponse = `{
	"items": [
		{"name": "oatmeal", "quantity": "80 g", "calories": 300, "protein_g": 10, "fat_g": 6, "carbs_g": 54},
		{"name": "banana", "quantity": "1 medium", "calories": 105, "protein_g": 1.3, "fat_g": 0.4, "carbs_g": 27}
	],
	"total": {"calories": 405, "protein_g": 11.3, "fat_g": 6.4, "carbs_g": 81}
}`

func TestEstimateMeal(t *testing.T) {
	gen := &fakeTextGenerator{response: goodResponse}
	est, err := New(gen).EstimateMeal(context.Background(), Request{
		Description: "oatmeal with a banana",
		TargetKcal:  2259,
		WeightKG:    80,
		Goal:        bodymetrics.GoalLose,
	})
	if err != nil {
		t.Fatalf("EstimateMeal failed: %v", err)
	}

	if len(est.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(est.Items))
	}
	if est.Items[0].Name != "oatmeal" {
		t.Errorf("unexpected first item: %+v", est.Items[0])
	}
	if est.Total.Calories != 405 {
		t.Errorf("expected total 405 kcal, got %v", est.Total.Calories)
	}

	// Profile context must be folded into the prompt.
	for _, want := range []string{"2259", "80.0", "lose", "oatmeal with a banana"} {
		if !strings.Contains(gen.lastPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, gen.lastPrompt)
		}
	}
}

func TestEstimateMealStripsCodeFences(t *testing.T) {
	gen := &fakeTextGenerator{response: "```json\n" + goodResponse + "\n```"}
	est, err := New(gen).EstimateMeal(context.Background(), Request{Description: "breakfast"})
	if err != nil {
		t.Fatalf("EstimateMeal failed on fenced response: %v", err)
	}
	if est.Total.Calories != 405 {
		t.Errorf("expected total 405 kcal, got %v", est.Total.Calories)
	}
}

func TestEstimateMealRejectsMissingTotal(t *testing.T) {
	cases := map[string]string{
		"no total":   `{"items": [{"name": "pizza", "calories": 900}]}`,
		"null total": `{"items": [], "total": null}`,
		"partial total": `{
			"items": [],
			"total": {"calories": 900, "protein_g": 30}
		}`,
		"non-numeric total": `{"items": [], "total": {"calories": "a lot", "protein_g": 1, "fat_g": 1, "carbs_g": 1}}`,
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			gen := &fakeTextGenerator{response: resp}
			_, err := New(gen).EstimateMeal(context.Background(), Request{Description: "pizza"})
			if err == nil {
				t.Fatal("expected the estimate to be rejected")
			}
		})
	}
}

func TestEstimateMealPropagatesGeneratorError(t *testing.T) {
	genErr := errors.New("connection refused")
	gen := &fakeTextGenerator{err: genErr}
	_, err := New(gen).EstimateMeal(context.Background(), Request{Description: "soup"})
	if !errors.Is(err, genErr) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  ```json\n{\"a\":1}\n```  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
