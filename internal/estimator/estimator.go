// Package estimator turns a free-form meal description into a structured
// calorie and macronutrient estimate via the external model. The model is
// asked for strict JSON; its answer is still treated as untrusted and
// validated before anything reaches the day ledger.
package estimator

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"fitguru-bot/internal/bodymetrics"
	"fitguru-bot/internal/ledger"
	"fitguru-bot/internal/llm"
)

//go:embed estimator_prompt.md
var estimatorPrompt string

// ErrNoTotal means the model's answer lacked a usable total; the meal is
// rejected rather than logged partially.
var ErrNoTotal = errors.New("estimator: response has no numeric total")

// Request carries the meal description plus the profile context folded
// into the prompt.
type Request struct {
	Description string
	TargetKcal  int
	WeightKG    float64
	Goal        bodymetrics.Goal
}

// Estimate is a validated per-item breakdown with a mandatory total.
type Estimate struct {
	Items []ledger.MealItem
	Total ledger.Macros
	Usage llm.TokenUsage
}

// Estimator asks the external model to decompose a described meal.
type Estimator struct {
	textGen llm.TextGenerator
}

// New creates an Estimator backed by the given text generator.
func New(textGen llm.TextGenerator) *Estimator {
	return &Estimator{textGen: textGen}
}

// Pointer fields so a missing value is distinguishable from zero.
type rawItem struct {
	Name     string   `json:"name"`
	Quantity string   `json:"quantity"`
	Calories *float64 `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	FatG     *float64 `json:"fat_g"`
	CarbsG   *float64 `json:"carbs_g"`
}

type rawTotal struct {
	Calories *float64 `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	FatG     *float64 `json:"fat_g"`
	CarbsG   *float64 `json:"carbs_g"`
}

type rawEstimate struct {
	Items []rawItem `json:"items"`
	Total *rawTotal `json:"total"`
}

// EstimateMeal prompts the model and parses its answer. Any surrounding
// code-fence markup is stripped before parsing.
func (e *Estimator) EstimateMeal(ctx context.Context, req Request) (*Estimate, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	resp, err := e.textGen.GenerateContent(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to get estimate: %w", err)
	}

	est, err := parseEstimate(resp.Content)
	if err != nil {
		return nil, err
	}
	est.Usage = resp.Usage
	return est, nil
}

func buildPrompt(req Request) (string, error) {
	tmpl, err := template.New("estimator").Parse(estimatorPrompt)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// parseEstimate validates the model output: the total must exist with all
// four numeric fields, otherwise the whole estimate is rejected.
func parseEstimate(content string) (*Estimate, error) {
	cleaned := stripCodeFences(content)

	var raw rawEstimate
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("estimator: failed to parse response: %w. Response: %s", err, content)
	}

	if raw.Total == nil || raw.Total.Calories == nil || raw.Total.ProteinG == nil ||
		raw.Total.FatG == nil || raw.Total.CarbsG == nil {
		return nil, ErrNoTotal
	}

	est := &Estimate{
		Total: ledger.Macros{
			Calories: *raw.Total.Calories,
			ProteinG: *raw.Total.ProteinG,
			FatG:     *raw.Total.FatG,
			CarbsG:   *raw.Total.CarbsG,
		},
	}
	for _, it := range raw.Items {
		item := ledger.MealItem{Name: it.Name, Quantity: it.Quantity}
		if it.Calories != nil {
			item.Calories = *it.Calories
		}
		if it.ProteinG != nil {
			item.ProteinG = *it.ProteinG
		}
		if it.FatG != nil {
			item.FatG = *it.FatG
		}
		if it.CarbsG != nil {
			item.CarbsG = *it.CarbsG
		}
		est.Items = append(est.Items, item)
	}
	return est, nil
}

// stripCodeFences removes the markdown fencing some models wrap around
// JSON answers despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
