// Package coach builds the prompts sent to the external model for
// workout generation and free-form fitness questions, always folding the
// user's profile in as context.
package coach

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"fitguru-bot/internal/profile"
)

//go:embed system_prompt.md
var systemPrompt string

//go:embed workout_prompt.md
var workoutPrompt string

//go:embed advice_prompt.md
var advicePrompt string

// SystemPrompt returns the dietitian persona instructions sent with
// every generation.
func SystemPrompt() string {
	return systemPrompt
}

// Location is where the user wants to train.
type Location string

const (
	LocationHome    Location = "home"
	LocationGym     Location = "gym"
	LocationOutdoor Location = "outdoor"
)

// Valid reports whether l is a recognized training location.
func (l Location) Valid() bool {
	switch l {
	case LocationHome, LocationGym, LocationOutdoor:
		return true
	}
	return false
}

type promptData struct {
	*profile.Profile
	LocationLine string
	Question     string
}

// WorkoutPrompt builds the workout-generation prompt for a complete
// profile and a chosen training location.
func WorkoutPrompt(p *profile.Profile, loc Location) (string, error) {
	var line string
	switch loc {
	case LocationGym:
		line = "for the gym, using common machines and free weights"
	case LocationOutdoor:
		line = "for outdoors, using bodyweight only"
	default:
		line = "for home, without any equipment"
	}
	return render("workout", workoutPrompt, promptData{Profile: p, LocationLine: line})
}

// AdvicePrompt builds the free-chat prompt with the profile as context.
func AdvicePrompt(p *profile.Profile, question string) (string, error) {
	return render("advice", advicePrompt, promptData{Profile: p, Question: question})
}

func render(name, text string, data promptData) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s prompt: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build %s prompt: %w", name, err)
	}
	return buf.String(), nil
}
