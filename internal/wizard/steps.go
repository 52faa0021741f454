// Package wizard implements the profile setup wizard as a pure state machine:
// the step registry, typed field updates, the reducer that drives step
// transitions, and the derived progress, badge and summary values.
package wizard

import "fmt"

// Step indexes one page of the wizard.
type Step int

// The eight wizard steps in display order.
const (
	StepResidency Step = iota
	StepIdentity
	StepVisa
	StepLanguage
	StepEducation
	StepEvaluation
	StepExperience
	StepPreferences
)

const (
	// TotalSteps is the number of steps in the wizard.
	TotalSteps = 8
	// LastStep is the terminal step; Next completes it without advancing.
	LastStep = StepPreferences
)

// StepDefinition defines metadata for a wizard step
type StepDefinition struct {
	Index       Step
	ID          string
	Label       string
	Recommended []string // advisory; never enforced on Next
}

// stepRegistry holds all step definitions, indexed by Step.
var stepRegistry = [TotalSteps]StepDefinition{
	{
		Index:       StepResidency,
		ID:          "residency",
		Label:       "Residency",
		Recommended: []string{"residenceStatus", "residenceProvince"},
	},
	{
		Index:       StepIdentity,
		ID:          "identity",
		Label:       "Identity",
		Recommended: []string{"lastName", "firstName", "nationality", "birthDate"},
	},
	{
		Index:       StepVisa,
		ID:          "visa",
		Label:       "Visa",
		Recommended: []string{"visaType", "visaExpiryDate"},
	},
	{
		Index:       StepLanguage,
		ID:          "language",
		Label:       "Language",
		Recommended: []string{"topikLevel"},
	},
	{
		Index:       StepEducation,
		ID:          "education",
		Label:       "Education",
		Recommended: []string{"educationLevel"},
	},
	{
		Index:       StepEvaluation,
		ID:          "evaluation",
		Label:       "Evaluation",
		Recommended: []string{"deltaScore"},
	},
	{
		Index:       StepExperience,
		ID:          "experience",
		Label:       "Experience",
		Recommended: []string{"totalExperienceYears"},
	},
	{
		Index:       StepPreferences,
		ID:          "preferences",
		Label:       "Preferences",
		Recommended: []string{"desiredJobType", "desiredProvince"},
	},
}

// Steps returns the step definitions in order.
func Steps() []StepDefinition {
	out := make([]StepDefinition, TotalSteps)
	copy(out, stepRegistry[:])
	return out
}

// Valid reports whether s is a step index of the wizard.
func (s Step) Valid() bool {
	return s >= 0 && s < TotalSteps
}

// Definition returns the registry entry for s.
func (s Step) Definition() (StepDefinition, error) {
	if !s.Valid() {
		return StepDefinition{}, fmt.Errorf("%w: %d", ErrInvalidStep, int(s))
	}
	return stepRegistry[s], nil
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepRegistry[s].ID
}

// StepByID looks up a step by its identifier (e.g. "visa").
func StepByID(id string) (Step, bool) {
	for _, def := range stepRegistry {
		if def.ID == id {
			return def.Index, true
		}
	}
	return 0, false
}
