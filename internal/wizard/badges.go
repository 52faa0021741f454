package wizard

import (
	"fmt"
	"strconv"

	"github.com/jonathan/worker-profile-wizard/internal/types"
)

// Badge colors.
const (
	ColorGreen = "green"
	ColorBlue  = "blue"
	ColorAmber = "amber"
)

// Badge identifiers.
const (
	BadgeProfileComplete  = "profile-complete"
	BadgeProfileHalf      = "profile-half"
	BadgeVisaVerified     = "visa-verified"
	BadgeVisaEntered      = "visa-entered"
	BadgeEvaluationScored = "evaluation-scored"
	BadgeExperienced      = "experienced"
)

// halfProfileSteps is the completed-step count that earns the 50%+ badge.
const halfProfileSteps = 4

// Badges derives the achievement badges for a wizard state. The result is
// ordered by rule and contains each badge id at most once.
func Badges(completed StepSet, f types.FormData) []types.Badge {
	badges := []types.Badge{}

	if completed.All() {
		badges = append(badges, types.Badge{ID: BadgeProfileComplete, Label: "Profile complete", Color: ColorGreen})
	} else if completed.Len() >= halfProfileSteps {
		badges = append(badges, types.Badge{ID: BadgeProfileHalf, Label: "Profile 50%+", Color: ColorBlue})
	}

	if completed.Has(StepVisa) {
		if f.VisaFile != nil {
			badges = append(badges, types.Badge{ID: BadgeVisaVerified, Label: "Visa verified", Color: ColorGreen})
		} else {
			badges = append(badges, types.Badge{ID: BadgeVisaEntered, Label: "Visa entered", Color: ColorAmber})
		}
	}

	// Presence, not truthiness: a score of 0 is still a score.
	if completed.Has(StepEvaluation) && f.DeltaScore != nil {
		badges = append(badges, types.Badge{
			ID:    BadgeEvaluationScored,
			Label: fmt.Sprintf("Evaluation scored (%s)", formatNumber(*f.DeltaScore)),
			Color: ColorGreen,
		})
	}

	if completed.Has(StepExperience) && f.TotalExperienceYears != nil && *f.TotalExperienceYears > 0 {
		badges = append(badges, types.Badge{ID: BadgeExperienced, Label: "Experienced", Color: ColorBlue})
	}

	return badges
}

// formatNumber prints a float without a trailing ".0" for whole values.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
