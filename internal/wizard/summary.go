package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/worker-profile-wizard/internal/types"
)

const (
	summarySeparator = " · "
	summaryMaxParts  = 2
)

// Summarize returns a short digest of the most identifying values entered on
// step, e.g. "Kim · Vietnam" for the identity step. ok is false when none of
// the relevant fields are set.
func Summarize(step Step, f types.FormData) (summary string, ok bool) {
	var candidates []string

	switch step {
	case StepResidency:
		candidates = []string{str(f.ResidenceProvince), str(f.ResidenceCity), str(f.ResidenceStatus)}
	case StepIdentity:
		candidates = []string{str(f.LastName), str(f.Nationality)}
	case StepVisa:
		candidates = []string{str(f.VisaType), str(f.VisaSubType)}
	case StepLanguage:
		candidates = []string{
			level("TOPIK", f.TopikLevel),
			level("KIIP", f.KIIPLevel),
			level("Sejong", f.SejongLevel),
		}
	case StepEducation:
		candidates = []string{str(f.EducationLevel), str(f.SchoolName), str(f.Major)}
	case StepEvaluation:
		score := ""
		if f.DeltaScore != nil {
			score = "Score " + formatNumber(*f.DeltaScore)
		}
		candidates = []string{score, str(f.EvaluationDate)}
	case StepExperience:
		years := ""
		if f.TotalExperienceYears != nil {
			years = formatNumber(*f.TotalExperienceYears) + " yrs"
		}
		candidates = []string{years, latestCompany(f.Experiences)}
	case StepPreferences:
		candidates = []string{str(f.DesiredJobType), str(f.DesiredProvince), salaryRange(f.DesiredSalaryMin, f.DesiredSalaryMax)}
	default:
		return "", false
	}

	parts := make([]string, 0, summaryMaxParts)
	for _, c := range candidates {
		if c == "" {
			continue
		}
		parts = append(parts, c)
		if len(parts) == summaryMaxParts {
			break
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, summarySeparator), true
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func level(name string, v *int) string {
	if v == nil {
		return ""
	}
	return name + " " + strconv.Itoa(*v)
}

// latestCompany prefers the current employer, then the first listed entry.
func latestCompany(entries []types.ExperienceEntry) string {
	for _, e := range entries {
		if e.IsCurrent && e.Company != "" {
			return e.Company
		}
	}
	for _, e := range entries {
		if e.Company != "" {
			return e.Company
		}
	}
	return ""
}

func salaryRange(lo, hi *int) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("%d~%d", *lo, *hi)
	case lo != nil:
		return fmt.Sprintf("%d~", *lo)
	case hi != nil:
		return fmt.Sprintf("~%d", *hi)
	}
	return ""
}
