package wizard

import "github.com/jonathan/worker-profile-wizard/internal/types"

// Timeline builds the per-step view shown next to the form. Summaries are
// only attached to completed steps.
func Timeline(s State) []types.StepView {
	views := make([]types.StepView, 0, TotalSteps)
	for _, def := range stepRegistry {
		v := types.StepView{
			Index:     int(def.Index),
			ID:        def.ID,
			Label:     def.Label,
			Completed: s.CompletedSteps.Has(def.Index),
			Current:   s.CurrentStep == def.Index,
			Missing:   MissingRecommended(def.Index, s.FormData),
		}
		if v.Completed {
			if summary, ok := Summarize(def.Index, s.FormData); ok {
				v.Summary = summary
			}
		}
		views = append(views, v)
	}
	return views
}
