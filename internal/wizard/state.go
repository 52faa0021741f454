package wizard

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/jonathan/worker-profile-wizard/internal/types"
)

// WorkDays lists the accepted day codes in calendar order.
var WorkDays = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// State is the complete state of one wizard session.
type State struct {
	CurrentStep    Step           `json:"current_step"`
	CompletedSteps StepSet        `json:"completed_steps"`
	FormData       types.FormData `json:"form_data"`
	IsLoading      bool           `json:"is_loading"`
}

// NewState returns a wizard positioned on the first step with nothing completed.
func NewState() State {
	return State{CurrentStep: StepResidency}
}

// NewStateAt returns a wizard pre-seeded at step with the given steps completed.
func NewStateAt(step Step, completed ...Step) (State, error) {
	if !step.Valid() {
		return State{}, fmt.Errorf("%w: %d", ErrInvalidStep, int(step))
	}
	for _, st := range completed {
		if !st.Valid() {
			return State{}, fmt.Errorf("%w: %d", ErrInvalidStep, int(st))
		}
	}
	return State{CurrentStep: step, CompletedSteps: NewStepSet(completed...)}, nil
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.FormData = s.FormData.Clone()
	return out
}

// IsLastStep reports whether the wizard sits on the terminal step.
func (s State) IsLastStep() bool {
	return s.CurrentStep == LastStep
}

// NextLabel is the caption of the forward button on the current step.
func (s State) NextLabel() string {
	if s.IsLastStep() {
		return "Complete"
	}
	return "Next"
}

// Reduce applies a to s and returns the resulting state. The input is never
// modified. When an error is returned the state is returned unchanged.
func Reduce(s State, a Action) (State, error) {
	next := s.Clone()

	switch act := a.(type) {
	case Next:
		next.CompletedSteps = next.CompletedSteps.With(next.CurrentStep)
		if next.CurrentStep < LastStep {
			next.CurrentStep++
		}

	case Prev:
		if next.CurrentStep > 0 {
			next.CurrentStep--
		}

	case GoTo:
		if !act.Step.Valid() {
			return s, fmt.Errorf("%w: %d", ErrInvalidStep, int(act.Step))
		}
		if !next.CompletedSteps.Has(act.Step) {
			return s, fmt.Errorf("%w: %s", ErrStepNotCompleted, act.Step)
		}
		next.CurrentStep = act.Step

	case UpdateField:
		if err := SetField(&next.FormData, act.Field, act.Value); err != nil {
			return s, err
		}

	case UpdateExperiences:
		if err := checkEntryIDs(act.Entries); err != nil {
			return s, err
		}
		next.FormData.Experiences = nil
		if len(act.Entries) > 0 {
			next.FormData.Experiences = (types.FormData{Experiences: act.Entries}).Clone().Experiences
		}

	case AddExperience:
		list := append(slices.Clone(next.FormData.Experiences), act.Entry)
		if err := checkEntryIDs(list); err != nil {
			return s, err
		}
		next.FormData.Experiences = (types.FormData{Experiences: list}).Clone().Experiences

	case RemoveExperience:
		idx := slices.IndexFunc(next.FormData.Experiences, func(e types.ExperienceEntry) bool {
			return e.ID == act.ID
		})
		if idx < 0 {
			return s, fmt.Errorf("%w: %s", ErrExperienceNotFound, act.ID)
		}
		next.FormData.Experiences = slices.Delete(next.FormData.Experiences, idx, idx+1)
		if len(next.FormData.Experiences) == 0 {
			next.FormData.Experiences = nil
		}

	case ToggleWorkDay:
		days, err := toggleDay(next.FormData.DesiredWorkDays, act.Day)
		if err != nil {
			return s, err
		}
		next.FormData.DesiredWorkDays = days

	case SetLoading:
		next.IsLoading = act.Loading

	case Reset:
		next = NewState()

	default:
		return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}

	return next, nil
}

func checkEntryIDs(entries []types.ExperienceEntry) error {
	seen := make(map[uuid.UUID]struct{}, len(entries))
	for i, e := range entries {
		if e.ID == uuid.Nil {
			return fmt.Errorf("%w (index %d)", ErrMissingEntryID, i)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateEntryID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// toggleDay flips membership of day. Days are kept in calendar order so that
// two toggles of the same day restore the original list.
func toggleDay(days []string, day string) ([]string, error) {
	rank := slices.Index(WorkDays, day)
	if rank < 0 {
		return days, fmt.Errorf("%w: %q", ErrInvalidWorkDay, day)
	}

	if i := slices.Index(days, day); i >= 0 {
		out := slices.Delete(slices.Clone(days), i, i+1)
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	}

	out := make([]string, 0, len(days)+1)
	inserted := false
	for _, d := range days {
		if !inserted && slices.Index(WorkDays, d) > rank {
			out = append(out, day)
			inserted = true
		}
		out = append(out, d)
	}
	if !inserted {
		out = append(out, day)
	}
	return out, nil
}
