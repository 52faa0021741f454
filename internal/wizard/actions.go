package wizard

import (
	"github.com/google/uuid"

	"github.com/jonathan/worker-profile-wizard/internal/types"
)

// Action is a state transition understood by Reduce.
type Action interface {
	// Name identifies the action in logs, metrics and events.
	Name() string
	isAction()
}

// Next completes the current step and advances unless it is the last one.
type Next struct{}

// Prev moves back one step, stopping at the first.
type Prev struct{}

// GoTo jumps to a step that has already been completed.
type GoTo struct {
	Step Step
}

// UpdateField writes one scalar form field from its raw string input.
type UpdateField struct {
	Field string
	Value string
}

// UpdateExperiences replaces the whole experience list. Every entry must
// carry an ID; see AssignIDs.
type UpdateExperiences struct {
	Entries []types.ExperienceEntry
}

// AddExperience appends one experience entry.
type AddExperience struct {
	Entry types.ExperienceEntry
}

// RemoveExperience deletes the entry with the given ID.
type RemoveExperience struct {
	ID uuid.UUID
}

// ToggleWorkDay adds the day to the desired work days, or removes it if present.
type ToggleWorkDay struct {
	Day string
}

// SetLoading raises or clears the loading indicator.
type SetLoading struct {
	Loading bool
}

// Reset returns the wizard to its initial state.
type Reset struct{}

func (Next) Name() string              { return "next" }
func (Prev) Name() string              { return "prev" }
func (GoTo) Name() string              { return "goto" }
func (UpdateField) Name() string       { return "update_field" }
func (UpdateExperiences) Name() string { return "update_experiences" }
func (AddExperience) Name() string     { return "add_experience" }
func (RemoveExperience) Name() string  { return "remove_experience" }
func (ToggleWorkDay) Name() string     { return "toggle_work_day" }
func (SetLoading) Name() string        { return "set_loading" }
func (Reset) Name() string             { return "reset" }

func (Next) isAction()              {}
func (Prev) isAction()              {}
func (GoTo) isAction()              {}
func (UpdateField) isAction()       {}
func (UpdateExperiences) isAction() {}
func (AddExperience) isAction()     {}
func (RemoveExperience) isAction()  {}
func (ToggleWorkDay) isAction()     {}
func (SetLoading) isAction()        {}
func (Reset) isAction()             {}

// AssignIDs returns a copy of entries where every entry without an ID gets a
// fresh one. Entries that already have an ID keep it.
func AssignIDs(entries []types.ExperienceEntry) []types.ExperienceEntry {
	out := make([]types.ExperienceEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].ID == uuid.Nil {
			out[i].ID = uuid.New()
		}
	}
	return out
}
