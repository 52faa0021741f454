package wizard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/worker-profile-wizard/internal/types"
)

func mustReduce(t *testing.T, s State, a Action) State {
	t.Helper()
	next, err := Reduce(s, a)
	require.NoError(t, err)
	return next
}

func TestNext_AdvancesAndCompletes(t *testing.T) {
	s := NewState()

	for i := 0; i < TotalSteps+3; i++ {
		before := s.CompletedSteps.Len()
		s = mustReduce(t, s, Next{})

		assert.LessOrEqual(t, int(s.CurrentStep), int(LastStep))
		if before < TotalSteps {
			assert.Equal(t, before+1, s.CompletedSteps.Len(), "call %d", i)
		} else {
			assert.Equal(t, TotalSteps, s.CompletedSteps.Len())
		}
	}

	assert.Equal(t, LastStep, s.CurrentStep)
	assert.True(t, s.CompletedSteps.All())
}

func TestNext_TerminalStepDoesNotAdvance(t *testing.T) {
	s, err := NewStateAt(LastStep)
	require.NoError(t, err)
	assert.Equal(t, "Complete", s.NextLabel())

	s = mustReduce(t, s, Next{})
	assert.Equal(t, LastStep, s.CurrentStep)
	assert.True(t, s.CompletedSteps.Has(LastStep))
	assert.Equal(t, 1, s.CompletedSteps.Len())
}

func TestPrev(t *testing.T) {
	t.Run("floor at zero", func(t *testing.T) {
		s := mustReduce(t, NewState(), Prev{})
		assert.Equal(t, StepResidency, s.CurrentStep)
		assert.Equal(t, 0, s.CompletedSteps.Len())
	})

	t.Run("keeps completed steps", func(t *testing.T) {
		s := NewState()
		s = mustReduce(t, s, Next{})
		s = mustReduce(t, s, Next{})
		completed := s.CompletedSteps

		s = mustReduce(t, s, Prev{})
		assert.Equal(t, StepIdentity, s.CurrentStep)
		assert.Equal(t, completed, s.CompletedSteps)
	})
}

func TestGoTo(t *testing.T) {
	s := NewState()
	s = mustReduce(t, s, Next{})
	s = mustReduce(t, s, Next{})
	s = mustReduce(t, s, Next{})
	require.Equal(t, StepLanguage, s.CurrentStep)

	for step := Step(0); step < TotalSteps; step++ {
		next, err := Reduce(s, GoTo{Step: step})
		if s.CompletedSteps.Has(step) {
			require.NoError(t, err)
			assert.Equal(t, step, next.CurrentStep)
		} else {
			assert.ErrorIs(t, err, ErrStepNotCompleted)
			assert.Equal(t, s, next, "rejected jump must be a no-op")
		}
	}

	_, err := Reduce(s, GoTo{Step: 9})
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestUpdateField(t *testing.T) {
	s := NewState()

	s = mustReduce(t, s, UpdateField{Field: "deltaScore", Value: "85"})
	require.NotNil(t, s.FormData.DeltaScore)
	assert.Equal(t, 85.0, *s.FormData.DeltaScore)

	s = mustReduce(t, s, UpdateField{Field: "deltaScore", Value: ""})
	assert.Nil(t, s.FormData.DeltaScore)

	s = mustReduce(t, s, UpdateField{Field: "topikLevel", Value: " 4 "})
	require.NotNil(t, s.FormData.TopikLevel)
	assert.Equal(t, 4, *s.FormData.TopikLevel)

	s = mustReduce(t, s, UpdateField{Field: "lastName", Value: "Nguyen"})
	require.NotNil(t, s.FormData.LastName)
	assert.Equal(t, "Nguyen", *s.FormData.LastName)

	s = mustReduce(t, s, UpdateField{Field: "lastName", Value: ""})
	assert.Nil(t, s.FormData.LastName)
}

func TestUpdateField_Errors(t *testing.T) {
	s := mustReduce(t, NewState(), UpdateField{Field: "graduationYear", Value: "2019"})

	next, err := Reduce(s, UpdateField{Field: "graduationYear", Value: "twenty"})
	assert.ErrorIs(t, err, ErrInvalidNumber)
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "graduationYear", fe.Field)
	require.NotNil(t, next.FormData.GraduationYear)
	assert.Equal(t, 2019, *next.FormData.GraduationYear, "invalid input must not overwrite")

	_, err = Reduce(s, UpdateField{Field: "deltaScore", Value: "NaN"})
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = Reduce(s, UpdateField{Field: "experiences", Value: "x"})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := mustReduce(t, NewState(), UpdateField{Field: "visaType", Value: "E-9"})
	s = mustReduce(t, s, ToggleWorkDay{Day: "MON"})
	s = mustReduce(t, s, AddExperience{Entry: types.ExperienceEntry{ID: uuid.New(), Company: "Hanil"}})
	snapshot := s.Clone()

	_ = mustReduce(t, s, UpdateField{Field: "visaType", Value: "H-2"})
	_ = mustReduce(t, s, ToggleWorkDay{Day: "TUE"})
	_ = mustReduce(t, s, RemoveExperience{ID: s.FormData.Experiences[0].ID})

	assert.Equal(t, snapshot, s)
}

func TestToggleWorkDay(t *testing.T) {
	s := NewState()
	original := s.FormData.DesiredWorkDays

	s = mustReduce(t, s, ToggleWorkDay{Day: "MON"})
	assert.Equal(t, []string{"MON"}, s.FormData.DesiredWorkDays)
	s = mustReduce(t, s, ToggleWorkDay{Day: "MON"})
	assert.Equal(t, original, s.FormData.DesiredWorkDays)

	s = mustReduce(t, s, ToggleWorkDay{Day: "FRI"})
	s = mustReduce(t, s, ToggleWorkDay{Day: "MON"})
	s = mustReduce(t, s, ToggleWorkDay{Day: "WED"})
	assert.Equal(t, []string{"MON", "WED", "FRI"}, s.FormData.DesiredWorkDays)

	before := s.FormData.DesiredWorkDays
	s = mustReduce(t, s, ToggleWorkDay{Day: "WED"})
	s = mustReduce(t, s, ToggleWorkDay{Day: "WED"})
	assert.Equal(t, before, s.FormData.DesiredWorkDays)

	_, err := Reduce(s, ToggleWorkDay{Day: "FUNDAY"})
	assert.ErrorIs(t, err, ErrInvalidWorkDay)
}

func TestExperiences(t *testing.T) {
	entries := AssignIDs([]types.ExperienceEntry{
		{Company: "A"}, {Company: "B"}, {Company: "C"},
	})
	s := mustReduce(t, NewState(), UpdateExperiences{Entries: entries})
	require.Len(t, s.FormData.Experiences, 3)

	t.Run("shorter list truncates", func(t *testing.T) {
		shorter := mustReduce(t, s, UpdateExperiences{Entries: entries[:1]})
		require.Len(t, shorter.FormData.Experiences, 1)

		_, err := Reduce(shorter, RemoveExperience{ID: entries[2].ID})
		assert.ErrorIs(t, err, ErrExperienceNotFound)

		empty := mustReduce(t, shorter, RemoveExperience{ID: entries[0].ID})
		assert.Nil(t, empty.FormData.Experiences)
	})

	t.Run("removal keeps identity of the rest", func(t *testing.T) {
		next := mustReduce(t, s, RemoveExperience{ID: entries[0].ID})
		require.Len(t, next.FormData.Experiences, 2)
		assert.Equal(t, entries[1].ID, next.FormData.Experiences[0].ID)
		assert.Equal(t, "B", next.FormData.Experiences[0].Company)
	})

	t.Run("ids are required and unique", func(t *testing.T) {
		_, err := Reduce(s, UpdateExperiences{Entries: []types.ExperienceEntry{{Company: "X"}}})
		assert.ErrorIs(t, err, ErrMissingEntryID)

		_, err = Reduce(s, AddExperience{Entry: entries[0]})
		assert.ErrorIs(t, err, ErrDuplicateEntryID)
	})

	t.Run("empty replacement clears", func(t *testing.T) {
		next := mustReduce(t, s, UpdateExperiences{})
		assert.Nil(t, next.FormData.Experiences)
	})
}

func TestAssignIDs_KeepsExisting(t *testing.T) {
	id := uuid.New()
	out := AssignIDs([]types.ExperienceEntry{{ID: id}, {}})
	assert.Equal(t, id, out[0].ID)
	assert.NotEqual(t, uuid.Nil, out[1].ID)
}

func TestSetLoadingAndReset(t *testing.T) {
	s := mustReduce(t, NewState(), SetLoading{Loading: true})
	assert.True(t, s.IsLoading)
	s = mustReduce(t, s, Next{})
	assert.True(t, s.IsLoading, "next does not touch the loading flag")

	s = mustReduce(t, s, Reset{})
	assert.Equal(t, NewState(), s)
}

func TestNewStateAt_Invalid(t *testing.T) {
	_, err := NewStateAt(8)
	assert.ErrorIs(t, err, ErrInvalidStep)
	_, err = NewStateAt(StepVisa, -1)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestReduce_UnknownAction(t *testing.T) {
	_, err := Reduce(NewState(), nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
}
