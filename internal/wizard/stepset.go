package wizard

import (
	"encoding/json"
	"fmt"
	"math/bits"
)

// StepSet is a set of wizard steps stored as a bitmask. It is a value type,
// so copying a State copies its completed steps.
type StepSet uint8

// NewStepSet returns a set holding the given steps. Invalid steps are ignored.
func NewStepSet(steps ...Step) StepSet {
	var s StepSet
	for _, st := range steps {
		s = s.With(st)
	}
	return s
}

// Has reports whether st is in the set.
func (s StepSet) Has(st Step) bool {
	if !st.Valid() {
		return false
	}
	return s&(1<<uint(st)) != 0
}

// With returns the set with st added.
func (s StepSet) With(st Step) StepSet {
	if !st.Valid() {
		return s
	}
	return s | 1<<uint(st)
}

// Len returns the number of steps in the set.
func (s StepSet) Len() int {
	return bits.OnesCount8(uint8(s))
}

// All reports whether every wizard step is in the set.
func (s StepSet) All() bool {
	return s.Len() == TotalSteps
}

// Steps returns the members in ascending order.
func (s StepSet) Steps() []Step {
	out := make([]Step, 0, s.Len())
	for st := Step(0); st < TotalSteps; st++ {
		if s.Has(st) {
			out = append(out, st)
		}
	}
	return out
}

// Ints returns the members as plain integers in ascending order.
func (s StepSet) Ints() []int {
	out := make([]int, 0, s.Len())
	for _, st := range s.Steps() {
		out = append(out, int(st))
	}
	return out
}

// MarshalJSON encodes the set as a sorted array of step indices.
func (s StepSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Ints())
}

// UnmarshalJSON decodes an array of step indices.
func (s *StepSet) UnmarshalJSON(data []byte) error {
	var idx []int
	if err := json.Unmarshal(data, &idx); err != nil {
		return err
	}
	var out StepSet
	for _, i := range idx {
		st := Step(i)
		if !st.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidStep, i)
		}
		out = out.With(st)
	}
	*s = out
	return nil
}
