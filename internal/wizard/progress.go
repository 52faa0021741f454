package wizard

import "math"

// Progress returns the completion percentage for the given completed steps,
// rounded half away from zero. It does not depend on the current step.
func Progress(completed StepSet) int {
	return int(math.Round(100 * float64(completed.Len()) / TotalSteps))
}
