package wizard

import (
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/worker-profile-wizard/internal/types"
)

// FieldKind tells how a raw form value is interpreted.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
)

// FieldInfo describes a scalar form field.
type FieldInfo struct {
	Name string    `json:"name"`
	Step Step      `json:"step"`
	Kind FieldKind `json:"kind"`
}

// binding ties a field name to its slot in FormData. The parse behaviour is
// fixed by the slot's Go type, so a numeric slot can only be bound as a number.
type binding interface {
	info() FieldInfo
	set(f *types.FormData, raw string) error
	isSet(f *types.FormData) bool
}

type textBinding struct {
	name string
	step Step
	slot func(*types.FormData) **string
}

func (b textBinding) info() FieldInfo {
	return FieldInfo{Name: b.name, Step: b.step, Kind: FieldText}
}

func (b textBinding) set(f *types.FormData, raw string) error {
	p := b.slot(f)
	if raw == "" {
		*p = nil
		return nil
	}
	v := raw
	*p = &v
	return nil
}

func (b textBinding) isSet(f *types.FormData) bool {
	return *b.slot(f) != nil
}

type numberBinding[T int | float64] struct {
	name  string
	step  Step
	slot  func(*types.FormData) **T
	parse func(string) (T, error)
}

func (b numberBinding[T]) info() FieldInfo {
	return FieldInfo{Name: b.name, Step: b.step, Kind: FieldNumber}
}

func (b numberBinding[T]) set(f *types.FormData, raw string) error {
	p := b.slot(f)
	s := strings.TrimSpace(raw)
	if s == "" {
		*p = nil
		return nil
	}
	v, err := b.parse(s)
	if err != nil {
		return &FieldError{Field: b.name, Value: raw, Cause: ErrInvalidNumber}
	}
	*p = &v
	return nil
}

func (b numberBinding[T]) isSet(f *types.FormData) bool {
	return *b.slot(f) != nil
}

func text(name string, step Step, slot func(*types.FormData) **string) binding {
	return textBinding{name: name, step: step, slot: slot}
}

func integer(name string, step Step, slot func(*types.FormData) **int) binding {
	return numberBinding[int]{name: name, step: step, slot: slot, parse: parseInt}
}

func decimal(name string, step Step, slot func(*types.FormData) **float64) binding {
	return numberBinding[float64]{name: name, step: step, slot: slot, parse: parseFloat}
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

var fieldTable = []binding{
	text("residenceStatus", StepResidency, func(f *types.FormData) **string { return &f.ResidenceStatus }),
	text("residenceProvince", StepResidency, func(f *types.FormData) **string { return &f.ResidenceProvince }),
	text("residenceCity", StepResidency, func(f *types.FormData) **string { return &f.ResidenceCity }),
	text("residenceAddress", StepResidency, func(f *types.FormData) **string { return &f.ResidenceAddress }),

	text("lastName", StepIdentity, func(f *types.FormData) **string { return &f.LastName }),
	text("firstName", StepIdentity, func(f *types.FormData) **string { return &f.FirstName }),
	text("nationality", StepIdentity, func(f *types.FormData) **string { return &f.Nationality }),
	text("birthDate", StepIdentity, func(f *types.FormData) **string { return &f.BirthDate }),
	text("gender", StepIdentity, func(f *types.FormData) **string { return &f.Gender }),
	text("arcNumber", StepIdentity, func(f *types.FormData) **string { return &f.ARCNumber }),
	text("arcFile", StepIdentity, func(f *types.FormData) **string { return &f.ARCFile }),

	text("visaType", StepVisa, func(f *types.FormData) **string { return &f.VisaType }),
	text("visaSubType", StepVisa, func(f *types.FormData) **string { return &f.VisaSubType }),
	text("visaExpiryDate", StepVisa, func(f *types.FormData) **string { return &f.VisaExpiryDate }),
	text("visaFile", StepVisa, func(f *types.FormData) **string { return &f.VisaFile }),

	integer("topikLevel", StepLanguage, func(f *types.FormData) **int { return &f.TopikLevel }),
	integer("kiipLevel", StepLanguage, func(f *types.FormData) **int { return &f.KIIPLevel }),
	integer("sejongLevel", StepLanguage, func(f *types.FormData) **int { return &f.SejongLevel }),
	text("otherLanguages", StepLanguage, func(f *types.FormData) **string { return &f.OtherLanguages }),

	text("educationLevel", StepEducation, func(f *types.FormData) **string { return &f.EducationLevel }),
	text("schoolName", StepEducation, func(f *types.FormData) **string { return &f.SchoolName }),
	text("major", StepEducation, func(f *types.FormData) **string { return &f.Major }),
	integer("graduationYear", StepEducation, func(f *types.FormData) **int { return &f.GraduationYear }),
	text("educationCountry", StepEducation, func(f *types.FormData) **string { return &f.EducationCountry }),
	text("certificateFile", StepEducation, func(f *types.FormData) **string { return &f.CertificateFile }),

	decimal("deltaScore", StepEvaluation, func(f *types.FormData) **float64 { return &f.DeltaScore }),
	text("evaluationDate", StepEvaluation, func(f *types.FormData) **string { return &f.EvaluationDate }),

	decimal("totalExperienceYears", StepExperience, func(f *types.FormData) **float64 { return &f.TotalExperienceYears }),

	text("desiredJobType", StepPreferences, func(f *types.FormData) **string { return &f.DesiredJobType }),
	text("desiredProvince", StepPreferences, func(f *types.FormData) **string { return &f.DesiredProvince }),
	integer("desiredSalaryMin", StepPreferences, func(f *types.FormData) **int { return &f.DesiredSalaryMin }),
	integer("desiredSalaryMax", StepPreferences, func(f *types.FormData) **int { return &f.DesiredSalaryMax }),
	text("salaryType", StepPreferences, func(f *types.FormData) **string { return &f.SalaryType }),
	text("availableFrom", StepPreferences, func(f *types.FormData) **string { return &f.AvailableFrom }),
}

var fieldsByName = func() map[string]binding {
	m := make(map[string]binding, len(fieldTable))
	for _, b := range fieldTable {
		m[b.info().Name] = b
	}
	return m
}()

// Fields lists every scalar field accepted by UpdateField, in form order.
func Fields() []FieldInfo {
	out := make([]FieldInfo, len(fieldTable))
	for i, b := range fieldTable {
		out[i] = b.info()
	}
	return out
}

// LookupField returns the description of a scalar field.
func LookupField(name string) (FieldInfo, bool) {
	b, ok := fieldsByName[name]
	if !ok {
		return FieldInfo{}, false
	}
	return b.info(), true
}

// SetField writes raw into the named field of f. An empty value clears the
// field; numeric fields reject values that do not parse.
func SetField(f *types.FormData, name, raw string) error {
	b, ok := fieldsByName[name]
	if !ok {
		return &FieldError{Field: name, Cause: ErrUnknownField}
	}
	return b.set(f, raw)
}

// IsFieldSet reports whether the named field holds a value. Unknown names
// report false.
func IsFieldSet(f types.FormData, name string) bool {
	b, ok := fieldsByName[name]
	if !ok {
		return false
	}
	return b.isSet(&f)
}

// MissingRecommended lists the recommended fields of step that are unset.
func MissingRecommended(step Step, f types.FormData) []string {
	if !step.Valid() {
		return nil
	}
	var missing []string
	for _, name := range stepRegistry[step].Recommended {
		if !IsFieldSet(f, name) {
			missing = append(missing, name)
		}
	}
	return missing
}
