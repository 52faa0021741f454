// Package types provides type definitions for structured data used throughout the profile wizard.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"slices"

	"github.com/google/uuid"
)

// FormData holds every answer collected by the profile setup wizard.
// All scalar fields are optional; nil means the field is unset.
// JSON keys double as the field names accepted by the field update endpoint.
type FormData struct {
	// Residency (step 0)
	ResidenceStatus   *string `json:"residenceStatus,omitempty"`
	ResidenceProvince *string `json:"residenceProvince,omitempty"`
	ResidenceCity     *string `json:"residenceCity,omitempty"`
	ResidenceAddress  *string `json:"residenceAddress,omitempty"`

	// Identity (step 1)
	LastName    *string `json:"lastName,omitempty"`
	FirstName   *string `json:"firstName,omitempty"`
	Nationality *string `json:"nationality,omitempty"`
	BirthDate   *string `json:"birthDate,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	ARCNumber   *string `json:"arcNumber,omitempty"`
	ARCFile     *string `json:"arcFile,omitempty"`

	// Visa (step 2)
	VisaType       *string `json:"visaType,omitempty"`
	VisaSubType    *string `json:"visaSubType,omitempty"`
	VisaExpiryDate *string `json:"visaExpiryDate,omitempty"`
	VisaFile       *string `json:"visaFile,omitempty"`

	// Language (step 3)
	TopikLevel     *int    `json:"topikLevel,omitempty"`
	KIIPLevel      *int    `json:"kiipLevel,omitempty"`
	SejongLevel    *int    `json:"sejongLevel,omitempty"`
	OtherLanguages *string `json:"otherLanguages,omitempty"`

	// Education (step 4)
	EducationLevel   *string `json:"educationLevel,omitempty"`
	SchoolName       *string `json:"schoolName,omitempty"`
	Major            *string `json:"major,omitempty"`
	GraduationYear   *int    `json:"graduationYear,omitempty"`
	EducationCountry *string `json:"educationCountry,omitempty"`
	CertificateFile  *string `json:"certificateFile,omitempty"`

	// Evaluation (step 5)
	DeltaScore     *float64 `json:"deltaScore,omitempty"`
	EvaluationDate *string  `json:"evaluationDate,omitempty"`

	// Experience (step 6)
	TotalExperienceYears *float64          `json:"totalExperienceYears,omitempty"`
	Experiences          []ExperienceEntry `json:"experiences,omitempty"`

	// Preferences (step 7)
	DesiredJobType   *string  `json:"desiredJobType,omitempty"`
	DesiredProvince  *string  `json:"desiredProvince,omitempty"`
	DesiredWorkDays  []string `json:"desiredWorkDays,omitempty"`
	DesiredSalaryMin *int     `json:"desiredSalaryMin,omitempty"`
	DesiredSalaryMax *int     `json:"desiredSalaryMax,omitempty"`
	SalaryType       *string  `json:"salaryType,omitempty"`
	AvailableFrom    *string  `json:"availableFrom,omitempty"`
}

// ExperienceEntry is one item of the worker's employment history.
// ID is assigned when the entry is created and never reused.
type ExperienceEntry struct {
	ID          uuid.UUID `json:"id"`
	Company     string    `json:"company" validate:"required"`
	Position    string    `json:"position"`
	StartDate   string    `json:"startDate"`
	EndDate     *string   `json:"endDate,omitempty"`
	IsCurrent   bool      `json:"isCurrent"`
	Description string    `json:"description"`
}

// Clone returns a deep copy of the form data.
func (f FormData) Clone() FormData {
	out := f
	out.ResidenceStatus = clonePtr(f.ResidenceStatus)
	out.ResidenceProvince = clonePtr(f.ResidenceProvince)
	out.ResidenceCity = clonePtr(f.ResidenceCity)
	out.ResidenceAddress = clonePtr(f.ResidenceAddress)
	out.LastName = clonePtr(f.LastName)
	out.FirstName = clonePtr(f.FirstName)
	out.Nationality = clonePtr(f.Nationality)
	out.BirthDate = clonePtr(f.BirthDate)
	out.Gender = clonePtr(f.Gender)
	out.ARCNumber = clonePtr(f.ARCNumber)
	out.ARCFile = clonePtr(f.ARCFile)
	out.VisaType = clonePtr(f.VisaType)
	out.VisaSubType = clonePtr(f.VisaSubType)
	out.VisaExpiryDate = clonePtr(f.VisaExpiryDate)
	out.VisaFile = clonePtr(f.VisaFile)
	out.TopikLevel = clonePtr(f.TopikLevel)
	out.KIIPLevel = clonePtr(f.KIIPLevel)
	out.SejongLevel = clonePtr(f.SejongLevel)
	out.OtherLanguages = clonePtr(f.OtherLanguages)
	out.EducationLevel = clonePtr(f.EducationLevel)
	out.SchoolName = clonePtr(f.SchoolName)
	out.Major = clonePtr(f.Major)
	out.GraduationYear = clonePtr(f.GraduationYear)
	out.EducationCountry = clonePtr(f.EducationCountry)
	out.CertificateFile = clonePtr(f.CertificateFile)
	out.DeltaScore = clonePtr(f.DeltaScore)
	out.EvaluationDate = clonePtr(f.EvaluationDate)
	out.TotalExperienceYears = clonePtr(f.TotalExperienceYears)
	out.Experiences = cloneExperiences(f.Experiences)
	out.DesiredJobType = clonePtr(f.DesiredJobType)
	out.DesiredProvince = clonePtr(f.DesiredProvince)
	out.DesiredWorkDays = slices.Clone(f.DesiredWorkDays)
	out.DesiredSalaryMin = clonePtr(f.DesiredSalaryMin)
	out.DesiredSalaryMax = clonePtr(f.DesiredSalaryMax)
	out.SalaryType = clonePtr(f.SalaryType)
	out.AvailableFrom = clonePtr(f.AvailableFrom)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneExperiences(in []ExperienceEntry) []ExperienceEntry {
	if in == nil {
		return nil
	}
	out := make([]ExperienceEntry, len(in))
	for i, e := range in {
		out[i] = e
		out[i].EndDate = clonePtr(e.EndDate)
	}
	return out
}
