// Package refdata serves the static reference lists the wizard form offers:
// visa types and sub-types, provinces, nationalities and enumerations.
package refdata

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var referenceYAML []byte

// VisaType is a visa category with its sub-types.
type VisaType struct {
	Code     string   `yaml:"code" json:"code"`
	Name     string   `yaml:"name" json:"name"`
	SubTypes []string `yaml:"sub_types" json:"sub_types"`
}

// Data is the complete reference data set.
type Data struct {
	VisaTypes         []VisaType `yaml:"visa_types" json:"visa_types"`
	Provinces         []string   `yaml:"provinces" json:"provinces"`
	Nationalities     []string   `yaml:"nationalities" json:"nationalities"`
	ResidenceStatuses []string   `yaml:"residence_statuses" json:"residence_statuses"`
	EducationLevels   []string   `yaml:"education_levels" json:"education_levels"`
	SalaryTypes       []string   `yaml:"salary_types" json:"salary_types"`
	WorkDays          []string   `yaml:"work_days" json:"work_days"`
}

var (
	loadOnce sync.Once
	loaded   *Data
	loadErr  error
)

// Load returns the embedded reference data. It is parsed once.
func Load() (*Data, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(referenceYAML)
	})
	return loaded, loadErr
}

// Parse decodes reference data from YAML.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to parse reference data: %w", err)
	}
	if len(d.VisaTypes) == 0 {
		return nil, fmt.Errorf("reference data has no visa types")
	}
	return &d, nil
}

// VisaType looks up a visa category by code.
func (d *Data) VisaType(code string) (VisaType, bool) {
	i := slices.IndexFunc(d.VisaTypes, func(v VisaType) bool { return v.Code == code })
	if i < 0 {
		return VisaType{}, false
	}
	return d.VisaTypes[i], true
}

// IsProvince reports whether name is a known province.
func (d *Data) IsProvince(name string) bool {
	return slices.Contains(d.Provinces, name)
}
