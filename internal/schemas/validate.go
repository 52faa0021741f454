// Package schemas validates saved profile documents against JSON Schema.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// DefaultProfileSchema is the repository-relative path of the profile schema.
const DefaultProfileSchema = "schemas/worker_profile.schema.json"

// ResolveSchemaPath attempts to find a schema file by trying the path as
// given, then one and two directories up. Returns the first absolute path that
// exists, or empty string if none found. Tests run from package directories.
func ResolveSchemaPath(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		if _, err := os.Stat(relativePath); err == nil {
			return relativePath
		}
		return ""
	}

	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}

	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Validator holds a compiled schema. It is safe for concurrent use.
type Validator struct {
	path   string
	schema *gojsonschema.Schema
}

// LoadValidator compiles the schema file at path. Relative paths are resolved
// with ResolveSchemaPath.
func LoadValidator(path string) (*Validator, error) {
	absPath := ResolveSchemaPath(path)
	if absPath == "" {
		return nil, &SchemaLoadError{Path: path, Message: "schema file not found"}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(absPath)))
	if err != nil {
		return nil, &SchemaLoadError{Path: absPath, Message: "schema compilation failed", Cause: err}
	}
	return &Validator{path: absPath, schema: schema}, nil
}

// Path returns the absolute path of the loaded schema.
func (v *Validator) Path() string {
	return v.path
}

// Validate checks a JSON document against the schema.
func (v *Validator) Validate(document []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
