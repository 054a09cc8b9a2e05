package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValWithTags holds a value and the validation tags to apply to it
type ValWithTags struct {
	Value interface{}
	Tag   string
}

// ValidationMap is a map of field names to values-with-tags
type ValidationMap map[string]ValWithTags

// ErrInvalidInput is returned when one or more fields fail validation
type ErrInvalidInput struct {
	Parameters []string
	Reasons    []string
}

func (e ErrInvalidInput) Error() string {
	str := "invalid input:\n"
	for i := range e.Parameters {
		str += fmt.Sprintf("    parameter: %s, reason: %s\n", e.Parameters[i], e.Reasons[i])
	}
	return str
}

// New returns a validator configured for this repo
func New() *validator.Validate {
	return validator.New()
}

// ValidateFields validates each value in the map against its tags, returning
// an ErrInvalidInput naming every failing field
func ValidateFields(validator *validator.Validate, fields ValidationMap) error {
	validationErr := ErrInvalidInput{}
	foundErrors := false

	// Sort for deterministic error output
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		val := fields[name]
		if err := validator.Var(val.Value, val.Tag); err != nil {
			foundErrors = true
			validationErr.Parameters = append(validationErr.Parameters, name)
			validationErr.Reasons = append(validationErr.Reasons, strings.TrimSpace(err.Error()))
		}
	}

	if foundErrors {
		return validationErr
	}

	return nil
}
