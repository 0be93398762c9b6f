// Package validation holds the pure validation and normalization rules for
// candidate entries (payment methods and addresses). A validator inspects a
// complete candidate, accumulates every rule violation, and on success
// returns the normalized entry exactly as it must be persisted. Validators
// never touch storage and never look at sibling entries.
package validation

import (
	"fmt"
	"regexp"

	"user-profile-service/internal/models"
)

// Letters, spaces, hyphens, apostrophes and periods. Covers cardholder and
// recipient names.
var nameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z .'-]*$`)

var (
	postalCodeRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9 -]*$`)
	countryRe    = regexp.MustCompile(`^[A-Z]{2}$`)
	digitsRe     = regexp.MustCompile(`^[0-9]+$`)
)

const maxNameLength = 100

// errs accumulates field violations so a single validation pass reports
// every problem at once.
type errs struct {
	fields []models.FieldError
}

func (e *errs) add(field, format string, args ...any) {
	e.fields = append(e.fields, models.FieldError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (e *errs) err() error {
	if len(e.fields) == 0 {
		return nil
	}
	return models.NewValidationError(e.fields)
}

func validName(s string) bool {
	return s != "" && len(s) <= maxNameLength && nameRe.MatchString(s)
}
