// Package leads defines the lead model, CSV ingestion with column
// auto-detection, and lead scoring / campaign assignment.
package leads

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Lead is a prospective contact imported from a CSV export.
// A Lead is created by import, enriched once during processing, and exported
// once to the campaign platform; it is never mutated after that.
type Lead struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Company   string `json:"company_name" validate:"required,min=2"`
	Industry  string `json:"industry"`
	Website   string `json:"website"`
	Title     string `json:"title"`
	LinkedIn  string `json:"linkedin"`
}

// Processed is the outcome of one processing pass over a Lead.
type Processed struct {
	Lead       Lead   `json:"lead"`
	Icebreaker string `json:"icebreaker"`
	Provider   string `json:"provider"`
	Score      int    `json:"score"`
	Campaign   string `json:"campaign"`
	Uploaded   bool   `json:"uploaded"`
	Err        string `json:"error,omitempty"`
}

// FullName returns the contact's display name.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the minimum data required to process a lead: a plausible
// email, a company name, and at least one name field.
func (l Lead) Validate() error {
	if err := validate.Struct(l); err != nil {
		var verrs validator.ValidationErrors
		if ok := AsValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("invalid lead field %s: failed %q check", strings.ToLower(f.Field()), f.Tag())
		}
		return fmt.Errorf("invalid lead: %w", err)
	}
	if l.FirstName == "" && l.LastName == "" {
		return fmt.Errorf("invalid lead: missing both first and last name")
	}
	return nil
}

// AsValidationErrors unwraps validator.ValidationErrors from err.
func AsValidationErrors(err error, target *validator.ValidationErrors) bool {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		*target = verrs
		return true
	}
	return false
}
