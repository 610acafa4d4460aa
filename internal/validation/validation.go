// Package validation holds the input checks shared by the services.
package validation

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/applicant_details.json
var applicantDetailsSchemaJSON string

var applicantDetailsSchema = mustLoadSchema(applicantDetailsSchemaJSON)

// ErrInvalid is wrapped by every error returned from this package.
var ErrInvalid = errors.New("invalid input")

func mustLoadSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("validation: loading embedded schema: %v", err))
	}
	return schema
}

// ApplicantDetails checks the applicant_details object against its JSON schema.
// Unknown keys are allowed.
func ApplicantDetails(details map[string]interface{}) error {
	if details == nil {
		return fmt.Errorf("%w: applicant_details must be an object", ErrInvalid)
	}
	result, err := applicantDetailsSchema.Validate(gojsonschema.NewGoLoader(details))
	if err != nil {
		return fmt.Errorf("%w: applicant_details: %v", ErrInvalid, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("%w: applicant_details: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// LicenceTypeMaxLength matches the licence_applications.licence_type column.
const LicenceTypeMaxLength = 32

// NormalizeLicenceType trims and upper-cases a licence type code ("ppl " -> "PPL").
func NormalizeLicenceType(licenceType string) string {
	return strings.ToUpper(strings.TrimSpace(licenceType))
}

// LicenceType normalizes a licence type code and checks it fits the stored column.
func LicenceType(licenceType string) (string, error) {
	normalized := NormalizeLicenceType(licenceType)
	if normalized == "" {
		return "", fmt.Errorf("%w: licence_type is required", ErrInvalid)
	}
	if len([]rune(normalized)) > LicenceTypeMaxLength {
		return "", fmt.Errorf("%w: licence_type must be at most %d characters", ErrInvalid, LicenceTypeMaxLength)
	}
	return normalized, nil
}

// Email checks the format of an address and returns it trimmed and lower-cased.
func Email(field, email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if err := checkmail.ValidateFormat(normalized); err != nil {
		return "", fmt.Errorf("%w: %s is not a valid email address", ErrInvalid, field)
	}
	return normalized, nil
}

// MinLength checks the rune length of value.
func MinLength(field, value string, min int) error {
	if len([]rune(value)) < min {
		return fmt.Errorf("%w: %s must be at least %d characters", ErrInvalid, field, min)
	}
	return nil
}
