package utils

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/superabroad/lead-intake/internal/config"
	"github.com/superabroad/lead-intake/internal/models"
)

// ValidationError represents a validation error with field and message
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// NewValidationResult creates a new validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		IsValid: true,
		Errors:  []ValidationError{},
	}
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.IsValid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// First returns the first recorded error, if any
func (vr *ValidationResult) First() (ValidationError, bool) {
	if len(vr.Errors) == 0 {
		return ValidationError{}, false
	}
	return vr.Errors[0], true
}

// Messages shown to the user when the lead form is incomplete
const (
	MsgTermsRequired   = "Please accept the terms and conditions"
	MsgCourseRequired  = "Please select a course"
	MsgCourseUnknown   = "Please select a course from the list"
	MsgNameRequired    = "Please enter your full name"
	MsgEmailRequired   = "Please enter your email address"
	MsgEmailInvalid    = "Please enter a valid email address"
	MsgCountryRequired = "Please select a country code"
	MsgPhoneRequired   = "Please enter your phone number"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func emailValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// IsEmailShape reports whether s passes the same email check the API binding uses
func IsEmailShape(s string) bool {
	return emailValidator().Var(s, "required,email") == nil
}

// ValidateLeadForm checks a lead before it is sent. Terms acceptance is checked
// first, then the remaining fields in display order.
func ValidateLeadForm(form models.LeadForm, catalog *config.Catalog) *ValidationResult {
	result := NewValidationResult()

	if !form.AgreeTerms {
		result.AddError("agreeTerms", MsgTermsRequired)
	}

	course := strings.TrimSpace(form.Course)
	switch {
	case course == "":
		result.AddError("course", MsgCourseRequired)
	case !catalog.HasCourse(course):
		result.AddError("course", MsgCourseUnknown)
	}

	if strings.TrimSpace(form.FullName) == "" {
		result.AddError("fullName", MsgNameRequired)
	}

	email := strings.TrimSpace(form.Email)
	switch {
	case email == "":
		result.AddError("email", MsgEmailRequired)
	case !IsEmailShape(email):
		result.AddError("email", MsgEmailInvalid)
	}

	if !catalog.HasDialingCode(form.CountryCode) {
		result.AddError("countryCode", MsgCountryRequired)
	}

	if strings.TrimSpace(form.Phone) == "" {
		result.AddError("phone", MsgPhoneRequired)
	}

	return result
}
