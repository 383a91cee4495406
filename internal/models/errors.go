package models

import "errors"

// Error constants for lead operations
var (
	ErrTermsNotAccepted = errors.New("terms and conditions not accepted")
	ErrUnknownCourse    = errors.New("unknown course")
	ErrUnknownDialCode  = errors.New("unknown country code")
	ErrDuplicateLead    = errors.New("lead already registered for this email")
	ErrUnknownField     = errors.New("unknown lead form field")
	ErrFieldType        = errors.New("wrong value type for lead form field")
)
