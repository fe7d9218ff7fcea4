package defects

import "errors"

// Domain errors for defect vocabularies.
var (
	// ErrCategoryMismatch marks a classifier label outside the vocabulary. Non-fatal.
	ErrCategoryMismatch = errors.New("category outside vocabulary")
	ErrInvalidCategory  = errors.New("unknown defect category")
	ErrInvalidKind      = errors.New("kind must be text or image")
)
