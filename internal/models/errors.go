package models

import "errors"

// Error kinds shared across packages. Wrap with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrStorage          = errors.New("storage error")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrDuplicateKeyword = errors.New("keyword already exists")
	ErrDuplicateLink    = errors.New("mention link already stored")
)
