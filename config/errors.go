package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// NewValidationError returns an error naming the config path that failed to validate.
func NewValidationError(path string, err error) error {
	return errors.Wrapf(err, "Error validating. Path: %q", path)
}

// NewFieldRequiredError returns an error for a required field that was left empty.
func NewFieldRequiredError(path, field string) error {
	return NewValidationError(path, fmt.Errorf("%q is required", field))
}
