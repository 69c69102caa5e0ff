package domain

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidFeatureSet means the scaling transform needs columns the
	// record cannot supply. It is a deployment error, not a per-request one.
	ErrInvalidFeatureSet = errors.New("invalid feature set")

	// ErrUnknownCluster means the model returned an id outside the segment catalog.
	ErrUnknownCluster = errors.New("unknown cluster")

	// ErrInputConstraint means a field is below its declared minimum.
	ErrInputConstraint = errors.New("input constraint violation")

	ErrNotFound = errors.New("record not found")
)

// ConstraintViolation describes one failed input constraint.
type ConstraintViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ConstraintError carries every violation found for a record.
type ConstraintError struct {
	Violations []ConstraintViolation
}

func (e *ConstraintError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return ErrInputConstraint.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ConstraintError) Unwrap() error {
	return ErrInputConstraint
}
