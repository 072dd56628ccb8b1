package cli

import (
	"fmt"

	"agenda-cli/internal/activity"
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// invalidFieldsError carries the per-field messages of a rejected form.
type invalidFieldsError struct {
	fields activity.FieldErrors
}

func (e invalidFieldsError) Error() string {
	return fmt.Sprintf("%s (%d)", activity.ErrInvalid, len(e.fields))
}

func (e invalidFieldsError) Unwrap() error { return activity.ErrInvalid }
