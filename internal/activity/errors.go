package activity

import (
	"errors"
	"strconv"
)

var (
	ErrClosed         = errors.New("activity dialog is closed")
	ErrNoCategory     = errors.New("no activity category selected")
	ErrLocked         = errors.New("category and language cannot change while editing")
	ErrDateTaken      = errors.New("date already has an activity day")
	ErrInvalidDate    = errors.New("invalid date (expected YYYY-MM-DD)")
	ErrInvalid        = errors.New("form has invalid fields")
	ErrSubmitInFlight = errors.New("submission already in progress")
	ErrWrongState     = errors.New("operation not available in the current step")
	ErrUnknownField   = errors.New("field is not part of this category")
)

// UnknownCategoryError reports a localized id outside the registry, as seen in
// data coming from outside the process.
type UnknownCategoryError struct {
	ID LocalizedID
}

func (e UnknownCategoryError) Error() string {
	return "unknown activity category: " + strconv.Itoa(int(e.ID))
}
