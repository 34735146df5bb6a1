package application

import (
	"errors"
	"fmt"

	"github.com/DarmokhvalViktor/test-task-cs/internal/domain/rules"
)

// NotFoundError is returned when the referenced user does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("User with ID %d wasn't found", e.ID)
}

// EmailTakenError is returned when the email already belongs to another user.
type EmailTakenError struct {
	Email string
}

func (e *EmailTakenError) Error() string {
	return fmt.Sprintf("Email %s already taken!", e.Email)
}

// TooYoungError is returned when a birth date fails the configured minimum
// age. Action names the refused action ("register" or "use this site").
type TooYoungError struct {
	RequiredAge int
	Action      string
}

func (e *TooYoungError) Error() string {
	return fmt.Sprintf("User must be older than %d to %s!", e.RequiredAge, e.Action)
}

// IsViolation reports whether err is a business-rule violation that should
// surface as a client error, as opposed to an infrastructure failure.
func IsViolation(err error) bool {
	var (
		notFound   *NotFoundError
		emailTaken *EmailTakenError
		tooYoung   *TooYoungError
	)
	return errors.As(err, &notFound) ||
		errors.As(err, &emailTaken) ||
		errors.As(err, &tooYoung) ||
		errors.Is(err, rules.ErrRangeBoundsMissing) ||
		errors.Is(err, rules.ErrRangeInverted)
}
