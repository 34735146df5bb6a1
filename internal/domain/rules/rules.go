// Package rules holds the pure validation rules of the user domain.
// They take every input explicitly (including "today") and touch no state.
package rules

import (
	"errors"
	"time"
)

var (
	// ErrRangeBoundsMissing is returned when either range bound is absent.
	ErrRangeBoundsMissing = errors.New("Both 'from' and 'to' dates must be specified!")
	// ErrRangeInverted is returned when from is not strictly earlier than to.
	ErrRangeInverted = errors.New("'From' date must be earlier than 'To' date!")
)

// IsAgeValid reports whether a person born on birthDate is at least
// requiredAge whole years old on the given day. The age is computed by
// calendar year/month/day subtraction, so a birthday not yet reached in the
// current year does not count as a completed year.
func IsAgeValid(birthDate time.Time, requiredAge int, today time.Time) bool {
	return AgeInYears(birthDate, today) >= requiredAge
}

// AgeInYears returns the whole-year age on the given day.
func AgeInYears(birthDate, today time.Time) int {
	years := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		years--
	}
	return years
}

// ValidateDateRange checks that both bounds are present and that from is
// strictly earlier than to. Equal bounds are rejected.
func ValidateDateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return ErrRangeBoundsMissing
	}
	if !from.Before(to) {
		return ErrRangeInverted
	}
	return nil
}
