package models

import "errors"

// Rejection kinds surfaced to callers. The message is the symbolic reason.
var (
	ErrUnableToCreateReservation = errors.New("UnableToCreateReservation")
	ErrOnlyEvenQuantity          = errors.New("OnlyEvenQuantity")
	ErrOnlyAllTogether           = errors.New("OnlyAllTogether")
	ErrAvoidOne                  = errors.New("AvoidOne")
	ErrReservationCompleted      = errors.New("ReservationAlreadyCompleted")
	ErrReservationExpired        = errors.New("ReservationExpired")
	ErrReservationCancelled      = errors.New("ReservationCancelled")
)

// Storage-level failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflicting concurrent update")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownUser       = errors.New("unknown user")
)

var reasons = []error{
	ErrUnableToCreateReservation,
	ErrOnlyEvenQuantity,
	ErrOnlyAllTogether,
	ErrAvoidOne,
	ErrReservationCompleted,
	ErrReservationExpired,
	ErrReservationCancelled,
}

// Reason returns the rejection kind carried by err, or "" for passthrough failures.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r) {
			return r.Error()
		}
	}
	return ""
}

// IsValidationReason reports whether err was rejected by the grouping rules or request checks.
func IsValidationReason(err error) bool {
	return errors.Is(err, ErrUnableToCreateReservation) ||
		errors.Is(err, ErrOnlyEvenQuantity) ||
		errors.Is(err, ErrOnlyAllTogether) ||
		errors.Is(err, ErrAvoidOne)
}

// TerminalStatusError maps a reservation status that is no longer pending to its rejection.
func TerminalStatusError(status ReservationStatus) error {
	switch status {
	case ReservationCompleted:
		return ErrReservationCompleted
	case ReservationCancelled:
		return ErrReservationCancelled
	case ReservationExpired:
		return ErrReservationExpired
	}
	return nil
}
