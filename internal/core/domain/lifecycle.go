package domain

import (
	"fmt"
	"time"
)

type BookingAction string

const (
	ActionCheckIn  BookingAction = "check_in"
	ActionCheckOut BookingAction = "check_out"
	ActionCancel   BookingAction = "cancel"
	ActionNoShow   BookingAction = "no_show"
)

// Transition applies action to b on the calendar date today and returns the
// resulting booking. b itself is left untouched.
//
//	PENDING    --check_in-->  CHECKED_IN   start <= today <= end
//	PENDING    --no_show--->  CANCELLED    start <= today
//	PENDING    --cancel---->  CANCELLED
//	CHECKED_IN --check_out->  CHECKED_OUT  today >= end
func Transition(b Booking, action BookingAction, today time.Time) (Booking, error) {
	today = DateOf(today)
	from := b.State()

	var to BookingStatus
	switch {
	case action == ActionCheckIn && from == BookingPending:
		if today.Before(b.StartDate) || today.After(b.EndDate) {
			return b, fmt.Errorf("%w: check-in allowed %s..%s, today is %s",
				ErrOutsideWindow, FormatDate(b.StartDate), FormatDate(b.EndDate), FormatDate(today))
		}
		to = BookingCheckedIn

	case action == ActionNoShow && from == BookingPending:
		if today.Before(b.StartDate) {
			return b, fmt.Errorf("%w: no-show before start date %s", ErrOutsideWindow, FormatDate(b.StartDate))
		}
		to = BookingCancelled

	case action == ActionCancel && from == BookingPending:
		to = BookingCancelled

	case action == ActionCheckOut && from == BookingCheckedIn:
		if today.Before(b.EndDate) {
			return b, fmt.Errorf("%w: check-out allowed from %s", ErrOutsideWindow, FormatDate(b.EndDate))
		}
		to = BookingCheckedOut

	default:
		return b, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, from)
	}

	b.setStatus(to)
	return b, nil
}

func (b *Booking) setStatus(status BookingStatus) {
	b.Status = status

	switch status {
	case BookingPending:
		b.IsActive, b.IsCheckedIn = true, false
	case BookingCheckedIn:
		b.IsActive, b.IsCheckedIn = true, true
	case BookingCancelled:
		b.IsActive, b.IsCheckedIn = false, false
	case BookingCheckedOut:
		b.IsActive, b.IsCheckedIn = true, false
	}
}
