package domain

import "errors"

// NoRoom is returned by room allocation when every room is taken.
const NoRoom = -1

var (
	// ErrInvalidRange carries a user-visible message; keep the text stable.
	ErrInvalidRange = errors.New("The start date cannot be in the past or later than the end date.")

	ErrInvalidDate       = errors.New("invalid date")
	ErrNotFound          = errors.New("not found")
	ErrNoRoomAvailable   = errors.New("no room available for the requested dates")
	ErrInvalidTransition = errors.New("invalid booking state transition")
	ErrOutsideWindow     = errors.New("booking event outside its date window")
	ErrLockNotAcquired   = errors.New("booking lock is held by another writer")
)
