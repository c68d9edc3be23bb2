package service

import "errors"

// All expected rejections are sentinel errors so handlers can map each one to
// a distinct response with errors.Is. Only storage failures pass through as
// generic errors.
var (
	ErrInvalidIdentity     = errors.New("name or student id is missing or malformed")
	ErrInvalidTimeRange    = errors.New("times must lie on the 30-minute grid with end after start")
	ErrInvalidDate         = errors.New("date is malformed or outside the booking horizon")
	ErrUnknownRoom         = errors.New("unknown room")
	ErrBelowMinimumParty   = errors.New("party size is below the minimum")
	ErrDurationExceeded    = errors.New("requested window exceeds the maximum duration")
	ErrDuplicateBooking    = errors.New("identity already has a booking on that date")
	ErrTimeConflict        = errors.New("requested window overlaps an existing booking")
	ErrCheckinWindowMiss   = errors.New("not your time or already checked in")
	ErrNotCheckedIn        = errors.New("check in before requesting an extension")
	ErrExtensionWindowMiss = errors.New("extension is only possible shortly before the end time")
	ErrExtensionConflict   = errors.New("new end time overlaps the next booking")
	ErrNotFound            = errors.New("no matching reservation")
)
