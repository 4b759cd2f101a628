package worklog

import "errors"

var (
	ErrWorkLogNotFound   = errors.New("work log not found")
	ErrAlreadyClockedIn  = errors.New("you are already clocked in")
	ErrNotClockedIn      = errors.New("you are not clocked in")
	ErrOnFullDayAbsence  = errors.New("cannot clock in on a full-day absence")
	ErrInvalidDateFilter = errors.New("from must not be after to")
)
