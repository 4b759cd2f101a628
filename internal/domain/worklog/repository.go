package worklog

import (
	"context"
	"time"
)

type WorkLogRepository interface {
	Create(ctx context.Context, log WorkLog) (WorkLog, error)
	// GetOpenByEmployee returns ErrWorkLogNotFound when nothing is open.
	GetOpenByEmployee(ctx context.Context, employeeID string) (WorkLog, error)
	// Close sets clock_out on a log that is still open, otherwise ErrNotClockedIn.
	Close(ctx context.Context, id string, clockOut time.Time) (WorkLog, error)
	List(ctx context.Context, filter WorkLogFilter) ([]WorkLog, error)
}
