package worklog

import "context"

type WorkLogService interface {
	ClockIn(ctx context.Context, req ClockInRequest) (WorkLog, error)
	ClockOut(ctx context.Context, employeeID string) (WorkLog, error)
	List(ctx context.Context, filter WorkLogFilter) ([]WorkLog, error)
}
