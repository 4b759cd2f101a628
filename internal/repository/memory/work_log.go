package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/worklog"
)

type workLogRepository struct {
	store *Store
}

func NewWorkLogRepository(s *Store) worklog.WorkLogRepository {
	return &workLogRepository{store: s}
}

func (r *workLogRepository) Create(ctx context.Context, log worklog.WorkLog) (worklog.WorkLog, error) {
	err := r.store.write(ctx, func() error {
		for _, existing := range r.store.workLogs {
			if existing.EmployeeID == log.EmployeeID && existing.IsOpen() {
				return worklog.ErrAlreadyClockedIn
			}
		}
		if log.ID == "" {
			id, err := r.store.newID()
			if err != nil {
				return err
			}
			log.ID = id
		}
		now := r.store.clock.Now()
		log.CreatedAt = now
		log.UpdatedAt = now
		r.store.workLogs[log.ID] = log
		return nil
	})
	if err != nil {
		return worklog.WorkLog{}, err
	}
	return log, nil
}

func (r *workLogRepository) GetOpenByEmployee(ctx context.Context, employeeID string) (worklog.WorkLog, error) {
	var (
		open  worklog.WorkLog
		found bool
	)
	r.store.read(ctx, func() {
		for _, l := range r.store.workLogs {
			if l.EmployeeID == employeeID && l.IsOpen() {
				open, found = l, true
				return
			}
		}
	})
	if !found {
		return worklog.WorkLog{}, worklog.ErrWorkLogNotFound
	}
	return open, nil
}

func (r *workLogRepository) Close(ctx context.Context, id string, clockOut time.Time) (worklog.WorkLog, error) {
	var closed worklog.WorkLog
	err := r.store.write(ctx, func() error {
		l, ok := r.store.workLogs[id]
		if !ok {
			return worklog.ErrWorkLogNotFound
		}
		if !l.IsOpen() {
			return worklog.ErrNotClockedIn
		}
		l.ClockOut = &clockOut
		l.UpdatedAt = r.store.clock.Now()
		r.store.workLogs[id] = l
		closed = l
		return nil
	})
	if err != nil {
		return worklog.WorkLog{}, err
	}
	return closed, nil
}

func (r *workLogRepository) List(ctx context.Context, filter worklog.WorkLogFilter) ([]worklog.WorkLog, error) {
	var result []worklog.WorkLog
	r.store.read(ctx, func() {
		for _, l := range r.store.workLogs {
			if filter.EmployeeID != "" && l.EmployeeID != filter.EmployeeID {
				continue
			}
			if filter.From != nil && l.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && l.Date.After(*filter.To) {
				continue
			}
			result = append(result, l)
		}
	})

	slices.SortFunc(result, func(a, b worklog.WorkLog) int {
		if c := b.ClockIn.Compare(a.ClockIn); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return result, nil
}
