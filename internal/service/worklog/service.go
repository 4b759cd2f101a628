package worklog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/worklog"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/database"
)

type WorkLogServiceImpl struct {
	db database.Transactor
	worklog.WorkLogRepository
	employee.EmployeeRepository
	absence.AbsenceRepository
	clock clock.Clock
}

func NewWorkLogService(
	db database.Transactor,
	workLogRepo worklog.WorkLogRepository,
	employeeRepo employee.EmployeeRepository,
	absenceRepo absence.AbsenceRepository,
	clk clock.Clock,
) worklog.WorkLogService {
	if clk == nil {
		clk = clock.System()
	}
	return &WorkLogServiceImpl{
		db:                 db,
		WorkLogRepository:  workLogRepo,
		EmployeeRepository: employeeRepo,
		AbsenceRepository:  absenceRepo,
		clock:              clk,
	}
}

// ClockIn implements worklog.WorkLogService. A full-day absence on the
// current date blocks clocking in; partial absences do not.
func (s *WorkLogServiceImpl) ClockIn(ctx context.Context, req worklog.ClockInRequest) (worklog.WorkLog, error) {
	if err := req.Validate(); err != nil {
		return worklog.WorkLog{}, err
	}

	now := s.clock.Now()
	today := calendar.Date(now)

	var created worklog.WorkLog
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.EmployeeRepository.GetByIDForUpdate(ctx, req.EmployeeID)
		if err != nil {
			return err
		}
		if !emp.Active {
			return employee.ErrEmployeeInactive
		}

		if _, err := s.WorkLogRepository.GetOpenByEmployee(ctx, emp.ID); err == nil {
			return worklog.ErrAlreadyClockedIn
		} else if !errors.Is(err, worklog.ErrWorkLogNotFound) {
			return err
		}

		absences, err := s.AbsenceRepository.List(ctx, absence.AbsenceFilter{
			EmployeeID: emp.ID,
			From:       &today,
			To:         &today,
		})
		if err != nil {
			return fmt.Errorf("failed to list absences: %w", err)
		}
		for _, a := range absences {
			if !a.IsPartial {
				return worklog.ErrOnFullDayAbsence
			}
		}

		created, err = s.WorkLogRepository.Create(ctx, worklog.WorkLog{
			EmployeeID: emp.ID,
			Date:       today,
			ClockIn:    now,
			Notes:      req.Notes,
		})
		return err
	})
	if err != nil {
		return worklog.WorkLog{}, err
	}

	slog.Info("Employee clocked in", "employee_id", created.EmployeeID, "work_log_id", created.ID)
	return created, nil
}

// ClockOut implements worklog.WorkLogService.
func (s *WorkLogServiceImpl) ClockOut(ctx context.Context, employeeID string) (worklog.WorkLog, error) {
	open, err := s.WorkLogRepository.GetOpenByEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, worklog.ErrWorkLogNotFound) {
			return worklog.WorkLog{}, worklog.ErrNotClockedIn
		}
		return worklog.WorkLog{}, err
	}

	closed, err := s.WorkLogRepository.Close(ctx, open.ID, s.clock.Now())
	if err != nil {
		return worklog.WorkLog{}, err
	}

	slog.Info("Employee clocked out",
		"employee_id", closed.EmployeeID,
		"work_log_id", closed.ID,
		"worked_hours", closed.WorkedHours().StringFixed(2),
	)
	return closed, nil
}

// List implements worklog.WorkLogService.
func (s *WorkLogServiceImpl) List(ctx context.Context, filter worklog.WorkLogFilter) ([]worklog.WorkLog, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	logs, err := s.WorkLogRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list work logs: %w", err)
	}
	return logs, nil
}
