package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/worklog"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type workLogRepositoryImpl struct {
	db *database.DB
}

func NewWorkLogRepository(db *database.DB) worklog.WorkLogRepository {
	return &workLogRepositoryImpl{db: db}
}

const workLogColumns = `id, employee_id, date, clock_in, clock_out, notes, created_at, updated_at`

func scanWorkLog(row pgx.Row) (worklog.WorkLog, error) {
	var w worklog.WorkLog
	err := row.Scan(&w.ID, &w.EmployeeID, &w.Date, &w.ClockIn, &w.ClockOut, &w.Notes, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// Create implements worklog.WorkLogRepository.
func (r *workLogRepositoryImpl) Create(ctx context.Context, log worklog.WorkLog) (worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	if log.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return worklog.WorkLog{}, fmt.Errorf("failed to generate work log id: %w", err)
		}
		log.ID = id.String()
	}

	query := `
		INSERT INTO work_logs (id, employee_id, date, clock_in, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, log.ID, log.EmployeeID, log.Date, log.ClockIn, log.Notes).
		Scan(&log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return worklog.WorkLog{}, worklog.ErrAlreadyClockedIn
		}
		return worklog.WorkLog{}, fmt.Errorf("failed to create work log: %w", err)
	}

	return log, nil
}

// GetOpenByEmployee implements worklog.WorkLogRepository.
func (r *workLogRepositoryImpl) GetOpenByEmployee(ctx context.Context, employeeID string) (worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workLogColumns + ` FROM work_logs WHERE employee_id = $1 AND clock_out IS NULL`

	w, err := scanWorkLog(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.WorkLog{}, worklog.ErrWorkLogNotFound
		}
		return worklog.WorkLog{}, fmt.Errorf("failed to get open work log for employee %s: %w", employeeID, err)
	}
	return w, nil
}

// Close implements worklog.WorkLogRepository.
func (r *workLogRepositoryImpl) Close(ctx context.Context, id string, clockOut time.Time) (worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE work_logs
		SET clock_out = $1, updated_at = NOW()
		WHERE id = $2 AND clock_out IS NULL
		RETURNING ` + workLogColumns

	w, err := scanWorkLog(q.QueryRow(ctx, query, clockOut, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.WorkLog{}, worklog.ErrNotClockedIn
		}
		return worklog.WorkLog{}, fmt.Errorf("failed to close work log %s: %w", id, err)
	}
	return w, nil
}

// List implements worklog.WorkLogRepository.
func (r *workLogRepositoryImpl) List(ctx context.Context, filter worklog.WorkLogFilter) ([]worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + workLogColumns + ` FROM work_logs`

	args := []interface{}{}
	argIdx := 1
	whereClauses := []string{}

	if filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("employee_id = $%d", argIdx))
		args = append(args, filter.EmployeeID)
		argIdx++
	}

	if filter.From != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}

	if filter.To != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("date <= $%d", argIdx))
		args = append(args, *filter.To)
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY clock_in DESC, id DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query work logs: %w", err)
	}
	defer rows.Close()

	var logs []worklog.WorkLog
	for rows.Next() {
		w, err := scanWorkLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work log: %w", err)
		}
		logs = append(logs, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return logs, nil
}
