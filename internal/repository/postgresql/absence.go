package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type absenceRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceRepository(db *database.DB) absence.AbsenceRepository {
	return &absenceRepositoryImpl{db: db}
}

const absenceColumns = `id, employee_id, absence_type_id, request_id, date, is_partial, start_time, end_time, notes, created_at`

func scanAbsence(row pgx.Row) (absence.Absence, error) {
	var a absence.Absence
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.AbsenceTypeID, &a.RequestID, &a.Date,
		&a.IsPartial, &a.StartTime, &a.EndTime, &a.Notes, &a.CreatedAt,
	)
	return a, err
}

// Create implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) Create(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)

	if a.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return absence.Absence{}, fmt.Errorf("failed to generate absence id: %w", err)
		}
		a.ID = id.String()
	}

	query := `
		INSERT INTO absences (id, employee_id, absence_type_id, request_id, date, is_partial, start_time, end_time, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		a.ID, a.EmployeeID, a.AbsenceTypeID, a.RequestID, a.Date,
		a.IsPartial, a.StartTime, a.EndTime, a.Notes,
	).Scan(&a.CreatedAt)
	if err != nil {
		return absence.Absence{}, fmt.Errorf("failed to create absence: %w", err)
	}

	return a, nil
}

// CreateBatch implements absence.AbsenceRepository. All rows go out in one
// round trip; run it inside a transaction to make the batch atomic.
func (r *absenceRepositoryImpl) CreateBatch(ctx context.Context, absences []absence.Absence) ([]absence.Absence, error) {
	if len(absences) == 0 {
		return []absence.Absence{}, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO absences (id, employee_id, absence_type_id, request_id, date, is_partial, start_time, end_time, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	created := make([]absence.Absence, len(absences))
	batch := &pgx.Batch{}
	for i, a := range absences {
		if a.ID == "" {
			id, err := uuid.NewV7()
			if err != nil {
				return nil, fmt.Errorf("failed to generate absence id: %w", err)
			}
			a.ID = id.String()
		}
		created[i] = a
		batch.Queue(query,
			a.ID, a.EmployeeID, a.AbsenceTypeID, a.RequestID, a.Date,
			a.IsPartial, a.StartTime, a.EndTime, a.Notes,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&created[i].CreatedAt)
		})
	}

	if err := q.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("failed to create absences: %w", err)
	}

	return created, nil
}

// GetByID implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) GetByID(ctx context.Context, id string) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAbsence(q.QueryRow(ctx, `SELECT `+absenceColumns+` FROM absences WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.Absence{}, absence.ErrAbsenceNotFound
		}
		return absence.Absence{}, fmt.Errorf("failed to get absence with id %s: %w", id, err)
	}
	return a, nil
}

// List implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) List(ctx context.Context, filter absence.AbsenceFilter) ([]absence.Absence, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + absenceColumns + ` FROM absences`

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
		argIdx++
	}

	if filter.RequestID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("request_id = $%d", argIdx))
		args = append(args, *filter.RequestID)
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY date, id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query absences: %w", err)
	}
	defer rows.Close()

	var absences []absence.Absence
	for rows.Next() {
		a, err := scanAbsence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan absence: %w", err)
		}
		absences = append(absences, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return absences, nil
}

// DeleteDirect implements absence.AbsenceRepository.
func (r *absenceRepositoryImpl) DeleteDirect(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM absences WHERE id = $1 AND request_id IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete absence with id %s: %w", id, err)
	}

	if commandTag.RowsAffected() != 1 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return absence.ErrAbsenceManagedByRequest
	}

	return nil
}
