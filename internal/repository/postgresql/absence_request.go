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

type absenceRequestRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceRequestRepository(db *database.DB) absence.AbsenceRequestRepository {
	return &absenceRequestRepositoryImpl{db: db}
}

const absenceRequestColumns = `
	ar.id, ar.employee_id, ar.absence_type_id, ar.start_date, ar.end_date,
	ar.is_partial, ar.start_time, ar.end_time, ar.notes,
	ar.status, ar.reviewed_by, ar.reviewed_at, ar.rejection_reason,
	ar.created_at, ar.updated_at`

func scanAbsenceRequest(row pgx.Row) (absence.AbsenceRequest, error) {
	var req absence.AbsenceRequest
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.AbsenceTypeID, &req.StartDate, &req.EndDate,
		&req.IsPartial, &req.StartTime, &req.EndTime, &req.Notes,
		&req.Status, &req.ReviewedBy, &req.ReviewedAt, &req.RejectionReason,
		&req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

// Create implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) Create(ctx context.Context, request absence.AbsenceRequest) (absence.AbsenceRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return absence.AbsenceRequest{}, fmt.Errorf("failed to generate absence request id: %w", err)
		}
		request.ID = id.String()
	}

	query := `
		INSERT INTO absence_requests (
			id, employee_id, absence_type_id, start_date, end_date,
			is_partial, start_time, end_time, notes,
			status, reviewed_by, reviewed_at, rejection_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.AbsenceTypeID, request.StartDate, request.EndDate,
		request.IsPartial, request.StartTime, request.EndTime, request.Notes,
		request.Status, request.ReviewedBy, request.ReviewedAt, request.RejectionReason,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return absence.AbsenceRequest{}, fmt.Errorf("failed to create absence request: %w", err)
	}

	return request, nil
}

// GetByID implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) GetByID(ctx context.Context, id string) (absence.AbsenceRequest, error) {
	return r.get(ctx, `SELECT `+absenceRequestColumns+` FROM absence_requests ar WHERE ar.id = $1`, id)
}

// GetByIDForUpdate implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (absence.AbsenceRequest, error) {
	return r.get(ctx, `SELECT `+absenceRequestColumns+` FROM absence_requests ar WHERE ar.id = $1 FOR UPDATE`, id)
}

func (r *absenceRequestRepositoryImpl) get(ctx context.Context, query, id string) (absence.AbsenceRequest, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanAbsenceRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.AbsenceRequest{}, absence.ErrAbsenceRequestNotFound
		}
		return absence.AbsenceRequest{}, fmt.Errorf("failed to get absence request with id %s: %w", id, err)
	}
	return req, nil
}

// List implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) List(ctx context.Context, filter absence.AbsenceRequestFilter) ([]absence.AbsenceRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM absence_requests ar
		INNER JOIN employees e ON ar.employee_id = e.id
	`

	args := []interface{}{}
	argIdx := 1

	// Build WHERE clause dynamically
	whereClauses := []string{}

	if filter.CompanyID != nil && *filter.CompanyID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("e.company_id = $%d", argIdx))
		args = append(args, *filter.CompanyID)
		argIdx++
	}

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("ar.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("ar.status = $%d", argIdx))
		args = append(args, string(*filter.Status))
		argIdx++
	}

	if len(whereClauses) > 0 {
		baseQuery += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// COUNT query for total records
	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count absence requests: %w", err)
	}

	selectQuery := "SELECT " + absenceRequestColumns + baseQuery + " ORDER BY ar.created_at DESC, ar.id DESC"

	// PAGINATION
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query absence requests: %w", err)
	}
	defer rows.Close()

	requests := []absence.AbsenceRequest{}
	for rows.Next() {
		req, err := scanAbsenceRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan absence request: %w", err)
		}
		requests = append(requests, req)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return requests, total, nil
}

// UpdatePending implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) UpdatePending(ctx context.Context, request absence.AbsenceRequest) (absence.AbsenceRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE absence_requests ar
		SET start_date = $1, end_date = $2, is_partial = $3,
			start_time = $4, end_time = $5, notes = $6, updated_at = NOW()
		WHERE ar.id = $7 AND ar.status = 'pending'
		RETURNING ` + absenceRequestColumns

	updated, err := scanAbsenceRequest(q.QueryRow(ctx, query,
		request.StartDate, request.EndDate, request.IsPartial,
		request.StartTime, request.EndTime, request.Notes, request.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.AbsenceRequest{}, r.notPending(ctx, request.ID)
		}
		return absence.AbsenceRequest{}, fmt.Errorf("failed to update absence request with id %s: %w", request.ID, err)
	}

	return updated, nil
}

// Transition implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) Transition(ctx context.Context, request absence.AbsenceRequest) (absence.AbsenceRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE absence_requests ar
		SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE ar.id = $5 AND ar.status = 'pending'
		RETURNING ` + absenceRequestColumns

	updated, err := scanAbsenceRequest(q.QueryRow(ctx, query,
		string(request.Status), request.ReviewedBy, request.ReviewedAt, request.RejectionReason, request.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.AbsenceRequest{}, r.notPending(ctx, request.ID)
		}
		return absence.AbsenceRequest{}, fmt.Errorf("failed to transition absence request with id %s: %w", request.ID, err)
	}

	return updated, nil
}

// DeletePending implements absence.AbsenceRequestRepository.
func (r *absenceRequestRepositoryImpl) DeletePending(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM absence_requests WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("failed to delete absence request with id %s: %w", id, err)
	}

	if commandTag.RowsAffected() != 1 {
		return r.notPending(ctx, id)
	}

	return nil
}

// notPending tells a missing row apart from one that already left pending.
func (r *absenceRequestRepositoryImpl) notPending(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return absence.ErrInvalidStateTransition
}
