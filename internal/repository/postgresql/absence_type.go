package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type absenceTypeRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceTypeRepository(db *database.DB) absence.AbsenceTypeRepository {
	return &absenceTypeRepositoryImpl{db: db}
}

// Create implements absence.AbsenceTypeRepository.
func (r *absenceTypeRepositoryImpl) Create(ctx context.Context, absenceType absence.AbsenceType) (absence.AbsenceType, error) {
	q := GetQuerier(ctx, r.db)

	if absenceType.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return absence.AbsenceType{}, fmt.Errorf("failed to generate absence type id: %w", err)
		}
		absenceType.ID = id.String()
	}

	query := `
		INSERT INTO absence_types (id, code, name, requires_approval, affects_vacation_balance, is_paid)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		absenceType.ID, absenceType.Code, absenceType.Name,
		absenceType.RequiresApproval, absenceType.AffectsVacationBalance, absenceType.IsPaid,
	).Scan(&absenceType.CreatedAt, &absenceType.UpdatedAt)
	if err != nil {
		return absence.AbsenceType{}, fmt.Errorf("failed to create absence type: %w", err)
	}

	return absenceType, nil
}

// GetByID implements absence.AbsenceTypeRepository.
func (r *absenceTypeRepositoryImpl) GetByID(ctx context.Context, id string) (absence.AbsenceType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, name, requires_approval, affects_vacation_balance, is_paid, created_at, updated_at
		FROM absence_types
		WHERE id = $1
	`

	var t absence.AbsenceType
	err := q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Code, &t.Name, &t.RequiresApproval, &t.AffectsVacationBalance, &t.IsPaid,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return absence.AbsenceType{}, absence.ErrAbsenceTypeNotFound
		}
		return absence.AbsenceType{}, fmt.Errorf("failed to get absence type with id %s: %w", id, err)
	}

	return t, nil
}

// List implements absence.AbsenceTypeRepository.
func (r *absenceTypeRepositoryImpl) List(ctx context.Context) ([]absence.AbsenceType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, code, name, requires_approval, affects_vacation_balance, is_paid, created_at, updated_at
		FROM absence_types
		ORDER BY name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query absence types: %w", err)
	}
	defer rows.Close()

	var types []absence.AbsenceType
	for rows.Next() {
		var t absence.AbsenceType
		if err := rows.Scan(
			&t.ID, &t.Code, &t.Name, &t.RequiresApproval, &t.AffectsVacationBalance, &t.IsPaid,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan absence type: %w", err)
		}
		types = append(types, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return types, nil
}
