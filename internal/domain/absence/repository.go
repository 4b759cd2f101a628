package absence

import "context"

// AbsenceTypeRepository - interface for absence_types table
type AbsenceTypeRepository interface {
	Create(ctx context.Context, absenceType AbsenceType) (AbsenceType, error)
	GetByID(ctx context.Context, id string) (AbsenceType, error)
	List(ctx context.Context) ([]AbsenceType, error)
}

// AbsenceRequestRepository - interface for absence_requests table
type AbsenceRequestRepository interface {
	Create(ctx context.Context, request AbsenceRequest) (AbsenceRequest, error)
	GetByID(ctx context.Context, id string) (AbsenceRequest, error)
	// GetByIDForUpdate locks the request row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (AbsenceRequest, error)
	List(ctx context.Context, filter AbsenceRequestFilter) ([]AbsenceRequest, int64, error)
	// UpdatePending rewrites dates, partial fields and notes of a request that
	// is still pending. Returns ErrInvalidStateTransition otherwise.
	UpdatePending(ctx context.Context, request AbsenceRequest) (AbsenceRequest, error)
	// Transition stores the reviewed state of a request only if it is still
	// pending. Returns ErrInvalidStateTransition otherwise.
	Transition(ctx context.Context, request AbsenceRequest) (AbsenceRequest, error)
	DeletePending(ctx context.Context, id string) error
}

// AbsenceRepository - interface for absences table
type AbsenceRepository interface {
	Create(ctx context.Context, absence Absence) (Absence, error)
	CreateBatch(ctx context.Context, absences []Absence) ([]Absence, error)
	GetByID(ctx context.Context, id string) (Absence, error)
	List(ctx context.Context, filter AbsenceFilter) ([]Absence, error)
	// DeleteDirect removes an absence that has no parent request.
	// Returns ErrAbsenceManagedByRequest for request-bound rows.
	DeleteDirect(ctx context.Context, id string) error
}
