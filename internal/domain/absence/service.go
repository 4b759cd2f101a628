package absence

import (
	"context"
)

type AbsenceService interface {
	// Type
	ListAbsenceTypes(ctx context.Context) ([]AbsenceType, error)
	// Request lifecycle
	CreateRequest(ctx context.Context, req CreateAbsenceRequestRequest) (AbsenceRequest, error)
	ApproveRequest(ctx context.Context, requestID string, reviewerID string) (AbsenceRequest, error)
	RejectRequest(ctx context.Context, req RejectAbsenceRequestRequest) (AbsenceRequest, error)
	UpdateRequest(ctx context.Context, req UpdateAbsenceRequestRequest) (AbsenceRequest, error)
	DeleteRequest(ctx context.Context, requestID string) error
	GetRequest(ctx context.Context, requestID string) (AbsenceRequest, error)
	ListRequests(ctx context.Context, filter AbsenceRequestFilter) (ListAbsenceRequestResponse, error)
	// Absence
	CreateDirectAbsence(ctx context.Context, req CreateDirectAbsenceRequest) (Absence, error)
	DeleteDirectAbsence(ctx context.Context, absenceID string) error
	GetAbsence(ctx context.Context, absenceID string) (Absence, error)
	ListAbsences(ctx context.Context, filter AbsenceFilter) ([]Absence, error)
	// Balance
	GetBalance(ctx context.Context, employeeID string, year int) (BalanceResponse, error)
}

// Notifier is told about request decisions once they are committed.
type Notifier interface {
	RequestDecided(ctx context.Context, req AbsenceRequest)
}
