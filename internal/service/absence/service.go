package absence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/company"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/calendar"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/database"
	"github.com/google/uuid"
)

type AbsenceServiceImpl struct {
	db database.Transactor
	company.CompanyRepository
	employee.EmployeeRepository
	absence.AbsenceTypeRepository
	absence.AbsenceRequestRepository
	absence.AbsenceRepository
	clock     clock.Clock
	lifecycle absence.Lifecycle
	notifier  absence.Notifier
}

func NewAbsenceService(
	db database.Transactor,
	companyRepo company.CompanyRepository,
	employeeRepo employee.EmployeeRepository,
	absenceTypeRepo absence.AbsenceTypeRepository,
	absenceRequestRepo absence.AbsenceRequestRepository,
	absenceRepo absence.AbsenceRepository,
	clk clock.Clock,
	lifecycle absence.Lifecycle,
	notifier absence.Notifier,
) absence.AbsenceService {
	if clk == nil {
		clk = clock.System()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &AbsenceServiceImpl{
		db:                       db,
		CompanyRepository:        companyRepo,
		EmployeeRepository:       employeeRepo,
		AbsenceTypeRepository:    absenceTypeRepo,
		AbsenceRequestRepository: absenceRequestRepo,
		AbsenceRepository:        absenceRepo,
		clock:                    clk,
		lifecycle:                lifecycle,
		notifier:                 notifier,
	}
}

// ListAbsenceTypes implements absence.AbsenceService.
func (s *AbsenceServiceImpl) ListAbsenceTypes(ctx context.Context) ([]absence.AbsenceType, error) {
	types, err := s.AbsenceTypeRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list absence types: %w", err)
	}
	return types, nil
}

// CreateRequest implements absence.AbsenceService.
func (s *AbsenceServiceImpl) CreateRequest(ctx context.Context, req absence.CreateAbsenceRequestRequest) (absence.AbsenceRequest, error) {
	if err := req.Validate(); err != nil {
		return absence.AbsenceRequest{}, err
	}

	startDate, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		return absence.AbsenceRequest{}, err
	}
	endDate, err := calendar.ParseDate(req.EndDate)
	if err != nil {
		return absence.AbsenceRequest{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return absence.AbsenceRequest{}, fmt.Errorf("failed to generate absence request id: %w", err)
	}

	draft := absence.AbsenceRequest{
		ID:            id.String(),
		EmployeeID:    req.EmployeeID,
		AbsenceTypeID: req.AbsenceTypeID,
		StartDate:     startDate,
		EndDate:       endDate,
		IsPartial:     req.IsPartial,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Notes:         req.Notes,
	}

	var created absence.AbsenceRequest
	err = s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		cand, err := s.loadCandidate(ctx, draft)
		if err != nil {
			return err
		}

		effects, err := s.lifecycle.Create(cand, s.clock.Now())
		if err != nil {
			return err
		}

		created, err = s.AbsenceRequestRepository.Create(ctx, effects.Request)
		if err != nil {
			return fmt.Errorf("failed to create absence request: %w", err)
		}

		return s.applyEffects(ctx, effects)
	})
	if err != nil {
		return absence.AbsenceRequest{}, err
	}

	slog.Info("Absence request created",
		"request_id", created.ID,
		"employee_id", created.EmployeeID,
		"status", created.Status,
	)

	if created.Status == absence.RequestStatusApproved {
		s.notifier.RequestDecided(ctx, created)
	}

	return created, nil
}

// ApproveRequest implements absence.AbsenceService.
func (s *AbsenceServiceImpl) ApproveRequest(ctx context.Context, requestID string, reviewerID string) (absence.AbsenceRequest, error) {
	var (
		approved absence.AbsenceRequest
		effects  absence.Effects
	)
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.AbsenceRequestRepository.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}

		cand, err := s.loadCandidate(ctx, req)
		if err != nil {
			return err
		}

		effects, err = s.lifecycle.Approve(cand, reviewerID, s.clock.Now())
		if err != nil {
			return err
		}

		approved, err = s.AbsenceRequestRepository.Transition(ctx, effects.Request)
		if err != nil {
			return err
		}

		return s.applyEffects(ctx, effects)
	})
	if err != nil {
		return absence.AbsenceRequest{}, err
	}

	debited := 0
	if effects.Debit != nil {
		debited = effects.Debit.Days
	}
	slog.Info("Absence request approved",
		"request_id", approved.ID,
		"employee_id", approved.EmployeeID,
		"reviewer_id", reviewerID,
		"absences", len(effects.Absences),
		"debited_days", debited,
	)

	s.notifier.RequestDecided(ctx, approved)

	return approved, nil
}

// RejectRequest implements absence.AbsenceService.
func (s *AbsenceServiceImpl) RejectRequest(ctx context.Context, req absence.RejectAbsenceRequestRequest) (absence.AbsenceRequest, error) {
	if err := req.Validate(); err != nil {
		return absence.AbsenceRequest{}, err
	}

	var rejected absence.AbsenceRequest
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.AbsenceRequestRepository.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}

		next, err := s.lifecycle.Reject(current, req.ReviewerID, req.Reason, s.clock.Now())
		if err != nil {
			return err
		}

		rejected, err = s.AbsenceRequestRepository.Transition(ctx, next)
		return err
	})
	if err != nil {
		return absence.AbsenceRequest{}, err
	}

	slog.Info("Absence request rejected",
		"request_id", rejected.ID,
		"employee_id", rejected.EmployeeID,
		"reviewer_id", req.ReviewerID,
	)

	s.notifier.RequestDecided(ctx, rejected)

	return rejected, nil
}

// UpdateRequest implements absence.AbsenceService.
func (s *AbsenceServiceImpl) UpdateRequest(ctx context.Context, req absence.UpdateAbsenceRequestRequest) (absence.AbsenceRequest, error) {
	if err := req.Validate(); err != nil {
		return absence.AbsenceRequest{}, err
	}

	changes := absence.Changes{
		IsPartial: req.IsPartial,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	if req.StartDate != nil {
		d, err := calendar.ParseDate(*req.StartDate)
		if err != nil {
			return absence.AbsenceRequest{}, err
		}
		changes.StartDate = &d
	}
	if req.EndDate != nil {
		d, err := calendar.ParseDate(*req.EndDate)
		if err != nil {
			return absence.AbsenceRequest{}, err
		}
		changes.EndDate = &d
	}

	var updated absence.AbsenceRequest
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.AbsenceRequestRepository.GetByIDForUpdate(ctx, req.ID)
		if err != nil {
			return err
		}

		cand, err := s.loadCandidate(ctx, current)
		if err != nil {
			return err
		}

		next, err := s.lifecycle.Update(cand, changes, s.clock.Now())
		if err != nil {
			return err
		}

		updated, err = s.AbsenceRequestRepository.UpdatePending(ctx, next)
		return err
	})
	if err != nil {
		return absence.AbsenceRequest{}, err
	}

	return updated, nil
}

// DeleteRequest implements absence.AbsenceService.
func (s *AbsenceServiceImpl) DeleteRequest(ctx context.Context, requestID string) error {
	err := s.db.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.AbsenceRequestRepository.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}

		if err := absence.CheckDeletable(current); err != nil {
			return err
		}

		return s.AbsenceRequestRepository.DeletePending(ctx, requestID)
	})
	if err != nil {
		return err
	}

	slog.Info("Absence request deleted", "request_id", requestID)
	return nil
}

// GetRequest implements absence.AbsenceService.
func (s *AbsenceServiceImpl) GetRequest(ctx context.Context, requestID string) (absence.AbsenceRequest, error) {
	return s.AbsenceRequestRepository.GetByID(ctx, requestID)
}

// ListRequests implements absence.AbsenceService.
func (s *AbsenceServiceImpl) ListRequests(ctx context.Context, filter absence.AbsenceRequestFilter) (absence.ListAbsenceRequestResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	requests, total, err := s.AbsenceRequestRepository.List(ctx, filter)
	if err != nil {
		return absence.ListAbsenceRequestResponse{}, fmt.Errorf("failed to list absence requests: %w", err)
	}

	response := absence.ListAbsenceRequestResponse{
		Requests:   make([]absence.AbsenceRequestResponse, 0, len(requests)),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	for _, r := range requests {
		response.Requests = append(response.Requests, absence.NewAbsenceRequestResponse(r))
	}

	return response, nil
}

// CreateDirectAbsence implements absence.AbsenceService. Direct absences
// skip the request workflow and never touch the vacation balance.
func (s *AbsenceServiceImpl) CreateDirectAbsence(ctx context.Context, req absence.CreateDirectAbsenceRequest) (absence.Absence, error) {
	if err := req.Validate(); err != nil {
		return absence.Absence{}, err
	}

	day, err := calendar.ParseDate(req.Date)
	if err != nil {
		return absence.Absence{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return absence.Absence{}, err
	}
	if !emp.Active {
		return absence.Absence{}, employee.ErrEmployeeInactive
	}

	if _, err := s.AbsenceTypeRepository.GetByID(ctx, req.AbsenceTypeID); err != nil {
		return absence.Absence{}, err
	}

	a := absence.Absence{
		EmployeeID:    req.EmployeeID,
		AbsenceTypeID: req.AbsenceTypeID,
		Date:          day,
		IsPartial:     req.IsPartial,
		Notes:         req.Notes,
	}
	if req.IsPartial {
		a.StartTime = req.StartTime
		a.EndTime = req.EndTime
	}

	created, err := s.AbsenceRepository.Create(ctx, a)
	if err != nil {
		return absence.Absence{}, fmt.Errorf("failed to create absence: %w", err)
	}

	return created, nil
}

// DeleteDirectAbsence implements absence.AbsenceService.
func (s *AbsenceServiceImpl) DeleteDirectAbsence(ctx context.Context, absenceID string) error {
	return s.AbsenceRepository.DeleteDirect(ctx, absenceID)
}

// GetAbsence implements absence.AbsenceService.
func (s *AbsenceServiceImpl) GetAbsence(ctx context.Context, absenceID string) (absence.Absence, error) {
	return s.AbsenceRepository.GetByID(ctx, absenceID)
}

// ListAbsences implements absence.AbsenceService.
func (s *AbsenceServiceImpl) ListAbsences(ctx context.Context, filter absence.AbsenceFilter) ([]absence.Absence, error) {
	absences, err := s.AbsenceRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}
	return absences, nil
}

// loadCandidate reads the employee, company and absence type a request needs
// for the business rules. Inside a transaction the employee row stays locked.
func (s *AbsenceServiceImpl) loadCandidate(ctx context.Context, req absence.AbsenceRequest) (absence.Candidate, error) {
	emp, err := s.EmployeeRepository.GetByIDForUpdate(ctx, req.EmployeeID)
	if err != nil {
		return absence.Candidate{}, err
	}

	comp, err := s.CompanyRepository.GetByID(ctx, emp.CompanyID)
	if err != nil {
		return absence.Candidate{}, err
	}

	absenceType, err := s.AbsenceTypeRepository.GetByID(ctx, req.AbsenceTypeID)
	if err != nil {
		return absence.Candidate{}, err
	}

	return absence.Candidate{
		Request:  req,
		Employee: emp,
		Company:  comp,
		Type:     absenceType,
	}, nil
}

// applyEffects writes the absences and the balance debit of an approval.
// It must run inside the transaction that stored the request.
func (s *AbsenceServiceImpl) applyEffects(ctx context.Context, effects absence.Effects) error {
	if len(effects.Absences) > 0 {
		if _, err := s.AbsenceRepository.CreateBatch(ctx, effects.Absences); err != nil {
			return fmt.Errorf("failed to create absences: %w", err)
		}
	}

	if effects.Debit != nil && effects.Debit.Days > 0 {
		if _, err := s.EmployeeRepository.DebitVacationDays(ctx, effects.Debit.EmployeeID, effects.Debit.Days); err != nil {
			return err
		}
	}

	return nil
}

// yearBounds returns the first and last day of year in UTC.
func yearBounds(year int) (time.Time, time.Time) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, -1)
}
