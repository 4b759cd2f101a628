package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
)

const defaultPageLimit = 20

type absenceRequestRepository struct {
	store *Store
}

func NewAbsenceRequestRepository(s *Store) absence.AbsenceRequestRepository {
	return &absenceRequestRepository{store: s}
}

func (r *absenceRequestRepository) Create(ctx context.Context, request absence.AbsenceRequest) (absence.AbsenceRequest, error) {
	err := r.store.write(ctx, func() error {
		if request.ID == "" {
			id, err := r.store.newID()
			if err != nil {
				return err
			}
			request.ID = id
		}
		now := r.store.clock.Now()
		request.CreatedAt = now
		request.UpdatedAt = now
		r.store.requests[request.ID] = request
		return nil
	})
	if err != nil {
		return absence.AbsenceRequest{}, err
	}
	return request, nil
}

func (r *absenceRequestRepository) GetByID(ctx context.Context, id string) (absence.AbsenceRequest, error) {
	var (
		req absence.AbsenceRequest
		ok  bool
	)
	r.store.read(ctx, func() { req, ok = r.store.requests[id] })
	if !ok {
		return absence.AbsenceRequest{}, absence.ErrAbsenceRequestNotFound
	}
	return req, nil
}

func (r *absenceRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (absence.AbsenceRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *absenceRequestRepository) List(ctx context.Context, filter absence.AbsenceRequestFilter) ([]absence.AbsenceRequest, int64, error) {
	var matched []absence.AbsenceRequest
	r.store.read(ctx, func() {
		for _, req := range r.store.requests {
			if filter.EmployeeID != nil && *filter.EmployeeID != "" && req.EmployeeID != *filter.EmployeeID {
				continue
			}
			if filter.Status != nil && *filter.Status != "" && req.Status != *filter.Status {
				continue
			}
			if filter.CompanyID != nil && *filter.CompanyID != "" {
				emp, ok := r.store.employees[req.EmployeeID]
				if !ok || emp.CompanyID != *filter.CompanyID {
					continue
				}
			}
			matched = append(matched, req)
		}
	})

	slices.SortFunc(matched, func(a, b absence.AbsenceRequest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := int64(len(matched))
	return paginate(matched, filter.Page, filter.Limit), total, nil
}

func (r *absenceRequestRepository) UpdatePending(ctx context.Context, request absence.AbsenceRequest) (absence.AbsenceRequest, error) {
	var updated absence.AbsenceRequest
	err := r.store.write(ctx, func() error {
		current, err := r.pendingLocked(request.ID)
		if err != nil {
			return err
		}
		current.StartDate = request.StartDate
		current.EndDate = request.EndDate
		current.IsPartial = request.IsPartial
		current.StartTime = request.StartTime
		current.EndTime = request.EndTime
		current.Notes = request.Notes
		current.UpdatedAt = r.store.clock.Now()
		r.store.requests[current.ID] = current
		updated = current
		return nil
	})
	if err != nil {
		return absence.AbsenceRequest{}, err
	}
	return updated, nil
}

func (r *absenceRequestRepository) Transition(ctx context.Context, request absence.AbsenceRequest) (absence.AbsenceRequest, error) {
	var updated absence.AbsenceRequest
	err := r.store.write(ctx, func() error {
		current, err := r.pendingLocked(request.ID)
		if err != nil {
			return err
		}
		current.Status = request.Status
		current.ReviewedBy = request.ReviewedBy
		current.ReviewedAt = request.ReviewedAt
		current.RejectionReason = request.RejectionReason
		current.UpdatedAt = r.store.clock.Now()
		r.store.requests[current.ID] = current
		updated = current
		return nil
	})
	if err != nil {
		return absence.AbsenceRequest{}, err
	}
	return updated, nil
}

func (r *absenceRequestRepository) DeletePending(ctx context.Context, id string) error {
	return r.store.write(ctx, func() error {
		if _, err := r.pendingLocked(id); err != nil {
			return err
		}
		delete(r.store.requests, id)
		return nil
	})
}

func (r *absenceRequestRepository) pendingLocked(id string) (absence.AbsenceRequest, error) {
	current, ok := r.store.requests[id]
	if !ok {
		return absence.AbsenceRequest{}, absence.ErrAbsenceRequestNotFound
	}
	if !current.IsPending() {
		return absence.AbsenceRequest{}, absence.ErrInvalidStateTransition
	}
	return current, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	if offset >= len(items) {
		return []T{}
	}
	return items[offset:min(offset+limit, len(items))]
}
