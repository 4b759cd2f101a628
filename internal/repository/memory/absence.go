package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
)

type absenceRepository struct {
	store *Store
}

func NewAbsenceRepository(s *Store) absence.AbsenceRepository {
	return &absenceRepository{store: s}
}

func (r *absenceRepository) Create(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	created, err := r.CreateBatch(ctx, []absence.Absence{a})
	if err != nil {
		return absence.Absence{}, err
	}
	return created[0], nil
}

func (r *absenceRepository) CreateBatch(ctx context.Context, absences []absence.Absence) ([]absence.Absence, error) {
	created := make([]absence.Absence, 0, len(absences))
	err := r.store.write(ctx, func() error {
		now := r.store.clock.Now()
		for _, a := range absences {
			if a.ID == "" {
				id, err := r.store.newID()
				if err != nil {
					return err
				}
				a.ID = id
			}
			a.CreatedAt = now
			created = append(created, a)
		}
		for _, a := range created {
			r.store.absences[a.ID] = a
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *absenceRepository) GetByID(ctx context.Context, id string) (absence.Absence, error) {
	var (
		a  absence.Absence
		ok bool
	)
	r.store.read(ctx, func() { a, ok = r.store.absences[id] })
	if !ok {
		return absence.Absence{}, absence.ErrAbsenceNotFound
	}
	return a, nil
}

func (r *absenceRepository) List(ctx context.Context, filter absence.AbsenceFilter) ([]absence.Absence, error) {
	var result []absence.Absence
	r.store.read(ctx, func() {
		for _, a := range r.store.absences {
			if filter.EmployeeID != "" && a.EmployeeID != filter.EmployeeID {
				continue
			}
			if filter.From != nil && a.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && a.Date.After(*filter.To) {
				continue
			}
			if filter.RequestID != nil && (a.RequestID == nil || *a.RequestID != *filter.RequestID) {
				continue
			}
			result = append(result, a)
		}
	})

	slices.SortFunc(result, func(a, b absence.Absence) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *absenceRepository) DeleteDirect(ctx context.Context, id string) error {
	return r.store.write(ctx, func() error {
		a, ok := r.store.absences[id]
		if !ok {
			return absence.ErrAbsenceNotFound
		}
		if !a.IsDirect() {
			return absence.ErrAbsenceManagedByRequest
		}
		delete(r.store.absences, id)
		return nil
	})
}
