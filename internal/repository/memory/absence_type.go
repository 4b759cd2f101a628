package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
)

type absenceTypeRepository struct {
	store *Store
}

func NewAbsenceTypeRepository(s *Store) absence.AbsenceTypeRepository {
	return &absenceTypeRepository{store: s}
}

func (r *absenceTypeRepository) Create(ctx context.Context, absenceType absence.AbsenceType) (absence.AbsenceType, error) {
	err := r.store.write(ctx, func() error {
		if absenceType.ID == "" {
			id, err := r.store.newID()
			if err != nil {
				return err
			}
			absenceType.ID = id
		}
		now := r.store.clock.Now()
		absenceType.CreatedAt = now
		absenceType.UpdatedAt = now
		r.store.absenceTypes[absenceType.ID] = absenceType
		return nil
	})
	if err != nil {
		return absence.AbsenceType{}, err
	}
	return absenceType, nil
}

func (r *absenceTypeRepository) GetByID(ctx context.Context, id string) (absence.AbsenceType, error) {
	var (
		t  absence.AbsenceType
		ok bool
	)
	r.store.read(ctx, func() { t, ok = r.store.absenceTypes[id] })
	if !ok {
		return absence.AbsenceType{}, absence.ErrAbsenceTypeNotFound
	}
	return t, nil
}

func (r *absenceTypeRepository) List(ctx context.Context) ([]absence.AbsenceType, error) {
	var types []absence.AbsenceType
	r.store.read(ctx, func() {
		for _, t := range r.store.absenceTypes {
			types = append(types, t)
		}
	})
	slices.SortFunc(types, func(a, b absence.AbsenceType) int {
		return strings.Compare(a.Name, b.Name)
	})
	return types, nil
}
