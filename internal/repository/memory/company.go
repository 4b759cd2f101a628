package memory

import (
	"context"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/company"
)

type companyRepository struct {
	store *Store
}

func NewCompanyRepository(s *Store) company.CompanyRepository {
	return &companyRepository{store: s}
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (company.Company, error) {
	var (
		c  company.Company
		ok bool
	)
	r.store.read(ctx, func() { c, ok = r.store.companies[id] })
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

func (r *companyRepository) Create(ctx context.Context, newCompany company.Company) (company.Company, error) {
	err := r.store.write(ctx, func() error {
		if newCompany.ID == "" {
			id, err := r.store.newID()
			if err != nil {
				return err
			}
			newCompany.ID = id
		}
		now := r.store.clock.Now()
		newCompany.CreatedAt = now
		newCompany.UpdatedAt = now
		r.store.companies[newCompany.ID] = newCompany
		return nil
	})
	if err != nil {
		return company.Company{}, err
	}
	return newCompany, nil
}
