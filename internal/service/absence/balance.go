package absence

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/calendar"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const balancePageSize = 100

// GetBalance implements absence.AbsenceService.
func (s *AbsenceServiceImpl) GetBalance(ctx context.Context, employeeID string, year int) (absence.BalanceResponse, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return absence.BalanceResponse{}, err
	}

	comp, err := s.CompanyRepository.GetByID(ctx, emp.CompanyID)
	if err != nil {
		return absence.BalanceResponse{}, err
	}

	from, to := yearBounds(year)

	var (
		pendingRequests int
		pendingDays     int
		absences        []absence.Absence
		affectsBalance  = make(map[string]bool)
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Pending requests starting this year
	g.Go(func() error {
		pending, err := s.pendingRequests(gCtx, employeeID)
		if err != nil {
			return err
		}
		for _, r := range pending {
			if r.StartDate.Before(from) || r.StartDate.After(to) {
				continue
			}
			pendingRequests++
			pendingDays += calendar.DayCount(r.StartDate, r.EndDate, comp.VacationType)
		}
		return nil
	})

	// 2. Recorded absences this year
	g.Go(func() error {
		var err error
		absences, err = s.AbsenceRepository.List(gCtx, absence.AbsenceFilter{
			EmployeeID: employeeID,
			From:       &from,
			To:         &to,
		})
		if err != nil {
			return fmt.Errorf("failed to list absences: %w", err)
		}
		return nil
	})

	// 3. Which types draw on the vacation balance
	g.Go(func() error {
		types, err := s.AbsenceTypeRepository.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list absence types: %w", err)
		}
		for _, t := range types {
			affectsBalance[t.ID] = t.AffectsVacationBalance
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return absence.BalanceResponse{}, err
	}

	fullDays, partialHours := summarizeAbsences(absences, affectsBalance)

	return absence.BalanceResponse{
		EmployeeID:            emp.ID,
		Year:                  year,
		RemainingVacationDays: emp.RemainingVacationDays,
		MaxVacationDays:       comp.MaxVacationDays,
		VacationType:          string(comp.VacationType),
		PendingRequests:       pendingRequests,
		PendingDays:           pendingDays,
		AbsenceDays:           fullDays,
		PartialHours:          partialHours.StringFixed(2),
	}, nil
}

func (s *AbsenceServiceImpl) pendingRequests(ctx context.Context, employeeID string) ([]absence.AbsenceRequest, error) {
	status := absence.RequestStatusPending
	filter := absence.AbsenceRequestFilter{
		EmployeeID: &employeeID,
		Status:     &status,
		Page:       1,
		Limit:      balancePageSize,
	}

	var all []absence.AbsenceRequest
	for {
		page, total, err := s.AbsenceRequestRepository.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list pending requests: %w", err)
		}
		all = append(all, page...)
		if len(page) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		filter.Page++
	}
}

// summarizeAbsences counts full days taken through approved requests of
// balance-affecting types, and sums partial-absence hours of any type.
func summarizeAbsences(absences []absence.Absence, affectsBalance map[string]bool) (int, decimal.Decimal) {
	fullDays := 0
	partialHours := decimal.Zero
	for _, a := range absences {
		if a.IsPartial {
			partialHours = partialHours.Add(partialDuration(a))
			continue
		}
		if !a.IsDirect() && affectsBalance[a.AbsenceTypeID] {
			fullDays++
		}
	}
	return fullDays, partialHours
}

// partialDuration is the length of a partial absence in hours.
func partialDuration(a absence.Absence) decimal.Decimal {
	if a.StartTime == nil || a.EndTime == nil {
		return decimal.Zero
	}
	start, err := time.Parse("15:04", *a.StartTime)
	if err != nil {
		return decimal.Zero
	}
	end, err := time.Parse("15:04", *a.EndTime)
	if err != nil || !end.After(start) {
		return decimal.Zero
	}
	minutes := int64(end.Sub(start) / time.Minute)
	return decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60))
}
