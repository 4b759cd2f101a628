package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(clock.Fixed(fixedNow))
}

func seedEmployee(t *testing.T, s *Store, balance int) employee.Employee {
	t.Helper()
	emp, err := NewEmployeeRepository(s).Create(context.Background(), employee.Employee{
		CompanyID:             "company-1",
		FullName:              "Ada Lovelace",
		RemainingVacationDays: balance,
		Active:                true,
	})
	require.NoError(t, err)
	return emp
}

func TestTransactor_CommitsOnSuccess(t *testing.T) {
	s := newTestStore(t)
	emp := seedEmployee(t, s, 10)
	employees := NewEmployeeRepository(s)

	err := NewTransactor(s).WithinTransaction(context.Background(), func(ctx context.Context) error {
		_, err := employees.DebitVacationDays(ctx, emp.ID, 4)
		return err
	})

	require.NoError(t, err)
	got, err := employees.GetByID(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.RemainingVacationDays)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	emp := seedEmployee(t, s, 10)
	employees := NewEmployeeRepository(s)
	absences := NewAbsenceRepository(s)
	boom := errors.New("boom")

	err := NewTransactor(s).WithinTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := absences.CreateBatch(ctx, []absence.Absence{{EmployeeID: emp.ID, Date: fixedNow}}); err != nil {
			return err
		}
		if _, err := employees.DebitVacationDays(ctx, emp.ID, 4); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	got, err := employees.GetByID(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.RemainingVacationDays)

	list, err := absences.List(context.Background(), absence.AbsenceFilter{EmployeeID: emp.ID})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTransactor_RollsBackOnPanic(t *testing.T) {
	s := newTestStore(t)
	emp := seedEmployee(t, s, 10)
	employees := NewEmployeeRepository(s)

	assert.Panics(t, func() {
		_ = NewTransactor(s).WithinTransaction(context.Background(), func(ctx context.Context) error {
			_, _ = employees.DebitVacationDays(ctx, emp.ID, 4)
			panic("boom")
		})
	})

	got, err := employees.GetByID(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.RemainingVacationDays)
}

func TestTransactor_NestedCallJoinsOuter(t *testing.T) {
	s := newTestStore(t)
	emp := seedEmployee(t, s, 10)
	employees := NewEmployeeRepository(s)
	tx := NewTransactor(s)
	boom := errors.New("boom")

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		inner := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := employees.DebitVacationDays(ctx, emp.ID, 3)
			return err
		})
		require.NoError(t, inner)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	got, _ := employees.GetByID(context.Background(), emp.ID)
	assert.Equal(t, 10, got.RemainingVacationDays)
}

func TestDebitVacationDays_ConcurrentNeverOverdraws(t *testing.T) {
	s := newTestStore(t)
	emp := seedEmployee(t, s, 10)
	employees := NewEmployeeRepository(s)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := employees.DebitVacationDays(context.Background(), emp.ID, 3); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, employee.ErrInsufficientBalance)
			}
		}()
	}
	wg.Wait()

	got, _ := employees.GetByID(context.Background(), emp.ID)
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 1, got.RemainingVacationDays)
}

func TestAbsenceRequestRepository_CompareAndSwapOnPending(t *testing.T) {
	s := newTestStore(t)
	requests := NewAbsenceRequestRepository(s)
	ctx := context.Background()

	req, err := requests.Create(ctx, absence.AbsenceRequest{
		EmployeeID: "emp-1",
		StartDate:  fixedNow,
		EndDate:    fixedNow,
		Status:     absence.RequestStatusPending,
	})
	require.NoError(t, err)
	require.NotEmpty(t, req.ID)

	reviewer := "reviewer-1"
	req.Status = absence.RequestStatusApproved
	req.ReviewedBy = &reviewer
	_, err = requests.Transition(ctx, req)
	require.NoError(t, err)

	req.Status = absence.RequestStatusRejected
	_, err = requests.Transition(ctx, req)
	assert.ErrorIs(t, err, absence.ErrInvalidStateTransition)

	_, err = requests.UpdatePending(ctx, req)
	assert.ErrorIs(t, err, absence.ErrInvalidStateTransition)

	assert.ErrorIs(t, requests.DeletePending(ctx, req.ID), absence.ErrInvalidStateTransition)
	assert.ErrorIs(t, requests.DeletePending(ctx, "missing"), absence.ErrAbsenceRequestNotFound)

	stored, err := requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, absence.RequestStatusApproved, stored.Status)
}

func TestAbsenceRequestRepository_ListFiltersAndPaginates(t *testing.T) {
	s := newTestStore(t)
	emp := seedEmployee(t, s, 10)
	other, err := NewEmployeeRepository(s).Create(context.Background(), employee.Employee{CompanyID: "company-2", Active: true})
	require.NoError(t, err)
	requests := NewAbsenceRequestRepository(s)
	ctx := context.Background()

	for range 5 {
		_, err := requests.Create(ctx, absence.AbsenceRequest{EmployeeID: emp.ID, Status: absence.RequestStatusPending})
		require.NoError(t, err)
	}
	_, err = requests.Create(ctx, absence.AbsenceRequest{EmployeeID: other.ID, Status: absence.RequestStatusPending})
	require.NoError(t, err)

	company := "company-1"
	page, total, err := requests.List(ctx, absence.AbsenceRequestFilter{CompanyID: &company, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	last, _, err := requests.List(ctx, absence.AbsenceRequestFilter{CompanyID: &company, Page: 3, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, last, 1)

	approved := absence.RequestStatusApproved
	none, total, err := requests.List(ctx, absence.AbsenceRequestFilter{Status: &approved})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

func TestAbsenceRepository_DeleteDirectOnly(t *testing.T) {
	s := newTestStore(t)
	absences := NewAbsenceRepository(s)
	ctx := context.Background()
	requestID := "req-1"

	bound, err := absences.Create(ctx, absence.Absence{EmployeeID: "emp-1", RequestID: &requestID, Date: fixedNow})
	require.NoError(t, err)
	direct, err := absences.Create(ctx, absence.Absence{EmployeeID: "emp-1", Date: fixedNow})
	require.NoError(t, err)

	assert.ErrorIs(t, absences.DeleteDirect(ctx, bound.ID), absence.ErrAbsenceManagedByRequest)
	assert.NoError(t, absences.DeleteDirect(ctx, direct.ID))
	assert.ErrorIs(t, absences.DeleteDirect(ctx, direct.ID), absence.ErrAbsenceNotFound)

	byRequest, err := absences.List(ctx, absence.AbsenceFilter{RequestID: &requestID})
	require.NoError(t, err)
	require.Len(t, byRequest, 1)
	assert.Equal(t, bound.ID, byRequest[0].ID)
}

func TestStore_ReadsWaitForOpenTransactions(t *testing.T) {
	s := newTestStore(t)
	requests := NewAbsenceRequestRepository(s)
	tx := NewTransactor(s)

	written := make(chan string)
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
			req, err := requests.Create(ctx, absence.AbsenceRequest{EmployeeID: "emp-1", Status: absence.RequestStatusApproved})
			if err != nil {
				return err
			}
			written <- req.ID
			<-release
			return errors.New("insufficient balance")
		})
	}()
	id := <-written

	read := make(chan error, 1)
	go func() {
		_, err := requests.GetByID(context.Background(), id)
		read <- err
	}()

	select {
	case err := <-read:
		close(release)
		t.Fatalf("read returned while the transaction was open: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-done)
	assert.ErrorIs(t, <-read, absence.ErrAbsenceRequestNotFound)
}
