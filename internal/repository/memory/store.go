// Package memory keeps every repository in process memory. It backs the
// development server and the service tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/company"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/worklog"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/database"
	"github.com/google/uuid"
)

type txKey struct{}

// Store holds all tables. Transactions hold txMu exclusively; writes made
// outside a transaction do too so a rollback never discards them. Reads
// outside a transaction share txMu, so they only observe committed state.
type Store struct {
	txMu sync.RWMutex
	mu   sync.RWMutex

	clock clock.Clock

	companies    map[string]company.Company
	employees    map[string]employee.Employee
	absenceTypes map[string]absence.AbsenceType
	requests     map[string]absence.AbsenceRequest
	absences     map[string]absence.Absence
	workLogs     map[string]worklog.WorkLog
}

func NewStore(c clock.Clock) *Store {
	if c == nil {
		c = clock.System()
	}
	return &Store{
		clock:        c,
		companies:    make(map[string]company.Company),
		employees:    make(map[string]employee.Employee),
		absenceTypes: make(map[string]absence.AbsenceType),
		requests:     make(map[string]absence.AbsenceRequest),
		absences:     make(map[string]absence.Absence),
		workLogs:     make(map[string]worklog.WorkLog),
	}
}

type snapshot struct {
	companies    map[string]company.Company
	employees    map[string]employee.Employee
	absenceTypes map[string]absence.AbsenceType
	requests     map[string]absence.AbsenceRequest
	absences     map[string]absence.Absence
	workLogs     map[string]worklog.WorkLog
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		companies:    maps.Clone(s.companies),
		employees:    maps.Clone(s.employees),
		absenceTypes: maps.Clone(s.absenceTypes),
		requests:     maps.Clone(s.requests),
		absences:     maps.Clone(s.absences),
		workLogs:     maps.Clone(s.workLogs),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = snap.companies
	s.employees = snap.employees
	s.absenceTypes = snap.absenceTypes
	s.requests = snap.requests
	s.absences = snap.absences
	s.workLogs = snap.workLogs
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// write runs fn with exclusive access to the tables.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) read(ctx context.Context, fn func()) {
	if !inTx(ctx) {
		s.txMu.RLock()
		defer s.txMu.RUnlock()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

func (s *Store) newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type transactor struct {
	store *Store
}

// NewTransactor runs functions against a snapshot of s and restores it when
// they fail or panic.
func NewTransactor(s *Store) database.Transactor {
	return &transactor{store: s}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.store.restore(snap)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}
