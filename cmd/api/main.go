package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/config"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/company"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/worklog"
	"github.com/cmlabs-hris/absence-ledger/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/absence-ledger/internal/handler/http"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/sse"
	"github.com/cmlabs-hris/absence-ledger/internal/repository/memory"
	"github.com/cmlabs-hris/absence-ledger/internal/repository/postgresql"
	absenceService "github.com/cmlabs-hris/absence-ledger/internal/service/absence"
	accessService "github.com/cmlabs-hris/absence-ledger/internal/service/access"
	workLogService "github.com/cmlabs-hris/absence-ledger/internal/service/worklog"
)

type repositories struct {
	db          database.Transactor
	company     company.CompanyRepository
	employee    employee.EmployeeRepository
	absenceType absence.AbsenceTypeRepository
	request     absence.AbsenceRequestRepository
	absence     absence.AbsenceRepository
	workLog     worklog.WorkLogRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).
		With(slog.String("app", "absence-ledger")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.System()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	repos, err := openRepositories(ctx, cfg, clk, JWTService)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	hub := sse.NewHub()
	lifecycle := absence.Lifecycle{RejectEmptyRange: cfg.Absence.RejectEmptyRange}
	absenceSvc := absenceService.NewAbsenceService(
		repos.db,
		repos.company,
		repos.employee,
		repos.absenceType,
		repos.request,
		repos.absence,
		clk,
		lifecycle,
		absenceService.NewHubNotifier(hub),
	)
	workLogSvc := workLogService.NewWorkLogService(repos.db, repos.workLog, repos.employee, repos.absence, clk)
	checker := accessService.NewRoleChecker(repos.employee)

	absenceHandler := appHTTP.NewAbsenceHandler(absenceSvc, checker, clk)
	workLogHandler := appHTTP.NewWorkLogHandler(workLogSvc, checker)
	eventHandler := appHTTP.NewEventHandler(hub)

	router := appHTTP.NewRouter(cfg, JWTService, absenceHandler, workLogHandler, eventHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr, "store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}

func openRepositories(ctx context.Context, cfg *config.Config, clk clock.Clock, JWTService jwt.Service) (*repositories, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		store := memory.NewStore(clk)
		repos := &repositories{
			db:          memory.NewTransactor(store),
			company:     memory.NewCompanyRepository(store),
			employee:    memory.NewEmployeeRepository(store),
			absenceType: memory.NewAbsenceTypeRepository(store),
			request:     memory.NewAbsenceRequestRepository(store),
			absence:     memory.NewAbsenceRepository(store),
			workLog:     memory.NewWorkLogRepository(store),
			close:       func() {},
		}

		ids, err := fixtures.SeedDemo(ctx, repos.company, repos.employee, repos.absenceType)
		if err != nil {
			return nil, err
		}
		logDemoTokens(ctx, ids, repos.employee, JWTService)
		return repos, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repos := &repositories{
			db:          postgresql.NewTransactor(db),
			company:     postgresql.NewCompanyRepository(db),
			employee:    postgresql.NewEmployeeRepository(db),
			absenceType: postgresql.NewAbsenceTypeRepository(db),
			request:     postgresql.NewAbsenceRequestRepository(db),
			absence:     postgresql.NewAbsenceRepository(db),
			workLog:     postgresql.NewWorkLogRepository(db),
			close:       db.Close,
		}

		if err := fixtures.SeedAbsenceTypes(ctx, repos.absenceType, fixtures.NewSeededDataIDs()); err != nil {
			db.Close()
			return nil, err
		}
		return repos, nil
	}
}

// logDemoTokens prints one access token per seeded employee so the memory
// store can be exercised with curl right away.
func logDemoTokens(ctx context.Context, ids *fixtures.SeededDataIDs, employeeRepo employee.EmployeeRepository, JWTService jwt.Service) {
	roles := map[string]user.Role{
		"Ada Owner":     user.RoleOwner,
		"Ben Manager":   user.RoleManager,
		"Cleo Employee": user.RoleEmployee,
		"Dara Employee": user.RoleEmployee,
	}

	for name, employeeID := range ids.EmployeeIDs {
		emp, err := employeeRepo.GetByID(ctx, employeeID)
		if err != nil {
			slog.Warn("Failed to load demo employee", "name", name, "error", err)
			continue
		}
		role, ok := roles[name]
		if !ok {
			role = user.RoleEmployee
		}
		token, _, err := JWTService.GenerateAccessToken(emp.ID, emp.ID, emp.CompanyID, role)
		if err != nil {
			slog.Warn("Failed to mint demo token", "name", name, "error", err)
			continue
		}
		slog.Info("Demo employee", "name", name, "employee_id", emp.ID, "role", role, "token", token)
	}
}
