package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/config"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
	"github.com/cmlabs-hris/absence-ledger/internal/fixtures"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/sse"
	"github.com/cmlabs-hris/absence-ledger/internal/repository/memory"
	absenceService "github.com/cmlabs-hris/absence-ledger/internal/service/absence"
	accessService "github.com/cmlabs-hris/absence-ledger/internal/service/access"
	workLogService "github.com/cmlabs-hris/absence-ledger/internal/service/worklog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

// Monday 2023-05-01 10:00 UTC
var handlerTestNow = time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)

type testAPI struct {
	router http.Handler
	ids    *fixtures.SeededDataIDs
	tokens map[string]string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
	} `json:"meta"`
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	clk := clock.Fixed(handlerTestNow)

	store := memory.NewStore(clk)
	db := memory.NewTransactor(store)
	companies := memory.NewCompanyRepository(store)
	employees := memory.NewEmployeeRepository(store)
	types := memory.NewAbsenceTypeRepository(store)

	ids, err := fixtures.SeedDemo(ctx, companies, employees, types)
	require.NoError(t, err)

	absences := memory.NewAbsenceRepository(store)
	hub := sse.NewHub()
	absenceSvc := absenceService.NewAbsenceService(
		db, companies, employees, types,
		memory.NewAbsenceRequestRepository(store), absences,
		clk, absence.Lifecycle{}, absenceService.NewHubNotifier(hub),
	)
	workLogSvc := workLogService.NewWorkLogService(db, memory.NewWorkLogRepository(store), employees, absences, clk)
	checker := accessService.NewRoleChecker(employees)

	cfg := &config.Config{App: config.AppConfig{
		Env:         "test",
		LogLevel:    "error",
		CORSOrigins: []string{"http://localhost:3000"},
	}}
	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h")

	api := &testAPI{
		router: NewRouter(cfg, jwtSvc,
			NewAbsenceHandler(absenceSvc, checker, clk),
			NewWorkLogHandler(workLogSvc, checker),
			NewEventHandler(hub),
		),
		ids:    ids,
		tokens: map[string]string{},
	}

	roles := map[string]user.Role{
		"Ada Owner":     user.RoleOwner,
		"Ben Manager":   user.RoleManager,
		"Cleo Employee": user.RoleEmployee,
		"Dara Employee": user.RoleEmployee,
	}
	for name, role := range roles {
		emp, err := employees.GetByID(ctx, ids.EmployeeIDs[name])
		require.NoError(t, err)
		token, _, err := jwtSvc.GenerateAccessToken(emp.ID, emp.ID, emp.CompanyID, role)
		require.NoError(t, err)
		api.tokens[name] = token
	}
	return api
}

func (a *testAPI) employee(name string) string {
	return a.ids.EmployeeIDs[name]
}

func (a *testAPI) do(t *testing.T, as, method, path string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+a.tokens[as])
	}
	w := httptest.NewRecorder()

	a.router.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp), "body for %s %s", method, path)
	return w.Code, resp
}

func (a *testAPI) createVacation(t *testing.T, as, start, end string) absence.AbsenceRequestResponse {
	t.Helper()
	code, resp := a.do(t, as, http.MethodPost, "/api/v1/absence-requests", map[string]any{
		"absence_type_id": a.ids.AbsenceTypeIDs[absence.CodeVacation],
		"start_date":      start,
		"end_date":        end,
	})
	require.Equal(t, http.StatusCreated, code, "create failed: %+v", resp.Error)

	var created absence.AbsenceRequestResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	return created
}

func TestRouter_RequiresToken(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, "", http.MethodGet, "/api/v1/absence-types", nil)

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Success)
}

func TestRouter_ListAbsenceTypes(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, "Cleo Employee", http.MethodGet, "/api/v1/absence-types", nil)

	require.Equal(t, http.StatusOK, code)
	var types []absence.AbsenceTypeResponse
	require.NoError(t, json.Unmarshal(resp.Data, &types))
	assert.Len(t, types, len(fixtures.GetDefaultAbsenceTypes()))
}

func TestRouter_RequestApprovalFlow(t *testing.T) {
	api := newTestAPI(t)
	cleo := api.employee("Cleo Employee")

	created := api.createVacation(t, "Cleo Employee", "2023-05-08", "2023-05-12")
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, cleo, created.EmployeeID)

	// employees cannot review
	code, resp := api.do(t, "Cleo Employee", http.MethodPost, "/api/v1/absence-requests/"+created.ID+"/approve", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	code, resp = api.do(t, "Ben Manager", http.MethodPost, "/api/v1/absence-requests/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, code, "%+v", resp.Error)
	var approved absence.AbsenceRequestResponse
	require.NoError(t, json.Unmarshal(resp.Data, &approved))
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, api.employee("Ben Manager"), *approved.ReviewedBy)

	// second approval conflicts
	code, resp = api.do(t, "Ben Manager", http.MethodPost, "/api/v1/absence-requests/"+created.ID+"/approve", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", resp.Error.Code)

	code, resp = api.do(t, "Cleo Employee", http.MethodGet, "/api/v1/employees/"+cleo+"/balance?year=2023", nil)
	require.Equal(t, http.StatusOK, code)
	var balance absence.BalanceResponse
	require.NoError(t, json.Unmarshal(resp.Data, &balance))
	assert.Equal(t, 5, balance.RemainingVacationDays)
	assert.Equal(t, 5, balance.AbsenceDays)
	assert.Equal(t, "business_days", balance.VacationType)
}

func TestRouter_RejectWithoutBody(t *testing.T) {
	api := newTestAPI(t)
	created := api.createVacation(t, "Cleo Employee", "2023-05-08", "2023-05-12")

	code, resp := api.do(t, "Ben Manager", http.MethodPost, "/api/v1/absence-requests/"+created.ID+"/reject", nil)

	require.Equal(t, http.StatusOK, code, "%+v", resp.Error)
	var rejected absence.AbsenceRequestResponse
	require.NoError(t, json.Unmarshal(resp.Data, &rejected))
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, absence.DefaultRejectionReason, *rejected.RejectionReason)

	// rejected requests cannot be edited or deleted
	code, resp = api.do(t, "Cleo Employee", http.MethodPut, "/api/v1/absence-requests/"+created.ID, map[string]any{"notes": "too late"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", resp.Error.Code)

	code, _ = api.do(t, "Cleo Employee", http.MethodDelete, "/api/v1/absence-requests/"+created.ID, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestRouter_BusinessRuleErrors(t *testing.T) {
	api := newTestAPI(t)
	vacation := api.ids.AbsenceTypeIDs[absence.CodeVacation]

	cases := []struct {
		name   string
		as     string
		body   map[string]any
		status int
		code   string
	}{
		{
			name:   "starts tomorrow",
			as:     "Cleo Employee",
			body:   map[string]any{"absence_type_id": vacation, "start_date": "2023-05-02", "end_date": "2023-05-03"},
			status: http.StatusUnprocessableEntity,
			code:   "NOTICE_PERIOD_VIOLATION",
		},
		{
			name:   "calendar policy needs a week",
			as:     "Dara Employee",
			body:   map[string]any{"absence_type_id": vacation, "start_date": "2023-05-08", "end_date": "2023-05-10"},
			status: http.StatusUnprocessableEntity,
			code:   "CONSECUTIVE_DAYS_VIOLATION",
		},
		{
			name:   "more than the balance",
			as:     "Cleo Employee",
			body:   map[string]any{"absence_type_id": vacation, "start_date": "2023-05-08", "end_date": "2023-05-26"},
			status: http.StatusUnprocessableEntity,
			code:   "INSUFFICIENT_BALANCE",
		},
		{
			name:   "malformed dates",
			as:     "Cleo Employee",
			body:   map[string]any{"absence_type_id": vacation, "start_date": "08/05/2023", "end_date": "2023-05-26"},
			status: http.StatusUnprocessableEntity,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "longer than a year",
			as:     "Cleo Employee",
			body:   map[string]any{"absence_type_id": api.ids.AbsenceTypeIDs[absence.CodeSickLeave], "start_date": "2023-05-02", "end_date": "2300-12-31"},
			status: http.StatusUnprocessableEntity,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "unknown type",
			as:     "Cleo Employee",
			body:   map[string]any{"absence_type_id": "0190d8b4-0000-7000-8000-000000000000", "start_date": "2023-05-08", "end_date": "2023-05-08"},
			status: http.StatusNotFound,
			code:   "NOT_FOUND",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, resp := api.do(t, c.as, http.MethodPost, "/api/v1/absence-requests", c.body)

			assert.Equal(t, c.status, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, c.code, resp.Error.Code)
		})
	}
}

func TestRouter_MalformedIDs(t *testing.T) {
	api := newTestAPI(t)
	cleo := api.employee("Cleo Employee")
	sick := api.ids.AbsenceTypeIDs[absence.CodeSickLeave]

	cases := []struct {
		name   string
		as     string
		method string
		path   string
		body   map[string]any
		status int
		code   string
	}{
		{"request path id", "Cleo Employee", http.MethodGet, "/api/v1/absence-requests/abc", nil, http.StatusNotFound, "NOT_FOUND"},
		{"approve path id", "Ben Manager", http.MethodPost, "/api/v1/absence-requests/abc/approve", nil, http.StatusNotFound, "NOT_FOUND"},
		{"update path id", "Cleo Employee", http.MethodPut, "/api/v1/absence-requests/abc", map[string]any{"notes": "x"}, http.StatusNotFound, "NOT_FOUND"},
		{"absence path id", "Ben Manager", http.MethodDelete, "/api/v1/absences/abc", nil, http.StatusNotFound, "NOT_FOUND"},
		{"balance path id", "Cleo Employee", http.MethodGet, "/api/v1/employees/abc/balance", nil, http.StatusNotFound, "NOT_FOUND"},
		{"request list filter", "Ben Manager", http.MethodGet, "/api/v1/absence-requests?employee_id=abc", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"absence list filter", "Ben Manager", http.MethodGet, "/api/v1/absences?employee_id=abc", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"work log list filter", "Ben Manager", http.MethodGet, "/api/v1/work-logs?employee_id=abc", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{
			"request body employee", "Ben Manager", http.MethodPost, "/api/v1/absence-requests",
			map[string]any{"employee_id": "abc", "absence_type_id": sick, "start_date": "2023-05-08", "end_date": "2023-05-08"},
			http.StatusUnprocessableEntity, "VALIDATION_ERROR",
		},
		{
			"direct absence body type", "Ben Manager", http.MethodPost, "/api/v1/absences",
			map[string]any{"employee_id": cleo, "absence_type_id": "sick_leave", "date": "2023-05-08"},
			http.StatusUnprocessableEntity, "VALIDATION_ERROR",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var body any
			if c.body != nil {
				body = c.body
			}

			code, resp := api.do(t, c.as, c.method, c.path, body)

			assert.Equal(t, c.status, code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, c.code, resp.Error.Code)
		})
	}
}

func TestRouter_CrossCompanyAccessIsForbidden(t *testing.T) {
	api := newTestAPI(t)
	created := api.createVacation(t, "Cleo Employee", "2023-05-08", "2023-05-12")

	// Dara works for the other company
	code, _ := api.do(t, "Dara Employee", http.MethodGet, "/api/v1/absence-requests/"+created.ID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(t, "Dara Employee", http.MethodGet, "/api/v1/employees/"+api.employee("Cleo Employee")+"/balance", nil)
	assert.Equal(t, http.StatusForbidden, code)

	// employees cannot file for colleagues
	code, _ = api.do(t, "Cleo Employee", http.MethodPost, "/api/v1/absence-requests", map[string]any{
		"employee_id":     api.employee("Ben Manager"),
		"absence_type_id": api.ids.AbsenceTypeIDs[absence.CodeSickLeave],
		"start_date":      "2023-05-08",
		"end_date":        "2023-05-08",
	})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_ListRequestsScopesToRole(t *testing.T) {
	api := newTestAPI(t)
	api.createVacation(t, "Cleo Employee", "2023-05-08", "2023-05-09")
	api.createVacation(t, "Ben Manager", "2023-05-15", "2023-05-16")

	code, resp := api.do(t, "Cleo Employee", http.MethodGet, "/api/v1/absence-requests", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 1, resp.Meta.TotalItems)

	code, resp = api.do(t, "Ben Manager", http.MethodGet, "/api/v1/absence-requests?status=pending&limit=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, resp.Meta.TotalItems)
	assert.Equal(t, 1, resp.Meta.Limit)

	code, _ = api.do(t, "Ben Manager", http.MethodGet, "/api/v1/absence-requests?status=cancelled", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_DirectAbsences(t *testing.T) {
	api := newTestAPI(t)
	cleo := api.employee("Cleo Employee")
	sick := api.ids.AbsenceTypeIDs[absence.CodeSickLeave]

	// sick leave is approved on creation and produces request-bound absences
	code, resp := api.do(t, "Cleo Employee", http.MethodPost, "/api/v1/absence-requests", map[string]any{
		"absence_type_id": sick,
		"start_date":      "2023-05-01",
		"end_date":        "2023-05-01",
	})
	require.Equal(t, http.StatusCreated, code, "%+v", resp.Error)

	code, resp = api.do(t, "Ben Manager", http.MethodPost, "/api/v1/absences", map[string]any{
		"employee_id":     cleo,
		"absence_type_id": sick,
		"date":            "2023-05-03",
		"is_partial":      true,
		"start_time":      "09:00",
		"end_time":        "11:30",
	})
	require.Equal(t, http.StatusCreated, code, "%+v", resp.Error)
	var direct absence.AbsenceResponse
	require.NoError(t, json.Unmarshal(resp.Data, &direct))
	assert.Nil(t, direct.RequestID)

	code, resp = api.do(t, "Cleo Employee", http.MethodGet, "/api/v1/absences?from=2023-05-01&to=2023-05-31", nil)
	require.Equal(t, http.StatusOK, code)
	var list []absence.AbsenceResponse
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 2)
	require.NotNil(t, list[0].RequestID)

	code, resp = api.do(t, "Ben Manager", http.MethodDelete, "/api/v1/absences/"+list[0].ID, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ABSENCE_MANAGED_BY_REQUEST", resp.Error.Code)

	// employees cannot manage direct absences
	code, _ = api.do(t, "Cleo Employee", http.MethodDelete, "/api/v1/absences/"+direct.ID, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(t, "Ben Manager", http.MethodDelete, "/api/v1/absences/"+direct.ID, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(t, "Cleo Employee", http.MethodGet, "/api/v1/absences?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_WorkLogs(t *testing.T) {
	api := newTestAPI(t)

	code, resp := api.do(t, "Cleo Employee", http.MethodPost, "/api/v1/work-logs/clock-out", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, resp = api.do(t, "Cleo Employee", http.MethodPost, "/api/v1/work-logs/clock-in", map[string]any{"notes": "early start"})
	require.Equal(t, http.StatusCreated, code, "%+v", resp.Error)

	code, _ = api.do(t, "Cleo Employee", http.MethodPost, "/api/v1/work-logs/clock-in", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = api.do(t, "Cleo Employee", http.MethodPost, "/api/v1/work-logs/clock-out", nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = api.do(t, "Cleo Employee", http.MethodGet, "/api/v1/work-logs", nil)
	require.Equal(t, http.StatusOK, code)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &logs))
	assert.Len(t, logs, 1)

	// colleagues' logs need worklog.view_all
	path := fmt.Sprintf("/api/v1/work-logs?employee_id=%s", api.employee("Cleo Employee"))
	code, _ = api.do(t, "Dara Employee", http.MethodGet, path, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(t, "Ben Manager", http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_EventsStreamDecisions(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.router)
	defer srv.Close()

	created := api.createVacation(t, "Cleo Employee", "2023-05-08", "2023-05-09")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events?jwt="+api.tokens["Cleo Employee"], nil)
	require.NoError(t, err)

	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	stream := bufio.NewReader(res.Body)
	line, err := stream.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event: connected\n", line)

	code, _ := api.do(t, "Ben Manager", http.MethodPost, "/api/v1/absence-requests/"+created.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, code)

	for {
		line, err = stream.ReadString('\n')
		require.NoError(t, err)
		if line == "event: absence_request.approved\n" {
			break
		}
	}
	data, err := stream.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, "data: "))
	assert.Contains(t, data, created.ID)
}

func TestRouter_EventsRejectAnonymous(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
