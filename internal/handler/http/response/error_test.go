package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/access"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/worklog"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{validator.ValidationErrors{{Field: "start_date", Message: "bad"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{absence.ErrNoticePeriodViolation, http.StatusUnprocessableEntity, "NOTICE_PERIOD_VIOLATION"},
		{absence.ErrConsecutiveDaysViolation, http.StatusUnprocessableEntity, "CONSECUTIVE_DAYS_VIOLATION"},
		{fmt.Errorf("approve: %w", absence.ErrInsufficientBalance), http.StatusUnprocessableEntity, "INSUFFICIENT_BALANCE"},
		{absence.ErrEmptyAbsenceRange, http.StatusUnprocessableEntity, "EMPTY_ABSENCE_RANGE"},
		{employee.ErrEmployeeInactive, http.StatusUnprocessableEntity, "EMPLOYEE_INACTIVE"},
		{absence.ErrInvalidStateTransition, http.StatusConflict, "INVALID_STATE_TRANSITION"},
		{absence.ErrAbsenceManagedByRequest, http.StatusConflict, "ABSENCE_MANAGED_BY_REQUEST"},
		{worklog.ErrAlreadyClockedIn, http.StatusConflict, "CONFLICT"},
		{absence.ErrAbsenceRequestNotFound, http.StatusNotFound, "NOT_FOUND"},
		{employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{access.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, c := range cases {
		t.Run(c.code, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleError(w, c.err)

			assert.Equal(t, c.status, w.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, c.code, resp.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, validator.ValidationErrors{
		{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"},
	})

	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "start_date must be in YYYY-MM-DD format", resp.Error.Details["start_date"])
}
