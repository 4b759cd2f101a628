package worklog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkedHours(t *testing.T) {
	in := time.Date(2023, 5, 8, 9, 0, 0, 0, time.UTC)

	open := WorkLog{ClockIn: in}
	assert.True(t, open.IsOpen())
	assert.True(t, open.WorkedHours().IsZero())

	out := in.Add(7*time.Hour + 45*time.Minute)
	closed := WorkLog{ClockIn: in, ClockOut: &out}
	assert.False(t, closed.IsOpen())
	assert.Equal(t, "7.75", closed.WorkedHours().StringFixed(2))

	odd := in.Add(20 * time.Minute)
	closed.ClockOut = &odd
	assert.Equal(t, "0.33", closed.WorkedHours().StringFixed(2))
}

func TestNewWorkLogResponse(t *testing.T) {
	in := time.Date(2023, 5, 8, 9, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)

	resp := NewWorkLogResponse(WorkLog{ID: "log-1", EmployeeID: "emp-1", Date: in, ClockIn: in, ClockOut: &out})

	assert.Equal(t, "2023-05-08", resp.Date)
	assert.Equal(t, "8.00", resp.WorkedHours)
}

func TestWorkLogFilterValidate(t *testing.T) {
	from := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, WorkLogFilter{From: &from, To: &to}.Validate(), ErrInvalidDateFilter)
	assert.NoError(t, WorkLogFilter{From: &to, To: &from}.Validate())
	assert.NoError(t, WorkLogFilter{}.Validate())
}
