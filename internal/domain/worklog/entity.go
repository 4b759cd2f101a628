package worklog

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkLog is one clock-in/clock-out pair. ClockOut is nil while the log is open.
type WorkLog struct {
	ID         string
	EmployeeID string
	Date       time.Time
	ClockIn    time.Time
	ClockOut   *time.Time
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (w WorkLog) IsOpen() bool {
	return w.ClockOut == nil
}

// WorkedHours is the closed duration in hours rounded to two decimals.
// Open logs report zero.
func (w WorkLog) WorkedHours() decimal.Decimal {
	if w.ClockOut == nil {
		return decimal.Zero
	}
	minutes := int64(w.ClockOut.Sub(w.ClockIn) / time.Minute)
	if minutes < 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60)).Round(2)
}
