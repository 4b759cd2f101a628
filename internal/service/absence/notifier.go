package absence

import (
	"context"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/sse"
)

type nopNotifier struct{}

func (nopNotifier) RequestDecided(context.Context, absence.AbsenceRequest) {}

// HubNotifier streams request decisions to the requesting employee.
type HubNotifier struct {
	hub *sse.Hub
}

func NewHubNotifier(hub *sse.Hub) absence.Notifier {
	return &HubNotifier{hub: hub}
}

// RequestDecided implements absence.Notifier.
func (n *HubNotifier) RequestDecided(_ context.Context, req absence.AbsenceRequest) {
	n.hub.Publish(sse.Event{
		EmployeeID: req.EmployeeID,
		Event:      "absence_request." + string(req.Status),
		Data:       absence.NewAbsenceRequestResponse(req),
	})
}
