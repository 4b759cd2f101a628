package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/access"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/worklog"
	"github.com/cmlabs-hris/absence-ledger/internal/handler/http/response"
)

type WorkLogHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type WorkLogHandlerImpl struct {
	workLogService worklog.WorkLogService
	checker        access.Checker
}

func NewWorkLogHandler(workLogService worklog.WorkLogService, checker access.Checker) WorkLogHandler {
	return &WorkLogHandlerImpl{
		workLogService: workLogService,
		checker:        checker,
	}
}

// ClockIn implements WorkLogHandler.
func (h *WorkLogHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req worklog.ClockInRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("ClockIn decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	req.EmployeeID = actor.EmployeeID

	entry, err := h.workLogService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clocked in successfully", worklog.NewWorkLogResponse(entry))
}

// ClockOut implements WorkLogHandler.
func (h *WorkLogHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	entry, err := h.workLogService.ClockOut(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clocked out successfully", worklog.NewWorkLogResponse(entry))
}

// List implements WorkLogHandler.
func (h *WorkLogHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := worklog.WorkLogFilter{EmployeeID: query.Get("employee_id")}
	if filter.EmployeeID == "" {
		filter.EmployeeID = actor.EmployeeID
	} else if !validEmployeeFilter(w, filter.EmployeeID) {
		return
	}

	from, to, ok := parseDateRange(w, query.Get("from"), query.Get("to"))
	if !ok {
		return
	}
	filter.From, filter.To = from, to

	if filter.EmployeeID != actor.EmployeeID {
		if !user.HasPermission(actor.Role, user.PermissionWorkLogViewAll) {
			response.HandleError(w, access.ErrForbidden)
			return
		}
		if !checkCapability(ctx, w, h.checker.CanView, actor, filter.EmployeeID) {
			return
		}
	}

	logs, err := h.workLogService.List(ctx, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]worklog.WorkLogResponse, 0, len(logs))
	for _, l := range logs {
		resp = append(resp, worklog.NewWorkLogResponse(l))
	}
	response.Success(w, resp)
}
