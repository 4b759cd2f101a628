package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/absence-ledger/internal/domain/absence"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/access"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
	"github.com/cmlabs-hris/absence-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absence-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AbsenceHandler interface {
	ListTypes(w http.ResponseWriter, r *http.Request)

	CreateRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	UpdateRequest(w http.ResponseWriter, r *http.Request)
	DeleteRequest(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)

	CreateAbsence(w http.ResponseWriter, r *http.Request)
	ListAbsences(w http.ResponseWriter, r *http.Request)
	DeleteAbsence(w http.ResponseWriter, r *http.Request)

	GetBalance(w http.ResponseWriter, r *http.Request)
}

type AbsenceHandlerImpl struct {
	absenceService absence.AbsenceService
	checker        access.Checker
	clock          clock.Clock
}

func NewAbsenceHandler(absenceService absence.AbsenceService, checker access.Checker, clk clock.Clock) AbsenceHandler {
	return &AbsenceHandlerImpl{
		absenceService: absenceService,
		checker:        checker,
		clock:          clk,
	}
}

// ListTypes implements AbsenceHandler.
func (h *AbsenceHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.absenceService.ListAbsenceTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]absence.AbsenceTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, absence.NewAbsenceTypeResponse(t))
	}
	response.Success(w, resp)
}

// CreateRequest implements AbsenceHandler.
func (h *AbsenceHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req absence.CreateAbsenceRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Employees file for themselves unless they name someone else
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if !h.allowed(ctx, w, h.checker.CanCreateFor, actor, req.EmployeeID) {
		return
	}

	created, err := h.absenceService.CreateRequest(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Absence request created successfully", absence.NewAbsenceRequestResponse(created))
}

// ListRequests implements AbsenceHandler.
func (h *AbsenceHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	var filter absence.AbsenceRequestFilter

	if status := query.Get("status"); status != "" {
		s := absence.RequestStatus(status)
		if !s.Valid() {
			response.BadRequest(w, "Invalid status", map[string]string{"status": "status must be pending, approved or rejected"})
			return
		}
		filter.Status = &s
	}

	if page := query.Get("page"); page != "" {
		p, err := strconv.Atoi(page)
		if err != nil || p < 1 {
			response.BadRequest(w, "Invalid page", map[string]string{"page": "page must be a positive integer"})
			return
		}
		filter.Page = p
	}

	if limit := query.Get("limit"); limit != "" {
		l, err := strconv.Atoi(limit)
		if err != nil || l < 1 || l > 100 {
			response.BadRequest(w, "Invalid limit", map[string]string{"limit": "limit must be between 1 and 100"})
			return
		}
		filter.Limit = l
	}

	switch employeeID := query.Get("employee_id"); {
	case employeeID != "":
		if !validEmployeeFilter(w, employeeID) {
			return
		}
		if !h.allowed(ctx, w, h.checker.CanView, actor, employeeID) {
			return
		}
		filter.EmployeeID = &employeeID
	case user.HasPermission(actor.Role, user.PermissionAbsenceViewAll):
		filter.CompanyID = &actor.CompanyID
	default:
		filter.EmployeeID = &actor.EmployeeID
	}

	result, err := h.absenceService.ListRequests(ctx, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Requests, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: int(math.Ceil(float64(result.TotalCount) / float64(result.Limit))),
	})
}

// GetRequest implements AbsenceHandler.
func (h *AbsenceHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	req, ok := h.loadRequest(w, r, h.checker.CanView, actor)
	if !ok {
		return
	}

	response.Success(w, absence.NewAbsenceRequestResponse(req))
}

// UpdateRequest implements AbsenceHandler.
func (h *AbsenceHandlerImpl) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req absence.UpdateAbsenceRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	existing, ok := h.loadRequest(w, r, h.checker.CanCreateFor, actor)
	if !ok {
		return
	}
	req.ID = existing.ID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := h.absenceService.UpdateRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence request updated successfully", absence.NewAbsenceRequestResponse(updated))
}

// DeleteRequest implements AbsenceHandler.
func (h *AbsenceHandlerImpl) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	existing, ok := h.loadRequest(w, r, h.checker.CanCreateFor, actor)
	if !ok {
		return
	}

	if err := h.absenceService.DeleteRequest(r.Context(), existing.ID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence request deleted successfully", nil)
}

// ApproveRequest implements AbsenceHandler.
func (h *AbsenceHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	existing, ok := h.loadRequest(w, r, h.checker.CanReview, actor)
	if !ok {
		return
	}

	approved, err := h.absenceService.ApproveRequest(r.Context(), existing.ID, actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence request approved successfully", absence.NewAbsenceRequestResponse(approved))
}

// RejectRequest implements AbsenceHandler.
func (h *AbsenceHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req absence.RejectAbsenceRequestRequest
	// An empty body rejects with the default reason
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("RejectRequest decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	existing, ok := h.loadRequest(w, r, h.checker.CanReview, actor)
	if !ok {
		return
	}
	req.RequestID = existing.ID
	req.ReviewerID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	rejected, err := h.absenceService.RejectRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence request rejected successfully", absence.NewAbsenceRequestResponse(rejected))
}

// CreateAbsence records a direct absence without a request.
func (h *AbsenceHandlerImpl) CreateAbsence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req absence.CreateDirectAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateAbsence decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if !h.allowed(ctx, w, h.checker.CanManageDirect, actor, req.EmployeeID) {
		return
	}

	created, err := h.absenceService.CreateDirectAbsence(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Absence recorded successfully", absence.NewAbsenceResponse(created))
}

// ListAbsences implements AbsenceHandler.
func (h *AbsenceHandlerImpl) ListAbsences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := absence.AbsenceFilter{EmployeeID: query.Get("employee_id")}
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

	if !h.allowed(ctx, w, h.checker.CanView, actor, filter.EmployeeID) {
		return
	}

	absences, err := h.absenceService.ListAbsences(ctx, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := make([]absence.AbsenceResponse, 0, len(absences))
	for _, a := range absences {
		resp = append(resp, absence.NewAbsenceResponse(a))
	}
	response.Success(w, resp)
}

// DeleteAbsence removes a direct absence. Request-bound absences are refused
// by the service.
func (h *AbsenceHandlerImpl) DeleteAbsence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	absenceID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(absenceID) {
		response.HandleError(w, absence.ErrAbsenceNotFound)
		return
	}

	existing, err := h.absenceService.GetAbsence(ctx, absenceID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !h.allowed(ctx, w, h.checker.CanManageDirect, actor, existing.EmployeeID) {
		return
	}

	if err := h.absenceService.DeleteDirectAbsence(ctx, existing.ID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence deleted successfully", nil)
}

// GetBalance implements AbsenceHandler.
func (h *AbsenceHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(employeeID) {
		response.HandleError(w, employee.ErrEmployeeNotFound)
		return
	}

	year := h.clock.Now().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil || parsed < 1900 || parsed > 9999 {
			response.BadRequest(w, "Invalid year", map[string]string{"year": "year must be a four-digit number"})
			return
		}
		year = parsed
	}

	if !h.allowed(ctx, w, h.checker.CanView, actor, employeeID) {
		return
	}

	balance, err := h.absenceService.GetBalance(ctx, employeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balance)
}

type capability func(ctx context.Context, actor access.Actor, employeeID string) (bool, error)

func (h *AbsenceHandlerImpl) actor(w http.ResponseWriter, r *http.Request) (access.Actor, bool) {
	return actorFromRequest(w, r)
}

func (h *AbsenceHandlerImpl) allowed(ctx context.Context, w http.ResponseWriter, can capability, actor access.Actor, employeeID string) bool {
	return checkCapability(ctx, w, can, actor, employeeID)
}

// loadRequest fetches the request named by the {id} URL param and checks
// the actor's capability against its owner.
func (h *AbsenceHandlerImpl) loadRequest(w http.ResponseWriter, r *http.Request, can capability, actor access.Actor) (absence.AbsenceRequest, bool) {
	ctx := r.Context()

	requestID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(requestID) {
		response.HandleError(w, absence.ErrAbsenceRequestNotFound)
		return absence.AbsenceRequest{}, false
	}

	req, err := h.absenceService.GetRequest(ctx, requestID)
	if err != nil {
		response.HandleError(w, err)
		return absence.AbsenceRequest{}, false
	}

	if !h.allowed(ctx, w, can, actor, req.EmployeeID) {
		return absence.AbsenceRequest{}, false
	}
	return req, true
}

func actorFromRequest(w http.ResponseWriter, r *http.Request) (access.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Failed to extract claims from context")
	}
	return actor, ok
}

func checkCapability(ctx context.Context, w http.ResponseWriter, can capability, actor access.Actor, employeeID string) bool {
	ok, err := can(ctx, actor, employeeID)
	if err != nil {
		response.HandleError(w, err)
		return false
	}
	if !ok {
		response.HandleError(w, access.ErrForbidden)
		return false
	}
	return true
}

// validEmployeeFilter rejects an employee_id query value that cannot name an employee.
func validEmployeeFilter(w http.ResponseWriter, employeeID string) bool {
	if validator.IsValidUUID(employeeID) {
		return true
	}
	response.BadRequest(w, "Invalid employee_id", map[string]string{"employee_id": "employee_id must be a valid UUID"})
	return false
}

func parseDateRange(w http.ResponseWriter, fromStr, toStr string) (*time.Time, *time.Time, bool) {
	var from, to *time.Time
	details := map[string]string{}

	if fromStr != "" {
		d, ok := validator.IsValidDate(fromStr)
		if !ok {
			details["from"] = "from must be in YYYY-MM-DD format"
		} else {
			from = &d
		}
	}
	if toStr != "" {
		d, ok := validator.IsValidDate(toStr)
		if !ok {
			details["to"] = "to must be in YYYY-MM-DD format"
		} else {
			to = &d
		}
	}

	if len(details) > 0 {
		response.BadRequest(w, "Invalid date filter", details)
		return nil, nil, false
	}
	return from, to, true
}
