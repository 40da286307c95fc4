package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// RequestController serves the caller's own participation requests.
type RequestController struct {
	Logger  *slog.Logger
	Service domain.ParticipationService
}

func NewRequestController(logger *slog.Logger, svc domain.ParticipationService) *RequestController {
	return &RequestController{Logger: logger, Service: svc}
}

// CreateRequest godoc
// @Summary Ask to take part in an event
// @Description The request is CONFIRMED at once when the event has no limit or no moderation, PENDING otherwise.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRequestRequest true "Event to join"
// @Success 201 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests [post]
func (c *RequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	pr, err := c.Service.CreateRequest(r.Context(), userID, req.EventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, pr)
}

// ListRequests godoc
// @Summary List my participation requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListRequestsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests [get]
func (c *RequestController) ListRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	reqs, err := c.Service.ListMyRequests(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNilRequests(reqs))
}

// CancelRequest godoc
// @Summary Cancel my participation request
// @Description Canceling a CONFIRMED request frees its slot. Canceling twice returns the canceled request.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param requestID path int true "Request ID"
// @Success 200 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /requests/{requestID}/cancel [patch]
func (c *RequestController) CancelRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := requirePathID(w, r, "requestID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	pr, err := c.Service.CancelRequest(r.Context(), userID, requestID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, pr)
}
