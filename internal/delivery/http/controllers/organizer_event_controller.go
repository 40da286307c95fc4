package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// OrganizerEventController serves the initiator's view of their own events and of the requests to join them.
type OrganizerEventController struct {
	Logger   *slog.Logger
	Service  domain.EventService
	Requests domain.ParticipationService
}

func NewOrganizerEventController(logger *slog.Logger, svc domain.EventService, requests domain.ParticipationService) *OrganizerEventController {
	return &OrganizerEventController{
		Logger:   logger,
		Service:  svc,
		Requests: requests,
	}
}

// SubmitEvent godoc
// @Summary Submit a new event
// @Description Creates a PENDING event owned by the caller. event_date must be at least two hours ahead.
// @Tags organizer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body NewEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (user or category)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/events [post]
func (c *OrganizerEventController) SubmitEvent(w http.ResponseWriter, r *http.Request) {
	var req NewEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.SubmitEvent(r.Context(), userID, req.toDraft())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List my events
// @Description Returns the caller's events in any state, paginated.
// @Tags organizer
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/events [get]
func (c *OrganizerEventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListOrganizerEvents(r.Context(), userID, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListEventsResponse(events, params, total))
}

// GetEvent godoc
// @Summary Get one of my events
// @Tags organizer
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/events/{eventID} [get]
func (c *OrganizerEventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requirePathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetOrganizerEvent(r.Context(), userID, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update one of my events
// @Description Applies the field changes and then state_action (SEND_TO_REVIEW or CANCEL_REVIEW). Published events cannot be changed. A new event_date must be at least two hours ahead.
// @Tags organizer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/events/{eventID} [patch]
func (c *OrganizerEventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requirePathID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var action domain.OrganizerAction
	if req.StateAction != nil {
		a, err := domain.ParseOrganizerAction(*req.StateAction)
		if err != nil {
			writeServiceError(w, r, c.Logger, err)
			return
		}
		action = a
	}
	event, err := c.Service.UpdateEventByOrganizer(r.Context(), userID, eventID, req.toPatch(), action)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListRequests godoc
// @Summary List requests to join my event
// @Tags organizer
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.ListRequestsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/events/{eventID}/requests [get]
func (c *OrganizerEventController) ListRequests(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requirePathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	reqs, err := c.Requests.ListEventRequests(r.Context(), userID, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNilRequests(reqs))
}

// ModerateRequests godoc
// @Summary Confirm or reject pending requests
// @Description All listed requests must be PENDING. Confirmation stops at the participant limit; the rest of the batch and every other pending request are then rejected.
// @Tags organizer
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param body body ModerateRequestsRequest true "Request ids and decision"
// @Success 200 {object} controllers.ModerationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/events/{eventID}/requests [patch]
func (c *OrganizerEventController) ModerateRequests(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requirePathID(w, r, "eventID")
	if !ok {
		return
	}
	var req ModerateRequestsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	decision, err := domain.ParseDecision(req.Status)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	result, err := c.Requests.ModerateRequests(r.Context(), userID, eventID, req.RequestIDs, decision)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
