package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// AdminEventController serves event moderation for callers with the admin role.
type AdminEventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewAdminEventController(logger *slog.Logger, svc domain.EventService) *AdminEventController {
	return &AdminEventController{Logger: logger, Service: svc}
}

// SearchEvents godoc
// @Summary Search events in any state
// @Description Events filtered by initiator, state, category and event date, ordered by id, with view counts.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param users query []int false "Initiator ids" collectionFormat(csv)
// @Param states query []string false "Event states" collectionFormat(csv) Enums(PENDING, PUBLISHED, CANCELED)
// @Param categories query []int false "Category ids" collectionFormat(csv)
// @Param rangeStart query string false "Earliest event date, yyyy-MM-dd HH:mm:ss (UTC) or RFC 3339"
// @Param rangeEnd query string false "Latest event date, yyyy-MM-dd HH:mm:ss (UTC) or RFC 3339"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [get]
func (c *AdminEventController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAdminFilter(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.SearchEventsForAdmin(r.Context(), filter, params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListEventsResponse(events, params, total))
}

// UpdateEvent godoc
// @Summary Edit, publish or reject an event
// @Description Applies the field changes and then state_action (PUBLISH_EVENT or REJECT_EVENT). A new event_date must be at least one hour ahead. Publishing requires a PENDING event starting at least one hour from now.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [patch]
func (c *AdminEventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requirePathID(w, r, "eventID")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	var action domain.AdminAction
	if req.StateAction != nil {
		a, err := domain.ParseAdminAction(*req.StateAction)
		if err != nil {
			writeServiceError(w, r, c.Logger, err)
			return
		}
		action = a
	}
	event, err := c.Service.UpdateEventByAdmin(r.Context(), eventID, req.toPatch(), action)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
