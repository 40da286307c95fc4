package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// PublicEventController serves published events to anonymous callers. Every read counts as a view.
type PublicEventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewPublicEventController(logger *slog.Logger, svc domain.EventService) *PublicEventController {
	return &PublicEventController{Logger: logger, Service: svc}
}

// ListEvents godoc
// @Summary List published events
// @Description Published events with view counts. Without rangeStart or rangeEnd only future events are listed.
// @Tags events
// @Produce json
// @Param text query string false "Case-insensitive match on title, annotation or description"
// @Param categories query []int false "Category ids" collectionFormat(csv)
// @Param paid query bool false "Only paid or only free events"
// @Param rangeStart query string false "Earliest event date, yyyy-MM-dd HH:mm:ss (UTC) or RFC 3339"
// @Param rangeEnd query string false "Latest event date, yyyy-MM-dd HH:mm:ss (UTC) or RFC 3339"
// @Param onlyAvailable query bool false "Hide events whose participant limit is reached"
// @Param sort query string false "EVENT_DATE (default) or VIEWS" Enums(EVENT_DATE, VIEWS)
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *PublicEventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePublicFilter(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListPublishedEvents(r.Context(), filter, params, helpers.ClientAddr(r))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListEventsResponse(events, params, total))
}

// GetEvent godoc
// @Summary Get a published event
// @Tags events
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *PublicEventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requirePathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetPublishedEvent(r.Context(), eventID, helpers.ClientAddr(r))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
