package controllers

import (
	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// CreateRequestRequest is the request body for POST /requests.
type CreateRequestRequest struct {
	EventID int64 `json:"event_id" validate:"required,gt=0"`
}

// Validate implements Validator.
func (c CreateRequestRequest) Validate() []string {
	return helpers.ValidateStruct(c)
}

// ModerateRequestsRequest is the request body for PATCH /organizer/events/{eventID}/requests.
type ModerateRequestsRequest struct {
	RequestIDs []int64 `json:"request_ids" validate:"required,min=1,dive,gt=0"`
	Status     string  `json:"status" validate:"required,oneof=CONFIRMED REJECTED"`
}

// Validate implements Validator.
func (m ModerateRequestsRequest) Validate() []string {
	return helpers.ValidateStruct(m)
}

// RequestSuccessResponse is the success response envelope for endpoints returning one participation request.
type RequestSuccessResponse struct {
	Data  *domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// ListRequestsSuccessResponse is the success response envelope for participation request lists.
type ListRequestsSuccessResponse struct {
	Data  []*domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// ModerationSuccessResponse is the success response envelope for PATCH /organizer/events/{eventID}/requests.
type ModerationSuccessResponse struct {
	Data  *domain.ModerationResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

func nonNilRequests(reqs []*domain.ParticipationRequest) []*domain.ParticipationRequest {
	if reqs == nil {
		return []*domain.ParticipationRequest{}
	}
	return reqs
}
