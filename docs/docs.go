// Package docs holds the OpenAPI 2.0 document served under /swagger/.
// Keep it in step with the godoc annotations on the controllers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/admin/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Search events in any state",
                "description": "Events filtered by initiator, state, category and event date, ordered by id, with view counts.",
                "parameters": [
                    {"type": "array", "items": {"type": "integer"}, "collectionFormat": "csv", "description": "Initiator ids", "name": "users", "in": "query"},
                    {"type": "array", "items": {"type": "string", "enum": ["PENDING", "PUBLISHED", "CANCELED"]}, "collectionFormat": "csv", "description": "Event states", "name": "states", "in": "query"},
                    {"type": "array", "items": {"type": "integer"}, "collectionFormat": "csv", "description": "Category ids", "name": "categories", "in": "query"},
                    {"type": "string", "description": "Earliest event date, yyyy-MM-dd HH:mm:ss (UTC) or RFC 3339", "name": "rangeStart", "in": "query"},
                    {"type": "string", "description": "Latest event date, yyyy-MM-dd HH:mm:ss (UTC) or RFC 3339", "name": "rangeEnd", "in": "query"},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.ListEventsSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "500": {"description": "error.code: internal_error", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/admin/events/{eventID}": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Edit, publish or reject an event",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "eventID", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.EventSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: forbidden", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List published events",
                "description": "Published events with view counts. Without rangeStart or rangeEnd only future events are listed.",
                "parameters": [
                    {"type": "string", "description": "Case-insensitive match on title, annotation or description", "name": "text", "in": "query"},
                    {"type": "array", "items": {"type": "integer"}, "collectionFormat": "csv", "description": "Category ids", "name": "categories", "in": "query"},
                    {"type": "boolean", "description": "Only paid or only free events", "name": "paid", "in": "query"},
                    {"type": "string", "description": "Earliest event date, yyyy-MM-dd HH:mm:ss (UTC) or RFC 3339", "name": "rangeStart", "in": "query"},
                    {"type": "string", "description": "Latest event date, yyyy-MM-dd HH:mm:ss (UTC) or RFC 3339", "name": "rangeEnd", "in": "query"},
                    {"type": "boolean", "description": "Hide events whose participant limit is reached", "name": "onlyAvailable", "in": "query"},
                    {"enum": ["EVENT_DATE", "VIEWS"], "type": "string", "description": "EVENT_DATE (default) or VIEWS", "name": "sort", "in": "query"},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.ListEventsSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{eventID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get a published event",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.EventSuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/organizer/events": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["organizer"],
                "summary": "List my events",
                "parameters": [
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.ListEventsSuccessResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["organizer"],
                "summary": "Submit a new event",
                "parameters": [
                    {"description": "Event data", "name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.NewEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "data contains the created event", "schema": {"$ref": "#/definitions/controllers.EventSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found (user or category)", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/organizer/events/{eventID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["organizer"],
                "summary": "Get one of my events",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.EventSuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["organizer"],
                "summary": "Update one of my events",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "eventID", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.EventSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/organizer/events/{eventID}/requests": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["organizer"],
                "summary": "List requests to join my event",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "eventID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.ListRequestsSuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["organizer"],
                "summary": "Confirm or reject pending requests",
                "parameters": [
                    {"type": "integer", "description": "Event ID", "name": "eventID", "in": "path", "required": true},
                    {"description": "Request ids and decision", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.ModerateRequestsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.ModerationSuccessResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/requests": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "List my participation requests",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.ListRequestsSuccessResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Ask to take part in an event",
                "parameters": [
                    {"description": "Event to join", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateRequestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.RequestSuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: conflict", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/requests/{requestID}/cancel": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["requests"],
                "summary": "Cancel my participation request",
                "parameters": [
                    {"type": "integer", "description": "Request ID", "name": "requestID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RequestSuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.CreateRequestRequest": {
            "type": "object",
            "required": ["event_id"],
            "properties": {"event_id": {"type": "integer"}}
        },
        "controllers.EventSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.Event"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.ListEventsResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/domain.Event"}},
                "pagination": {"$ref": "#/definitions/helpers.PaginationMeta"}
            }
        },
        "controllers.ListEventsSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/controllers.ListEventsResponse"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.ListRequestsSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/domain.ParticipationRequest"}},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.LocationRequest": {
            "type": "object",
            "required": ["lat", "lon"],
            "properties": {
                "lat": {"type": "number", "maximum": 90, "minimum": -90},
                "lon": {"type": "number", "maximum": 180, "minimum": -180}
            }
        },
        "controllers.ModerateRequestsRequest": {
            "type": "object",
            "required": ["request_ids", "status"],
            "properties": {
                "request_ids": {"type": "array", "minItems": 1, "items": {"type": "integer"}},
                "status": {"type": "string", "enum": ["CONFIRMED", "REJECTED"]}
            }
        },
        "controllers.ModerationSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.ModerationResult"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.NewEventRequest": {
            "type": "object",
            "required": ["annotation", "category_id", "description", "event_date", "location", "title"],
            "properties": {
                "annotation": {"type": "string", "maxLength": 2000, "minLength": 20},
                "category_id": {"type": "integer"},
                "description": {"type": "string", "maxLength": 7000, "minLength": 20},
                "event_date": {"type": "string"},
                "location": {"$ref": "#/definitions/controllers.LocationRequest"},
                "paid": {"type": "boolean"},
                "participant_limit": {"type": "integer", "minimum": 0},
                "request_moderation": {"type": "boolean"},
                "title": {"type": "string", "maxLength": 120, "minLength": 3}
            }
        },
        "controllers.RequestSuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.ParticipationRequest"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "controllers.UpdateEventRequest": {
            "type": "object",
            "properties": {
                "annotation": {"type": "string", "maxLength": 2000, "minLength": 20},
                "category_id": {"type": "integer"},
                "description": {"type": "string", "maxLength": 7000, "minLength": 20},
                "event_date": {"type": "string"},
                "location": {"$ref": "#/definitions/controllers.LocationRequest"},
                "paid": {"type": "boolean"},
                "participant_limit": {"type": "integer", "minimum": 0},
                "request_moderation": {"type": "boolean"},
                "state_action": {"type": "string"},
                "title": {"type": "string", "maxLength": 120, "minLength": 3}
            }
        },
        "domain.Event": {
            "type": "object",
            "properties": {
                "annotation": {"type": "string"},
                "category_id": {"type": "integer"},
                "confirmed_requests": {"type": "integer"},
                "created_on": {"type": "string"},
                "description": {"type": "string"},
                "event_date": {"type": "string"},
                "id": {"type": "integer"},
                "initiator_id": {"type": "integer"},
                "location": {"$ref": "#/definitions/domain.Location"},
                "paid": {"type": "boolean"},
                "participant_limit": {"type": "integer"},
                "published_on": {"type": "string"},
                "request_moderation": {"type": "boolean"},
                "state": {"type": "string", "enum": ["PENDING", "PUBLISHED", "CANCELED"]},
                "title": {"type": "string"},
                "views": {"type": "integer"}
            }
        },
        "domain.Location": {
            "type": "object",
            "properties": {"lat": {"type": "number"}, "lon": {"type": "number"}}
        },
        "domain.ModerationResult": {
            "type": "object",
            "properties": {
                "confirmed_requests": {"type": "array", "items": {"$ref": "#/definitions/domain.ParticipationRequest"}},
                "rejected_requests": {"type": "array", "items": {"$ref": "#/definitions/domain.ParticipationRequest"}}
            }
        },
        "domain.ParticipationRequest": {
            "type": "object",
            "properties": {
                "created": {"type": "string"},
                "event": {"type": "integer"},
                "id": {"type": "integer"},
                "requester": {"type": "integer"},
                "status": {"type": "string", "enum": ["PENDING", "CONFIRMED", "REJECTED", "CANCELED"]}
            }
        },
        "helpers.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {"data": {}, "error": {"$ref": "#/definitions/helpers.APIError"}}
        },
        "helpers.PaginationMeta": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Eventhub API",
	Description:      "Event publication and participation requests.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
