package http

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterDeps holds everything NewRouter needs to build the application routes.
type RouterDeps struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	AllowedOrigins []string
	Organizer      *controllers.OrganizerEventController
	Admin          *controllers.AdminEventController
	Public         *controllers.PublicEventController
	Requests       *controllers.RequestController
}

// NewRouter initializes the HTTP router with all application routes, wrapped in
// CORS, request id and access logging middleware.
func NewRouter(d RouterDeps) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleAdmin)(next))
	}

	// Organizer
	mux.HandleFunc("POST /organizer/events", auth(d.Organizer.SubmitEvent))
	mux.HandleFunc("GET /organizer/events", auth(d.Organizer.ListEvents))
	mux.HandleFunc("GET /organizer/events/{eventID}", auth(d.Organizer.GetEvent))
	mux.HandleFunc("PATCH /organizer/events/{eventID}", auth(d.Organizer.UpdateEvent))
	mux.HandleFunc("GET /organizer/events/{eventID}/requests", auth(d.Organizer.ListRequests))
	mux.HandleFunc("PATCH /organizer/events/{eventID}/requests", auth(d.Organizer.ModerateRequests))

	// Participation requests
	mux.HandleFunc("POST /requests", auth(d.Requests.CreateRequest))
	mux.HandleFunc("GET /requests", auth(d.Requests.ListRequests))
	mux.HandleFunc("PATCH /requests/{requestID}/cancel", auth(d.Requests.CancelRequest))

	// Admin
	mux.HandleFunc("GET /admin/events", admin(d.Admin.SearchEvents))
	mux.HandleFunc("PATCH /admin/events/{eventID}", admin(d.Admin.UpdateEvent))

	// Public
	mux.HandleFunc("GET /events", d.Public.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", d.Public.GetEvent)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var h http.Handler = mux
	h = middleware.LoggingMiddleware(d.Logger, h)
	h = middleware.RequestID(h)
	h = middleware.CORS(d.AllowedOrigins, h)
	return h
}
