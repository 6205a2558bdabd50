package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Timeline
	r.HandleFunc("/api/timeline", deps.TimelineHandler.GetTimeline).Queries("from", "{from}", "to", "{to}").Methods("GET")

	// Timeline events
	r.HandleFunc("/api/timeline/event", deps.TimelineHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/timeline/event", deps.TimelineHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/timeline/event/import", deps.TimelineHandler.ImportEvents).Methods("POST")
	r.HandleFunc("/api/timeline/event/{eventUid}", deps.TimelineHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/timeline/event/{eventUid}", deps.TimelineHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/timeline/event/{eventUid}", deps.TimelineHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/timeline/import-from-google", deps.GoogleHandler.ImportFromGoogle).Methods("POST")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")

	// Google integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
	r.HandleFunc("/api/integrations/google/calendars", deps.GoogleHandler.ListCalendars).Methods("GET")
}
