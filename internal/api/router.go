package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers all routes.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.metricsMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	if s.hub != nil {
		r.HandleFunc("/ws/simulations", s.hub.ServeWS).Methods(http.MethodGet)
	}

	a := r.PathPrefix("/api").Subrouter()

	a.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	a.HandleFunc("/simulate", s.handleSimulate).Methods(http.MethodPost)

	a.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	a.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	a.HandleFunc("/projects/{id}", s.handleGetProject).Methods(http.MethodGet)
	a.HandleFunc("/projects/{id}/simulations", s.handleProjectSimulations).Methods(http.MethodGet)
	a.HandleFunc("/projects/{id}/report", s.handleProjectReport).Methods(http.MethodGet)
	a.HandleFunc("/projects/{id}/report.csv", s.handleProjectReportCSV).Methods(http.MethodGet)

	a.HandleFunc("/technologies", s.handleListTechnologies).Methods(http.MethodGet)
	a.HandleFunc("/technologies/{id}", s.handleGetTechnology).Methods(http.MethodGet)
	a.HandleFunc("/technologies/{id}/impact", s.handleTechnologyImpact).Methods(http.MethodGet)
	a.HandleFunc("/featured", s.handleFeatured).Methods(http.MethodGet)

	a.HandleFunc("/providers/technologies", s.handleSubmitTechnology).Methods(http.MethodPost)
	a.HandleFunc("/admin/approve-tech", s.handleApproveTechnology).Methods(http.MethodPost)
	a.HandleFunc("/admin/featured", s.handleScheduleFeatured).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	return r
}
