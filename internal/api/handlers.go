package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"inara-impact/internal/auth"
	"inara-impact/internal/decision"
	"inara-impact/internal/domain"
	"inara-impact/internal/projects"
	"inara-impact/internal/reporting"
	"inara-impact/internal/simulation"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

type registerResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.auth.Register(r.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, registerResponse{ID: u.ID, Email: u.Email, Role: u.Role})
}

// simulationResponse is a persisted simulation with its decision gate outcome.
type simulationResponse struct {
	*domain.SimulationRecord
	Decision *decision.DecisionResult `json:"decision"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulation.Request
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.runner.Run(r.Context(), auth.PrincipalFrom(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d := s.evaluator.Evaluate(decision.InputFromRecord(rec))
	s.metrics.RecordDecision(string(d.Decision))
	s.writeJSON(w, http.StatusOK, simulationResponse{SimulationRecord: rec, Decision: d})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projects.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.projects.Create(r.Context(), auth.PrincipalFrom(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := s.projects.List(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ps == nil {
		ps = []*domain.Project{}
	}
	s.writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), auth.PrincipalFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProjectSimulations(w http.ResponseWriter, r *http.Request) {
	sims, err := s.projects.Simulations(r.Context(), auth.PrincipalFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sims == nil {
		sims = []*domain.SimulationRecord{}
	}
	s.writeJSON(w, http.StatusOK, sims)
}

// projectReport authorizes the caller on the project, then generates its report.
func (s *Server) projectReport(r *http.Request) (*reporting.Report, error) {
	id := mux.Vars(r)["id"]
	if _, err := s.projects.Simulations(r.Context(), auth.PrincipalFrom(r.Context()), id); err != nil {
		return nil, err
	}
	return s.reports.Generate(r.Context(), id)
}

func (s *Server) handleProjectReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.projectReport(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body := reporting.RenderMarkdown(report)
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleProjectReportCSV(w http.ResponseWriter, r *http.Request) {
	report, err := s.projectReport(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body := reporting.RenderCSV(report.Simulations)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.csv"`, report.Project.ID))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleListTechnologies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	techs, err := s.catalog.List(r.Context(), q.Get("category"), q.Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if techs == nil {
		techs = []*domain.Technology{}
	}
	s.writeJSON(w, http.StatusOK, techs)
}

func (s *Server) handleGetTechnology(w http.ResponseWriter, r *http.Request) {
	t, err := s.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTechnologyImpact(w http.ResponseWriter, r *http.Request) {
	t, err := s.catalog.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.impact.SummaryByTechnology(r.Context(), t.ID)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("impact summary: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	t, err := s.catalog.Featured(r.Context(), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

// submitTechnologyRequest is a technology plus the ids of its vendors.
type submitTechnologyRequest struct {
	domain.Technology
	VendorIDs []string `json:"vendors"`
}

func (s *Server) handleSubmitTechnology(w http.ResponseWriter, r *http.Request) {
	var req submitTechnologyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.catalog.Submit(r.Context(), auth.PrincipalFrom(r.Context()), &req.Technology, req.VendorIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, t)
}

type approveRequest struct {
	TechnologyID string `json:"technologyId"`
}

func (s *Server) handleApproveTechnology(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.catalog.Approve(r.Context(), auth.PrincipalFrom(r.Context()), req.TechnologyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

type scheduleFeaturedRequest struct {
	TechnologyID string    `json:"technologyId"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
}

func (s *Server) handleScheduleFeatured(w http.ResponseWriter, r *http.Request) {
	var req scheduleFeaturedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	rot, err := s.catalog.ScheduleFeatured(r.Context(), auth.PrincipalFrom(r.Context()), req.TechnologyID, req.StartDate, req.EndDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, rot)
}
