package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/capacity-planner/internal/server/middleware"
)

// parseWeeksAhead reads ?weeks_ahead=N. Absent means the server default; values must be
// positive integers.
func (s *Server) parseWeeksAhead(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("weeks_ahead")
	if raw == "" {
		return s.weeksAhead, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrValidation{Field: "weeks_ahead", Message: "must be an integer"}
	}
	if n <= 0 {
		return 0, &ErrValidation{Field: "weeks_ahead", Message: "must be a positive integer"}
	}
	return n, nil
}

// fail logs unexpected errors and writes the mapped status.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

func (s *Server) forecast(w http.ResponseWriter, r *http.Request, projectID string) {
	weeks, err := s.parseWeeksAhead(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.engine.ForecastBottlenecks(r.Context(), projectID, weeks, middleware.CallerID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handlePortfolioForecast forecasts across every project
func (s *Server) handlePortfolioForecast(w http.ResponseWriter, r *http.Request) {
	s.forecast(w, r, "")
}

// handleProjectForecast forecasts one project
func (s *Server) handleProjectForecast(w http.ResponseWriter, r *http.Request) {
	s.forecast(w, r, r.PathValue("id"))
}

// handleProjectWorkloads returns the weekly series per resource
func (s *Server) handleProjectWorkloads(w http.ResponseWriter, r *http.Request) {
	weeks, err := s.parseWeeksAhead(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	workloads, err := s.engine.Workloads(r.Context(), r.PathValue("id"), weeks)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, workloads)
}

// handleTaskMatches ranks active resources for a task
func (s *Server) handleTaskMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.engine.MatchResourcesToTask(r.Context(), r.PathValue("task_id"), r.PathValue("schedule_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, matches)
}
