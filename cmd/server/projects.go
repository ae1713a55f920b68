package main

import (
	"net/http"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Simplici0/fabestimate/internal/estimate"
	"github.com/Simplici0/fabestimate/internal/store"
)

type projectEstimateView struct {
	Project store.Project    `json:"project"`
	Result  *estimate.Result `json:"result"`
}

type saveEstimateRequest struct {
	Version  int64            `json:"version"`
	Estimate estimate.Request `json:"estimate"`
}

type saveEstimateResponse struct {
	Version int64           `json:"version"`
	Status  string          `json:"status"`
	Result  estimate.Result `json:"result"`
}

func (s *server) handleProjectsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	projects, err := s.store.ListProjects(r.Context(), query)
	if err != nil {
		s.serverError(w, "failed to load projects", err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// loadProject resolves {id}; on failure a response has been written.
func (s *server) loadProject(w http.ResponseWriter, r *http.Request) (store.Project, bool) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return store.Project{}, false
	}

	p, err := s.store.Project(r.Context(), id)
	if err != nil {
		if eris.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return store.Project{}, false
		}
		s.serverError(w, "failed to load project", err)
		return store.Project{}, false
	}
	return p, true
}

// handleProjectEstimate returns the project with its saved estimate
// recomputed against the current settings. Result is null when nothing has
// been saved yet.
func (s *server) handleProjectEstimate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	view := projectEstimateView{Project: p}
	if p.Estimate != nil {
		res, ok := s.compute(w, r, *p.Estimate)
		if !ok {
			return
		}
		view.Result = &res
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *server) handleProjectEstimateSave(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var body saveEstimateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		http.Error(w, "invalid estimate payload", http.StatusBadRequest)
		return
	}

	// Validate before persisting so a bad estimate never reaches the row.
	res, ok := s.compute(w, r, body.Estimate)
	if !ok {
		return
	}

	version, err := s.store.SaveEstimate(r.Context(), id, body.Estimate, body.Version)
	if err != nil {
		switch {
		case eris.Is(err, store.ErrNotFound):
			http.NotFound(w, r)
		case eris.Is(err, store.ErrVersionConflict):
			http.Error(w, "estimate was modified by someone else; reload and retry", http.StatusConflict)
		default:
			s.serverError(w, "failed to save estimate", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, saveEstimateResponse{
		Version: version,
		Status:  store.StatusEstimateUpdated,
		Result:  res,
	})
}

func (s *server) handleProjectDocument(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	if p.Estimate == nil {
		http.Error(w, "project has no saved estimate", http.StatusNotFound)
		return
	}

	res, ok := s.compute(w, r, *p.Estimate)
	if !ok {
		return
	}
	s.writeDocument(w, r, p.ClientName, res)
}
