package http

import (
	"net/http"

	"tradebook/internal/core"
)

type addSetupRequest struct {
	Name         string `json:"name"`
	Bias         string `json:"bias"`
	Description  string `json:"description"`
	FocusTag     string `json:"focusTag,omitempty"`
	LastExecuted string `json:"lastExecuted,omitempty"`
}

func (s *Server) handleSetups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		setups, err := s.svc.ListSetups(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, setups)
	case http.MethodPost:
		var req addSetupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		setup := core.Setup{
			Name:         sanitizeInput(req.Name),
			Bias:         sanitizeInput(req.Bias),
			Description:  sanitizeInput(req.Description),
			FocusTag:     sanitizeInput(req.FocusTag),
			LastExecuted: sanitizeInput(req.LastExecuted),
		}
		created, err := s.svc.AddSetup(r.Context(), setup)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		// Setup names show up in calendar day cells.
		s.invalidateAll()
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

type pairRequest struct {
	Symbol string `json:"symbol"`
}

func (s *Server) handlePairs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		pairs, err := s.svc.ListPairs(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, pairs)
	case http.MethodPost:
		var req pairRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := s.svc.AddPair(r.Context(), sanitizeInput(req.Symbol))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.journalCache.Purge()
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handlePairByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/api/pairs/")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req pairRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := s.svc.UpdatePair(r.Context(), id, sanitizeInput(req.Symbol))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.journalCache.Purge()
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := s.svc.DeletePair(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.journalCache.Purge()
		writeJSON(w, http.StatusNoContent, nil)
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}
