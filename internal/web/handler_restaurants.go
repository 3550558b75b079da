package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jcallahan/tastemap/internal/domain"
	"github.com/jcallahan/tastemap/internal/session"
)

func (s *Server) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	filter := session.Filter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = session.FilterAll
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	writeJSON(w, http.StatusOK, s.session.Visible(filter, query))
}

const maxDraftSize = 20 * 1024 * 1024 // photos are inlined as data URLs

func (s *Server) handleSaveRestaurant(w http.ResponseWriter, r *http.Request) {
	var draft domain.Restaurant
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDraftSize)).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := s.session.Save(r.Context(), draft)
	switch {
	case errors.Is(err, session.ErrNameRequired):
		writeError(w, http.StatusBadRequest, "restaurant name is required")
	case errors.Is(err, session.ErrSaveInFlight):
		writeError(w, http.StatusConflict, "a save is already in progress")
	case err != nil:
		// The session already notified; surface the failure so the editing
		// form stays open for a retry.
		writeError(w, http.StatusBadGateway, "failed to save restaurant")
	default:
		writeJSON(w, http.StatusOK, saved)
	}
}

func (s *Server) handleDeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "restaurant id required")
		return
	}

	if err := s.session.Remove(r.Context(), id); err != nil {
		writeError(w, http.StatusBadGateway, "failed to delete restaurant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
