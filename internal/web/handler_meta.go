package web

import (
	"net/http"

	"github.com/jcallahan/tastemap/internal/domain"
)

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]domain.SyncStatus{"status": s.session.Status()})
}

// uiConfig is everything the browser UI needs to render its closed lists and
// place the default map pin.
type uiConfig struct {
	Neighborhoods    []string  `json:"neighborhoods"`
	Cuisines         []string  `json:"cuisines"`
	RatingCategories []string  `json:"ratingCategories"`
	MapCenter        mapCenter `json:"mapCenter"`
}

type mapCenter struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, uiConfig{
		Neighborhoods:    s.cfg.Neighborhoods,
		Cuisines:         s.cfg.Cuisines,
		RatingCategories: domain.RatingCategories,
		MapCenter:        mapCenter{Lat: s.cfg.MapCenterLat, Lng: s.cfg.MapCenterLng},
	})
}
