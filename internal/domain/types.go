package domain

import "time"

// RatingCategories are the four rating dimensions every visited restaurant
// carries. A Ratings map always has all four keys after Normalize.
var RatingCategories = []string{"food", "service", "ambiance", "value"}

const (
	RatingMin = 0
	RatingMax = 5
)

// Restaurant is a single tracked restaurant. ID is assigned client-side at
// creation time and never changes; it is the merge key everywhere.
type Restaurant struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Neighborhood string         `json:"neighborhood"`
	Cuisine      string         `json:"cuisine"`
	Address      string         `json:"address,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	Visited      bool           `json:"visited"`
	Ratings      map[string]int `json:"ratings,omitempty"`
	Lat          float64        `json:"lat"`
	Lng          float64        `json:"lng"`
	Photos       []string       `json:"photos,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Normalize enforces the record invariants in place: visited restaurants get
// all four rating keys with values clamped to [RatingMin, RatingMax],
// want-to-try restaurants carry no ratings at all.
func (r *Restaurant) Normalize() {
	if !r.Visited {
		r.Ratings = nil
		return
	}
	ratings := make(map[string]int, len(RatingCategories))
	for _, cat := range RatingCategories {
		v := r.Ratings[cat]
		if v < RatingMin {
			v = RatingMin
		}
		if v > RatingMax {
			v = RatingMax
		}
		ratings[cat] = v
	}
	r.Ratings = ratings
}

// AverageRating is derived, never stored. It is 0 for unvisited restaurants.
func (r *Restaurant) AverageRating() float64 {
	if !r.Visited || len(r.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, cat := range RatingCategories {
		sum += r.Ratings[cat]
	}
	return float64(sum) / float64(len(RatingCategories))
}

// Clone returns a deep copy so callers can hand records across goroutine
// boundaries without sharing the ratings map or photo slice.
func (r Restaurant) Clone() Restaurant {
	out := r
	if r.Ratings != nil {
		out.Ratings = make(map[string]int, len(r.Ratings))
		for k, v := range r.Ratings {
			out.Ratings[k] = v
		}
	}
	if r.Photos != nil {
		out.Photos = append([]string(nil), r.Photos...)
	}
	return out
}

// ChangeKind classifies a row-level change notification.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// ChangeEvent is one row-level notification from the record store. Record is
// nil for deletes. Delivery is at-least-once and echoes the caller's own
// writes, so consumers must merge idempotently by Key.
type ChangeEvent struct {
	Kind   ChangeKind  `json:"kind"`
	Key    string      `json:"key"`
	Record *Restaurant `json:"record,omitempty"`
}

// SyncStatus is the advisory state of the live-update subscription. It never
// gates reads or writes.
type SyncStatus string

const (
	StatusDisconnected SyncStatus = "disconnected"
	StatusConnecting   SyncStatus = "connecting"
	StatusLive         SyncStatus = "live"
	StatusError        SyncStatus = "error"
)
