package session

import "github.com/jcallahan/tastemap/internal/domain"

// The merge functions are pure: they never mutate the input slice, and they
// are commutative and idempotent per key. The last value applied for a given
// id wins no matter which stream (initial load, optimistic save, remote
// change event) delivered it, and applying the same event twice leaves the
// collection exactly as it was after the first application.

// applyChange folds one change event into the collection.
func applyChange(records []domain.Restaurant, ev domain.ChangeEvent) []domain.Restaurant {
	switch ev.Kind {
	case domain.ChangeDelete:
		return removeRecord(records, ev.Key)
	case domain.ChangeInsert, domain.ChangeUpdate:
		if ev.Record == nil {
			return records
		}
		return upsertRecord(records, ev.Record.Clone())
	}
	return records
}

// upsertRecord replaces an existing record in place, keeping its position, or
// prepends a new one. Recently touched records therefore surface at the front.
func upsertRecord(records []domain.Restaurant, rec domain.Restaurant) []domain.Restaurant {
	for i := range records {
		if records[i].ID == rec.ID {
			out := append([]domain.Restaurant(nil), records...)
			out[i] = rec
			return out
		}
	}
	out := make([]domain.Restaurant, 0, len(records)+1)
	out = append(out, rec)
	return append(out, records...)
}

// removeRecord drops the record with the given id; absent ids are a no-op.
func removeRecord(records []domain.Restaurant, id string) []domain.Restaurant {
	for i := range records {
		if records[i].ID == id {
			out := make([]domain.Restaurant, 0, len(records)-1)
			out = append(out, records[:i]...)
			return append(out, records[i+1:]...)
		}
	}
	return records
}
