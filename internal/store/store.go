// Package store implements the durable record store: a single sqlite table
// holding one JSON blob per restaurant plus a server-maintained update
// timestamp, with row-level change notifications fanned out to subscribers.
package store

import (
	"context"

	"github.com/jcallahan/tastemap/internal/domain"
)

// RecordStore is the contract the reconciliation core consumes. Subscribe
// delivery is at-least-once and echoes the subscriber's own writes.
type RecordStore interface {
	// ListAll returns every record ordered by update time, most recent first.
	ListAll(ctx context.Context) ([]domain.Restaurant, error)

	// Upsert inserts or fully replaces the record keyed by rec.ID and returns
	// the stored record with its server-assigned update timestamp.
	Upsert(ctx context.Context, rec domain.Restaurant) (domain.Restaurant, error)

	// Delete removes the record with the given id. Deleting an absent id is
	// not an error.
	Delete(ctx context.Context, id string) error

	// Subscribe registers for change events. The returned cancel func releases
	// the subscription and closes the channel.
	Subscribe() (<-chan domain.ChangeEvent, func())
}
