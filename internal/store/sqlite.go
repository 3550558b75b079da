package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcallahan/tastemap/internal/domain"
)

// SQLiteStore implements RecordStore over a restaurants table of
// (id, data, updated_at) rows. Change events are published after each
// successful write, including to the writer's own subscription.
type SQLiteStore struct {
	db       *sql.DB
	notifier *notifier
	logger   *slog.Logger
}

func NewSQLiteStore(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	return &SQLiteStore{
		db:       db,
		notifier: newNotifier(logger),
		logger:   logger,
	}
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data, updated_at FROM restaurants ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", "error", err)
		}
	}()

	var records []domain.Restaurant
	for rows.Next() {
		var data, updatedAt string
		if err := rows.Scan(&data, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		rec, err := decodeRow(data, updatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating restaurants: %w", err)
	}

	return records, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec domain.Restaurant) (domain.Restaurant, error) {
	if rec.ID == "" {
		return domain.Restaurant{}, fmt.Errorf("upsert requires an id")
	}

	var existing int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM restaurants WHERE id = ?", rec.ID).Scan(&existing)
	if err != nil {
		return domain.Restaurant{}, fmt.Errorf("failed to check restaurant %s: %w", rec.ID, err)
	}

	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.Restaurant{}, fmt.Errorf("failed to encode restaurant %s: %w", rec.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO restaurants (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, rec.ID, string(data), rec.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return domain.Restaurant{}, fmt.Errorf("failed to upsert restaurant %s: %w", rec.ID, err)
	}

	kind := domain.ChangeInsert
	if existing > 0 {
		kind = domain.ChangeUpdate
	}
	echo := rec.Clone()
	s.notifier.publish(domain.ChangeEvent{Kind: kind, Key: rec.ID, Record: &echo})

	return rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM restaurants WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete restaurant %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	// Deleting a row that was already gone is a no-op, not an error, and
	// publishes nothing.
	if rowsAffected > 0 {
		s.notifier.publish(domain.ChangeEvent{Kind: domain.ChangeDelete, Key: id})
	}

	return nil
}

func (s *SQLiteStore) Subscribe() (<-chan domain.ChangeEvent, func()) {
	return s.notifier.subscribe()
}

// Close releases every subscription. The underlying *sql.DB is owned by the
// caller and is not closed here.
func (s *SQLiteStore) Close() {
	s.notifier.close()
}

func decodeRow(data, updatedAt string) (domain.Restaurant, error) {
	var rec domain.Restaurant
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return domain.Restaurant{}, fmt.Errorf("failed to decode restaurant row: %w", err)
	}
	// The column is authoritative for ordering even if the blob disagrees.
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		rec.UpdatedAt = ts
	}
	return rec, nil
}
