package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlayRepository handles play history database operations.
type PlayRepository struct {
	q Querier
}

// NewPlayRepository creates a PlayRepository on the given querier.
func NewPlayRepository(q Querier) *PlayRepository {
	return &PlayRepository{q: q}
}

// Record inserts a play event. A zero ID or PlayedAt is filled in.
func (r *PlayRepository) Record(ctx context.Context, play *Play) error {
	if play.ID == uuid.Nil {
		play.ID = uuid.New()
	}
	if play.PlayedAt.IsZero() {
		play.PlayedAt = time.Now()
	}

	query := `
		INSERT INTO plays (id, user_id, track_id, track_name, track_artist, track_uri, duration_ms, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.Exec(ctx, query,
		play.ID,
		play.UserID,
		play.TrackID,
		play.TrackName,
		play.TrackArtist,
		play.TrackURI,
		play.DurationMs,
		play.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting play: %w", err)
	}
	return nil
}

// Recent returns the user's most recent play events, newest first.
func (r *PlayRepository) Recent(ctx context.Context, userID string, limit int) ([]Play, error) {
	query := `
		SELECT id, user_id, track_id, track_name, track_artist, track_uri, duration_ms, played_at
		FROM plays
		WHERE user_id = $1
		ORDER BY played_at DESC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		var play Play
		err := rows.Scan(
			&play.ID,
			&play.UserID,
			&play.TrackID,
			&play.TrackName,
			&play.TrackArtist,
			&play.TrackURI,
			&play.DurationMs,
			&play.PlayedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning play: %w", err)
		}
		plays = append(plays, play)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plays: %w", err)
	}
	return plays, nil
}
