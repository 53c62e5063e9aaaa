package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents a Spotify user profile.
type User struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authenticated web session.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Play represents one play event triggered from the UI.
type Play struct {
	ID          uuid.UUID
	UserID      string
	TrackID     string
	TrackName   string
	TrackArtist string
	TrackURI    string
	DurationMs  *int // nullable
	PlayedAt    time.Time
}
