// Package auth provides Spotify OAuth2 authentication for the web flow.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

var (
	// ErrMissingCredentials is returned when the client ID or secret is empty.
	ErrMissingCredentials = errors.New("missing Spotify client ID or secret")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

// Config holds the OAuth application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Authenticator handles the Spotify OAuth2 authorization code flow and
// token refresh for web sessions.
type Authenticator struct {
	auth *spotifyauth.Authenticator
	conf *oauth2.Config
}

// New creates an Authenticator from the given credentials.
// Returns ErrMissingCredentials if either credential is empty.
func New(cfg Config) (*Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	scopes := []string{
		spotifyauth.ScopeUserReadPrivate,
		spotifyauth.ScopeUserLibraryRead,
		spotifyauth.ScopePlaylistReadPrivate,
		spotifyauth.ScopeUserReadPlaybackState,
		spotifyauth.ScopeUserModifyPlaybackState,
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURL),
		spotifyauth.WithScopes(scopes...),
	)

	// A plain oauth2.Config against the same endpoint handles refresh,
	// which the spotifyauth wrapper does not expose directly.
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}

	return &Authenticator{auth: auth, conf: conf}, nil
}

// AuthURL returns the Spotify authorization URL for the given state.
func (a *Authenticator) AuthURL(state string) string {
	return a.auth.AuthURL(state)
}

// Exchange trades the authorization code carried by the callback request for
// a token, verifying the state parameter.
func (a *Authenticator) Exchange(ctx context.Context, state string, r *http.Request) (*oauth2.Token, error) {
	if r.URL.Query().Get("state") != state {
		return nil, ErrStateMismatch
	}

	token, err := a.auth.Token(ctx, state, r)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}
	return token, nil
}

// Refresh returns a valid token for the session, refreshing through the
// OAuth endpoint when the current one has expired. The caller is responsible
// for persisting a changed token back to its session store. A refresh
// failure means the session is no longer usable, not a server fault.
func (a *Authenticator) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	fresh, err := a.conf.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}
	return fresh, nil
}

// GenerateState creates a random state string for OAuth.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
