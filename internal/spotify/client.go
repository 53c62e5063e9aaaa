// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// requestTimeout is the upper bound on any single API request made through a
// client built by the factory. Requests still in flight after this long are
// abandoned and surface as errors to the caller.
const requestTimeout = 30 * time.Second

// ErrNoSession is returned by catalog operations when no access token was
// available to build a client.
var ErrNoSession = errors.New("no access token available")

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// User returns the current user's Spotify ID and display name.
func (c *Client) User(ctx context.Context) (id, displayName string, err error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, user.DisplayName, nil
}

// Factory builds single-use API clients, each bound to one access token.
// A fresh client is constructed per call so every operation uses the
// caller's current credential; nothing is pooled or reused across tokens.
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a client factory that logs through the given logger.
func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger}
}

// ClientFor returns a fresh client bound to the given bearer token, or nil
// when the token is empty. A missing token is not an error: callers treat a
// nil client as "not signed in" and the factory only logs a warning.
func (f *Factory) ClientFor(token string) *Client {
	if token == "" {
		f.logger.Warn("spotify client requested without an access token")
		return nil
	}
	return New(spotify.New(newHTTPClient(token)))
}

// newHTTPClient builds the transport for one client: a static bearer token
// and the fixed request timeout.
func newHTTPClient(token string) *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: token,
				TokenType:   "Bearer",
			}),
		},
	}
}
