package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// ErrNoTrackURI is returned when playback is requested without a track URI.
var ErrNoTrackURI = errors.New("no track URI to play")

// Play starts playback of the given track URI on the user's active device.
func (c *Client) Play(ctx context.Context, uri string) error {
	if uri == "" {
		return ErrNoTrackURI
	}

	err := c.api.PlayOpt(ctx, &spotify.PlayOptions{
		URIs: []spotify.URI{spotify.URI(uri)},
	})
	if err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	return nil
}
