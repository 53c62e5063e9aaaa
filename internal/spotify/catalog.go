package spotify

import "context"

// The Factory methods below gate every catalog operation on the caller's
// token: a fresh client is built for the call, and a missing token yields
// ErrNoSession instead of a half-configured client.

// SavedTracks returns up to limit tracks from the library of the user the
// token belongs to.
func (f *Factory) SavedTracks(ctx context.Context, token string, limit int) ([]Track, error) {
	c := f.ClientFor(token)
	if c == nil {
		return nil, ErrNoSession
	}
	return c.SavedTracks(ctx, limit)
}

// SearchTracks returns tracks matching the query.
func (f *Factory) SearchTracks(ctx context.Context, token, query string, limit int) ([]Track, error) {
	c := f.ClientFor(token)
	if c == nil {
		return nil, ErrNoSession
	}
	return c.SearchTracks(ctx, query, limit)
}

// Playlists returns the user's playlists.
func (f *Factory) Playlists(ctx context.Context, token string) ([]Playlist, error) {
	c := f.ClientFor(token)
	if c == nil {
		return nil, ErrNoSession
	}
	return c.Playlists(ctx)
}

// PlaylistTracks returns a playlist's name and tracks.
func (f *Factory) PlaylistTracks(ctx context.Context, token, id string) (string, []Track, error) {
	c := f.ClientFor(token)
	if c == nil {
		return "", nil, ErrNoSession
	}
	return c.PlaylistTracks(ctx, id)
}

// Play starts playback of the given track URI on the user's active device.
func (f *Factory) Play(ctx context.Context, token, uri string) error {
	c := f.ClientFor(token)
	if c == nil {
		return ErrNoSession
	}
	return c.Play(ctx, uri)
}
