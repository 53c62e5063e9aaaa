package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// Playlists returns the current user's playlists.
func (c *Client) Playlists(ctx context.Context) ([]Playlist, error) {
	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(pageSize))
	if err != nil {
		return nil, fmt.Errorf("fetching playlists: %w", err)
	}

	playlists := make([]Playlist, 0, len(page.Playlists))
	for _, p := range page.Playlists {
		playlists = append(playlists, convertPlaylist(p))
	}
	return playlists, nil
}

// PlaylistTracks returns a playlist's name and its tracks.
func (c *Client) PlaylistTracks(ctx context.Context, id string) (string, []Track, error) {
	playlist, err := c.api.GetPlaylist(ctx, spotify.ID(id))
	if err != nil {
		return "", nil, fmt.Errorf("fetching playlist %s: %w", id, err)
	}

	tracks := make([]Track, 0, len(playlist.Tracks.Tracks))
	for _, pt := range playlist.Tracks.Tracks {
		tracks = append(tracks, convertFullTrack(pt.Track))
	}
	return playlist.Name, tracks, nil
}

// convertPlaylist converts a Spotify SimplePlaylist to the view record.
func convertPlaylist(p spotify.SimplePlaylist) Playlist {
	var imageURL string
	if len(p.Images) > 0 {
		imageURL = p.Images[0].URL
	}

	return Playlist{
		ID:         p.ID.String(),
		Name:       p.Name,
		Owner:      p.Owner.DisplayName,
		ImageURL:   imageURL,
		TrackCount: int(p.Tracks.Total),
	}
}
