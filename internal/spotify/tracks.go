package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// pageSize is the maximum item count Spotify serves per request.
const pageSize = 50

// SavedTracks returns up to limit tracks from the user's library, newest
// first. Pages are fetched until the limit is reached or the library ends.
func (c *Client) SavedTracks(ctx context.Context, limit int) ([]Track, error) {
	var tracks []Track

	page, err := c.api.CurrentUsersTracks(ctx, spotify.Limit(pageSize))
	if err != nil {
		return nil, fmt.Errorf("fetching saved tracks: %w", err)
	}

	for {
		for _, saved := range page.Tracks {
			tracks = append(tracks, convertFullTrack(saved.FullTrack))
			if len(tracks) == limit {
				return tracks, nil
			}
		}

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	return tracks, nil
}

// SearchTracks returns tracks matching the query.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}

	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]Track, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		tracks = append(tracks, convertFullTrack(ft))
	}
	return tracks, nil
}

// convertFullTrack converts a Spotify FullTrack to the view record.
func convertFullTrack(ft spotify.FullTrack) Track {
	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}

	images := make([]Image, len(ft.Album.Images))
	for i, img := range ft.Album.Images {
		images[i] = Image{
			URL:    img.URL,
			Width:  int(img.Width),
			Height: int(img.Height),
		}
	}

	duration := int(ft.Duration)

	return Track{
		ID:      ft.ID.String(),
		Name:    ft.Name,
		Artists: artists,
		Album: Album{
			Name:   ft.Album.Name,
			Images: images,
		},
		DurationMs: &duration,
		URI:        string(ft.URI),
	}
}
