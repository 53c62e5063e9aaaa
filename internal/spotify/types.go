package spotify

import "fmt"

// Fallback display values for tracks with missing metadata.
const (
	UnknownTrack    = "Unknown Track"
	UnknownArtist   = "Unknown Artist"
	UnknownDuration = "--:--"
)

// Image describes one album image as served by the Spotify CDN.
type Image struct {
	URL    string
	Width  int
	Height int
}

// Album contains the subset of album metadata the UI renders.
// Images are ordered largest first, matching the API response.
type Album struct {
	Name   string
	Images []Image
}

// Track is the view record for one playable item. Any field may be empty;
// the Display accessors resolve fallbacks so templates never have to.
type Track struct {
	ID         string
	Name       string
	Artists    []string
	Album      Album
	DurationMs *int // nil when the source provided no duration
	URI        string
}

// Playlist summarizes one of the user's playlists.
type Playlist struct {
	ID         string
	Name       string
	Owner      string
	ImageURL   string
	TrackCount int
}

// DisplayName returns the track name, or a fallback when it is empty.
func (t Track) DisplayName() string {
	if t.Name == "" {
		return UnknownTrack
	}
	return t.Name
}

// DisplayArtist returns the comma-joined artist names, or a fallback when
// the track has none.
func (t Track) DisplayArtist() string {
	if len(t.Artists) == 0 {
		return UnknownArtist
	}
	return joinArtists(t.Artists)
}

// DisplayDuration returns the formatted duration, or "--:--" when the
// source duration is absent.
func (t Track) DisplayDuration() string {
	if t.DurationMs == nil {
		return UnknownDuration
	}
	return FormatDuration(*t.DurationMs)
}

// ImageURL returns the first (largest) album image URL, or "" when the album
// has no images. Templates render a fallback glyph for the empty case.
func (t Track) ImageURL() string {
	if len(t.Album.Images) == 0 {
		return ""
	}
	return t.Album.Images[0].URL
}

// Playable reports whether the track carries a URI playback can target.
func (t Track) Playable() bool {
	return t.URI != ""
}

// FormatDuration converts a duration in milliseconds to an "M:SS" string.
// Minutes are unbounded with no leading zero; seconds are zero-padded.
// Negative input is out of contract.
func FormatDuration(ms int) string {
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func joinArtists(names []string) string {
	out := names[0]
	for _, name := range names[1:] {
		out += ", " + name
	}
	return out
}
