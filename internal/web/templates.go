package web

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/justestif/go-spotify-player/internal/spotify"
)

// Templates manages HTML template rendering.
type Templates struct {
	templates map[string]*template.Template
	partials  map[string]*template.Template
	funcs     template.FuncMap
}

// NewTemplates creates a new template manager by loading templates from the given filesystem.
func NewTemplates(templatesFS fs.FS) (*Templates, error) {
	t := &Templates{
		templates: make(map[string]*template.Template),
		partials:  make(map[string]*template.Template),
		funcs:     defaultFuncs(),
	}

	if err := t.load(templatesFS); err != nil {
		return nil, err
	}

	return t, nil
}

// Render renders a page template with the given data.
func (t *Templates) Render(w io.Writer, page string, data any) error {
	tmpl, ok := t.templates[page]
	if !ok {
		return fmt.Errorf("template %q not found", page)
	}

	// Execute the "base" template which includes the page content
	return tmpl.ExecuteTemplate(w, "base", data)
}

// RenderPartial renders a partial template (without base layout) with the given data.
func (t *Templates) RenderPartial(w io.Writer, partial string, data any) error {
	tmpl, ok := t.partials[partial]
	if !ok {
		return fmt.Errorf("partial %q not found", partial)
	}
	return tmpl.ExecuteTemplate(w, partial, data)
}

// load parses all templates from the filesystem.
func (t *Templates) load(templatesFS fs.FS) error {
	layouts, err := fs.Glob(templatesFS, "layouts/*.html")
	if err != nil {
		return fmt.Errorf("finding layouts: %w", err)
	}

	partials, err := fs.Glob(templatesFS, "partials/*.html")
	if err != nil {
		return fmt.Errorf("finding partials: %w", err)
	}

	pages, err := fs.Glob(templatesFS, "pages/*.html")
	if err != nil {
		return fmt.Errorf("finding pages: %w", err)
	}

	// Common files to include with every page
	commonFiles := append(layouts, partials...)

	for _, page := range pages {
		name := filepath.Base(page)
		name = name[:len(name)-len(".html")]

		files := append([]string{page}, commonFiles...)

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}

		t.templates[name] = tmpl
	}

	// Load partials as standalone templates for fragment responses
	for _, partial := range partials {
		name := filepath.Base(partial)
		name = name[:len(name)-len(".html")]

		tmpl, err := template.New(name).Funcs(t.funcs).ParseFS(templatesFS, partials...)
		if err != nil {
			return fmt.Errorf("parsing partial %s: %w", name, err)
		}
		t.partials[name] = tmpl
	}

	return nil
}

// defaultFuncs returns the default template functions.
func defaultFuncs() template.FuncMap {
	return template.FuncMap{
		// formatDuration formats a millisecond count as M:SS
		"formatDuration": spotify.FormatDuration,

		// formatDate formats a time as "Jan 2, 2006"
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},

		// formatTime formats a time as "Jan 2, 15:04"
		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 15:04")
		},

		// add adds two integers (for 1-based indexing in loops)
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// PageData contains common data passed to all page templates.
type PageData struct {
	Title       string
	User        *UserData
	Flash       *FlashMessage
	CurrentPath string
}

// UserData contains authenticated user information.
type UserData struct {
	ID   string
	Name string
}

// FlashMessage represents a temporary notification message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// HomePageData contains data for the home page template.
type HomePageData struct {
	PageData
	Authenticated bool
}

// TrackListData contains data for the track list partial and the pages
// built around it. Playable gates the play control per row.
type TrackListData struct {
	Tracks   []spotify.Track
	Playable bool
}

// TrackRow is one rendered entry of the track list partial.
type TrackRow struct {
	Position int
	Track    spotify.Track
	Playable bool
}

// Rows pairs each track with its 1-based position. A row only gets a play
// control when the list allows playback and the track carries a URI.
func (d TrackListData) Rows() []TrackRow {
	rows := make([]TrackRow, len(d.Tracks))
	for i, track := range d.Tracks {
		rows[i] = TrackRow{
			Position: i + 1,
			Track:    track,
			Playable: d.Playable && track.Playable(),
		}
	}
	return rows
}

// LibraryPageData contains data for the library page template.
type LibraryPageData struct {
	PageData
	TrackListData
}

// PlaylistsPageData contains data for the playlists page template.
type PlaylistsPageData struct {
	PageData
	Playlists []spotify.Playlist
}

// PlaylistPageData contains data for the playlist detail page template.
type PlaylistPageData struct {
	PageData
	PlaylistID   string
	PlaylistName string
	TrackListData
}

// SearchPageData contains data for the search page template.
type SearchPageData struct {
	PageData
	Query string
	TrackListData
}

// HistoryPageData contains data for the play history page template.
type HistoryPageData struct {
	PageData
	Plays []PlayData
}

// PlayData contains data for a single play history row in templates.
type PlayData struct {
	TrackName string
	Artist    string
	Duration  string
	PlayedAt  time.Time
}
