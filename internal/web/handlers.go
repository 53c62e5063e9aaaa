package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-spotify-player/internal/auth"
	"github.com/justestif/go-spotify-player/internal/db"
	"github.com/justestif/go-spotify-player/internal/spotify"
)

const (
	libraryPageSize = 50
	searchPageSize  = 20
	historyPageSize = 50
)

// Catalog is the per-request Spotify surface the handlers depend on. It is
// implemented by spotify.Factory; every call builds a fresh client bound to
// the caller's token.
type Catalog interface {
	ClientFor(token string) *spotify.Client
	SavedTracks(ctx context.Context, token string, limit int) ([]spotify.Track, error)
	SearchTracks(ctx context.Context, token, query string, limit int) ([]spotify.Track, error)
	Playlists(ctx context.Context, token string) ([]spotify.Playlist, error)
	PlaylistTracks(ctx context.Context, token, id string) (string, []spotify.Track, error)
	Play(ctx context.Context, token, uri string) error
}

// PlayHistory records and lists play events. It is implemented by
// db.PlayRepository; a nil history disables the feature.
type PlayHistory interface {
	Record(ctx context.Context, play *db.Play) error
	Recent(ctx context.Context, userID string, limit int) ([]db.Play, error)
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	auth      *auth.Authenticator
	catalog   Catalog
	sessions  SessionManager
	templates *Templates
	history   PlayHistory
	logger    *log.Logger
}

// NewHandlers creates a new Handlers instance. history may be nil when no
// database is configured.
func NewHandlers(a *auth.Authenticator, catalog Catalog, sessions SessionManager, templates *Templates, history PlayHistory, logger *log.Logger) *Handlers {
	return &Handlers{
		auth:      a,
		catalog:   catalog,
		sessions:  sessions,
		templates: templates,
		history:   history,
		logger:    logger,
	}
}

// pageData builds the common template data for a request.
func (h *Handlers) pageData(r *http.Request, title string, session *Session) PageData {
	data := PageData{
		Title:       title,
		CurrentPath: r.URL.Path,
	}
	if session != nil {
		data.User = &UserData{ID: session.UserID, Name: session.UserName}
	}
	return data
}

// render writes a page template, logging failures.
func (h *Handlers) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.Render(w, page, data); err != nil {
		h.logger.Error("rendering template", "page", page, "err", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
	}
}

// Home handles the home page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)

	data := HomePageData{
		PageData:      h.pageData(r, "Spotify Player", session),
		Authenticated: session != nil,
	}

	h.render(w, "home", data)
}

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	// Generate state for CSRF protection
	state, err := auth.GenerateState()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /callback).
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil {
		http.Error(w, "Missing state cookie", http.StatusBadRequest)
		return
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	// Check for error from Spotify
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, fmt.Sprintf("Spotify auth error: %s", errMsg), http.StatusBadRequest)
		return
	}

	// Exchange code for token; state is verified against the cookie value
	token, err := h.auth.Exchange(r.Context(), stateCookie.Value, r)
	if errors.Is(err, auth.ErrStateMismatch) {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("exchanging auth code", "err", err)
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		return
	}

	// Get user info from Spotify
	client := h.catalog.ClientFor(token.AccessToken)
	if client == nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		return
	}
	userID, userName, err := client.User(r.Context())
	if err != nil {
		h.logger.Error("fetching user profile", "err", err)
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	session, err := h.sessions.Create(r.Context(), token, userID, userName)
	if err != nil {
		h.logger.Error("creating session", "err", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.sessions.SetCookie(w, session)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// Logout clears the session and redirects to home (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.GetFromRequest(r)
	if session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}

	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// requireSession resolves the request's session and a valid access token,
// refreshing the token when it has expired. A missing session or failed
// refresh redirects to the home page and returns ok=false.
func (h *Handlers) requireSession(w http.ResponseWriter, r *http.Request) (session *Session, accessToken string, ok bool) {
	session = h.sessions.GetFromRequest(r)
	if session == nil {
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return nil, "", false
	}

	token, err := h.auth.Refresh(r.Context(), session.Token)
	if err != nil {
		// The refresh token no longer works; the session is dead.
		h.logger.Warn("token refresh failed, ending session", "user", session.UserID, "err", err)
		h.sessions.Delete(r.Context(), session.ID)
		h.sessions.ClearCookie(w)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return nil, "", false
	}

	if token.AccessToken != session.Token.AccessToken {
		h.sessions.UpdateToken(r.Context(), session.ID, token)
		session.Token = token
	}

	return session, token.AccessToken, true
}

// catalogError maps a catalog failure to a response.
func (h *Handlers) catalogError(w http.ResponseWriter, r *http.Request, what string, err error) {
	if errors.Is(err, spotify.ErrNoSession) {
		http.Redirect(w, r, "/auth/login", http.StatusTemporaryRedirect)
		return
	}
	h.logger.Error(what, "err", err)
	http.Error(w, "Spotify request failed", http.StatusBadGateway)
}

// Library shows the user's saved tracks (GET /library).
func (h *Handlers) Library(w http.ResponseWriter, r *http.Request) {
	session, token, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	tracks, err := h.catalog.SavedTracks(r.Context(), token, libraryPageSize)
	if err != nil {
		h.catalogError(w, r, "fetching saved tracks", err)
		return
	}

	data := LibraryPageData{
		PageData:      h.pageData(r, "Your Library", session),
		TrackListData: TrackListData{Tracks: tracks, Playable: true},
	}
	h.render(w, "library", data)
}

// Playlists shows the user's playlists (GET /playlists).
func (h *Handlers) Playlists(w http.ResponseWriter, r *http.Request) {
	session, token, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	playlists, err := h.catalog.Playlists(r.Context(), token)
	if err != nil {
		h.catalogError(w, r, "fetching playlists", err)
		return
	}

	data := PlaylistsPageData{
		PageData:  h.pageData(r, "Playlists", session),
		Playlists: playlists,
	}
	h.render(w, "playlists", data)
}

// PlaylistDetail shows one playlist's tracks (GET /playlists/{id}).
func (h *Handlers) PlaylistDetail(w http.ResponseWriter, r *http.Request) {
	session, token, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	name, tracks, err := h.catalog.PlaylistTracks(r.Context(), token, id)
	if err != nil {
		h.catalogError(w, r, "fetching playlist tracks", err)
		return
	}

	data := PlaylistPageData{
		PageData:      h.pageData(r, name, session),
		PlaylistID:    id,
		PlaylistName:  name,
		TrackListData: TrackListData{Tracks: tracks, Playable: true},
	}
	h.render(w, "playlist", data)
}

// Search shows track search results (GET /search?q=...). Requests carrying
// the HX-Request header get only the track list fragment.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	session, token, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")

	var tracks []spotify.Track
	if query != "" {
		var err error
		tracks, err = h.catalog.SearchTracks(r.Context(), token, query, searchPageSize)
		if err != nil {
			h.catalogError(w, r, "searching tracks", err)
			return
		}
	}

	listData := TrackListData{Tracks: tracks, Playable: true}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := h.templates.RenderPartial(w, "track_list", listData); err != nil {
			h.logger.Error("rendering search fragment", "err", err)
			http.Error(w, "Failed to render template", http.StatusInternalServerError)
		}
		return
	}

	data := SearchPageData{
		PageData:      h.pageData(r, "Search", session),
		Query:         query,
		TrackListData: listData,
	}
	h.render(w, "search", data)
}

// Play starts playback of the submitted track (POST /play). The form carries
// the track record the row was rendered from; the playback call happens
// exactly once per activation.
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	session, token, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	uri := r.PostFormValue("uri")
	if uri == "" {
		http.Error(w, "Missing track URI", http.StatusBadRequest)
		return
	}

	if err := h.catalog.Play(r.Context(), token, uri); err != nil {
		h.catalogError(w, r, "starting playback", err)
		return
	}

	h.recordPlay(r, session, uri)

	if r.Header.Get("HX-Request") == "true" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	redirect := r.Referer()
	if redirect == "" {
		redirect = "/library"
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// recordPlay writes a play event when history is enabled. Failures are
// logged, never surfaced: history is best-effort.
func (h *Handlers) recordPlay(r *http.Request, session *Session, uri string) {
	if h.history == nil {
		return
	}

	play := &db.Play{
		UserID:      session.UserID,
		TrackID:     r.PostFormValue("id"),
		TrackName:   r.PostFormValue("name"),
		TrackArtist: r.PostFormValue("artist"),
		TrackURI:    uri,
	}
	if ms, err := parseDurationMs(r.PostFormValue("duration_ms")); err == nil {
		play.DurationMs = &ms
	}

	if err := h.history.Record(r.Context(), play); err != nil {
		h.logger.Error("recording play", "track", play.TrackID, "err", err)
	}
}

// History shows the user's recent play events (GET /history).
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	session, _, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	data := HistoryPageData{
		PageData: h.pageData(r, "Recently Played", session),
	}

	if h.history != nil {
		plays, err := h.history.Recent(r.Context(), session.UserID, historyPageSize)
		if err != nil {
			h.logger.Error("fetching play history", "err", err)
			http.Error(w, "Failed to load history", http.StatusInternalServerError)
			return
		}
		data.Plays = make([]PlayData, 0, len(plays))
		for _, play := range plays {
			data.Plays = append(data.Plays, convertPlay(play))
		}
	}

	h.render(w, "history", data)
}

// convertPlay converts a stored play event to its template form, resolving
// the same display fallbacks as track rows.
func convertPlay(play db.Play) PlayData {
	name := play.TrackName
	if name == "" {
		name = spotify.UnknownTrack
	}
	artist := play.TrackArtist
	if artist == "" {
		artist = spotify.UnknownArtist
	}
	duration := spotify.UnknownDuration
	if play.DurationMs != nil {
		duration = spotify.FormatDuration(*play.DurationMs)
	}
	return PlayData{
		TrackName: name,
		Artist:    artist,
		Duration:  duration,
		PlayedAt:  play.PlayedAt,
	}
}

func parseDurationMs(raw string) (int, error) {
	ms, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if ms < 0 {
		return 0, errors.New("negative duration")
	}
	return ms, nil
}
