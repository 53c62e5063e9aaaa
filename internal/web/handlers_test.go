package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/justestif/go-spotify-player/internal/auth"
	"github.com/justestif/go-spotify-player/internal/db"
	"github.com/justestif/go-spotify-player/internal/spotify"
)

// fakeCatalog implements Catalog for handler tests.
type fakeCatalog struct {
	tracks       []spotify.Track
	playlists    []spotify.Playlist
	playlistName string
	playCalls    []playCall
	playErr      error
}

type playCall struct {
	token string
	uri   string
}

func (f *fakeCatalog) ClientFor(string) *spotify.Client { return nil }

func (f *fakeCatalog) SavedTracks(_ context.Context, _ string, _ int) ([]spotify.Track, error) {
	return f.tracks, nil
}

func (f *fakeCatalog) SearchTracks(_ context.Context, _, _ string, _ int) ([]spotify.Track, error) {
	return f.tracks, nil
}

func (f *fakeCatalog) Playlists(_ context.Context, _ string) ([]spotify.Playlist, error) {
	return f.playlists, nil
}

func (f *fakeCatalog) PlaylistTracks(_ context.Context, _, _ string) (string, []spotify.Track, error) {
	return f.playlistName, f.tracks, nil
}

func (f *fakeCatalog) Play(_ context.Context, token, uri string) error {
	f.playCalls = append(f.playCalls, playCall{token: token, uri: uri})
	return f.playErr
}

// fakeHistory implements PlayHistory for handler tests.
type fakeHistory struct {
	records []db.Play
}

func (f *fakeHistory) Record(_ context.Context, play *db.Play) error {
	f.records = append(f.records, *play)
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, _ string, _ int) ([]db.Play, error) {
	return f.records, nil
}

func newTestHandlers(t *testing.T) (*Handlers, *fakeCatalog, *fakeHistory, *SessionStore) {
	t.Helper()

	a, err := auth.New(auth.Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "http://127.0.0.1:8080/callback",
	})
	if err != nil {
		t.Fatalf("auth.New() error = %v", err)
	}

	catalog := &fakeCatalog{}
	history := &fakeHistory{}
	sessions := NewSessionStore()
	templates := loadTemplates(t)
	logger := log.New(io.Discard)

	return NewHandlers(a, catalog, sessions, templates, history, logger), catalog, history, sessions
}

// signIn creates a session with a valid token and returns a cookie for it.
func signIn(t *testing.T, sessions *SessionStore) *http.Cookie {
	t.Helper()

	session, err := sessions.Create(context.Background(), testToken(), "user1", "User One")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: session.ID}
}

func TestHome_Unauthenticated(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.Home(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Sign in with Spotify") {
		t.Error("home page should offer sign-in")
	}
}

func TestHome_Authenticated(t *testing.T) {
	h, _, _, sessions := newTestHandlers(t)
	cookie := signIn(t, sessions)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.Home(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "User One") {
		t.Error("home page should greet the signed-in user")
	}
}

func TestLogin_RedirectsToSpotify(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest("GET", "/auth/login", nil))

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", w.Code)
	}

	location := w.Header().Get("Location")
	if !strings.Contains(location, "accounts.spotify.com") {
		t.Errorf("Location = %q, want Spotify accounts host", location)
	}

	var stateCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "oauth_state" {
			stateCookie = c
		}
	}
	if stateCookie == nil || stateCookie.Value == "" {
		t.Fatal("login should set a non-empty oauth_state cookie")
	}
	if !strings.Contains(location, stateCookie.Value) {
		t.Error("auth URL should carry the state from the cookie")
	}
}

func TestCallback_MissingStateCookie(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.Callback(w, httptest.NewRequest("GET", "/callback?code=abc&state=xyz", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCallback_StateMismatch(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	r := httptest.NewRequest("GET", "/callback?code=abc&state=wrong", nil)
	r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	w := httptest.NewRecorder()
	h.Callback(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCallback_SpotifyError(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	r := httptest.NewRequest("GET", "/callback?error=access_denied&state=s1", nil)
	r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	w := httptest.NewRecorder()
	h.Callback(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "access_denied") {
		t.Error("response should name the Spotify error")
	}
}

func TestLibrary_RequiresSession(t *testing.T) {
	h, _, _, _ := newTestHandlers(t)

	w := httptest.NewRecorder()
	h.Library(w, httptest.NewRequest("GET", "/library", nil))

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/" {
		t.Errorf("Location = %q, want %q", got, "/")
	}
}

func TestLibrary_RendersTracks(t *testing.T) {
	h, catalog, _, sessions := newTestHandlers(t)
	cookie := signIn(t, sessions)

	catalog.tracks = []spotify.Track{
		{ID: "t1", Name: "Test Song", Artists: []string{"Artist One"}, URI: "spotify:track:t1"},
		{ID: "t2"},
	}

	r := httptest.NewRequest("GET", "/library", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.Library(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Test Song") {
		t.Error("library should render track names")
	}
	if !strings.Contains(body, "Unknown Artist") {
		t.Error("library should render artist fallback")
	}
}

func TestPlaylistDetail(t *testing.T) {
	h, catalog, _, sessions := newTestHandlers(t)
	cookie := signIn(t, sessions)

	catalog.playlistName = "Road Trip"
	catalog.tracks = []spotify.Track{{ID: "t1", Name: "Test Song"}}

	router := chi.NewRouter()
	router.Get("/playlists/{id}", h.PlaylistDetail)

	r := httptest.NewRequest("GET", "/playlists/playlist1", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Road Trip") {
		t.Error("playlist page should render the playlist name")
	}
}

func TestSearch_Fragment(t *testing.T) {
	h, catalog, _, sessions := newTestHandlers(t)
	cookie := signIn(t, sessions)

	catalog.tracks = []spotify.Track{{ID: "t1", Name: "Fragment Song"}}

	r := httptest.NewRequest("GET", "/search?q=fragment", nil)
	r.AddCookie(cookie)
	r.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	h.Search(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Fragment Song") {
		t.Error("fragment should render matching tracks")
	}
	if strings.Contains(body, "<title>") {
		t.Error("fragment should not include the page shell")
	}
}

func playForm(uri string) *strings.Reader {
	form := url.Values{}
	if uri != "" {
		form.Set("uri", uri)
	}
	form.Set("id", "t1")
	form.Set("name", "Test Song")
	form.Set("artist", "Artist One")
	form.Set("duration_ms", "214000")
	return strings.NewReader(form.Encode())
}

func TestPlay_InvokesPlaybackOnce(t *testing.T) {
	h, catalog, history, sessions := newTestHandlers(t)
	cookie := signIn(t, sessions)

	r := httptest.NewRequest("POST", "/play", playForm("spotify:track:t1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.Play(w, r)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}

	if len(catalog.playCalls) != 1 {
		t.Fatalf("playback invoked %d times, want exactly 1", len(catalog.playCalls))
	}
	call := catalog.playCalls[0]
	if call.uri != "spotify:track:t1" {
		t.Errorf("played URI = %q, want %q", call.uri, "spotify:track:t1")
	}
	if call.token != "test-access-token" {
		t.Errorf("played with token = %q, want session token", call.token)
	}

	if len(history.records) != 1 {
		t.Fatalf("recorded %d plays, want 1", len(history.records))
	}
	record := history.records[0]
	if record.TrackID != "t1" || record.TrackName != "Test Song" || record.TrackArtist != "Artist One" {
		t.Errorf("recorded play = %+v, want submitted track fields", record)
	}
	if record.DurationMs == nil || *record.DurationMs != 214000 {
		t.Error("recorded play should carry the submitted duration")
	}
	if record.UserID != "user1" {
		t.Errorf("recorded UserID = %q, want %q", record.UserID, "user1")
	}
}

func TestPlay_MissingURI(t *testing.T) {
	h, catalog, _, sessions := newTestHandlers(t)
	cookie := signIn(t, sessions)

	r := httptest.NewRequest("POST", "/play", playForm(""))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.Play(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(catalog.playCalls) != 0 {
		t.Error("playback should not be invoked without a URI")
	}
}

func TestPlay_RequiresSession(t *testing.T) {
	h, catalog, _, _ := newTestHandlers(t)

	r := httptest.NewRequest("POST", "/play", playForm("spotify:track:t1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Play(w, r)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", w.Code)
	}
	if len(catalog.playCalls) != 0 {
		t.Error("playback should not be invoked without a session")
	}
}

func TestPlay_Fragment(t *testing.T) {
	h, _, _, sessions := newTestHandlers(t)
	cookie := signIn(t, sessions)

	r := httptest.NewRequest("POST", "/play", playForm("spotify:track:t1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("HX-Request", "true")
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.Play(w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 for fragment request", w.Code)
	}
}

func TestHistory_RendersPlays(t *testing.T) {
	h, _, history, sessions := newTestHandlers(t)
	cookie := signIn(t, sessions)

	duration := 180000
	history.records = []db.Play{
		{TrackID: "t1", TrackName: "Song One", TrackArtist: "Artist A", DurationMs: &duration},
		{TrackID: "t2"}, // metadata missing
	}

	r := httptest.NewRequest("GET", "/history", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.History(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Song One") || !strings.Contains(body, "3:00") {
		t.Error("history should render recorded plays")
	}
	if !strings.Contains(body, "Unknown Track") || !strings.Contains(body, "--:--") {
		t.Error("history should apply display fallbacks")
	}
}

func TestLogout(t *testing.T) {
	h, _, _, sessions := newTestHandlers(t)
	cookie := signIn(t, sessions)

	r := httptest.NewRequest("POST", "/auth/logout", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.Logout(w, r)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", w.Code)
	}
	if got := sessions.Get(context.Background(), cookie.Value); got != nil {
		t.Error("logout should delete the session")
	}
}
