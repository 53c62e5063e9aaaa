package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func testConfig() Config {
	return Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		RedirectURL:  "http://127.0.0.1:8080/callback",
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		secret string
	}{
		{"both missing", "", ""},
		{"id missing", "", "secret"},
		{"secret missing", "id", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{ClientID: tt.id, ClientSecret: tt.secret})
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("New() error = %v, want ErrMissingCredentials", err)
			}
		})
	}
}

func TestAuthURL(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	url := a.AuthURL("state-123")

	if !strings.Contains(url, "accounts.spotify.com") {
		t.Errorf("AuthURL() = %q, want Spotify accounts host", url)
	}
	if !strings.Contains(url, "state-123") {
		t.Errorf("AuthURL() = %q, want state parameter included", url)
	}
	if !strings.Contains(url, "test-client-id") {
		t.Errorf("AuthURL() = %q, want client ID included", url)
	}
}

func TestExchange_StateMismatch(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	r := httptest.NewRequest("GET", "/callback?state=wrong&code=abc", nil)

	_, err = a.Exchange(context.Background(), "expected", r)
	if !errors.Is(err, ErrStateMismatch) {
		t.Errorf("Exchange() error = %v, want ErrStateMismatch", err)
	}
}

func TestRefresh_ValidTokenPassesThrough(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	token := &oauth2.Token{
		AccessToken: "still-good",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}

	got, err := a.Refresh(context.Background(), token)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got.AccessToken != "still-good" {
		t.Errorf("AccessToken = %q, want unchanged token", got.AccessToken)
	}
}

func TestGenerateState(t *testing.T) {
	state1, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}

	if len(state1) != 32 { // 16 bytes = 32 hex chars
		t.Errorf("GenerateState() length = %d, want 32", len(state1))
	}

	state2, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	if state1 == state2 {
		t.Error("GenerateState() returned same value twice")
	}
}
