package spotify

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

func testFactory() *Factory {
	return NewFactory(log.New(io.Discard))
}

func TestFactoryClientFor_EmptyToken(t *testing.T) {
	f := testFactory()

	if c := f.ClientFor(""); c != nil {
		t.Errorf("ClientFor(\"\") = %v, want nil", c)
	}
}

func TestFactoryClientFor_FreshClientPerCall(t *testing.T) {
	f := testFactory()

	first := f.ClientFor("token-a")
	second := f.ClientFor("token-a")

	if first == nil || second == nil {
		t.Fatal("ClientFor() returned nil for non-empty token")
	}
	if first == second {
		t.Error("ClientFor() reused a client across calls")
	}
}

func TestNewHTTPClient_Timeout(t *testing.T) {
	httpClient := newHTTPClient("some-token")

	if httpClient.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want %v", httpClient.Timeout, 30*time.Second)
	}
}

func TestNewHTTPClient_BearerToken(t *testing.T) {
	httpClient := newHTTPClient("some-token")

	transport, ok := httpClient.Transport.(*oauth2.Transport)
	if !ok {
		t.Fatalf("Transport = %T, want *oauth2.Transport", httpClient.Transport)
	}

	token, err := transport.Source.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token.AccessToken != "some-token" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "some-token")
	}
	if token.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want %q", token.TokenType, "Bearer")
	}
}
