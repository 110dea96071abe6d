package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	want := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("mode = %v, want 0600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken || !got.Expiry.Equal(want.Expiry) {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty token")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

type sequenceSource struct {
	tokens []*oauth2.Token
	err    error
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	tok := s.tokens[0]
	if len(s.tokens) > 1 {
		s.tokens = s.tokens[1:]
	}
	return tok, nil
}

func TestPersistSavesRefreshedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	current := &oauth2.Token{AccessToken: "old"}
	base := &sequenceSource{tokens: []*oauth2.Token{current, {AccessToken: "new", RefreshToken: "r"}}}
	src := Persist(base, path, current, nil)

	if _, err := src.Token(); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("unchanged token should not be written")
	}

	tok, err := src.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "new" {
		t.Fatalf("AccessToken = %q", tok.AccessToken)
	}
	saved, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.AccessToken != "new" {
		t.Fatalf("saved AccessToken = %q", saved.AccessToken)
	}
}

func TestPersistWrapsRefreshError(t *testing.T) {
	src := Persist(&sequenceSource{err: errors.New("invalid_grant")}, "/tmp/token.json", nil, nil)
	_, err := src.Token()
	if err == nil || !strings.Contains(err.Error(), "invalid_grant") {
		t.Fatalf("err = %v", err)
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  bool
		status   int
	}{
		{"ok", "?state=s1&code=abc", "abc", false, http.StatusOK},
		{"state mismatch", "?state=other&code=abc", "", true, http.StatusBadRequest},
		{"denied", "?state=s1&error=access_denied", "", true, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			h := callbackHandler("s1", results)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}

			res := <-results
			if (res.err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", res.err, tt.wantErr)
			}
			if res.code != tt.wantCode {
				t.Fatalf("code = %q, want %q", res.code, tt.wantCode)
			}
		})
	}
}

func TestOutlookConfigDefaultsTenant(t *testing.T) {
	cfg := OutlookConfig("client", "")
	if !strings.Contains(cfg.Endpoint.AuthURL, "/common/") {
		t.Fatalf("AuthURL = %q", cfg.Endpoint.AuthURL)
	}
	if cfg.RedirectURL != RedirectURL {
		t.Fatalf("RedirectURL = %q", cfg.RedirectURL)
	}
}
