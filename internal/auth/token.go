// Package auth keeps provider OAuth2 tokens on disk and runs the browser
// authorization flow that creates them.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
	"google.golang.org/api/calendar/v3"
)

// RedirectURL is the loopback address registered with both providers.
const RedirectURL = "http://localhost:8085/callback"

// Load reads a token written by Save.
func Load(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s holds no token", path)
	}
	return tok, nil
}

// Save writes tok to path, readable by the owner only.
func Save(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// persistingSource writes every refreshed token back to disk.
type persistingSource struct {
	base oauth2.TokenSource
	path string
	log  *zap.Logger

	mu   sync.Mutex
	last string
}

// Persist wraps base so that a token it refreshes is saved to path. A
// failed save is logged and the fresh token is still returned.
func Persist(base oauth2.TokenSource, path string, current *oauth2.Token, log *zap.Logger) oauth2.TokenSource {
	if log == nil {
		log = zap.NewNop()
	}
	s := &persistingSource{base: base, path: path, log: log}
	if current != nil {
		s.last = current.AccessToken
	}
	return s
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token (delete %s and run 'dayview auth'): %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := Save(s.path, tok); err != nil {
			s.log.Warn("persisting refreshed token failed", zap.String("path", s.path), zap.Error(err))
		} else {
			s.log.Debug("token refreshed", zap.Time("expiry", tok.Expiry))
		}
	}
	return tok, nil
}

// GoogleConfig builds the read-only Calendar config from a downloaded
// OAuth client JSON file.
func GoogleConfig(credentials []byte) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(credentials, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	cfg.RedirectURL = RedirectURL
	return cfg, nil
}

// OutlookConfig builds the Microsoft identity platform config for a public
// client. An empty tenant means "common".
func OutlookConfig(clientID, tenantID string) *oauth2.Config {
	if tenantID == "" {
		tenantID = "common"
	}
	return &oauth2.Config{
		ClientID:    clientID,
		Endpoint:    microsoft.AzureADEndpoint(tenantID),
		RedirectURL: RedirectURL,
		Scopes: []string{
			"https://graph.microsoft.com/Calendars.Read",
			"https://graph.microsoft.com/User.Read",
			"offline_access",
		},
	}
}
