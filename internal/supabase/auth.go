package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// Session is the signed-in user saved between runs.
type Session struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// Auth signs users in and up with email and password.
type Auth struct {
	client *supabase.Client
}

func NewAuth(client *supabase.Client) *Auth {
	return &Auth{client: client}
}

func validateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("email is required")
	}
	if password == "" {
		return errors.New("password is required")
	}
	return nil
}

// SignIn exchanges credentials for a session.
func (a *Auth) SignIn(email, password string) (*Session, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	resp, err := a.client.Auth.SignInWithEmailPassword(strings.TrimSpace(email), password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return sessionFrom(resp.Session), nil
}

// SignUp registers a new user. When the project requires email
// confirmation the returned session has no access token.
func (a *Auth) SignUp(email, password string) (*Session, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	resp, err := a.client.Auth.Signup(types.SignupRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	s := sessionFrom(resp.Session)
	if s.UserID == "" && resp.User.ID != uuid.Nil {
		s.UserID = resp.User.ID.String()
		s.Email = resp.User.Email
	}
	return s, nil
}

func sessionFrom(s types.Session) *Session {
	out := &Session{
		Email:        s.User.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
	}
	if s.User.ID != uuid.Nil {
		out.UserID = s.User.ID.String()
	}
	return out
}

// DefaultSessionPath returns $XDG_CONFIG_HOME/careerflow/session.json.
func DefaultSessionPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "careerflow", "session.json"), nil
}

// SaveSession writes s to path with owner-only permissions.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// LoadSession reads a saved session. A missing file returns nil, nil.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
