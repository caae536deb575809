package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/ritahmida/boutique/config"
	"github.com/ritahmida/boutique/pkg/auth"
)

// ErrInvalidCredentials is returned for a bad username/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CredentialStore resolves admin credentials. The store is injected into
// AuthService so handlers never consult process-wide auth state.
type CredentialStore interface {
	// Lookup returns the bcrypt password hash for username.
	// ok is false when the username is unknown.
	Lookup(username string) (hash string, ok bool)
}

// ConfigCredentials is the production CredentialStore: the single admin
// account defined by ADMIN_USERNAME / ADMIN_PASSWORD_HASH.
type ConfigCredentials struct{}

func (ConfigCredentials) Lookup(username string) (string, bool) {
	if username != config.AdminUsername() {
		return "", false
	}
	hash := config.AdminPasswordHash()
	return hash, hash != ""
}

// AuthService authenticates the admin and issues JWTs.
type AuthService struct {
	creds CredentialStore
}

func NewAuthService(creds CredentialStore) *AuthService {
	return &AuthService{creds: creds}
}

// Attempt verifies the credential pair and returns a signed token.
func (s *AuthService) Attempt(username, password string) (string, error) {
	hash, ok := s.creds.Lookup(username)
	if !ok {
		return "", ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return auth.GenerateToken(username, "admin")
}
