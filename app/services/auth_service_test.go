package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ritahmida/boutique/app/services"
	"github.com/ritahmida/boutique/pkg/auth"
)

type staticCredentials map[string]string

func (s staticCredentials) Lookup(username string) (string, bool) {
	hash, ok := s[username]
	return hash, ok
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAttemptIssuesValidToken(t *testing.T) {
	svc := services.NewAuthService(staticCredentials{
		"rita": hashOf(t, "s3cret-pass"),
	})

	token, err := svc.Attempt("rita", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "rita", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestAttemptRejectsBadCredentials(t *testing.T) {
	svc := services.NewAuthService(staticCredentials{
		"rita": hashOf(t, "s3cret-pass"),
	})

	_, err := svc.Attempt("rita", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Attempt("nobody", "s3cret-pass")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Attempt("", "")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := auth.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
