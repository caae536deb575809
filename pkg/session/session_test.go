package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritahmida/boutique/pkg/session"
)

func runThrough(t *testing.T, req *http.Request, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	session.Middleware(session.DefaultOptions())(handler).ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultOptions().CookieName {
			return c
		}
	}
	return nil
}

func TestSaveWritesCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runThrough(t, req, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Set("username", "admin")
		require.NoError(t, sess.Save(w))
	})

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestUntouchedSessionSetsNoCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := runThrough(t, req, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		require.NoError(t, sess.Save(w))
	})

	assert.Nil(t, sessionCookie(rec), "an unchanged session must not mint a cookie")
}

func TestExistingCookieKeepsID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultOptions().CookieName, Value: "abc123"})

	runThrough(t, req, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", session.FromCtx(r).ID())
	})
}

func TestRegenerateSwapsID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultOptions().CookieName, Value: "abc123"})

	rec := runThrough(t, req, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Regenerate()
		sess.Set("username", "admin")
		assert.NotEqual(t, "abc123", sess.ID())
		require.NoError(t, sess.Save(w))
	})

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.NotEqual(t, "abc123", cookie.Value)
}

func TestInvalidateExpiresCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.DefaultOptions().CookieName, Value: "abc123"})

	rec := runThrough(t, req, func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromCtx(r)
		sess.Invalidate()
		require.NoError(t, sess.Save(w))

		_, ok := sess.Get("username")
		assert.False(t, ok)
	})

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}
