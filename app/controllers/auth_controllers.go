// Package controllers maps HTTP requests onto the services and shapes
// their results into the JSON envelope.
package controllers

import (
	"errors"
	"net/http"

	"github.com/ritahmida/boutique/app/services"
	"github.com/ritahmida/boutique/pkg/auth"
	"github.com/ritahmida/boutique/pkg/bind"
	"github.com/ritahmida/boutique/pkg/logger"
	"github.com/ritahmida/boutique/pkg/middleware"
	"github.com/ritahmida/boutique/pkg/response"
	"github.com/ritahmida/boutique/pkg/session"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login verifies the admin credentials, sets the token cookie, and also
// returns the token in the body for Bearer clients.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, err := c.service.Attempt(body.Username, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		logger.WithCtx(r.Context()).Error("auth: login failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Fresh dashboard session: a pre-login cookie must not carry over.
	sess := session.FromCtx(r)
	sess.Regenerate()
	sess.Set("username", body.Username)
	if err := sess.Save(w); err != nil {
		logger.WithCtx(r.Context()).Warn("auth: session save failed", "error", err)
	}

	response.Success(w, map[string]string{"token": token})
}

// Logout clears the token cookie and destroys the dashboard session.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	sess := session.FromCtx(r)
	sess.Invalidate()
	if err := sess.Save(w); err != nil {
		logger.WithCtx(r.Context()).Warn("auth: session invalidate failed", "error", err)
	}

	response.Message(w, "Logged out")
}

// Check reports whether the request carries a valid token.
// Mounted behind the auth middleware, so reaching it means yes.
func (c *AuthController) Check(w http.ResponseWriter, r *http.Request) {
	_, hasSession := session.FromCtx(r).GetString("username")
	response.Success(w, map[string]interface{}{
		"authenticated": true,
		"username":      middleware.UsernameFromCtx(r.Context()),
		"role":          middleware.RoleFromCtx(r.Context()),
		"session":       hasSession,
	})
}
