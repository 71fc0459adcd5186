package server

import (
	"errors"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/auth"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/config"
)

// LoginPageResponse describes the login form for the console client.
type LoginPageResponse struct {
	Action     string `json:"action"`
	RedirectTo string `json:"redirect_to"`
}

// HandleLoginPage serves GET on the login path. The guard has already sent
// signed-in administrators to the admin home.
func HandleLoginPage(routes config.RoutesConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, LoginPageResponse{
			Action:     routes.LoginPath,
			RedirectTo: auth.SafeRedirectTarget(r.URL.Query().Get(auth.RedirectParam), routes.AdminHome),
		})
	}
}

// HandleLogin handles POST on the login path with email, password and an
// optional redirectTo form field (or query parameter). Only same-origin
// relative targets are honoured.
func HandleLogin(sessions *auth.SessionResolver, cookie auth.SessionCookie, routes config.RoutesConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		email := strings.TrimSpace(r.PostForm.Get("email"))
		password := r.PostForm.Get("password")
		if email == "" || password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		token, identity, err := sessions.Login(r.Context(), email, password, auth.ClientInfo{
			UserAgent: r.UserAgent(),
			IPAddress: clientIP(r),
		})
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				log.Printf("login failed for %s", email)
				writeError(w, http.StatusUnauthorized, "invalid email or password")
				return
			}
			log.Printf("login error for %s: %v", email, err)
			writeError(w, http.StatusInternalServerError, "login failed")
			return
		}

		cookie.Set(w, r, token, identity.ExpiresAt)
		target := auth.SafeRedirectTarget(r.Form.Get(auth.RedirectParam), routes.AdminHome)
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

// HandleLogout revokes the caller's session and returns to the login path.
func HandleLogout(sessions *auth.SessionResolver, cookie auth.SessionCookie, routes config.RoutesConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Logout(r.Context(), cookie.Token(r)); err != nil {
			log.Printf("logout failed: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to revoke session")
			return
		}
		cookie.Clear(w, r)
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, routes.LoginPath, http.StatusSeeOther)
	}
}

// clientIP prefers the address set by middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
