package auth

import (
	"net/http"
	"time"
)

// SessionCookie reads and writes the session cookie.
type SessionCookie struct {
	Name string
	// Secure forces the Secure attribute; otherwise it follows the request scheme.
	Secure bool
}

// Token returns the raw session token carried by r, if any.
func (c SessionCookie) Token(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// New builds the cookie that carries token until expiresAt.
func (c SessionCookie) New(r *http.Request, token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// Set writes the session cookie to w.
func (c SessionCookie) Set(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, c.New(r, token, expiresAt))
}

// Clear expires the session cookie.
func (c SessionCookie) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (c SessionCookie) secure(r *http.Request) bool {
	return c.Secure || r.TLS != nil || r.URL.Scheme == "https"
}
