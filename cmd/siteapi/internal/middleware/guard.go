package middleware

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/auth"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/config"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/telemetry"
)

const tracerName = "siteapi/middleware"

// IdentityResolver resolves a session token. (nil, nil) is anonymous.
type IdentityResolver interface {
	ValidateSession(ctx context.Context, token string) (*auth.Identity, error)
}

// ProfileLookup returns the administrator profile for an identity, or
// (nil, nil) when there is none.
type ProfileLookup interface {
	GetProfile(ctx context.Context, id string) (*auth.AdministratorProfile, error)
}

// Action is the outcome of a guard evaluation.
type Action int

const (
	// Allow lets the request through.
	Allow Action = iota
	// Redirect sends the browser to Decision.Location.
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the result of Guard.Evaluate.
type Decision struct {
	Action   Action
	Location string
	// Reason is a short machine-readable cause, used in logs and metrics.
	Reason string
	// Principal is set when the caller is an identity with a profile.
	Principal *auth.Principal
	// Refresh carries a re-issued session cookie. It must be written whatever
	// the action.
	Refresh *http.Cookie
}

// GuardConfig describes the protected surface.
type GuardConfig struct {
	ProtectedPrefix string
	LoginPath       string
	AdminHome       string
	PublicHome      string
	// Timeout bounds the identity and profile lookups together.
	Timeout time.Duration
}

// Guard gates every path under the protected prefix behind a session and an
// administrator profile.
type Guard struct {
	cfg      GuardConfig
	sessions IdentityResolver
	profiles ProfileLookup
	cookie   auth.SessionCookie
	metrics  *telemetry.SiteMetrics
}

// NewGuard creates a route guard.
func NewGuard(cfg GuardConfig, sessions IdentityResolver, profiles ProfileLookup, cookie auth.SessionCookie, metrics *telemetry.SiteMetrics) *Guard {
	return &Guard{
		cfg:      cfg,
		sessions: sessions,
		profiles: profiles,
		cookie:   cookie,
		metrics:  metrics,
	}
}

// Evaluate decides what happens to r.
//
//   - the login path with identity and profile redirects to the admin home;
//   - a protected path without identity redirects to the login path with
//     redirectTo set to the requested path;
//   - a protected path with identity but no profile redirects to the public home;
//   - everything else is allowed.
//
// Lookup errors and timeouts count as "no identity" or "no profile".
func (g *Guard) Evaluate(r *http.Request) Decision {
	ctx, span := telemetry.StartSpan(r.Context(), tracerName, "guard.Evaluate",
		attribute.String(telemetry.AttrGuardPath, r.URL.Path),
	)
	defer span.End()

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	path := r.URL.Path
	isLogin := path == g.cfg.LoginPath
	isProtected := g.protected(path)

	var d Decision
	identity := g.resolveIdentity(ctx, r)
	if identity != nil && identity.Refreshed {
		d.Refresh = g.cookie.New(r, g.cookie.Token(r), identity.ExpiresAt)
	}

	var profile *auth.AdministratorProfile
	if identity != nil && (isLogin || isProtected) {
		profile = g.resolveProfile(ctx, identity.ID)
	}
	if identity != nil && profile != nil {
		d.Principal = &auth.Principal{Identity: *identity, Profile: *profile}
	}

	switch {
	case isLogin && d.Principal != nil:
		d.Action, d.Location, d.Reason = Redirect, g.cfg.AdminHome, "already_signed_in"
	case isLogin:
		d.Action, d.Reason = Allow, "login"
	case isProtected && identity == nil:
		d.Action, d.Reason = Redirect, "anonymous"
		d.Location = g.cfg.LoginPath + "?" + auth.RedirectParam + "=" + url.QueryEscape(path)
	case isProtected && profile == nil:
		d.Action, d.Location, d.Reason = Redirect, g.cfg.PublicHome, "no_profile"
		log.Printf("guard: identity %s (%s) has no administrator profile, denied %s", identity.ID, identity.Email, path)
	case isProtected:
		d.Action, d.Reason = Allow, "administrator"
	default:
		d.Action, d.Reason = Allow, "public"
	}

	span.SetAttributes(
		attribute.String(telemetry.AttrGuardDecision, d.Action.String()),
		attribute.String(telemetry.AttrGuardReason, d.Reason),
	)
	if d.Principal != nil {
		span.SetAttributes(
			attribute.String(telemetry.AttrPrincipalID, d.Principal.Identity.ID),
			attribute.String(telemetry.AttrPrincipalRole, d.Principal.Profile.Role),
		)
	}
	g.metrics.RecordGuardDecision(ctx, d.Action.String(), d.Reason)
	return d
}

// Middleware applies Evaluate to every request it wraps.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Evaluate(r)
		if d.Refresh != nil {
			http.SetCookie(w, d.Refresh)
		}

		if d.Action == Redirect {
			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, r, d.Location, http.StatusFound)
			return
		}

		if d.Principal != nil {
			r = r.WithContext(auth.SetPrincipal(r.Context(), *d.Principal))
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) protected(path string) bool {
	return config.UnderPrefix(path, g.cfg.ProtectedPrefix)
}

func (g *Guard) resolveIdentity(ctx context.Context, r *http.Request) *auth.Identity {
	token := g.cookie.Token(r)
	if token == "" {
		return nil
	}
	identity, err := g.sessions.ValidateSession(ctx, token)
	if err != nil {
		log.Printf("guard: session lookup failed, treating as anonymous: %v", err)
		return nil
	}
	return identity
}

func (g *Guard) resolveProfile(ctx context.Context, id string) *auth.AdministratorProfile {
	profile, err := g.profiles.GetProfile(ctx, id)
	if err != nil {
		log.Printf("guard: profile lookup for %s failed, treating as unauthorized: %v", id, err)
		return nil
	}
	return profile
}
