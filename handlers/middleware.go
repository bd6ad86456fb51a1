package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/auth"
)

// Session carries what the handlers need to issue and read auth tokens.
type Session struct {
	Tokens     *auth.TokenManager
	CookieName string
}

// tokenFromRequest returns the bearer token, falling back to the auth cookie.
func (s Session) tokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return auth.BearerToken(header)
	}
	cookie, err := r.Cookie(s.CookieName)
	if err != nil || cookie.Value == "" {
		return "", auth.ErrMissingToken
	}
	return cookie.Value, nil
}

func (s Session) identity(r *http.Request) (auth.Identity, error) {
	token, err := s.tokenFromRequest(r)
	if err != nil {
		return auth.Identity{}, err
	}
	claims, err := s.Tokens.Validate(token)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{UserID: claims.UserID, CompanyID: claims.CompanyID}, nil
}

// setCookie stores token in the HttpOnly auth cookie.
func (s Session) setCookie(e *core.RequestEvent, token string) {
	http.SetCookie(e.Response, &http.Cookie{
		Name:     s.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.Tokens.Duration()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   e.Request.TLS != nil,
	})
}

func (s Session) clearCookie(e *core.RequestEvent) {
	http.SetCookie(e.Response, &http.Cookie{
		Name:     s.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// RequireAuth rejects API requests without a valid token and stores the
// caller identity in the request context.
func RequireAuth(s Session) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, err := s.identity(e.Request)
		if err != nil {
			slog.Debug("middleware: rejected api request", "path", e.Request.URL.Path, "error", err)
			return jsonError(e, http.StatusUnauthorized, "Authentication required")
		}
		e.Request = e.Request.WithContext(auth.WithIdentity(e.Request.Context(), id))
		return e.Next()
	}
}

// RequirePageAuth is RequireAuth for HTML pages: it redirects to /login.
func RequirePageAuth(s Session) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, err := s.identity(e.Request)
		if err != nil {
			if _, cookieErr := e.Request.Cookie(s.CookieName); cookieErr == nil {
				s.clearCookie(e)
			}
			return redirect(e, "/login")
		}
		e.Request = e.Request.WithContext(auth.WithIdentity(e.Request.Context(), id))
		return e.Next()
	}
}

// identityOf returns the identity stored by the auth middleware.
func identityOf(e *core.RequestEvent) auth.Identity {
	id, _ := auth.IdentityFrom(e.Request.Context())
	return id
}

func companyID(e *core.RequestEvent) string {
	return identityOf(e).CompanyID
}
