package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/auth"
	"quotedesk/metrics"
	"quotedesk/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string           `json:"token"`
	UserID    string           `json:"userId"`
	CompanyID string           `json:"companyId"`
	User      services.Account `json:"user"`
	Company   services.Company `json:"company"`
}

// issueToken signs a token for user, sets the auth cookie and writes the
// auth response with status.
func issueToken(e *core.RequestEvent, s Session, status int, user, company *core.Record) error {
	token, err := s.Tokens.Generate(user.Id, company.Id)
	if err != nil {
		slog.Error("auth: failed to sign token", "user", user.Id, "error", err)
		return jsonError(e, http.StatusInternalServerError, internalErrorMessage)
	}
	s.setCookie(e, token)
	return e.JSON(status, authResponse{
		Token:     token,
		UserID:    user.Id,
		CompanyID: company.Id,
		User:      services.AccountFromRecord(user),
		Company:   services.CompanyFromRecord(company),
	})
}

// HandleRegister creates a company with its admin user and signs them in.
// Route: POST /api/auth/register
func HandleRegister(app core.App, s Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in services.RegisterInput
		if err := decodeJSON(e, &in); err != nil {
			return jsonError(e, http.StatusBadRequest, "Invalid request body")
		}

		company, user, err := services.RegisterCompany(app, in)
		if err != nil {
			return respondError(e, "auth_register", err)
		}
		slog.Info("auth: company registered", "company", company.Id, "user", user.Id)
		return issueToken(e, s, http.StatusCreated, user, company)
	}
}

// HandleLogin verifies credentials and returns a token.
// Route: POST /api/auth/login
func HandleLogin(app core.App, s Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in loginRequest
		if err := decodeJSON(e, &in); err != nil {
			return jsonError(e, http.StatusBadRequest, "Invalid request body")
		}

		user, err := services.Authenticate(app, in.Email, in.Password)
		metrics.ObserveLogin(err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return jsonError(e, http.StatusUnauthorized, err.Error())
		}
		if err != nil {
			return respondError(e, "auth_login", err)
		}

		company, err := services.FindCompany(app, user.GetString("company"))
		if err != nil {
			return respondError(e, "auth_login", err)
		}
		return issueToken(e, s, http.StatusOK, user, company)
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid   bool              `json:"valid"`
	User    *services.Account `json:"user,omitempty"`
	Company *services.Company `json:"company,omitempty"`
}

// HandleVerify reports whether a token is valid and still points at an
// existing user of its company. The token comes from the body, the
// Authorization header or the auth cookie, in that order.
// Route: POST /api/auth/verify
func HandleVerify(app core.App, s Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in verifyRequest
		if e.Request.ContentLength != 0 {
			_ = decodeJSON(e, &in)
		}

		token := in.Token
		if token == "" {
			token, _ = s.tokenFromRequest(e.Request)
		}
		claims, err := s.Tokens.Validate(token)
		if err != nil {
			return e.JSON(http.StatusUnauthorized, verifyResponse{Valid: false})
		}

		user, err := services.FindAccount(app, claims.UserID, claims.CompanyID)
		if err != nil {
			return e.JSON(http.StatusUnauthorized, verifyResponse{Valid: false})
		}
		company, err := services.FindCompany(app, claims.CompanyID)
		if err != nil {
			return e.JSON(http.StatusUnauthorized, verifyResponse{Valid: false})
		}

		acct := services.AccountFromRecord(user)
		profile := services.CompanyFromRecord(company)
		return e.JSON(http.StatusOK, verifyResponse{Valid: true, User: &acct, Company: &profile})
	}
}

// HandleLogout clears the auth cookie. Bearer tokens stay valid until they
// expire.
// Route: POST /api/auth/logout
func HandleLogout(s Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s.clearCookie(e)
		return e.NoContent(http.StatusNoContent)
	}
}
