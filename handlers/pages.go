package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/auth"
	"quotedesk/metrics"
	"quotedesk/services"
	"quotedesk/templates"
)

func render(e *core.RequestEvent, status int, component templ.Component) error {
	e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	e.Response.WriteHeader(status)
	return component.Render(e.Request.Context(), e.Response)
}

// HandleLoginPage shows the login form, or goes to the dashboard when the
// visitor already has a valid session.
// Route: GET /login
func HandleLoginPage(s Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := s.identity(e.Request); err == nil {
			return e.Redirect(http.StatusFound, "/")
		}
		return render(e, http.StatusOK, templates.LoginPage(templates.LoginData{}))
	}
}

// HandleLoginSubmit signs in from the HTML form.
// Route: POST /login
func HandleLoginSubmit(app core.App, s Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		email := strings.TrimSpace(e.Request.FormValue("email"))
		password := e.Request.FormValue("password")

		user, err := services.Authenticate(app, email, password)
		metrics.ObserveLogin(err)
		if err != nil {
			status, message := http.StatusUnauthorized, "Correo o contraseña incorrectos"
			if !errors.Is(err, auth.ErrInvalidCredentials) {
				slog.Error("login: authentication failed", "error", err)
				status, message = http.StatusInternalServerError, "No fue posible iniciar sesión. Intenta de nuevo."
			}
			return render(e, status, templates.LoginPage(templates.LoginData{Email: email, Error: message}))
		}

		token, err := s.Tokens.Generate(user.Id, user.GetString("company"))
		if err != nil {
			slog.Error("login: failed to sign token", "user", user.Id, "error", err)
			return render(e, http.StatusInternalServerError, templates.LoginPage(templates.LoginData{
				Email: email,
				Error: "No fue posible iniciar sesión. Intenta de nuevo.",
			}))
		}
		s.setCookie(e, token)
		return redirect(e, "/")
	}
}

// HandleLogoutPage clears the session cookie and returns to the login form.
// Route: GET /logout
func HandleLogoutPage(s Session) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		s.clearCookie(e)
		return e.Redirect(http.StatusFound, "/login")
	}
}

// pageData loads the names shown in the top bar.
func pageData(app core.App, e *core.RequestEvent) templates.PageData {
	id := identityOf(e)
	data := templates.PageData{}
	if company, err := services.FindCompany(app, id.CompanyID); err == nil {
		data.CompanyName = company.GetString("name")
	}
	if user, err := services.FindAccount(app, id.UserID, id.CompanyID); err == nil {
		data.UserName = user.GetString("name")
	}
	return data
}

// HandleDashboard lists quotations six per page with search and stats.
// Route: GET /
func HandleDashboard(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		params := listParams(e, services.DefaultPerPage)
		params.PerPage = services.DefaultPerPage

		list, err := services.ListQuotations(app, companyID(e), params)
		if err != nil {
			slog.Error("dashboard: failed to list quotations", "error", err)
			return e.String(http.StatusInternalServerError, internalErrorMessage)
		}
		stats, err := services.ComputeStats(app, companyID(e), time.Now())
		if err != nil {
			slog.Error("dashboard: failed to compute stats", "error", err)
			return e.String(http.StatusInternalServerError, internalErrorMessage)
		}

		return render(e, http.StatusOK, templates.DashboardPage(templates.DashboardData{
			Page:  pageData(app, e),
			Stats: stats,
			List:  list,
		}))
	}
}

// HandleQuotationPrint renders the printable page of a quotation.
// Route: GET /quotations/{id}/print
func HandleQuotationPrint(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildQuotationExportData(app, companyID(e), e.Request.PathValue("id"))
		if errors.Is(err, services.ErrQuotationNotFound) {
			return e.String(http.StatusNotFound, "Cotización no encontrada")
		}
		if err != nil {
			slog.Error("quotation_print: failed to load", "id", e.Request.PathValue("id"), "error", err)
			return e.String(http.StatusInternalServerError, internalErrorMessage)
		}
		return render(e, http.StatusOK, templates.QuotationPrintPage(data))
	}
}

// HandleQuotationDeletePage deletes a quotation from the dashboard.
// Route: DELETE /quotations/{id}
func HandleQuotationDeletePage(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		rec, err := services.FindQuotation(app, companyID(e), id)
		if err != nil {
			return ErrorToast(e, http.StatusNotFound, "Cotización no encontrada")
		}
		number := rec.GetInt("quotation_number")

		if err := services.DeleteQuotation(app, companyID(e), id); err != nil {
			slog.Error("quotation_delete: failed to delete", "id", id, "error", err)
			return ErrorToast(e, http.StatusInternalServerError, "No fue posible eliminar la cotización")
		}
		metrics.IncQuotationDelete()

		SetToast(e, "success", fmt.Sprintf("Cotización N° %d eliminada", number))
		return redirect(e, "/")
	}
}
