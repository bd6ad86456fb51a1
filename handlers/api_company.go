package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/services"
)

// HandleCompanyGet returns the caller's company profile.
// Route: GET /api/company
func HandleCompanyGet(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := services.FindCompany(app, companyID(e))
		if err != nil {
			return respondError(e, "company_get", err)
		}
		return e.JSON(http.StatusOK, services.CompanyFromRecord(rec))
	}
}

// HandleCompanyUpdate replaces the caller's company profile.
// Route: PUT /api/company
func HandleCompanyUpdate(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in services.Company
		if err := decodeJSON(e, &in); err != nil {
			return jsonError(e, http.StatusBadRequest, "Invalid request body")
		}

		rec, err := services.UpdateCompany(app, companyID(e), in)
		if err != nil {
			return respondError(e, "company_update", err)
		}
		return e.JSON(http.StatusOK, services.CompanyFromRecord(rec))
	}
}
