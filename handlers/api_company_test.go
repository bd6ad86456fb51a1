package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"quotedesk/services"
	"quotedesk/testhelpers"
)

func TestHandleCompany(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tn := newTenant(t, app, "Acme", "a@acme.co")

	rec := tn.do(t, app, HandleCompanyGet(app), httptest.NewRequest(http.MethodGet, "/api/company", nil))
	expectStatus(t, rec, http.StatusOK)
	var c services.Company
	decodeBody(t, rec, &c)
	if c.ID != tn.company.Id || c.Name != "Acme" || c.ColorPrimary != "#1F6FEB" {
		t.Errorf("company = %+v", c)
	}

	rec = tn.do(t, app, HandleCompanyUpdate(app), jsonRequest(t, http.MethodPut, "/api/company",
		`{"name": "Acme SAS", "nit": "900", "colorPrimary": "#000000", "includesVat": true, "vatPercent": 19}`))
	expectStatus(t, rec, http.StatusOK)
	decodeBody(t, rec, &c)
	if c.Name != "Acme SAS" || c.TaxID != "900" || !c.IncludesVAT || c.VATPercent != 19 {
		t.Errorf("updated = %+v", c)
	}

	rec = tn.do(t, app, HandleCompanyUpdate(app), jsonRequest(t, http.MethodPut, "/api/company", `{"name": "X", "colorPrimary": "red"}`))
	expectStatus(t, rec, http.StatusBadRequest)
	var body apiError
	decodeBody(t, rec, &body)
	if _, ok := body.Fields["colorPrimary"]; !ok {
		t.Errorf("fields = %v", body.Fields)
	}
}
