package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/xuri/excelize/v2"

	"quotedesk/config"
	"quotedesk/services"
	"quotedesk/testhelpers"
)

var testQuotationConfig = config.QuotationConfig{ValidityDays: 15, NumberBase: 1000}

// tenant is a company with one user, as seen by the auth middleware.
type tenant struct {
	company *core.Record
	user    *core.Record
}

func newTenant(t *testing.T, app *pocketbase.PocketBase, name, email string) tenant {
	t.Helper()
	company := testhelpers.CreateTestCompany(t, app, name)
	user := testhelpers.CreateTestUser(t, app, company.Id, email, "secreto1")
	return tenant{company: company, user: user}
}

func (tn tenant) do(t *testing.T, app *pocketbase.PocketBase, handler func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, asUser(req, tn.user.Id, tn.company.Id), rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

const sampleQuotation = `{
	"clientName": "Ana Pérez",
	"clientEmail": "ana@example.com",
	"quotationNumber": 99,
	"total": 1,
	"items": [
		{"quantity": "2", "description": "Camiseta", "unit": "$ 1.000", "discountUnit": "100"},
		{"quantity": "", "description": "", "unit": "", "discountUnit": ""},
		{"quantity": "1", "description": "Estampado", "unit": "500", "discountUnit": ""}
	]
}`

func createQuotation(t *testing.T, app *pocketbase.PocketBase, tn tenant, body string) services.Quotation {
	t.Helper()
	rec := tn.do(t, app, HandleQuotationCreate(app, testQuotationConfig), jsonRequest(t, http.MethodPost, "/api/quotations", body))
	expectStatus(t, rec, http.StatusCreated)
	var q services.Quotation
	decodeBody(t, rec, &q)
	return q
}

func TestHandleQuotationCreate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tn := newTenant(t, app, "Acme", "a@acme.co")

	q := createQuotation(t, app, tn, sampleQuotation)

	if q.Number != 1001 {
		t.Errorf("number = %d, want 1001 (client value ignored)", q.Number)
	}
	if q.Subtotal != 2500 || q.Discount != 200 || q.Total != 2300 {
		t.Errorf("totals = %v/%v/%v, want 2500/200/2300", q.Subtotal, q.Discount, q.Total)
	}
	if len(q.Items) != 2 {
		t.Errorf("items = %d, want empty line dropped", len(q.Items))
	}
	if q.Display.Total != "$ 2.300" {
		t.Errorf("display total = %q", q.Display.Total)
	}
	issue, _ := time.Parse("2006-01-02", q.IssueDate)
	valid, _ := time.Parse("2006-01-02", q.ValidUntil)
	if valid.Sub(issue) != 15*24*time.Hour {
		t.Errorf("validity = %s..%s, want 15 days", q.IssueDate, q.ValidUntil)
	}

	second := createQuotation(t, app, tn, `{"items": [{"quantity": "1"}]}`)
	if second.Number != 1002 {
		t.Errorf("second number = %d, want 1002", second.Number)
	}
	if second.ClientName != services.DefaultClientName {
		t.Errorf("client name = %q, want placeholder", second.ClientName)
	}
}

func TestHandleQuotationCreate_Errors(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tn := newTenant(t, app, "Acme", "a@acme.co")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{"no items", `{"clientName": "Ana", "items": [{"quantity": "", "description": " "}]}`, http.StatusBadRequest, ""},
		{"negative quantity", `{"items": [{"quantity": "-1", "unit": "10"}]}`, http.StatusBadRequest, "items.0.quantity"},
		{"bad email", `{"clientEmail": "nope", "items": [{"quantity": "1"}]}`, http.StatusBadRequest, "clientEmail"},
		{"valid before issue", `{"dateExp": "2026-03-10", "dateValid": "2026-03-01", "items": [{"quantity": "1"}]}`, http.StatusBadRequest, "dateValid"},
		{"malformed json", `{"items": [`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tn.do(t, app, HandleQuotationCreate(app, testQuotationConfig), jsonRequest(t, http.MethodPost, "/api/quotations", tt.body))
			expectStatus(t, rec, tt.wantStatus)
			var body apiError
			decodeBody(t, rec, &body)
			if body.Error == "" {
				t.Error("expected error message")
			}
			if tt.wantField != "" {
				if _, ok := body.Fields[tt.wantField]; !ok {
					t.Errorf("fields %v missing %q", body.Fields, tt.wantField)
				}
			}
		})
	}

	// Failed creates do not consume numbers.
	q := createQuotation(t, app, tn, `{"items": [{"quantity": "1"}]}`)
	if q.Number != 1001 {
		t.Errorf("number after failures = %d, want 1001", q.Number)
	}
}

func TestHandleQuotationGetUpdateDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	owner := newTenant(t, app, "Acme", "a@acme.co")
	other := newTenant(t, app, "Other", "o@other.co")
	q := createQuotation(t, app, owner, sampleQuotation)

	get := func(tn tenant) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/quotations/"+q.ID, nil)
		req.SetPathValue("id", q.ID)
		return tn.do(t, app, HandleQuotationGet(app), req)
	}

	expectStatus(t, get(owner), http.StatusOK)
	expectStatus(t, get(other), http.StatusNotFound)

	// Update replaces the snapshot but keeps the number.
	req := jsonRequest(t, http.MethodPut, "/api/quotations/"+q.ID, `{"clientName": "Luis", "items": [{"quantity": "3", "unit": "100"}]}`)
	req.SetPathValue("id", q.ID)
	rec := owner.do(t, app, HandleQuotationUpdate(app, testQuotationConfig), req)
	expectStatus(t, rec, http.StatusOK)
	var updated services.Quotation
	decodeBody(t, rec, &updated)
	if updated.Number != q.Number || updated.ClientName != "Luis" || updated.Total != 300 || len(updated.Items) != 1 {
		t.Errorf("updated = %+v", updated)
	}

	// Other tenants can neither update nor delete.
	req = jsonRequest(t, http.MethodPut, "/api/quotations/"+q.ID, `{"items": [{"quantity": "1"}]}`)
	req.SetPathValue("id", q.ID)
	expectStatus(t, other.do(t, app, HandleQuotationUpdate(app, testQuotationConfig), req), http.StatusNotFound)

	del := func(tn tenant) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/quotations/"+q.ID, nil)
		req.SetPathValue("id", q.ID)
		return tn.do(t, app, HandleQuotationDelete(app), req)
	}
	expectStatus(t, del(other), http.StatusNotFound)
	expectStatus(t, del(owner), http.StatusNoContent)
	expectStatus(t, get(owner), http.StatusNotFound)

	// Deleted numbers are not reused.
	next := createQuotation(t, app, owner, `{"items": [{"quantity": "1"}]}`)
	if next.Number != q.Number+1 {
		t.Errorf("number after delete = %d, want %d", next.Number, q.Number+1)
	}
}

func TestHandleQuotationListAndNextNumber(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tn := newTenant(t, app, "Acme", "a@acme.co")
	for i, name := range []string{"Ana", "Luis", "Ana María", "Pedro", "Sofía", "Juan", "Anabel"} {
		testhelpers.CreateTestQuotation(t, app, tn.company.Id, 1001+i, name, 1000)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/quotations?q=ana&perPage=2&page=1", nil)
	rec := tn.do(t, app, HandleQuotationList(app), req)
	expectStatus(t, rec, http.StatusOK)
	var page services.QuotationPage
	decodeBody(t, rec, &page)
	if page.TotalItems != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Errorf("page = %d items / %d total / %d pages", len(page.Items), page.TotalItems, page.TotalPages)
	}
	if page.Items[0].Number != 1007 {
		t.Errorf("first number = %d, want newest first", page.Items[0].Number)
	}

	rec = tn.do(t, app, HandleQuotationList(app), httptest.NewRequest(http.MethodGet, "/api/quotations", nil))
	decodeBody(t, rec, &page)
	if len(page.Items) != services.DefaultPerPage {
		t.Errorf("default page size = %d, want %d", len(page.Items), services.DefaultPerPage)
	}

	for i := 0; i < 2; i++ {
		rec = tn.do(t, app, HandleQuotationNextNumber(app, testQuotationConfig), httptest.NewRequest(http.MethodGet, "/api/quotations/next/number", nil))
		expectStatus(t, rec, http.StatusOK)
		var next map[string]int
		decodeBody(t, rec, &next)
		if next["nextNumber"] != 1008 {
			t.Errorf("call %d nextNumber = %d, want 1008 without allocating", i, next["nextNumber"])
		}
	}
}

func TestHandleQuotationStats(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tn := newTenant(t, app, "Acme", "a@acme.co")
	testhelpers.CreateTestQuotation(t, app, tn.company.Id, 1001, "Ana", 1000)
	testhelpers.CreateTestQuotation(t, app, tn.company.Id, 1002, "Luis", 3000)

	rec := tn.do(t, app, HandleQuotationStats(app), httptest.NewRequest(http.MethodGet, "/api/quotations/stats", nil))
	expectStatus(t, rec, http.StatusOK)

	var body struct {
		All struct {
			Count   int     `json:"count"`
			Total   float64 `json:"total"`
			Average float64 `json:"average"`
		} `json:"all"`
		Display map[string]string `json:"display"`
	}
	decodeBody(t, rec, &body)
	if body.All.Count != 2 || body.All.Total != 4000 || body.All.Average != 2000 {
		t.Errorf("all = %+v", body.All)
	}
	if body.Display["total"] == "" {
		t.Error("expected display strings")
	}
}

func TestHandleQuotationPreview(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/api/quotations/preview", `{"items": [
		{"quantity": "2", "unit": "1000", "discountUnit": "1500"},
		{"quantity": "abc", "description": "Diseño", "unit": "300"},
		{}
	]}`)
	rec := httptest.NewRecorder()
	if err := HandleQuotationPreview()(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatal(err)
	}
	expectStatus(t, rec, http.StatusOK)

	var body previewResponse
	decodeBody(t, rec, &body)
	if len(body.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(body.Items))
	}
	// Discount above price clamps the line at zero, but the aggregate
	// discount is not clamped.
	if body.Items[0].Total != "0" {
		t.Errorf("line total = %q, want 0", body.Items[0].Total)
	}
	if body.Subtotal != 2000 || body.Discount != 3000 || body.Total != -1000 {
		t.Errorf("totals = %v/%v/%v", body.Subtotal, body.Discount, body.Total)
	}
}

func TestHandleQuotationExport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tn := newTenant(t, app, "Acme", "a@acme.co")
	q := createQuotation(t, app, tn, sampleQuotation)

	tests := []struct {
		format      string
		contentType string
		magic       []byte
	}{
		{FormatPDF, "application/pdf", []byte("%PDF")},
		{FormatXLSX, exportContentTypes[FormatXLSX], []byte("PK")},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/quotations/"+q.ID+"/"+tt.format, nil)
			req.SetPathValue("id", q.ID)
			rec := tn.do(t, app, HandleQuotationExport(app, tt.format), req)
			expectStatus(t, rec, http.StatusOK)

			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q", ct)
			}
			wantDisposition := `attachment; filename="cotizacion-1001.` + tt.format + `"`
			if cd := rec.Header().Get("Content-Disposition"); cd != wantDisposition {
				t.Errorf("Content-Disposition = %q, want %q", cd, wantDisposition)
			}
			if !bytes.HasPrefix(rec.Body.Bytes(), tt.magic) {
				t.Errorf("body does not start with %q", tt.magic)
			}
		})
	}

	t.Run("xlsx content", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/quotations/"+q.ID+"/xlsx", nil)
		req.SetPathValue("id", q.ID)
		rec := tn.do(t, app, HandleQuotationExport(app, FormatXLSX), req)
		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("open xlsx: %v", err)
		}
		defer f.Close()
		if name := f.GetSheetName(0); name != "Cotización 1001" {
			t.Errorf("sheet = %q", name)
		}
	})

	t.Run("other tenant", func(t *testing.T) {
		other := newTenant(t, app, "Other", "o@other.co")
		req := httptest.NewRequest(http.MethodGet, "/api/quotations/"+q.ID+"/pdf", nil)
		req.SetPathValue("id", q.ID)
		expectStatus(t, other.do(t, app, HandleQuotationExport(app, FormatPDF), req), http.StatusNotFound)
	})
}
