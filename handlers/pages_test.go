package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quotedesk/testhelpers"
)

func TestHandleLoginPage(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := testSession()

	rec := httptest.NewRecorder()
	if err := HandleLoginPage(s)(newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/login", nil), rec)); err != nil {
		t.Fatal(err)
	}
	expectStatus(t, rec, http.StatusOK)
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `action="/login"`, `name="password"`)

	token, _ := s.Tokens.Generate("u", "c")
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: s.CookieName, Value: token})
	rec = httptest.NewRecorder()
	if err := HandleLoginPage(s)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatal(err)
	}
	expectStatus(t, rec, http.StatusFound)
}

func TestHandleLoginSubmit(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	s := testSession()
	company := testhelpers.CreateTestCompany(t, app, "Acme")
	testhelpers.CreateTestUser(t, app, company.Id, "ana@example.com", "secreto1")

	post := func(email, password string) *httptest.ResponseRecorder {
		form := url.Values{"email": {email}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		if err := HandleLoginSubmit(app, s)(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatal(err)
		}
		return rec
	}

	rec := post("ana@example.com", "wrong")
	expectStatus(t, rec, http.StatusUnauthorized)
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "Correo o contraseña incorrectos", `value="ana@example.com"`)

	rec = post("ana@example.com", "secreto1")
	expectStatus(t, rec, http.StatusFound)
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == s.CookieName {
			token = c.Value
		}
	}
	claims, err := s.Tokens.Validate(token)
	if err != nil || claims.CompanyID != company.Id {
		t.Errorf("cookie token claims = %+v, err %v", claims, err)
	}
}

func TestHandleDashboard(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tn := newTenant(t, app, "Estampados La 14", "a@acme.co")
	other := newTenant(t, app, "Other", "o@other.co")
	for i := 0; i < 8; i++ {
		testhelpers.CreateTestQuotation(t, app, tn.company.Id, 1001+i, "Cliente", 1000)
	}
	testhelpers.CreateTestQuotation(t, app, other.company.Id, 5001, "Ajeno", 99999)

	rec := tn.do(t, app, HandleDashboard(app), httptest.NewRequest(http.MethodGet, "/?perPage=50", nil))
	expectStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	testhelpers.AssertHTMLContains(t, body, "Estampados La 14", "Test User", "Página 1 de 2", `hx-delete="/quotations/`, "$ 8.000,00")
	if strings.Count(body, `hx-delete=`) != 6 {
		t.Errorf("rows = %d, want 6 per page", strings.Count(body, `hx-delete=`))
	}
	if strings.Contains(body, "Ajeno") {
		t.Error("dashboard shows another company's quotation")
	}

	rec = tn.do(t, app, HandleDashboard(app), httptest.NewRequest(http.MethodGet, "/?q=1003", nil))
	body = rec.Body.String()
	if strings.Count(body, `hx-delete=`) != 1 {
		t.Errorf("search by number rows = %d, want 1", strings.Count(body, `hx-delete=`))
	}
}

func TestHandleQuotationPrint(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tn := newTenant(t, app, "Acme", "a@acme.co")
	q := createQuotation(t, app, tn, sampleQuotation)

	req := httptest.NewRequest(http.MethodGet, "/quotations/"+q.ID+"/print", nil)
	req.SetPathValue("id", q.ID)
	rec := tn.do(t, app, HandleQuotationPrint(app), req)
	expectStatus(t, rec, http.StatusOK)
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "COTIZACIÓN N° 1001", "Ana Pérez", "Camiseta", "$ 2.300")

	other := newTenant(t, app, "Other", "o@other.co")
	req = httptest.NewRequest(http.MethodGet, "/quotations/"+q.ID+"/print", nil)
	req.SetPathValue("id", q.ID)
	expectStatus(t, other.do(t, app, HandleQuotationPrint(app), req), http.StatusNotFound)
}

func TestHandleQuotationDeletePage(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	tn := newTenant(t, app, "Acme", "a@acme.co")
	rec := testhelpers.CreateTestQuotation(t, app, tn.company.Id, 1001, "Ana", 1000)

	req := httptest.NewRequest(http.MethodDelete, "/quotations/"+rec.Id, nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", rec.Id)
	res := tn.do(t, app, HandleQuotationDeletePage(app), req)

	testhelpers.AssertHXRedirect(t, res.Header().Get("HX-Redirect"), "/")
	_, toast := decodeToast(t, res.Header().Get("HX-Trigger"))
	if toast["message"] != "Cotización N° 1001 eliminada" {
		t.Errorf("toast = %v", toast)
	}
	if _, err := app.FindRecordById("quotations", rec.Id); err == nil {
		t.Error("expected quotation to be deleted")
	}

	// Deleting again reports not found without swapping.
	req = httptest.NewRequest(http.MethodDelete, "/quotations/"+rec.Id, nil)
	req.Header.Set("HX-Request", "true")
	req.SetPathValue("id", rec.Id)
	res = tn.do(t, app, HandleQuotationDeletePage(app), req)
	if res.Code != http.StatusNotFound || res.Header().Get("HX-Reswap") != "none" {
		t.Errorf("second delete = %d, reswap %q", res.Code, res.Header().Get("HX-Reswap"))
	}
}

func TestHandleLogoutPage(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := httptest.NewRecorder()
	if err := HandleLogoutPage(testSession())(newTestRequestEvent(app, httptest.NewRequest(http.MethodGet, "/logout", nil), rec)); err != nil {
		t.Fatal(err)
	}
	expectStatus(t, rec, http.StatusFound)
	if rec.Header().Get("Location") != "/login" {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
}
