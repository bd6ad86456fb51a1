package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"quotedesk/services"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestLoginPage_EscapesInput(t *testing.T) {
	html := render(t, LoginPage(LoginData{Email: `a"b@x.co`, Error: "<bad>"}))

	for _, want := range []string{`action="/login"`, `value="a&#34;b@x.co"`, "&lt;bad&gt;"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in login page", want)
		}
	}
	if strings.Contains(html, `class="topbar"`) {
		t.Error("login page should not show the top bar")
	}
}

func TestDashboardPage(t *testing.T) {
	data := DashboardData{
		Page: PageData{CompanyName: "Estampados", UserName: "Ana"},
		Stats: services.QuotationStats{
			All:     services.PeriodStats{Count: 7},
			Display: map[string]string{"total": "$ 70.000,00", "average": "$ 10.000,00", "monthTotal": "$ 0,00"},
		},
		List: services.QuotationPage{
			Items: []services.Quotation{
				{ID: "q1", Number: 1007, ClientName: "Ana <Pérez>", Display: services.DisplayTotals{Total: "$ 10.000"}},
			},
			Page:       2,
			PerPage:    6,
			TotalItems: 13,
			TotalPages: 3,
			Query:      "ana",
		},
	}

	html := render(t, DashboardPage(data))

	for _, want := range []string{
		"Estampados",
		"$ 70.000,00",
		"Ana &lt;Pérez&gt;",
		`hx-delete="/quotations/q1"`,
		`href="/quotations/q1/print"`,
		"Página 2 de 3",
		`href="/?page=1&amp;q=ana"`,
		`href="/?page=3&amp;q=ana"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in dashboard", want)
		}
	}
}

func TestDashboardPage_Empty(t *testing.T) {
	html := render(t, DashboardPage(DashboardData{Page: PageData{CompanyName: "X"}}))
	if !strings.Contains(html, "No hay cotizaciones") {
		t.Error("expected empty state")
	}
	if strings.Contains(html, "pagination") {
		t.Error("single page should not paginate")
	}
}

func TestQuotationPrintPage(t *testing.T) {
	data := &services.ExportData{
		Company:    services.ExportCompany{Name: "Estampados", TaxID: "900", ColorHex: "#1F6FEB"},
		Number:     1001,
		IssueDate:  "2026-03-01",
		ValidUntil: "2026-03-16",
		Client:     services.ClientInfo{Name: "Ana"},
		Rows: []services.ExportRow{{
			Index:        1,
			Quantity:     decimal.NewFromInt(2),
			Description:  "Camiseta",
			UnitPrice:    decimal.NewFromInt(1000),
			UnitDiscount: decimal.NewFromInt(100),
			Total:        decimal.NewFromInt(1800),
		}},
		Totals: services.Aggregate([]services.LineItem{{
			Quantity:     decimal.NewFromInt(2),
			UnitPrice:    decimal.NewFromInt(1000),
			UnitDiscount: decimal.NewFromInt(100),
		}}),
	}

	html := render(t, QuotationPrintPage(data))

	for _, want := range []string{"COTIZACIÓN N° 1001", "Camiseta", "$ 1.800", "$ 2.000", "$ 200", "Válida hasta", "window.print()"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in print page", want)
		}
	}
	if strings.Contains(html, "Dirección") {
		t.Error("empty client fields should be omitted")
	}
}
