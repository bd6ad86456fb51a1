package services

import (
	"fmt"
	"log/slog"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// ExportCompany is the issuer block printed at the top of a quotation.
type ExportCompany struct {
	Name        string
	TaxID       string
	Address     string
	Phone       string
	Email       string
	Description string
	LogoURL     string
	ColorHex    string
}

// ExportRow is one line of the quotation table.
type ExportRow struct {
	Index        int
	Quantity     decimal.Decimal
	Description  string
	UnitPrice    decimal.Decimal
	UnitDiscount decimal.Decimal
	Total        decimal.Decimal
}

// ExportData holds everything the PDF, spreadsheet and print page need.
type ExportData struct {
	Company    ExportCompany
	Number     int
	IssueDate  string
	ValidUntil string
	Client     ClientInfo
	Rows       []ExportRow
	Totals     Totals
}

// Title is the document heading, e.g. "COTIZACIÓN N° 1001".
func (d *ExportData) Title() string {
	return fmt.Sprintf("COTIZACIÓN N° %d", d.Number)
}

// FileName is the download name without extension.
func (d *ExportData) FileName() string {
	return fmt.Sprintf("cotizacion-%d", d.Number)
}

// BuildQuotationExportData loads a company-owned quotation together with its
// company profile.
func BuildQuotationExportData(app core.App, companyID, quotationID string) (*ExportData, error) {
	rec, err := FindQuotation(app, companyID, quotationID)
	if err != nil {
		return nil, err
	}
	q := QuotationFromRecord(rec)

	company := ExportCompany{}
	if c, err := app.FindRecordById("companies", companyID); err != nil {
		slog.Warn("export_data: company not found", "company", companyID, "error", err)
	} else {
		company = ExportCompanyFrom(CompanyFromRecord(c))
	}

	return NewExportData(company, q), nil
}

// ExportCompanyFrom keeps the issuer fields printed on exports.
func ExportCompanyFrom(c Company) ExportCompany {
	return ExportCompany{
		Name:        c.Name,
		TaxID:       c.TaxID,
		Address:     c.Address,
		Phone:       c.Phone,
		Email:       c.Email,
		Description: c.Description,
		LogoURL:     c.LogoURL,
		ColorHex:    c.ColorPrimary,
	}
}

// NewExportData builds export data from an already loaded quotation.
func NewExportData(company ExportCompany, q Quotation) *ExportData {
	lines := q.Lines()
	rows := make([]ExportRow, len(lines))
	for i, l := range lines {
		rows[i] = ExportRow{
			Index:        i + 1,
			Quantity:     l.Quantity,
			Description:  l.Description,
			UnitPrice:    l.UnitPrice,
			UnitDiscount: l.UnitDiscount,
			Total:        l.Total(),
		}
	}

	return &ExportData{
		Company:    company,
		Number:     q.Number,
		IssueDate:  q.IssueDate,
		ValidUntil: q.ValidUntil,
		Client: ClientInfo{
			Name:    q.ClientName,
			TaxID:   q.ClientTaxID,
			Address: q.ClientAddress,
			Phone:   q.ClientPhone,
			Email:   q.ClientEmail,
		},
		Rows:   rows,
		Totals: q.Totals(),
	}
}

// formatQty renders a quantity without trailing zeros.
func formatQty(q decimal.Decimal) string {
	return q.String()
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(parts []string, sep string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}

// fmtField returns "label: value" if value is non-empty, otherwise empty string.
func fmtField(label, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", label, value)
}
