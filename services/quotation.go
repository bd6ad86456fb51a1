package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

const (
	// DefaultClientName is stored when a quotation is saved without a client.
	DefaultClientName = "Sin especificar"
	// DefaultValidityDays is how long a quotation stays valid when the
	// caller gives no validity date.
	DefaultValidityDays = 15
	// DefaultPerPage is the dashboard page size.
	DefaultPerPage = 6
	MaxPerPage     = 100

	dateLayout = "2006-01-02"
)

var (
	ErrQuotationNotFound = errors.New("quotation not found")
	ErrNoLineItems       = errors.New("add at least one line item with a quantity or description")
)

// RawLine is a line item as typed by the user. Numeric fields are tolerant:
// anything unparseable counts as zero.
type RawLine struct {
	Quantity     LooseDecimal `json:"quantity"`
	Description  string       `json:"description"`
	Unit         LooseDecimal `json:"unit"`
	DiscountUnit LooseDecimal `json:"discountUnit"`
}

// IsEmpty reports a line with neither quantity nor description.
func (r RawLine) IsEmpty() bool {
	return !r.Quantity.Present && strings.TrimSpace(r.Description) == ""
}

// LineItem converts the raw line into a priced line.
func (r RawLine) LineItem() LineItem {
	return LineItem{
		Quantity:     r.Quantity.Decimal,
		Description:  strings.TrimSpace(r.Description),
		UnitPrice:    r.Unit.Decimal,
		UnitDiscount: r.DiscountUnit.Decimal,
	}
}

// QuotationInput is the payload of a create or update request. Totals and
// the quotation number are never taken from the client.
type QuotationInput struct {
	DateExp       string    `json:"dateExp"`
	DateValid     string    `json:"dateValid"`
	ClientName    string    `json:"clientName"`
	ClientCCNIT   string    `json:"clientCCNIT"`
	ClientAddress string    `json:"clientAddress"`
	ClientPhone   string    `json:"clientPhone"`
	ClientEmail   string    `json:"clientEmail"`
	Items         []RawLine `json:"items"`
}

// ClientInfo is the client block copied into a quotation.
type ClientInfo struct {
	Name    string
	TaxID   string
	Address string
	Phone   string
	Email   string
}

// QuotationDraft is a validated quotation ready to be persisted.
type QuotationDraft struct {
	IssueDate  time.Time
	ValidUntil time.Time
	Client     ClientInfo
	Lines      []LineItem
	Totals     Totals
}

// PreviewLines drops empty lines and prices the rest. It never fails.
func PreviewLines(raw []RawLine) []LineItem {
	lines := make([]LineItem, 0, len(raw))
	for _, r := range raw {
		if r.IsEmpty() {
			continue
		}
		lines = append(lines, r.LineItem())
	}
	return lines
}

// DraftQuotation normalizes and validates input. Empty lines are dropped;
// if none remain ErrNoLineItems is returned. Field problems are reported as
// validation.Errors keyed by the JSON field name.
func DraftQuotation(input QuotationInput, now time.Time, validityDays int) (*QuotationDraft, error) {
	if validityDays < 0 {
		validityDays = DefaultValidityDays
	}

	fieldErrs := validation.Errors{}

	issue := dateOnly(now)
	if s := strings.TrimSpace(input.DateExp); s != "" {
		d, err := parseDate(s)
		if err != nil {
			fieldErrs["dateExp"] = errors.New("must be a date in YYYY-MM-DD format")
		} else {
			issue = d
		}
	}

	valid := issue.AddDate(0, 0, validityDays)
	if s := strings.TrimSpace(input.DateValid); s != "" {
		d, err := parseDate(s)
		switch {
		case err != nil:
			fieldErrs["dateValid"] = errors.New("must be a date in YYYY-MM-DD format")
		case d.Before(issue):
			fieldErrs["dateValid"] = errors.New("must not be before the issue date")
		default:
			valid = d
		}
	}

	client := ClientInfo{
		Name:    strings.TrimSpace(input.ClientName),
		TaxID:   strings.TrimSpace(input.ClientCCNIT),
		Address: strings.TrimSpace(input.ClientAddress),
		Phone:   strings.TrimSpace(input.ClientPhone),
		Email:   strings.TrimSpace(input.ClientEmail),
	}
	if client.Name == "" {
		client.Name = DefaultClientName
	}
	if err := validation.Validate(client.Email, is.EmailFormat); err != nil {
		fieldErrs["clientEmail"] = err
	}

	lines := make([]LineItem, 0, len(input.Items))
	for i, r := range input.Items {
		if r.IsEmpty() {
			continue
		}
		line := r.LineItem()
		checkNonNegative(fieldErrs, i, "quantity", line.Quantity)
		checkNonNegative(fieldErrs, i, "unit", line.UnitPrice)
		checkNonNegative(fieldErrs, i, "discountUnit", line.UnitDiscount)
		lines = append(lines, line)
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}
	if len(lines) == 0 {
		return nil, ErrNoLineItems
	}

	return &QuotationDraft{
		IssueDate:  issue,
		ValidUntil: valid,
		Client:     client,
		Lines:      lines,
		Totals:     Aggregate(lines),
	}, nil
}

func checkNonNegative(errs validation.Errors, index int, field string, v decimal.Decimal) {
	if v.IsNegative() {
		errs[fmt.Sprintf("items.%d.%s", index, field)] = errors.New("must not be negative")
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(dateLayout, s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return dateOnly(t), nil
}

// StoredLine is the persisted form of a line item. Amounts are decimal
// strings so no precision is lost in the JSON column.
type StoredLine struct {
	Quantity     string `json:"quantity"`
	Description  string `json:"description"`
	Unit         string `json:"unit"`
	DiscountUnit string `json:"discountUnit"`
	Total        string `json:"total"`
}

// NewStoredLine converts a priced line into its persisted form.
func NewStoredLine(l LineItem) StoredLine {
	return StoredLine{
		Quantity:     l.Quantity.String(),
		Description:  l.Description,
		Unit:         l.UnitPrice.String(),
		DiscountUnit: l.UnitDiscount.String(),
		Total:        l.Total().Round(StoredDigits).String(),
	}
}

// LineItem converts the stored line back into a priced line.
func (s StoredLine) LineItem() LineItem {
	return LineItem{
		Quantity:     ParseNumber(s.Quantity),
		Description:  s.Description,
		UnitPrice:    ParseNumber(s.Unit),
		UnitDiscount: ParseNumber(s.DiscountUnit),
	}
}

// Quotation is the API view of a stored quotation.
type Quotation struct {
	ID            string        `json:"id"`
	Number        int           `json:"quotation_number"`
	IssueDate     string        `json:"date_exp"`
	ValidUntil    string        `json:"date_valid"`
	ClientName    string        `json:"client_name"`
	ClientTaxID   string        `json:"client_cc_nit"`
	ClientAddress string        `json:"client_address"`
	ClientPhone   string        `json:"client_phone"`
	ClientEmail   string        `json:"client_email"`
	Items         []StoredLine  `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	Display       DisplayTotals `json:"display"`
	Created       string        `json:"created,omitempty"`
	Updated       string        `json:"updated,omitempty"`

	// exact holds the stored decimal totals; the float fields above are
	// their JSON rendering.
	exact *Totals
}

// Lines returns the priced line items.
func (q Quotation) Lines() []LineItem {
	lines := make([]LineItem, len(q.Items))
	for i, s := range q.Items {
		lines[i] = s.LineItem()
	}
	return lines
}

// Totals returns the stored totals, exact when the record carries the
// decimal text columns.
func (q Quotation) Totals() Totals {
	if q.exact != nil {
		return *q.exact
	}
	return Totals{
		Subtotal:      decimal.NewFromFloat(q.Subtotal),
		DiscountTotal: decimal.NewFromFloat(q.Discount),
		GrandTotal:    decimal.NewFromFloat(q.Total),
	}
}

// QuotationFromRecord builds the API view of a quotations record.
func QuotationFromRecord(rec *core.Record) Quotation {
	var items []StoredLine
	if err := rec.UnmarshalJSONField("items", &items); err != nil || items == nil {
		items = []StoredLine{}
	}

	q := Quotation{
		ID:            rec.Id,
		Number:        rec.GetInt("quotation_number"),
		IssueDate:     formatRecordDate(rec, "issue_date"),
		ValidUntil:    formatRecordDate(rec, "valid_until"),
		ClientName:    rec.GetString("client_name"),
		ClientTaxID:   rec.GetString("client_tax_id"),
		ClientAddress: rec.GetString("client_address"),
		ClientPhone:   rec.GetString("client_phone"),
		ClientEmail:   rec.GetString("client_email"),
		Items:         items,
		Subtotal:      rec.GetFloat("subtotal"),
		Discount:      rec.GetFloat("discount"),
		Total:         rec.GetFloat("total"),
	}
	q.exact = exactTotals(rec)
	if created := rec.GetDateTime("created"); !created.IsZero() {
		q.Created = created.Time().Format(time.RFC3339)
	}
	if updated := rec.GetDateTime("updated"); !updated.IsZero() {
		q.Updated = updated.Time().Format(time.RFC3339)
	}
	q.Display = q.Totals().Display()
	return q
}

// exactTotals reads the decimal text totals. Records saved before those
// columns existed return nil.
func exactTotals(rec *core.Record) *Totals {
	var parsed [3]decimal.Decimal
	for i, field := range []string{"subtotal_exact", "discount_exact", "total_exact"} {
		d, err := decimal.NewFromString(rec.GetString(field))
		if err != nil {
			return nil
		}
		parsed[i] = d
	}
	return &Totals{Subtotal: parsed[0], DiscountTotal: parsed[1], GrandTotal: parsed[2]}
}

func formatRecordDate(rec *core.Record, field string) string {
	dt := rec.GetDateTime(field)
	if dt.IsZero() {
		return ""
	}
	return dt.Time().Format(dateLayout)
}

// applyDraft overwrites every snapshot field of rec with the draft.
func applyDraft(rec *core.Record, draft *QuotationDraft) {
	items := make([]StoredLine, len(draft.Lines))
	for i, l := range draft.Lines {
		items[i] = NewStoredLine(l)
	}
	totals := draft.Totals.Rounded()

	rec.Set("issue_date", draft.IssueDate)
	rec.Set("valid_until", draft.ValidUntil)
	rec.Set("client_name", draft.Client.Name)
	rec.Set("client_tax_id", draft.Client.TaxID)
	rec.Set("client_address", draft.Client.Address)
	rec.Set("client_phone", draft.Client.Phone)
	rec.Set("client_email", draft.Client.Email)
	rec.Set("items", items)
	rec.Set("subtotal", totals.Subtotal.InexactFloat64())
	rec.Set("discount", totals.DiscountTotal.InexactFloat64())
	rec.Set("total", totals.GrandTotal.InexactFloat64())
	rec.Set("subtotal_exact", totals.Subtotal.StringFixed(StoredDigits))
	rec.Set("discount_exact", totals.DiscountTotal.StringFixed(StoredDigits))
	rec.Set("total_exact", totals.GrandTotal.StringFixed(StoredDigits))
}

// CreateQuotation allocates the next company number and saves the draft in
// one transaction.
func CreateQuotation(app core.App, companyID string, draft *QuotationDraft, numberBase int) (*core.Record, error) {
	var saved *core.Record
	err := app.RunInTransaction(func(txApp core.App) error {
		number, err := AllocateQuotationNumber(txApp, companyID, numberBase)
		if err != nil {
			return err
		}

		col, err := txApp.FindCollectionByNameOrId("quotations")
		if err != nil {
			return fmt.Errorf("quotations collection not found: %w", err)
		}

		rec := core.NewRecord(col)
		rec.Set("company", companyID)
		rec.Set("quotation_number", number)
		applyDraft(rec, draft)

		if err := txApp.Save(rec); err != nil {
			return fmt.Errorf("failed to save quotation: %w", err)
		}
		saved = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdateQuotation replaces the snapshot of an existing quotation. The
// quotation number never changes.
func UpdateQuotation(app core.App, companyID, id string, draft *QuotationDraft) (*core.Record, error) {
	rec, err := FindQuotation(app, companyID, id)
	if err != nil {
		return nil, err
	}
	applyDraft(rec, draft)
	if err := app.Save(rec); err != nil {
		return nil, fmt.Errorf("failed to update quotation: %w", err)
	}
	return rec, nil
}

// FindQuotation loads a quotation owned by the company. Quotations of other
// companies are reported as ErrQuotationNotFound.
func FindQuotation(app core.App, companyID, id string) (*core.Record, error) {
	rec, err := app.FindRecordById("quotations", id)
	if err != nil || rec.GetString("company") != companyID {
		return nil, ErrQuotationNotFound
	}
	return rec, nil
}

// DeleteQuotation removes a quotation owned by the company.
func DeleteQuotation(app core.App, companyID, id string) error {
	rec, err := FindQuotation(app, companyID, id)
	if err != nil {
		return err
	}
	if err := app.Delete(rec); err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	return nil
}

// ListParams selects a page of quotations.
type ListParams struct {
	Query   string
	Page    int
	PerPage int
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	p.Query = strings.TrimSpace(p.Query)
	return p
}

// QuotationPage is one page of a quotation listing.
type QuotationPage struct {
	Items      []Quotation `json:"items"`
	Page       int         `json:"page"`
	PerPage    int         `json:"perPage"`
	TotalItems int         `json:"totalItems"`
	TotalPages int         `json:"totalPages"`
	Query      string      `json:"query,omitempty"`
}

// ListQuotations returns the company's quotations, newest number first.
// The query matches client name, email, phone or the exact number.
func ListQuotations(app core.App, companyID string, params ListParams) (QuotationPage, error) {
	params = params.normalized()

	conds := []dbx.Expression{dbx.HashExp{"company": companyID}}
	if params.Query != "" {
		search := []dbx.Expression{
			dbx.Like("client_name", params.Query),
			dbx.Like("client_email", params.Query),
			dbx.Like("client_phone", params.Query),
		}
		if n, err := strconv.Atoi(params.Query); err == nil {
			search = append(search, dbx.HashExp{"quotation_number": n})
		}
		conds = append(conds, dbx.Or(search...))
	}
	where := dbx.And(conds...)

	total, err := app.CountRecords("quotations", where)
	if err != nil {
		return QuotationPage{}, fmt.Errorf("failed to count quotations: %w", err)
	}

	var records []*core.Record
	err = app.RecordQuery("quotations").
		AndWhere(where).
		OrderBy("quotation_number DESC").
		Limit(int64(params.PerPage)).
		Offset(int64((params.Page - 1) * params.PerPage)).
		All(&records)
	if err != nil {
		return QuotationPage{}, fmt.Errorf("failed to list quotations: %w", err)
	}

	items := make([]Quotation, len(records))
	for i, rec := range records {
		items[i] = QuotationFromRecord(rec)
	}

	totalPages := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	return QuotationPage{
		Items:      items,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalItems: int(total),
		TotalPages: totalPages,
		Query:      params.Query,
	}, nil
}
