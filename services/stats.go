package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// PeriodStats summarizes the quotations of a period.
type PeriodStats struct {
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"-"`
	Average decimal.Decimal `json:"-"`
}

// QuotationStats is the dashboard summary of a company.
type QuotationStats struct {
	All     PeriodStats       `json:"all"`
	Month   PeriodStats       `json:"month"`
	Display map[string]string `json:"display"`
}

type statsRow struct {
	Total float64 `db:"total"`
	Exact string  `db:"total_exact"`
}

// ComputeStats totals every quotation of the company and those issued in
// the calendar month of now.
func ComputeStats(app core.App, companyID string, now time.Time) (QuotationStats, error) {
	all, err := periodStats(app, dbx.HashExp{"company": companyID})
	if err != nil {
		return QuotationStats{}, err
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	startDT, err := types.ParseDateTime(start)
	if err != nil {
		return QuotationStats{}, err
	}
	endDT, err := types.ParseDateTime(end)
	if err != nil {
		return QuotationStats{}, err
	}

	month, err := periodStats(app, dbx.And(
		dbx.HashExp{"company": companyID},
		dbx.NewExp("[[issue_date]] >= {:start} AND [[issue_date]] < {:end}", dbx.Params{
			"start": startDT.String(),
			"end":   endDT.String(),
		}),
	))
	if err != nil {
		return QuotationStats{}, err
	}

	return QuotationStats{
		All:   all,
		Month: month,
		Display: map[string]string{
			"total":        FormatAmount(all.Total, StoredDigits),
			"average":      FormatAmount(all.Average, StoredDigits),
			"monthTotal":   FormatAmount(month.Total, StoredDigits),
			"monthAverage": FormatAmount(month.Average, StoredDigits),
		},
	}, nil
}

// periodStats sums the exact text totals in decimal; rows without them fall
// back to the numeric column.
func periodStats(app core.App, where dbx.Expression) (PeriodStats, error) {
	var rows []statsRow
	err := app.DB().
		Select("[[total]]", "[[total_exact]]").
		From("quotations").
		Where(where).
		All(&rows)
	if err != nil {
		return PeriodStats{}, fmt.Errorf("failed to compute quotation stats: %w", err)
	}

	total := decimal.Zero
	for _, row := range rows {
		d, err := decimal.NewFromString(row.Exact)
		if err != nil {
			d = decimal.NewFromFloat(row.Total)
		}
		total = total.Add(d)
	}
	total = total.Round(StoredDigits)

	avg := decimal.Zero
	if len(rows) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(rows)))).Round(StoredDigits)
	}
	return PeriodStats{Count: len(rows), Total: total, Average: avg}, nil
}

// MarshalJSON renders the amounts as numbers with two fraction digits.
func (p PeriodStats) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, `{"count":%d,"total":%s,"average":%s}`,
		p.Count, p.Total.StringFixed(StoredDigits), p.Average.StringFixed(StoredDigits)), nil
}
