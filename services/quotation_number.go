package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// DefaultNumberBase makes the first quotation of a company number 1001.
const DefaultNumberBase = 1000

// NextQuotationNumber reports the number the next quotation of the company
// will receive. Nothing is reserved.
func NextQuotationNumber(app core.App, companyID string, base int) (int, error) {
	last, _, err := lastQuotationNumber(app, companyID, base)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// AllocateQuotationNumber reserves the next number for the company by
// advancing its counter row. It must run inside the transaction that saves
// the quotation so a failed save releases the number.
func AllocateQuotationNumber(txApp core.App, companyID string, base int) (int, error) {
	last, counter, err := lastQuotationNumber(txApp, companyID, base)
	if err != nil {
		return 0, err
	}

	if counter == nil {
		col, err := txApp.FindCollectionByNameOrId("quotation_counters")
		if err != nil {
			return 0, fmt.Errorf("quotation_counters collection not found: %w", err)
		}
		counter = core.NewRecord(col)
		counter.Set("company", companyID)
	}

	next := last + 1
	counter.Set("last_number", next)
	if err := txApp.Save(counter); err != nil {
		return 0, fmt.Errorf("failed to advance quotation counter: %w", err)
	}
	return next, nil
}

// lastQuotationNumber returns the highest number already used by the company
// (never below base) and its counter row, which is nil when none exists yet.
func lastQuotationNumber(app core.App, companyID string, base int) (int, *core.Record, error) {
	counter, err := app.FindFirstRecordByFilter(
		"quotation_counters",
		"company = {:company}",
		dbx.Params{"company": companyID},
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, nil, fmt.Errorf("failed to load quotation counter: %w", err)
		}
		counter = nil
	}

	last := base
	if counter != nil {
		last = max(last, counter.GetInt("last_number"))
	}

	existing, err := MaxQuotationNumber(app, companyID)
	if err != nil {
		return 0, nil, err
	}
	return max(last, existing), counter, nil
}

// MaxQuotationNumber returns the highest quotation number stored for the
// company, or 0 when it has none.
func MaxQuotationNumber(app core.App, companyID string) (int, error) {
	var highest sql.NullFloat64
	err := app.DB().
		Select("MAX([[quotation_number]])").
		From("quotations").
		Where(dbx.HashExp{"company": companyID}).
		Row(&highest)
	if err != nil {
		return 0, fmt.Errorf("failed to read highest quotation number: %w", err)
	}
	if !highest.Valid {
		return 0, nil
	}
	return int(highest.Float64), nil
}
