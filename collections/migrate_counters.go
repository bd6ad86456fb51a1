package collections

import (
	"fmt"
	"log/slog"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

type companyMax struct {
	Company string  `db:"company"`
	Highest float64 `db:"highest"`
}

// MigrateQuotationCounters creates the missing counter row of every company
// that already has quotations, starting from its highest number. Safe to
// call on every startup.
func MigrateQuotationCounters(app core.App) error {
	countersCol, err := app.FindCollectionByNameOrId("quotation_counters")
	if err != nil {
		return fmt.Errorf("migrate: could not find quotation_counters collection: %w", err)
	}

	var rows []companyMax
	err = app.DB().
		Select("quotations.company AS company", "MAX(quotations.quotation_number) AS highest").
		From("quotations").
		LeftJoin("quotation_counters", dbx.NewExp("[[quotation_counters.company]] = [[quotations.company]]")).
		Where(dbx.NewExp("[[quotation_counters.id]] IS NULL")).
		GroupBy("quotations.company").
		All(&rows)
	if err != nil {
		return fmt.Errorf("migrate: could not query companies without counters: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	slog.Info("migrate: backfilling quotation counters", "companies", len(rows))

	for _, r := range rows {
		counter := core.NewRecord(countersCol)
		counter.Set("company", r.Company)
		counter.Set("last_number", int(r.Highest))
		if err := app.Save(counter); err != nil {
			slog.Error("migrate: failed to create quotation counter", "company", r.Company, "error", err)
			continue
		}
	}
	return nil
}
