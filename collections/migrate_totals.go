package collections

import (
	"fmt"
	"log/slog"

	"github.com/pocketbase/pocketbase/core"
)

// exactTotalFields hold the quotation totals as fixed two-digit decimal text.
var exactTotalFields = []string{"subtotal_exact", "discount_exact", "total_exact"}

// MigrateQuotationExactTotals adds the decimal text total columns to a
// quotations collection created before they existed. Older rows keep empty
// values and are read from the numeric columns. Safe to call on every startup.
func MigrateQuotationExactTotals(app core.App) error {
	col, err := app.FindCollectionByNameOrId("quotations")
	if err != nil {
		return fmt.Errorf("migrate: could not find quotations collection: %w", err)
	}

	var added []string
	for _, name := range exactTotalFields {
		if col.Fields.GetByName(name) != nil {
			continue
		}
		col.Fields.Add(&core.TextField{Name: name})
		added = append(added, name)
	}
	if len(added) == 0 {
		return nil
	}

	if err := app.Save(col); err != nil {
		return fmt.Errorf("migrate: could not add exact total fields: %w", err)
	}
	slog.Info("migrate: added exact total fields to quotations", "fields", added)
	return nil
}
