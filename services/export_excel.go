package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// GenerateQuotationExcel writes the quotation to a single-sheet workbook.
// Amounts are numeric cells formatted with the local money format so the
// sheet stays computable.
func GenerateQuotationExcel(data *ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("Cotización %d", data.Number)
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	lastCol := columns[len(columns)-1]
	widths := []float64{6, 10, 44, 16, 16, 18}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	moneyFmt := `"$ "#,##0`

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{headerColor(data.Company.ColorHex)},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	cellStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Border:       thinBorders(),
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &moneyFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header block ────────────────────────────────────────────────────

	row := 1
	mergedLine := func(value string, style int) error {
		r := fmt.Sprintf("%d", row)
		if err := f.MergeCell(sheetName, "A"+r, lastCol+r); err != nil {
			return fmt.Errorf("merge row %d: %w", row, err)
		}
		f.SetCellValue(sheetName, "A"+r, sanitizeExcelCell(value))
		f.SetCellStyle(sheetName, "A"+r, lastCol+r, style)
		row++
		return nil
	}

	if err := mergedLine(data.Company.Name, titleStyle); err != nil {
		return nil, err
	}
	companyLines := []string{
		fmtField("NIT", data.Company.TaxID),
		joinNonEmpty([]string{data.Company.Address, data.Company.Phone, data.Company.Email}, " | "),
	}
	for _, line := range companyLines {
		if line == "" {
			continue
		}
		if err := mergedLine(line, subtitleStyle); err != nil {
			return nil, err
		}
	}
	row++

	if err := mergedLine(data.Title(), titleStyle); err != nil {
		return nil, err
	}
	if err := mergedLine(fmt.Sprintf("Fecha: %s    Válida hasta: %s", data.IssueDate, data.ValidUntil), subtitleStyle); err != nil {
		return nil, err
	}
	clientLines := []string{
		fmtField("Cliente", data.Client.Name),
		fmtField("CC/NIT", data.Client.TaxID),
		fmtField("Dirección", data.Client.Address),
		joinNonEmpty([]string{fmtField("Teléfono", data.Client.Phone), fmtField("Correo", data.Client.Email)}, " | "),
	}
	for _, line := range clientLines {
		if line == "" {
			continue
		}
		if err := mergedLine(line, subtitleStyle); err != nil {
			return nil, err
		}
	}
	row++

	// ── Item table ──────────────────────────────────────────────────────

	headerRow := fmt.Sprintf("%d", row)
	headers := []string{"#", "Cant.", "Descripción", "Valor unit.", "Desc. unit.", "Total"}
	for i, h := range headers {
		f.SetCellValue(sheetName, columns[i]+headerRow, h)
	}
	f.SetCellStyle(sheetName, "A"+headerRow, lastCol+headerRow, headerStyle)
	row++

	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rowStr, r.Index)
		f.SetCellValue(sheetName, "B"+rowStr, r.Quantity.InexactFloat64())
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(r.Description))
		f.SetCellValue(sheetName, "D"+rowStr, r.UnitPrice.InexactFloat64())
		f.SetCellValue(sheetName, "E"+rowStr, r.UnitDiscount.InexactFloat64())
		f.SetCellValue(sheetName, "F"+rowStr, r.Total.Round(StoredDigits).InexactFloat64())
		f.SetCellStyle(sheetName, "A"+rowStr, "C"+rowStr, cellStyle)
		f.SetCellStyle(sheetName, "D"+rowStr, lastCol+rowStr, moneyStyle)
		row++
	}
	row++

	// ── Totals ──────────────────────────────────────────────────────────

	totals := data.Totals.Rounded()
	summary := []struct {
		label string
		value float64
	}{
		{"Subtotal:", totals.Subtotal.InexactFloat64()},
		{"Descuento:", totals.DiscountTotal.InexactFloat64()},
		{"Total:", totals.GrandTotal.InexactFloat64()},
	}
	for _, s := range summary {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "E"+r, s.label)
		f.SetCellStyle(sheetName, "E"+r, "E"+r, summaryLabelStyle)
		f.SetCellValue(sheetName, "F"+r, s.value)
		f.SetCellStyle(sheetName, "F"+r, "F"+r, summaryValueStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// headerColor returns the company color when it is a #RRGGBB value.
func headerColor(hex string) string {
	if _, ok := parseHexColor(hex); ok {
		return "#" + strings.TrimPrefix(strings.TrimSpace(hex), "#")
	}
	return "#333333"
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
