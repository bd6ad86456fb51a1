package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ImportRowError is a problem with one field of one uploaded row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult summarizes a product import.
type ImportResult struct {
	TotalRows int              `json:"total_rows"`
	Created   int              `json:"created"`
	Updated   int              `json:"updated"`
	ErrorRows int              `json:"error_rows"`
	Errors    []ImportRowError `json:"errors"`
}

type productRow struct {
	row         int
	name        string
	price       decimal.Decimal
	description string
}

// productHeaders maps accepted column headers to product fields.
var productHeaders = map[string]string{
	"name":        "name",
	"nombre":      "name",
	"price":       "price",
	"precio":      "price",
	"description": "description",
	"descripcion": "description",
	"descripción": "description",
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapProductHeaders returns the product field of every column ("" when the
// column is not recognized).
func mapProductHeaders(headers []string) ([]string, error) {
	mapped := make([]string, len(headers))
	hasName := false
	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		mapped[i] = productHeaders[norm]
		if mapped[i] == "name" {
			hasName = true
		}
	}
	if !hasName {
		return nil, errors.New("missing required column: Name")
	}
	return mapped, nil
}

// ParseProductFile reads a .csv or .xlsx upload and validates every row.
// Valid rows are returned for import; the result carries the row errors.
func ParseProductFile(file io.Reader, fileName string) ([]productRow, *ImportResult, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, nil, err
	}

	columns, err := mapProductHeaders(headers)
	if err != nil {
		return nil, nil, err
	}

	result := &ImportResult{TotalRows: len(dataRows), Errors: []ImportRowError{}}
	valid := make([]productRow, 0, len(dataRows))
	seen := make(map[string]int)

	for idx, row := range dataRows {
		rowNum := idx + 2
		values := map[string]string{}
		for col, field := range columns {
			if field == "" || col >= len(row) {
				continue
			}
			values[field] = strings.TrimSpace(row[col])
		}

		var rowErrs []ImportRowError
		name := values["name"]
		if name == "" {
			rowErrs = append(rowErrs, ImportRowError{Row: rowNum, Field: "Name", Message: "Name is required"})
		} else if first, dup := seen[strings.ToLower(name)]; dup {
			rowErrs = append(rowErrs, ImportRowError{
				Row: rowNum, Field: "Name",
				Message: fmt.Sprintf("duplicate of row %d", first),
			})
		}

		price := decimal.Zero
		if raw := values["price"]; raw != "" {
			price = parseLooseText(raw)
			if price.IsNegative() {
				rowErrs = append(rowErrs, ImportRowError{Row: rowNum, Field: "Price", Message: "Price must not be negative"})
			}
		}

		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			result.ErrorRows++
			continue
		}
		seen[strings.ToLower(name)] = rowNum
		valid = append(valid, productRow{row: rowNum, name: name, price: price, description: values["description"]})
	}

	return valid, result, nil
}

// ImportProducts parses an upload and upserts its valid rows by name within
// the company. All writes happen in one transaction.
func ImportProducts(app core.App, companyID string, file io.Reader, fileName string) (*ImportResult, error) {
	rows, result, err := ParseProductFile(file, fileName)
	if err != nil {
		return nil, err
	}

	err = app.RunInTransaction(func(txApp core.App) error {
		for _, r := range rows {
			created, err := UpsertProduct(txApp, companyID, r.name, r.price, r.description)
			if err != nil {
				return fmt.Errorf("row %d: %w", r.row, err)
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GenerateImportErrorReport creates a downloadable .xlsx file listing the
// row errors of an import.
func GenerateImportErrorReport(rowErrs []ImportRowError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errores"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Fila")
	f.SetCellValue(sheet, "B1", "Campo")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 18)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range rowErrs {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
