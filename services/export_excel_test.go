package services

import (
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestGenerateQuotationExcel_Basic(t *testing.T) {
	result, err := GenerateQuotationExcel(sampleExportData())
	if err != nil {
		t.Fatalf("GenerateQuotationExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Cotización 1001" {
		t.Fatalf("sheets = %v, want [Cotización 1001]", sheets)
	}
	sheet := sheets[0]

	title, _ := f.GetCellValue(sheet, "A1")
	if title != "Estampados Demo" {
		t.Errorf("A1 = %q, want company name", title)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}

	var foundHeader, foundSanitized, foundTotal bool
	for _, r := range rows {
		joined := strings.Join(r, "|")
		if strings.Contains(joined, "Descripción") && strings.Contains(joined, "Valor unit.") {
			foundHeader = true
		}
		if strings.Contains(joined, "'=Gorra") {
			foundSanitized = true
		}
		if len(r) >= 6 && r[4] == "Total:" {
			foundTotal = true
		}
	}
	if !foundHeader {
		t.Error("item table header not found")
	}
	if !foundSanitized {
		t.Error("description starting with '=' should be prefixed with a quote")
	}
	if !foundTotal {
		t.Error("total row not found")
	}
}

func TestGenerateQuotationExcel_TotalsAreNumeric(t *testing.T) {
	result, err := GenerateQuotationExcel(sampleExportData())
	if err != nil {
		t.Fatalf("GenerateQuotationExcel() error = %v", err)
	}
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	rows, _ := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	want := map[string]string{"Subtotal:": "2500", "Descuento:": "200", "Total:": "2300"}
	for _, r := range rows {
		if len(r) < 6 {
			continue
		}
		if expected, ok := want[r[4]]; ok {
			if r[5] != expected {
				t.Errorf("%s = %q, want %q", r[4], r[5], expected)
			}
			delete(want, r[4])
		}
	}
	if len(want) > 0 {
		t.Errorf("missing summary rows: %v", want)
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"normal", "normal"},
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@cmd", "'@cmd"},
	}
	for _, tt := range tests {
		if got := sanitizeExcelCell(tt.in); got != tt.want {
			t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHeaderColor(t *testing.T) {
	if got := headerColor("1f6feb"); got != "#1f6feb" {
		t.Errorf("headerColor = %q", got)
	}
	if got := headerColor("blue"); got != "#333333" {
		t.Errorf("headerColor(invalid) = %q", got)
	}
}
