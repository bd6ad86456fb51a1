package services

import (
	"bytes"
	"errors"

	"github.com/shopspring/decimal"
)

var errRollback = errors.New("rollback")

// bytesReader wraps a byte slice in a bytes.Reader for use with excelize.OpenReader.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

// sampleExportData returns a two-line quotation export (2500 / 200 / 2300).
func sampleExportData() *ExportData {
	lines := []LineItem{
		{Quantity: decimal.NewFromInt(2), Description: "Camisa estampada", UnitPrice: decimal.NewFromInt(1000), UnitDiscount: decimal.NewFromInt(100)},
		{Quantity: decimal.NewFromInt(1), Description: "=Gorra", UnitPrice: decimal.NewFromInt(500)},
	}
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
		Company: ExportCompany{
			Name:     "Estampados Demo",
			TaxID:    "900123456-7",
			Address:  "Calle 10 # 5-20",
			Phone:    "3001234567",
			Email:    "ventas@demo.co",
			ColorHex: "#1F6FEB",
		},
		Number:     1001,
		IssueDate:  "2026-03-01",
		ValidUntil: "2026-03-16",
		Client:     ClientInfo{Name: "Ana Pérez", TaxID: "1020304050", Email: "ana@example.com"},
		Rows:       rows,
		Totals:     Aggregate(lines),
	}
}
