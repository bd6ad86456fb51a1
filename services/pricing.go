// Package services provides the pricing engine, quotation persistence and
// document exports.
package services

import "github.com/shopspring/decimal"

// LineItem is one priced row of a quotation.
type LineItem struct {
	Quantity     decimal.Decimal
	Description  string
	UnitPrice    decimal.Decimal
	UnitDiscount decimal.Decimal
}

// NetUnit is the unit price after discount, floored at zero.
func (l LineItem) NetUnit() decimal.Decimal {
	return netUnit(l.UnitPrice, l.UnitDiscount)
}

// Total is quantity times the net unit price.
func (l LineItem) Total() decimal.Decimal {
	return ComputeLineTotal(l.Quantity, l.UnitPrice, l.UnitDiscount)
}

// Gross is quantity times the undiscounted unit price.
func (l LineItem) Gross() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Discount is quantity times the unit discount.
func (l LineItem) Discount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitDiscount)
}

// ComputeLineTotal returns quantity * max(unitPrice - unitDiscount, 0).
// A discount larger than the price never drives the line negative.
func ComputeLineTotal(quantity, unitPrice, unitDiscount decimal.Decimal) decimal.Decimal {
	return quantity.Mul(netUnit(unitPrice, unitDiscount))
}

func netUnit(unitPrice, unitDiscount decimal.Decimal) decimal.Decimal {
	return decimal.Max(unitPrice.Sub(unitDiscount), decimal.Zero)
}

// Totals holds the quotation level aggregates.
type Totals struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
}

// Aggregate sums gross line values into Subtotal and line discounts into
// DiscountTotal. GrandTotal is Subtotal - DiscountTotal. An empty slice
// aggregates to zero.
func Aggregate(items []LineItem) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Gross())
		discount = discount.Add(item.Discount())
	}
	return Totals{
		Subtotal:      subtotal,
		DiscountTotal: discount,
		GrandTotal:    subtotal.Sub(discount),
	}
}

// Rounded returns the totals rounded to StoredDigits for persistence.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:      t.Subtotal.Round(StoredDigits),
		DiscountTotal: t.DiscountTotal.Round(StoredDigits),
		GrandTotal:    t.GrandTotal.Round(StoredDigits),
	}
}

// DisplayTotals is the money text form of Totals.
type DisplayTotals struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

// Display renders the totals with DisplayDigits.
func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal: FormatAmount(t.Subtotal, DisplayDigits),
		Discount: FormatAmount(t.DiscountTotal, DisplayDigits),
		Total:    FormatAmount(t.GrandTotal, DisplayDigits),
	}
}
