package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	grayText  = &props.Color{Red: 100, Green: 100, Blue: 100}
	darkFill  = &props.Color{Red: 33, Green: 37, Blue: 41}
	whiteText = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// GenerateQuotationPDF renders the printable quotation with maroto/v2.
func GenerateQuotationPDF(data *ExportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.Letter).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	accent := darkFill
	if c, ok := parseHexColor(data.Company.ColorHex); ok {
		accent = c
	}

	addQuotationHeader(m, data)
	addClientBlock(m, data)
	addItemsTable(m, data, accent)
	addTotals(m, data, accent)
	addValidityNote(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate quotation PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// addQuotationHeader adds the company block on the left and the quotation
// number and dates on the right.
func addQuotationHeader(m core.Maroto, data *ExportData) {
	small := props.Text{Size: 8, Align: align.Left, Color: grayText}
	rightSmall := props.Text{Size: 8, Align: align.Right}

	m.AddRows(
		row.New(10).Add(
			col.New(7).Add(text.New(data.Company.Name, props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Left,
			})),
			col.New(5).Add(text.New(data.Title(), props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Align: align.Right,
			})),
		),
	)

	m.AddRows(
		row.New(6).Add(
			col.New(7).Add(text.New(fmtField("NIT", data.Company.TaxID), small)),
			col.New(5).Add(text.New(fmtField("Fecha", data.IssueDate), rightSmall)),
		),
		row.New(6).Add(
			col.New(7).Add(text.New(joinNonEmpty([]string{data.Company.Address, data.Company.Phone}, " | "), small)),
			col.New(5).Add(text.New(fmtField("Válida hasta", data.ValidUntil), rightSmall)),
		),
	)

	if data.Company.Email != "" {
		m.AddRows(row.New(6).Add(col.New(12).Add(text.New(data.Company.Email, small))))
	}
	if data.Company.Description != "" {
		m.AddRows(row.New(8).Add(col.New(12).Add(text.New(data.Company.Description, props.Text{
			Size:  8,
			Style: fontstyle.Italic,
			Align: align.Left,
		}))))
	}

	m.AddRows(row.New(4))
}

// addClientBlock adds the client details.
func addClientBlock(m core.Maroto, data *ExportData) {
	label := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Left, Color: grayText}
	value := props.Text{Size: 8, Align: align.Left}
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 243, Blue: 239}}

	m.AddRows(row.New(7).Add(col.New(12).Add(text.New("CLIENTE", label)).WithStyle(headerCell)))
	m.AddRows(row.New(7).Add(col.New(12).Add(text.New(data.Client.Name, props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Left,
	}))))

	fields := [][2]string{
		{fmtField("CC/NIT", data.Client.TaxID), fmtField("Teléfono", data.Client.Phone)},
		{fmtField("Dirección", data.Client.Address), fmtField("Correo", data.Client.Email)},
	}
	for _, f := range fields {
		if f[0] == "" && f[1] == "" {
			continue
		}
		m.AddRows(row.New(6).Add(
			col.New(6).Add(text.New(f[0], value)),
			col.New(6).Add(text.New(f[1], value)),
		))
	}

	m.AddRows(row.New(4))
}

// addItemsTable adds the item table with alternating row backgrounds.
func addItemsTable(m core.Maroto, data *ExportData, accent *props.Color) {
	headerText := props.Text{Size: 7, Style: fontstyle.Bold, Align: align.Center, Color: whiteText}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := &props.Cell{BackgroundColor: accent}

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", headerText)).WithStyle(headerCell),
			col.New(1).Add(text.New("Cant.", headerText)).WithStyle(headerCell),
			col.New(5).Add(text.New("Descripción", headerTextLeft)).WithStyle(headerCell),
			col.New(2).Add(text.New("Valor unit.", headerText)).WithStyle(headerCell),
			col.New(1).Add(text.New("Desc.", headerText)).WithStyle(headerCell),
			col.New(2).Add(text.New("Total", headerText)).WithStyle(headerCell),
		),
	)

	altBg := &props.Color{Red: 248, Green: 249, Blue: 250}
	center := props.Text{Size: 7, Align: align.Center}
	left := props.Text{Size: 7, Align: align.Left}
	right := props.Text{Size: 7, Align: align.Right}

	for i, item := range data.Rows {
		cols := []core.Col{
			col.New(1).Add(text.New(strconv.Itoa(item.Index), center)),
			col.New(1).Add(text.New(formatQty(item.Quantity), center)),
			col.New(5).Add(text.New(item.Description, left)),
			col.New(2).Add(text.New(FormatAmount(item.UnitPrice, DisplayDigits), right)),
			col.New(1).Add(text.New(FormatAmount(item.UnitDiscount, DisplayDigits), right)),
			col.New(2).Add(text.New(FormatAmount(item.Total, DisplayDigits), right)),
		}
		if i%2 == 1 {
			for j := range cols {
				cols[j] = cols[j].WithStyle(&props.Cell{BackgroundColor: altBg})
			}
		}
		m.AddRows(row.New(7).Add(cols...))
	}

	m.AddRows(row.New(2))
}

// addTotals adds the right-aligned subtotal, discount and total rows.
func addTotals(m core.Maroto, data *ExportData, accent *props.Color) {
	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
	label := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 8, Align: align.Right}

	display := data.Totals.Display()
	m.AddRows(
		row.New(7).Add(
			col.New(9).Add(text.New("Subtotal", label)).WithStyle(summaryCell),
			col.New(3).Add(text.New(display.Subtotal, value)).WithStyle(summaryCell),
		),
		row.New(7).Add(
			col.New(9).Add(text.New("Descuento", label)).WithStyle(summaryCell),
			col.New(3).Add(text.New(display.Discount, value)).WithStyle(summaryCell),
		),
	)

	grand := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right, Color: whiteText}
	grandCell := &props.Cell{BackgroundColor: accent}
	m.AddRows(
		row.New(8).Add(
			col.New(9).Add(text.New("Total", grand)).WithStyle(grandCell),
			col.New(3).Add(text.New(display.Total, grand)).WithStyle(grandCell),
		),
	)

	m.AddRows(row.New(4))
}

func addValidityNote(m core.Maroto, data *ExportData) {
	if data.ValidUntil == "" {
		return
	}
	m.AddRows(row.New(7).Add(col.New(12).Add(text.New(
		fmt.Sprintf("Esta cotización es válida hasta el %s.", data.ValidUntil),
		props.Text{Size: 8, Style: fontstyle.Italic, Align: align.Left, Color: grayText},
	))))
}

// parseHexColor parses "#RRGGBB".
func parseHexColor(hex string) (*props.Color, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return &props.Color{
		Red:   int(v >> 16 & 0xFF),
		Green: int(v >> 8 & 0xFF),
		Blue:  int(v & 0xFF),
	}, true
}
