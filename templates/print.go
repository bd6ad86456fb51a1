package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"quotedesk/services"
)

// QuotationPrintPage renders a standalone printable quotation. It does not
// use Layout so the browser print dialog shows only the document.
func QuotationPrintPage(data *services.ExportData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8"><title>`)
		h.text(data.Title())
		h.raw(`</title><link rel="stylesheet" href="/static/app.css"></head><body class="print">`)

		h.raw(`<header class="doc-header"`)
		if data.Company.ColorHex != "" {
			h.attr("style", "border-color: "+data.Company.ColorHex)
		}
		h.raw(`><div class="issuer">`)
		if data.Company.LogoURL != "" {
			h.raw(`<img class="logo" alt=""`)
			h.attr("src", data.Company.LogoURL)
			h.raw(`>`)
		}
		h.raw(`<h1>`)
		h.text(data.Company.Name)
		h.raw(`</h1>`)
		printLine(h, "NIT", data.Company.TaxID)
		printLine(h, "", data.Company.Address)
		printLine(h, "", data.Company.Phone)
		printLine(h, "", data.Company.Email)
		h.raw(`</div><div class="doc-meta"><h2>`)
		h.text(data.Title())
		h.raw(`</h2>`)
		printLine(h, "Fecha", data.IssueDate)
		printLine(h, "Válida hasta", data.ValidUntil)
		h.raw(`</div></header>`)

		h.raw(`<section class="client"><h3>Cliente</h3>`)
		printLine(h, "", data.Client.Name)
		printLine(h, "CC/NIT", data.Client.TaxID)
		printLine(h, "Dirección", data.Client.Address)
		printLine(h, "Teléfono", data.Client.Phone)
		printLine(h, "Correo", data.Client.Email)
		h.raw(`</section>`)

		h.raw(`<table class="items"><thead><tr><th>#</th><th>Cant.</th><th>Descripción</th>`)
		h.raw(`<th class="num">Valor unit.</th><th class="num">Desc. unit.</th><th class="num">Total</th></tr></thead><tbody>`)
		for _, r := range data.Rows {
			h.rawf(`<tr><td>%d</td><td>`, r.Index)
			h.text(r.Quantity.String())
			h.raw(`</td><td>`)
			h.text(r.Description)
			h.raw(`</td><td class="num">`)
			h.text(services.FormatAmount(r.UnitPrice, services.DisplayDigits))
			h.raw(`</td><td class="num">`)
			h.text(services.FormatAmount(r.UnitDiscount, services.DisplayDigits))
			h.raw(`</td><td class="num">`)
			h.text(services.FormatAmount(r.Total, services.DisplayDigits))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)

		totals := data.Totals.Display()
		h.raw(`<table class="totals"><tbody>`)
		totalRow(h, "Subtotal", totals.Subtotal)
		totalRow(h, "Descuento", totals.Discount)
		totalRow(h, "Total", totals.Total)
		h.raw(`</tbody></table>`)

		if data.Company.Description != "" {
			h.raw(`<p class="note">`)
			h.text(data.Company.Description)
			h.raw(`</p>`)
		}
		h.raw(`<script>window.addEventListener("load", function () { window.print(); });</script>`)
		h.raw(`</body></html>`)
		return h.err
	})
}

func printLine(h *htmlWriter, label, value string) {
	if value == "" {
		return
	}
	h.raw(`<p>`)
	if label != "" {
		h.raw(`<span class="label">`)
		h.text(label)
		h.raw(`:</span> `)
	}
	h.text(value)
	h.raw(`</p>`)
}

func totalRow(h *htmlWriter, label, value string) {
	h.raw(`<tr><th>`)
	h.text(label)
	h.raw(`</th><td class="num">`)
	h.text(value)
	h.raw(`</td></tr>`)
}
