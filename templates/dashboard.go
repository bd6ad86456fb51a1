package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"quotedesk/services"
)

// DashboardData is everything the quotation dashboard shows.
type DashboardData struct {
	Page  PageData
	Stats services.QuotationStats
	List  services.QuotationPage
}

// DashboardPage renders stats, the search box and one page of quotations.
func DashboardPage(data DashboardData) templ.Component {
	data.Page.Title = "Cotizaciones"
	return Layout(data.Page, dashboardBody(data))
}

func dashboardBody(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<section class="stats">`)
		statCard(h, "Cotizaciones", fmt.Sprintf("%d", data.Stats.All.Count))
		statCard(h, "Total cotizado", data.Stats.Display["total"])
		statCard(h, "Promedio", data.Stats.Display["average"])
		statCard(h, "Este mes", fmt.Sprintf("%d · %s", data.Stats.Month.Count, data.Stats.Display["monthTotal"]))
		h.raw(`</section>`)

		h.raw(`<form class="search" method="get" action="/">`)
		h.raw(`<input type="search" name="q" placeholder="Buscar por cliente, correo, teléfono o número"`)
		h.attr("value", data.List.Query)
		h.raw(`><button type="submit">Buscar</button></form>`)

		if len(data.List.Items) == 0 {
			h.raw(`<p class="empty">No hay cotizaciones.</p>`)
			return h.err
		}

		h.raw(`<table class="quotations"><thead><tr>`)
		h.raw(`<th>N°</th><th>Cliente</th><th>Fecha</th><th>Válida hasta</th><th class="num">Total</th><th></th>`)
		h.raw(`</tr></thead><tbody>`)
		for _, q := range data.List.Items {
			h.rawf(`<tr id="quotation-%s"><td>%d</td><td>`, templ.EscapeString(q.ID), q.Number)
			h.text(q.ClientName)
			h.raw(`</td><td>`)
			h.text(q.IssueDate)
			h.raw(`</td><td>`)
			h.text(q.ValidUntil)
			h.raw(`</td><td class="num">`)
			h.text(q.Display.Total)
			h.raw(`</td><td class="actions">`)
			h.raw(`<a target="_blank"`)
			h.attr("href", "/quotations/"+q.ID+"/print")
			h.raw(`>Imprimir</a> <a`)
			h.attr("href", "/api/quotations/"+q.ID+"/pdf")
			h.raw(`>PDF</a> <a`)
			h.attr("href", "/api/quotations/"+q.ID+"/xlsx")
			h.raw(`>Excel</a> <button class="danger"`)
			h.attr("hx-delete", "/quotations/"+q.ID)
			h.attr("hx-confirm", fmt.Sprintf("¿Eliminar la cotización N° %d?", q.Number))
			h.raw(`>Eliminar</button></td></tr>`)
		}
		h.raw(`</tbody></table>`)

		pagination(h, data.List)
		return h.err
	})
}

func statCard(h *htmlWriter, label, value string) {
	h.raw(`<div class="stat"><span class="label">`)
	h.text(label)
	h.raw(`</span><strong>`)
	h.text(value)
	h.raw(`</strong></div>`)
}

func pagination(h *htmlWriter, list services.QuotationPage) {
	if list.TotalPages <= 1 {
		return
	}
	h.raw(`<nav class="pagination">`)
	if list.Page > 1 {
		h.raw(`<a`)
		h.attr("href", pageURL(list.Query, list.Page-1))
		h.raw(`>Anterior</a>`)
	}
	h.rawf(`<span>Página %d de %d</span>`, list.Page, list.TotalPages)
	if list.Page < list.TotalPages {
		h.raw(`<a`)
		h.attr("href", pageURL(list.Query, list.Page+1))
		h.raw(`>Siguiente</a>`)
	}
	h.raw(`</nav>`)
}

// pageURL builds the dashboard link for a page, keeping the search query.
func pageURL(query string, page int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	v.Set("page", fmt.Sprintf("%d", page))
	return "/?" + v.Encode()
}
