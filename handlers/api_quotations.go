package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/config"
	"quotedesk/metrics"
	"quotedesk/services"
)

// listParams reads q, page and perPage from the query string.
func listParams(e *core.RequestEvent, defaultPerPage int) services.ListParams {
	query := e.Request.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, err := strconv.Atoi(query.Get("perPage"))
	if err != nil {
		perPage = defaultPerPage
	}
	return services.ListParams{Query: query.Get("q"), Page: page, PerPage: perPage}
}

// HandleQuotationList returns one page of the company's quotations.
// Route: GET /api/quotations
func HandleQuotationList(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		page, err := services.ListQuotations(app, companyID(e), listParams(e, services.DefaultPerPage))
		if err != nil {
			return respondError(e, "quotation_list", err)
		}
		return e.JSON(http.StatusOK, page)
	}
}

// HandleQuotationGet returns one quotation.
// Route: GET /api/quotations/{id}
func HandleQuotationGet(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := services.FindQuotation(app, companyID(e), e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "quotation_get", err)
		}
		return e.JSON(http.StatusOK, services.QuotationFromRecord(rec))
	}
}

// HandleQuotationNextNumber shows the number the next quotation will get
// without reserving it.
// Route: GET /api/quotations/next/number
func HandleQuotationNextNumber(app core.App, cfg config.QuotationConfig) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		next, err := services.NextQuotationNumber(app, companyID(e), cfg.NumberBase)
		if err != nil {
			return respondError(e, "quotation_next_number", err)
		}
		return e.JSON(http.StatusOK, map[string]int{"nextNumber": next})
	}
}

// HandleQuotationStats returns totals for all time and the current month.
// Route: GET /api/quotations/stats
func HandleQuotationStats(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		stats, err := services.ComputeStats(app, companyID(e), time.Now())
		if err != nil {
			return respondError(e, "quotation_stats", err)
		}
		return e.JSON(http.StatusOK, stats)
	}
}

type previewLine struct {
	services.StoredLine
	Display string `json:"display"`
}

type previewResponse struct {
	Items    []previewLine          `json:"items"`
	Subtotal float64                `json:"subtotal"`
	Discount float64                `json:"discount"`
	Total    float64                `json:"total"`
	Display  services.DisplayTotals `json:"display"`
}

// HandleQuotationPreview prices draft lines as the user types. Nothing is
// validated or stored: unparseable values count as zero.
// Route: POST /api/quotations/preview
func HandleQuotationPreview() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in struct {
			Items []services.RawLine `json:"items"`
		}
		if err := decodeJSON(e, &in); err != nil {
			return jsonError(e, http.StatusBadRequest, "Invalid request body")
		}

		lines := services.PreviewLines(in.Items)
		resp := previewResponse{Items: make([]previewLine, len(lines))}
		for i, l := range lines {
			resp.Items[i] = previewLine{
				StoredLine: services.NewStoredLine(l),
				Display:    services.FormatAmount(l.Total(), services.DisplayDigits),
			}
		}
		totals := services.Aggregate(lines)
		rounded := totals.Rounded()
		resp.Subtotal = rounded.Subtotal.InexactFloat64()
		resp.Discount = rounded.DiscountTotal.InexactFloat64()
		resp.Total = rounded.GrandTotal.InexactFloat64()
		resp.Display = totals.Display()
		return e.JSON(http.StatusOK, resp)
	}
}

// HandleQuotationCreate validates the draft and stores it under the next
// sequence number. Client-supplied numbers and totals are ignored.
// Route: POST /api/quotations
func HandleQuotationCreate(app core.App, cfg config.QuotationConfig) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in services.QuotationInput
		if err := decodeJSON(e, &in); err != nil {
			return jsonError(e, http.StatusBadRequest, "Invalid request body")
		}

		draft, err := services.DraftQuotation(in, time.Now(), cfg.ValidityDays)
		if err != nil {
			metrics.ObserveQuotationSave("create", err)
			return respondError(e, "quotation_create", err)
		}

		rec, err := services.CreateQuotation(app, companyID(e), draft, cfg.NumberBase)
		metrics.ObserveQuotationSave("create", err)
		if err != nil {
			return respondError(e, "quotation_create", err)
		}
		slog.Info("quotation: created", "company", companyID(e), "number", rec.GetInt("quotation_number"))
		return e.JSON(http.StatusCreated, services.QuotationFromRecord(rec))
	}
}

// HandleQuotationUpdate replaces the whole snapshot of a quotation. The
// sequence number never changes.
// Route: PUT /api/quotations/{id}
func HandleQuotationUpdate(app core.App, cfg config.QuotationConfig) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		var in services.QuotationInput
		if err := decodeJSON(e, &in); err != nil {
			return jsonError(e, http.StatusBadRequest, "Invalid request body")
		}

		draft, err := services.DraftQuotation(in, time.Now(), cfg.ValidityDays)
		if err != nil {
			metrics.ObserveQuotationSave("update", err)
			return respondError(e, "quotation_update", err)
		}

		rec, err := services.UpdateQuotation(app, companyID(e), id, draft)
		metrics.ObserveQuotationSave("update", err)
		if err != nil {
			return respondError(e, "quotation_update", err)
		}
		return e.JSON(http.StatusOK, services.QuotationFromRecord(rec))
	}
}

// HandleQuotationDelete deletes a quotation. Its number is not reused.
// Route: DELETE /api/quotations/{id}
func HandleQuotationDelete(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := services.DeleteQuotation(app, companyID(e), e.Request.PathValue("id")); err != nil {
			return respondError(e, "quotation_delete", err)
		}
		metrics.IncQuotationDelete()
		return e.NoContent(http.StatusNoContent)
	}
}

// Export formats served by HandleQuotationExport.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

var exportContentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// HandleQuotationExport downloads a quotation as PDF or spreadsheet.
// Route: GET /api/quotations/{id}/pdf, GET /api/quotations/{id}/xlsx
func HandleQuotationExport(app core.App, format string) func(*core.RequestEvent) error {
	generate := services.GenerateQuotationPDF
	if format == FormatXLSX {
		generate = services.GenerateQuotationExcel
	}

	return func(e *core.RequestEvent) error {
		start := time.Now()

		data, err := services.BuildQuotationExportData(app, companyID(e), e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "quotation_export", err)
		}

		body, err := generate(data)
		metrics.ObserveExport(format, err, time.Since(start))
		if err != nil {
			slog.Error("quotation_export: failed to generate", "format", format, "number", data.Number, "error", err)
			return jsonError(e, http.StatusInternalServerError, fmt.Sprintf("Failed to generate %s file", format))
		}

		e.Response.Header().Set("Content-Type", exportContentTypes[format])
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, data.FileName(), format))
		return e.Blob(http.StatusOK, exportContentTypes[format], body)
	}
}
