package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"quotedesk/metrics"
	"quotedesk/services"
)

// Catalog describes one company-scoped lookup collection.
type Catalog struct {
	collection string
	prefix     string
	view       func(*core.Record) any
	save       func(app core.App, companyID, id string, body *json.Decoder) (*core.Record, error)
}

// Products is the product catalog.
var Products = Catalog{
	collection: "products",
	prefix:     "product",
	view:       func(rec *core.Record) any { return services.ProductFromRecord(rec) },
	save: func(app core.App, companyID, id string, body *json.Decoder) (*core.Record, error) {
		var in services.ProductInput
		if err := body.Decode(&in); err != nil {
			return nil, errBadBody
		}
		return services.SaveProduct(app, companyID, id, in)
	},
}

// Clients is the client directory.
var Clients = Catalog{
	collection: "clients",
	prefix:     "client",
	view:       func(rec *core.Record) any { return services.ClientFromRecord(rec) },
	save: func(app core.App, companyID, id string, body *json.Decoder) (*core.Record, error) {
		var in services.ClientInput
		if err := body.Decode(&in); err != nil {
			return nil, errBadBody
		}
		return services.SaveClient(app, companyID, id, in)
	},
}

func (c Catalog) list(app core.App, e *core.RequestEvent, query string, limit int) error {
	records, err := services.SearchCatalog(app, c.collection, companyID(e), query, limit)
	if err != nil {
		return respondError(e, c.prefix+"_list", err)
	}
	items := make([]any, len(records))
	for i, rec := range records {
		items[i] = c.view(rec)
	}
	return e.JSON(http.StatusOK, items)
}

// HandleCatalogList lists products or clients, filtered by ?q=.
// Route: GET /api/products, GET /api/clients
func HandleCatalogList(app core.App, c Catalog) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return c.list(app, e, e.Request.URL.Query().Get("q"), services.MaxPerPage)
	}
}

// HandleCatalogSearch is the autocomplete form of the name search, capped
// at services.SearchLimit rows.
// Route: GET /api/products/search/{query}, GET /api/clients/search/{query}
func HandleCatalogSearch(app core.App, c Catalog) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return c.list(app, e, e.Request.PathValue("query"), services.SearchLimit)
	}
}

// Route: GET /api/products/{id}, GET /api/clients/{id}
func HandleCatalogGet(app core.App, c Catalog) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := services.FindCatalogRecord(app, c.collection, companyID(e), e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, c.prefix+"_get", err)
		}
		return e.JSON(http.StatusOK, c.view(rec))
	}
}

// HandleCatalogSave creates a record, or updates it when the route has an id.
// Route: POST /api/products, PUT /api/products/{id} (and the clients equivalents)
func HandleCatalogSave(app core.App, c Catalog) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		rec, err := c.save(app, companyID(e), id, json.NewDecoder(e.Request.Body))
		if errors.Is(err, errBadBody) {
			return jsonError(e, http.StatusBadRequest, "Invalid request body")
		}
		if err != nil {
			return respondError(e, c.prefix+"_save", err)
		}

		status := http.StatusOK
		if id == "" {
			status = http.StatusCreated
		}
		return e.JSON(status, c.view(rec))
	}
}

// Route: DELETE /api/products/{id}, DELETE /api/clients/{id}
func HandleCatalogDelete(app core.App, c Catalog) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := services.DeleteCatalogRecord(app, c.collection, companyID(e), e.Request.PathValue("id")); err != nil {
			return respondError(e, c.prefix+"_delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleProductImport upserts products from an uploaded .csv or .xlsx file
// (multipart field "file"). Rows with errors are skipped and reported.
// Route: POST /api/products/import
func HandleProductImport(app core.App) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return jsonError(e, http.StatusBadRequest, "File too large or invalid form data")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return jsonError(e, http.StatusBadRequest, "Please select a file to upload")
		}
		defer file.Close()

		result, err := services.ImportProducts(app, companyID(e), file, header.Filename)
		if err != nil {
			slog.Warn("product_import: rejected file", "file", header.Filename, "error", err)
			return jsonError(e, http.StatusBadRequest, err.Error())
		}
		metrics.AddProductImportRows(result.Created, result.Updated, result.ErrorRows)
		slog.Info("product_import: done",
			"company", companyID(e), "created", result.Created, "updated", result.Updated, "errors", result.ErrorRows)
		return e.JSON(http.StatusOK, result)
	}
}

// HandleProductImportErrors turns the posted row errors of an import into a
// downloadable spreadsheet.
// Route: POST /api/products/import/errors
func HandleProductImportErrors() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var rowErrs []services.ImportRowError
		if err := decodeJSON(e, &rowErrs); err != nil {
			return jsonError(e, http.StatusBadRequest, "Invalid error data")
		}

		body, err := services.GenerateImportErrorReport(rowErrs)
		if err != nil {
			slog.Error("product_import: error report", "error", err)
			return jsonError(e, http.StatusInternalServerError, internalErrorMessage)
		}

		contentType := exportContentTypes[FormatXLSX]
		e.Response.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="errores-productos-%s.xlsx"`, time.Now().Format("2006-01-02")))
		return e.Blob(http.StatusOK, contentType, body)
	}
}
