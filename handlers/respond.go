package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/core"

	"quotedesk/auth"
	"quotedesk/services"
)

const internalErrorMessage = "Something went wrong. Please try again."

var errBadBody = errors.New("invalid request body")

// apiError is the body of every failed JSON API response.
type apiError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func jsonError(e *core.RequestEvent, status int, message string) error {
	return e.JSON(status, apiError{Error: message})
}

func validationFailed(e *core.RequestEvent, errs validation.Errors) error {
	fields := make(map[string]string, len(errs))
	for field, err := range errs {
		if err != nil {
			fields[field] = err.Error()
		}
	}
	return e.JSON(http.StatusBadRequest, apiError{Error: "Validation failed", Fields: fields})
}

// respondError maps service errors onto API responses. Unknown errors are
// logged under prefix and reported as a generic 500.
func respondError(e *core.RequestEvent, prefix string, err error) error {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		return validationFailed(e, fieldErrs)
	case errors.Is(err, services.ErrNoLineItems):
		return jsonError(e, http.StatusBadRequest, "At least one line item is required")
	case errors.Is(err, services.ErrQuotationNotFound):
		return jsonError(e, http.StatusNotFound, "Quotation not found")
	case errors.Is(err, services.ErrRecordNotFound):
		return jsonError(e, http.StatusNotFound, "Record not found")
	case errors.Is(err, services.ErrDuplicateName):
		return jsonError(e, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrEmailExists):
		return jsonError(e, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrWeakPassword):
		return validationFailed(e, validation.Errors{"password": err})
	}
	slog.Error(prefix+": request failed", "path", e.Request.URL.Path, "error", err)
	return jsonError(e, http.StatusInternalServerError, internalErrorMessage)
}

// decodeJSON decodes the request body into dst.
func decodeJSON(e *core.RequestEvent, dst any) error {
	return json.NewDecoder(e.Request.Body).Decode(dst)
}
