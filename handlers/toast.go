package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

const flashToastCookie = "flash_toast"

// SetToast sets the HX-Trigger response header to show a toast on the
// client. An existing HX-Trigger JSON object is kept and the showToast key is
// merged into it. A short-lived flash cookie carries the same toast across
// plain 302 redirects, where HX-Trigger is lost.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := map[string]string{"message": message, "type": toastType}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			slog.Warn("toast: existing HX-Trigger is not JSON, overwriting", "value", existing, "error", err)
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = payload

	data, err := json.Marshal(trigger)
	if err != nil {
		slog.Error("toast: failed to marshal HX-Trigger", "error", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	cookieVal, err := json.Marshal(payload)
	if err != nil {
		return
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     flashToastCookie,
		Value:    url.QueryEscape(string(cookieVal)),
		Path:     "/",
		MaxAge:   10,
		HttpOnly: false, // read by the page script
		SameSite: http.SameSiteLaxMode,
	})
}

// ErrorToast sets an error toast and tells HTMX not to swap the response
// body into the page.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}

// isHTMX reports whether the request was issued by HTMX.
func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// redirect sends an HX-Redirect to HTMX requests and a 302 otherwise.
func redirect(e *core.RequestEvent, to string) error {
	if isHTMX(e) {
		e.Response.Header().Set("HX-Redirect", to)
		return e.NoContent(http.StatusOK)
	}
	return e.Redirect(http.StatusFound, to)
}
