// Package templates holds the HTML views of quotedesk as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// PageData is shared by every full page.
type PageData struct {
	Title       string
	CompanyName string
	UserName    string
}

// htmlWriter collects the first write error so components can be written
// as a flat sequence of fragments.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *htmlWriter) attr(name, value string) {
	h.rawf(` %s="%s"`, name, templ.EscapeString(value))
}

// Layout wraps body in the HTML shell with the top bar and toast container.
func Layout(page PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(pageTitle(page))
		h.raw(`</title><link rel="stylesheet" href="/static/app.css">`)
		h.raw(`<script src="https://unpkg.com/htmx.org@2.0.4"></script></head><body>`)
		if page.CompanyName != "" {
			h.raw(`<header class="topbar"><a class="brand" href="/">`)
			h.text(page.CompanyName)
			h.raw(`</a><nav><span class="user">`)
			h.text(page.UserName)
			h.raw(`</span><a href="/logout">Salir</a></nav></header>`)
		}
		h.raw(`<main class="container">`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</main><div id="toast" class="toast" hidden></div>`)
		h.raw(toastScript)
		h.raw(`</body></html>`)
		return h.err
	})
}

func pageTitle(page PageData) string {
	parts := []string{}
	if page.Title != "" {
		parts = append(parts, page.Title)
	}
	parts = append(parts, "quotedesk")
	return strings.Join(parts, " · ")
}

// toastScript shows HX-Trigger showToast events and the flash_toast cookie
// left behind by full redirects.
const toastScript = `<script>
(function () {
  function show(d) {
    var el = document.getElementById("toast");
    el.textContent = d.message;
    el.className = "toast toast-" + d.type;
    el.hidden = false;
    setTimeout(function () { el.hidden = true; }, 4000);
  }
  document.body.addEventListener("showToast", function (ev) { show(ev.detail); });
  var m = document.cookie.match(/(?:^|; )flash_toast=([^;]*)/);
  if (m) {
    try { show(JSON.parse(decodeURIComponent(m[1]))); } catch (e) {}
    document.cookie = "flash_toast=; Max-Age=0; path=/";
  }
})();
</script>`
