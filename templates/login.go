package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// LoginData is the state of the login form.
type LoginData struct {
	Email string
	Error string
}

// LoginPage renders the sign-in form.
func LoginPage(data LoginData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="card login"><h1>Iniciar sesión</h1>`)
		if data.Error != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(data.Error)
			h.raw(`</p>`)
		}
		h.raw(`<form method="post" action="/login">`)
		h.raw(`<label>Correo<input type="email" name="email" required`)
		h.attr("value", data.Email)
		h.raw(`></label>`)
		h.raw(`<label>Contraseña<input type="password" name="password" required></label>`)
		h.raw(`<button type="submit">Entrar</button></form></section>`)
		return h.err
	})
	return Layout(PageData{Title: "Iniciar sesión"}, body)
}
