package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/deepgram/chatdesk/internal/services/session"
	"github.com/deepgram/chatdesk/pkg/logger"
)

// Page names accepted by Render.
const (
	PageLogin  = "login"
	PageSignup = "signup"
	PageChat   = "chat"
)

//go:embed templates/*.html static/*
var files embed.FS

var pages = map[string]*template.Template{
	PageLogin:  parsePage("login.html"),
	PageSignup: parsePage("signup.html"),
	PageChat:   parsePage("chat.html"),
}

// PageData is what every page template sees.
type PageData struct {
	Title     string
	Flashes   []session.Flash
	ServerURL string
}

func parsePage(name string) *template.Template {
	return template.Must(
		template.New("layout.html").ParseFS(files, "templates/layout.html", "templates/"+name),
	)
}

// Render executes the named page into a buffer and writes it with the given status code.
func Render(w http.ResponseWriter, code int, name string, data PageData) {
	l := logger.For(logger.HANDLER)

	tmpl, ok := pages[name]
	if !ok {
		l.Error().Str("page", name).Msg("Unknown page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		l.Error().Err(err).Str("page", name).Msg("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// StaticHandler serves the embedded stylesheet under /static/.
func StaticHandler() http.Handler {
	static, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(static)))
}
