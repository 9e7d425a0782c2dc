package httpx

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	domainauth "github.com/tenugui-collection/tenugui-api/internal/domain/auth"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pages renders the few HTML pages the auth gate owns.
type Pages struct {
	denied  *template.Template
	failure *template.Template
	home    *template.Template
	logger  *slog.Logger
}

// NewPages parses the embedded templates.
func NewPages(logger *slog.Logger) (*Pages, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pages{logger: logger}
	for name, dst := range map[string]**template.Template{
		"denied":  &p.denied,
		"failure": &p.failure,
		"home":    &p.home,
	} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		*dst = t
	}
	return p, nil
}

// MustPages is NewPages for callers that cannot recover from a broken build.
func MustPages(logger *slog.Logger) *Pages {
	p, err := NewPages(logger)
	if err != nil {
		panic(err)
	}
	return p
}

type pageData struct {
	Title string
	Email string
	User  *domainauth.User
}

// Denied renders the 403 page naming the rejected email.
func (p *Pages) Denied(w http.ResponseWriter, r *http.Request, email string) {
	p.render(w, r, http.StatusForbidden, p.denied, pageData{Title: "アクセス拒否", Email: email})
}

// Failure renders the generic 500 login failure page. No error detail is shown.
func (p *Pages) Failure(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusInternalServerError, p.failure, pageData{Title: "エラー"})
}

// Home renders the signed-in landing page.
func (p *Pages) Home(w http.ResponseWriter, r *http.Request, user *domainauth.User) {
	p.render(w, r, http.StatusOK, p.home, pageData{Title: "ホーム", User: user})
}

func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, t *template.Template, data pageData) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		p.logger.ErrorContext(r.Context(), "render page failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
