package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/alintm4/django-crud/internal/forms"
	"github.com/alintm4/django-crud/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"register", "login", "dashboard", "task_list", "task_form", "task_detail", "not_found",
}

var templates = func() map[string]*template.Template {
	funcs := template.FuncMap{
		"overdue": func(t interface{}) bool {
			switch v := t.(type) {
			case models.Task:
				return v.Overdue(time.Now())
			case *models.Task:
				return v.Overdue(time.Now())
			}
			return false
		},
	}
	set := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		set[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return set
}()

// page carries everything the layout and a content template can need.
// CSRF and User are filled from the request context by render.
type page struct {
	User       *models.User
	CSRF       string
	Flash      string
	Errors     forms.Errors
	Form       interface{}
	Data       interface{}
	Priorities []models.Priority
	Statuses   []models.Status
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, status int, p page) {
	if p.User == nil {
		p.User = userFrom(r.Context())
	}
	if session := sessionFrom(r.Context()); session != nil {
		p.CSRF = session.CSRFToken
	}
	if p.Flash == "" {
		p.Flash = popFlash(w, r)
	}
	p.Priorities = models.Priorities()
	p.Statuses = models.Statuses()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates[name].ExecuteTemplate(w, "layout.html", p); err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("rendering page")
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "not_found", http.StatusNotFound, page{})
}

const flashCookie = "task_flash"

// setFlash stores a one-shot message shown on the next rendered page.
func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}
