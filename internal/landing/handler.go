// Package landing renders the landing page and serves the form, countdown
// and catalog endpoints behind it.
package landing

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zma-auto/taxi-landing/internal/capture"
	"github.com/zma-auto/taxi-landing/internal/catalog"
	"github.com/zma-auto/taxi-landing/internal/countdown"
	"github.com/zma-auto/taxi-landing/internal/session"
	"github.com/zma-auto/taxi-landing/pkg/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// Contact configures the floating contact widget.
type Contact struct {
	ManagerName string
	WhatsAppURL string
	QuotaNote   string
}

// Handler serves the landing page and its endpoints.
type Handler struct {
	baseURL      string
	sessions     *session.Store
	timer        *countdown.Timer
	contact      Contact
	secureCookie bool
	logger       *logging.Logger
}

// Config wires a Handler.
type Config struct {
	// PublicBaseURL, when set, is rendered as the page's canonical URL.
	PublicBaseURL string
	Sessions      *session.Store
	Timer         *countdown.Timer
	Contact       Contact
	SecureCookie  bool
	Logger        *logging.Logger
}

// NewHandler creates a landing handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		baseURL:      strings.TrimRight(cfg.PublicBaseURL, "/"),
		sessions:     cfg.Sessions,
		timer:        cfg.Timer,
		contact:      cfg.Contact,
		secureCookie: cfg.SecureCookie,
		logger:       logger.With("component", "landing"),
	}
}

type fieldView struct {
	capture.Field
	Value string
}

type formView struct {
	capture.Snapshot
	Fields []fieldView
}

type pageData struct {
	CanonicalURL  string
	DeadlineLabel string
	Countdown     countdown.Remaining
	Forms         map[string]formView
	Problems      []string
	Chart         []catalog.Bar
	Models        []catalog.CarModel
	Steps         []string
	Contact       Contact
}

var problems = []string{
	"Льготная ставка действует только до закрытия окна",
	"Квоты на заводской газ ограничены",
	"После дедлайна стоимость вырастет",
}

var steps = []string{
	"Заявка и подбор под бюджет",
	"Бронирование квоты",
	"Видео-отчет из Кореи",
	"Доставка и оформление",
}

var ruMonthsGenitive = [...]string{"января", "февраля", "марта", "апреля", "мая", "июня", "июля", "августа", "сентября", "октября", "ноября", "декабря"}

func deadlineLabel(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + ruMonthsGenitive[t.Month()-1]
}

// Page handles GET / requests.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	forms := h.visitorForms(w, r)

	views := make(map[string]formView)
	for _, schema := range capture.Schemas() {
		f, err := forms.Form(schema.ID)
		if err != nil {
			continue
		}
		views[schema.ID] = buildFormView(f)
	}

	data := pageData{
		CanonicalURL:  canonicalURL(h.baseURL),
		DeadlineLabel: deadlineLabel(h.timer.Target()),
		Countdown:     h.timer.Now(),
		Forms:         views,
		Problems:      problems,
		Chart:         catalog.Chart(catalog.FuelCosts()),
		Models:        catalog.Models(),
		Steps:         steps,
		Contact:       h.contact,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render landing page", "error", err)
	}
}

func canonicalURL(base string) string {
	if base == "" {
		return ""
	}
	return base + "/"
}

func buildFormView(f *capture.Form) formView {
	snap := f.Snapshot()
	schema := f.Schema()
	fields := make([]fieldView, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		fields = append(fields, fieldView{Field: field, Value: snap.Values[field.Name]})
	}
	return formView{Snapshot: snap, Fields: fields}
}

// FormAction handles POST /forms/{formID}/{action} from plain HTML forms and
// redirects back to the form's anchor.
func (h *Handler) FormAction(w http.ResponseWriter, r *http.Request) {
	h.formAction(w, r, chi.URLParam(r, "action"))
}

// SubmitAction handles POST /forms/{formID}/submit. It is routed on its own
// so only submissions count against the submit rate limit.
func (h *Handler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	h.formAction(w, r, "submit")
}

func (h *Handler) formAction(w http.ResponseWriter, r *http.Request, action string) {
	forms := h.visitorForms(w, r)
	formID := chi.URLParam(r, "formID")
	form, err := forms.Form(formID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch action {
	case "open":
		form.Open()
	case "close":
		form.Close()
	case "dismiss":
		if err := form.Dismiss(); err != nil {
			h.logger.Debug("dismiss ignored", "form", formID, "error", err)
		}
	case "submit":
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form body", http.StatusBadRequest)
			return
		}
		if err := form.SetFields(postedValues(form.Schema(), r)); err != nil {
			if errors.Is(err, capture.ErrUnknownField) || errors.Is(err, capture.ErrInvalidOption) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			h.logger.Debug("field update ignored", "form", formID, "error", err)
		}
		if _, err := form.Submit(r.Context()); err != nil {
			h.logger.Debug("submit ignored", "form", formID, "error", err)
		}
	default:
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "/#"+formID, http.StatusSeeOther)
}

func postedValues(schema capture.Schema, r *http.Request) map[string]string {
	values := make(map[string]string, len(schema.Fields))
	for _, field := range schema.Fields {
		if _, ok := r.PostForm[field.Name]; ok {
			values[field.Name] = r.PostForm.Get(field.Name)
		}
	}
	return values
}

// Static serves the embedded stylesheet and script.
func (h *Handler) Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// HealthCheck handles GET /health requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) visitorForms(w http.ResponseWriter, r *http.Request) *capture.Set {
	var current string
	if c, err := r.Cookie(session.CookieName); err == nil {
		current = c.Value
	}
	id, forms := h.sessions.Resolve(current)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return forms
}
