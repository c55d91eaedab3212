package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"school-portal/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageNames = []string{"login", "register", "student", "teacher", "grade", "subject"}

var templateFuncs = template.FuncMap{
	"percent": func(ratio float64) string {
		return fmt.Sprintf("%.0f%%", ratio*100)
	},
}

// Renderer holds one parsed template set per page, each joined with the
// shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render executes the page into a buffer first so a template failure never
// leaves a half-written page behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := r.pages[page]
	if !ok {
		slog.Error("unknown page template", "page", page)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "Unexpected server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// StaticHandler serves the embedded stylesheet under /static/.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// pageBase is embedded by every page model; the layout reads Session.
type pageBase struct {
	Session model.Session
}

type roleOption struct {
	Value string
	Label string
}

var loginRoles = []roleOption{
	{Value: string(model.RoleStudent), Label: "Student"},
	{Value: string(model.RoleTeacher), Label: "Teacher"},
}

type loginPage struct {
	pageBase
	Roles        []roleOption
	Error        string
	Unauthorized bool
	BannerMillis int64
	Email        string
	Role         string
}

type registerPage struct {
	pageBase
	Error   string
	Success string
	Name    string
	Email   string
	Role    string
}

type studentPage struct {
	pageBase
	View       model.StudentDashboard
	Error      string
	LoginAgain bool
}

type teacherPage struct {
	pageBase
	View model.TeacherDashboard
}

type gradePage struct {
	pageBase
	Inputs  model.InputInfo
	Form    model.GradeForm
	Error   string
	Success string
}

type subjectPage struct {
	pageBase
	Name    string
	Error   string
	Success string
}
