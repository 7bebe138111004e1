package web

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"queryosity/internal/notify"
	"queryosity/internal/session"
	"queryosity/pkg/models"
)

type page struct {
	Title  string
	Nav    string
	Toasts []notify.Toast
	Data   any
}

var funcs = template.FuncMap{
	"importanceLevels": func() []int {
		out := make([]int, 0, models.MaxImportance-models.MinImportance+1)
		for i := models.MinImportance; i <= models.MaxImportance; i++ {
			out = append(out, i)
		}
		return out
	},
	"add": func(a, b int) int { return a + b },
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// render writes a full page, draining the session's pending toasts into it.
func (s *Server) render(c *gin.Context, status int, name, title, nav string, data any) {
	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, page{
		Title:  title,
		Nav:    nav,
		Toasts: s.Center.Drain(session.GetID(c)),
		Data:   data,
	})
}
