package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"queryosity/internal/session"
	"queryosity/internal/wizard"
	"queryosity/pkg/models"
)

func (s *Server) landing(c *gin.Context) {
	s.render(c, http.StatusOK, "landing.html", "Grade your AI search readiness", "", nil)
}

func (s *Server) submitDomain(c *gin.Context) {
	tr, err := wizard.SubmitDomain(c.Request.Context(), s.deps(c), c.PostForm("domain"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.follow(c, tr)
}

func (s *Server) engineStep(c *gin.Context, raw string) *wizard.EngineStep {
	nav, key := s.navState(raw)
	return openStep(s.work, session.GetID(c), wizard.StepEngines, key, func() *wizard.EngineStep {
		return wizard.OpenEngineStep(c.Request.Context(), s.deps(c), nav)
	})
}

type engineOption struct {
	models.EngineInfo
	Selected bool
}

func (s *Server) enginesPage(c *gin.Context) {
	raw := c.Query("nav")
	st := s.engineStep(c, raw)

	selected := st.Selected()
	opts := make([]engineOption, 0, len(models.EngineCatalog))
	for _, e := range models.EngineCatalog {
		opts = append(opts, engineOption{EngineInfo: e, Selected: models.ContainsEngine(selected, e.ID)})
	}
	s.render(c, http.StatusOK, "engines.html", "Select search engines", raw, gin.H{
		"Domain":      st.Domain(),
		"Engines":     opts,
		"CanContinue": st.CanContinue(),
	})
}

func (s *Server) enginesAction(c *gin.Context) {
	raw := c.PostForm("nav")
	st := s.engineStep(c, raw)

	switch c.PostForm("action") {
	case "toggle":
		if err := st.Toggle(models.Engine(c.PostForm("engine"))); err != nil {
			c.String(http.StatusBadRequest, "unknown engine")
			return
		}
	case "continue":
		if tr, err := st.Continue(c.Request.Context()); err == nil {
			s.follow(c, tr)
			return
		}
	case "back":
		s.follow(c, st.Back())
		return
	default:
		c.String(http.StatusBadRequest, "unknown action")
		return
	}
	stay(c, raw)
}

func (s *Server) competitorStep(c *gin.Context, raw string) *wizard.CompetitorStep {
	nav, key := s.navState(raw)
	return openStep(s.work, session.GetID(c), wizard.StepCompetitors, key, func() *wizard.CompetitorStep {
		return wizard.OpenCompetitorStep(c.Request.Context(), s.deps(c), nav)
	})
}

func (s *Server) competitorsPage(c *gin.Context) {
	raw := c.Query("nav")
	st := s.competitorStep(c, raw)
	search := c.Query("q")

	s.render(c, http.StatusOK, "competitors.html", "Select competitors", raw, gin.H{
		"Domain":      st.Domain(),
		"Search":      search,
		"Competitors": st.Filter(search),
		"Selected":    len(st.Selected()),
		"CanContinue": st.CanContinue(),
	})
}

func (s *Server) competitorsAction(c *gin.Context) {
	raw := c.PostForm("nav")
	st := s.competitorStep(c, raw)

	var err error
	switch c.PostForm("action") {
	case "toggle":
		err = st.Toggle(c.PostForm("id"))
	case "remove":
		err = st.Remove(c.PostForm("id"))
	case "add":
		st.Add(c.PostForm("name"))
	case "continue":
		if tr, err := st.Continue(c.Request.Context()); err == nil {
			s.follow(c, tr)
			return
		}
	case "back":
		s.follow(c, st.Back())
		return
	default:
		c.String(http.StatusBadRequest, "unknown action")
		return
	}
	if errors.Is(err, wizard.ErrUnknownItem) {
		c.String(http.StatusBadRequest, "unknown competitor")
		return
	}
	stay(c, raw)
}

func (s *Server) queryStep(c *gin.Context, raw string) *wizard.QueryStep {
	nav, key := s.navState(raw)
	return openStep(s.work, session.GetID(c), wizard.StepQueries, key, func() *wizard.QueryStep {
		return wizard.OpenQueryStep(c.Request.Context(), s.deps(c), nav)
	})
}

func (s *Server) queriesPage(c *gin.Context) {
	raw := c.Query("nav")
	st := s.queryStep(c, raw)

	s.render(c, http.StatusOK, "queries.html", "Select queries", raw, gin.H{
		"Domain":      st.Domain(),
		"Mode":        string(st.Mode()),
		"Queries":     st.Items(),
		"CanContinue": st.CanContinue(),
		"Default":     models.DefaultImportance,
	})
}

func (s *Server) queriesAction(c *gin.Context) {
	raw := c.PostForm("nav")
	st := s.queryStep(c, raw)
	ctx := c.Request.Context()

	var err error
	switch c.PostForm("action") {
	case "mode":
		err = st.SetMode(ctx, wizard.Mode(c.PostForm("mode")))
	case "generate":
		err = st.Generate(ctx)
	case "add":
		st.Add(c.PostForm("text"), formInt(c, "importance", models.DefaultImportance))
	case "importance":
		err = st.SetImportance(c.PostForm("id"), formInt(c, "importance", models.DefaultImportance))
	case "remove":
		err = st.Remove(c.PostForm("id"))
	case "continue":
		if tr, err := st.Continue(ctx); err == nil {
			s.follow(c, tr)
			return
		}
	case "back":
		s.follow(c, st.Back())
		return
	default:
		c.String(http.StatusBadRequest, "unknown action")
		return
	}
	switch {
	case errors.Is(err, wizard.ErrUnknownItem):
		c.String(http.StatusBadRequest, "unknown query")
		return
	case errors.Is(err, wizard.ErrInFlight):
		s.Logger.Debug("query generation already running")
	case err != nil:
		s.Logger.Info("query action", zap.String("action", c.PostForm("action")), zap.Error(err))
	}
	stay(c, raw)
}

func formInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.PostForm(key)))
	if err != nil {
		return def
	}
	return n
}
