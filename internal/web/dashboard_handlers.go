package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"queryosity/internal/apiclient"
	"queryosity/internal/dashboard"
	"queryosity/internal/session"
	"queryosity/internal/store"
	"queryosity/internal/wizard"
)

func (s *Server) dashboardPage(c *gin.Context) {
	ctx := c.Request.Context()
	raw := c.Query("nav")
	nav, _ := s.navState(raw)

	p, err := store.ForSession(s.Store, session.GetID(c)).Snapshot(ctx)
	if err != nil {
		s.Logger.Warn("read project state", zap.Error(err))
	}
	view := dashboard.Build(wizard.Reconcile(wizard.StepDashboard, nav, p), s.Samples)
	view.Results = dashboard.LoadResults(ctx, s.API, p.ID, s.now(), s.Logger)

	s.render(c, http.StatusOK, "dashboard.html", "Dashboard", raw, view)
}

// dashboardResults returns the session project's analysis results as JSON.
func (s *Server) dashboardResults(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := store.ForSession(s.Store, session.GetID(c)).Snapshot(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "state unavailable"})
		return
	}
	if !p.HasProjectID() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no project"})
		return
	}

	to := s.now()
	from := to.Add(-dashboard.ResultsWindow)
	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(apiclient.DateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		from = t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(apiclient.DateLayout, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		to = t
	}

	res, err := s.API.FetchResults(ctx, p.ID, from, to)
	if err != nil {
		status := apiclient.StatusOf(err)
		if status < 400 {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": "results unavailable"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) improvementsPage(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	q := dashboard.AuditQuery{
		Search:   c.Query("q"),
		Status:   dashboard.ParseStatus(c.Query("status")),
		Page:     page,
		PageSize: size,
	}

	s.render(c, http.StatusOK, "improvements.html", "Recommend improvements", "", gin.H{
		"Query":     q,
		"Result":    dashboard.Audits(s.Samples.PageAudits, q),
		"Statuses":  []dashboard.Status{dashboard.StatusAll, dashboard.StatusCritical, dashboard.StatusWarning, dashboard.StatusGood},
		"PageSizes": dashboard.PageSizes,
	})
}
