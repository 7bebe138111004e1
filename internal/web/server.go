package web

import (
	"embed"
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"queryosity/internal/dashboard"
	"queryosity/internal/health"
	"queryosity/internal/logging"
	"queryosity/internal/notify"
	"queryosity/internal/session"
	"queryosity/internal/store"
	"queryosity/internal/wizard"
	"queryosity/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// API is the data-fetching layer as seen by the web surface.
type API interface {
	wizard.ProjectAPI
	dashboard.ResultsFetcher
}

// Server renders the onboarding pages for every browser session.
type Server struct {
	API     API
	Store   store.Store
	Nav     session.NavCodec
	Center  *notify.Center
	Samples dashboard.Samples
	Logger  *zap.Logger

	work *Workspaces
	now  func() time.Time
}

type Options struct {
	Tokens     session.TokenService
	CookieName string
	Hub        *notify.Hub
	Health     *health.Handler
}

func NewServer(api API, st store.Store, nav session.NavCodec, center *notify.Center, samples dashboard.Samples, logger *zap.Logger) *Server {
	return &Server{
		API:     api,
		Store:   st,
		Nav:     nav,
		Center:  center,
		Samples: samples,
		Logger:  logger,
		work:    NewWorkspaces(DefaultWorkspaceIdle),
		now:     time.Now,
	}
}

// Router builds the gin engine serving every page, the toast stream and
// the health endpoints.
func (s *Server) Router(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(s.Logger))
	_ = r.SetTrustedProxies([]string{"127.0.0.1"})
	r.SetHTMLTemplate(parseTemplates())

	static, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(static))

	if opts.Health != nil {
		opts.Health.RegisterRoutes(r)
	}

	pages := r.Group("/")
	pages.Use(session.Middleware(opts.Tokens, opts.CookieName, s.Logger))

	if opts.Hub != nil {
		pages.GET("/ws", notify.WSHandler(opts.Hub, session.GetID, s.Logger))
	}

	pages.GET("/", s.landing)
	pages.POST("/analyze", s.submitDomain)
	pages.GET(wizard.StepEngines.Path(), s.enginesPage)
	pages.POST(wizard.StepEngines.Path(), s.enginesAction)
	pages.GET(wizard.StepCompetitors.Path(), s.competitorsPage)
	pages.POST(wizard.StepCompetitors.Path(), s.competitorsAction)
	pages.GET(wizard.StepQueries.Path(), s.queriesPage)
	pages.POST(wizard.StepQueries.Path(), s.queriesAction)
	pages.GET(wizard.StepDashboard.Path(), s.dashboardPage)
	pages.GET("/dashboard/results", s.dashboardResults)
	pages.GET("/recommend-improvements", s.improvementsPage)
	pages.POST("/reset", s.reset)

	r.NoRoute(session.Middleware(opts.Tokens, opts.CookieName, s.Logger), s.notFound)
	return r
}

func (s *Server) deps(c *gin.Context) wizard.Deps {
	sid := session.GetID(c)
	return wizard.Deps{
		API:    s.API,
		State:  store.ForSession(s.Store, sid),
		Notify: s.Center.For(sid),
		Logger: s.Logger.With(zap.String("session", sid)),
	}
}

// navState decodes a navigation token. A missing or invalid token yields
// no payload and the empty working-set key.
func (s *Server) navState(raw string) (*models.Bundle, string) {
	if raw == "" {
		return nil, ""
	}
	claims, err := s.Nav.Decode(raw)
	if err != nil {
		s.Logger.Debug("ignoring navigation state", zap.Error(err))
		return nil, ""
	}
	b := claims.Bundle
	return &b, claims.ID
}

func withNav(path, raw string) string {
	if raw == "" {
		return path
	}
	return path + "?" + url.Values{"nav": {raw}}.Encode()
}

// follow redirects the browser along a wizard transition.
func (s *Server) follow(c *gin.Context, tr wizard.Transition) {
	if tr.To == wizard.StepLanding {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	token, err := s.Nav.Encode(tr.Payload)
	if err != nil {
		s.Logger.Error("encode navigation state", zap.Error(err))
		c.String(http.StatusInternalServerError, "navigation failed")
		return
	}
	c.Redirect(http.StatusSeeOther, withNav(tr.To.Path(), token))
}

// stay redirects back to the page the form was posted from.
func stay(c *gin.Context, raw string) {
	c.Redirect(http.StatusSeeOther, withNav(c.Request.URL.Path, raw))
}

func (s *Server) reset(c *gin.Context) {
	sid := session.GetID(c)
	if err := s.Store.Clear(c.Request.Context(), sid); err != nil {
		s.Logger.Warn("clear project state", zap.Error(err))
	}
	s.work.Reset(sid)
	s.Center.Drain(sid)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) notFound(c *gin.Context) {
	s.render(c, http.StatusNotFound, "notfound.html", "Page not found", "", gin.H{"Path": c.Request.URL.Path})
}
