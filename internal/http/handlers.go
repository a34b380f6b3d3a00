package http

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scorchos/site/internal/logging"
	"github.com/scorchos/site/internal/manager"
	"github.com/scorchos/site/internal/monitoring"
	"github.com/scorchos/site/internal/pages"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	renderer *pages.Renderer
	sessions *manager.Manager
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(renderer *pages.Renderer, sessions *manager.Manager, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		renderer: renderer,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger.Component("http"),
	}
}

// Home renders the landing page.
func (h *Handlers) Home(c *gin.Context) {
	h.sitePage(c, pages.PageHome, "")
}

// About renders the about page.
func (h *Handlers) About(c *gin.Context) {
	h.sitePage(c, pages.PageAbout, "")
}

// Portfolio renders the portfolio index.
func (h *Handlers) Portfolio(c *gin.Context) {
	h.sitePage(c, pages.PagePortfolio, "")
}

// CaseStudy renders one portfolio entry.
func (h *Handlers) CaseStudy(c *gin.Context) {
	slug := c.Param("slug")
	if !validSlug(slug) {
		h.RenderError(c, http.StatusNotFound)
		return
	}
	h.sitePage(c, pages.PageCaseStudy, slug)
}

func (h *Handlers) sitePage(c *gin.Context, page pages.SitePage, slug string) {
	data := pages.SitePageData{Page: page, Slug: slug}
	if viewID, ok := viewCookie(c); ok {
		data.TerminalOpen = h.sessions.Views().Get(viewID).TerminalOpen
	}

	var buf bytes.Buffer
	if err := h.renderer.SitePage(&buf, data); err != nil {
		h.logger.Error("render site page", zap.String("page", string(page)), zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": h.sessions.Count(),
		"views":    h.sessions.Views().Len(),
		"codes":    h.renderer.Catalog().Codes(),
		"metrics":  h.metrics.Snapshot(),
	})
}

// ListSessions lists the live terminal sessions.
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions := h.sessions.List()
	if sessions == nil {
		sessions = []manager.SessionInfo{}
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// Register mounts the page, error, view and ops routes on router.
func (h *Handlers) Register(router *gin.Engine) {
	router.GET("/", h.Home)
	router.GET("/about", h.About)
	router.GET("/portfolio", h.Portfolio)
	router.GET("/case-study/:slug", h.CaseStudy)

	router.GET("/errors/:code", h.ErrorPage)

	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.GET("/view", h.GetView)
	api.POST("/view/terminal/:action", h.ViewTerminal)
	api.GET("/sessions", h.ListSessions)

	router.NoRoute(h.NotFound)
}
