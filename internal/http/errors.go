package http

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/scorchos/site/internal/middleware"
	"github.com/scorchos/site/internal/pages"
)

const htmlContentType = "text/html; charset=utf-8"

// ErrorPage renders /errors/:code. Codes outside the catalog get the 404
// page.
func (h *Handlers) ErrorPage(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		h.RenderError(c, http.StatusNotFound)
		return
	}
	if _, err := h.renderer.Catalog().Lookup(code); err != nil {
		h.RenderError(c, http.StatusNotFound)
		return
	}
	h.RenderError(c, code)
}

// NotFound renders the 404 page for unmatched routes.
func (h *Handlers) NotFound(c *gin.Context) {
	h.RenderError(c, http.StatusNotFound)
}

// RateLimited renders the 429 page. It is the rate limiter's LimitHandler.
func (h *Handlers) RateLimited(c *gin.Context) {
	h.metrics.IncRateLimited()
	h.RenderError(c, http.StatusTooManyRequests)
}

// Recover renders the 500 page after a handler panic. It is installed with
// gin.CustomRecovery.
func (h *Handlers) Recover(c *gin.Context, recovered any) {
	h.logger.Error("handler panic",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Any("panic", recovered))
	h.RenderError(c, http.StatusInternalServerError)
	c.Abort()
}

// RenderError writes the terminal error page for code with that status.
// When the page cannot be rendered a plain status line is written instead.
func (h *Handlers) RenderError(c *gin.Context, code int) {
	info := pages.RequestInfo{
		Path:      c.Request.URL.Path,
		IP:        c.ClientIP(),
		SessionID: requestSessionID(c),
	}

	var buf bytes.Buffer
	if err := h.renderer.ErrorPage(&buf, code, info); err != nil {
		h.logger.Error("render error page", zap.Int("code", code), zap.Error(err))
		c.String(code, "%d %s", code, http.StatusText(code))
		return
	}

	h.metrics.RecordErrorPage(strconv.Itoa(code))
	c.Header("Cache-Control", "no-store")
	c.Data(code, htmlContentType, buf.Bytes())
}

// requestSessionID is the id shown in the terminal fragment: the visitor's
// view cookie when present, otherwise the request id.
func requestSessionID(c *gin.Context) string {
	if viewID, ok := viewCookie(c); ok {
		return viewID.String()
	}
	return middleware.GetRequestID(c)
}
