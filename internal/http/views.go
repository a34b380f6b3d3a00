package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scorchos/site/internal/manager"
	"github.com/scorchos/site/internal/shared/id"
)

// ViewCookie carries the visitor's view id.
const ViewCookie = "scorch_view"

const viewCookieMaxAge = 30 * 24 * 60 * 60

// GetView returns the visitor's view state.
func (h *Handlers) GetView(c *gin.Context) {
	viewID, ok := viewCookie(c)
	if !ok {
		c.JSON(http.StatusOK, manager.ViewState{})
		return
	}
	c.JSON(http.StatusOK, h.sessions.Views().Get(viewID))
}

// ViewTerminal applies open, close or toggle to the visitor's terminal
// panel, issuing a view cookie on first use.
func (h *Handlers) ViewTerminal(c *gin.Context) {
	viewID, ok := viewCookie(c)
	if !ok {
		viewID = id.NewViewID()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(ViewCookie, viewID.String(), viewCookieMaxAge, "/", "", c.Request.TLS != nil, true)
	}

	state, err := h.sessions.Views().Apply(viewID, c.Param("action"))
	if err != nil {
		if errors.Is(err, manager.ErrUnknownAction) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}
