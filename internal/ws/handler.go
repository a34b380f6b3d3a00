package ws

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/scorchos/site/internal/drag"
	"github.com/scorchos/site/internal/logging"
	"github.com/scorchos/site/internal/manager"
	"github.com/scorchos/site/internal/monitoring"
	"github.com/scorchos/site/internal/pages"
	"github.com/scorchos/site/internal/scramble"
	"github.com/scorchos/site/internal/shell"
)

// Config bounds what one connection may send.
type Config struct {
	ReadLimit    int64
	WriteTimeout time.Duration
	MaxPathLen   int
	MaxHoverText int
	// AllowOrigins lists accepted Origin headers; empty or "*" accepts all.
	AllowOrigins []string
}

// DefaultConfig returns the connection limits used in production.
func DefaultConfig() Config {
	return Config{
		ReadLimit:    8 << 10,
		WriteTimeout: 5 * time.Second,
		MaxPathLen:   512,
		MaxHoverText: 256,
		AllowOrigins: []string{"*"},
	}
}

const maxKeyLen = 32

// Handler manages WebSocket connections
type Handler struct {
	sessions *manager.Manager
	catalog  *pages.Catalog
	metrics  *monitoring.Metrics
	logger   *logging.Logger
	cfg      Config
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions *manager.Manager, catalog *pages.Catalog, metrics *monitoring.Metrics, logger *logging.Logger, cfg Config) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		sessions: sessions,
		catalog:  catalog,
		metrics:  metrics,
		logger:   logger.Component("ws"),
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(cfg.AllowOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, origin) {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// HandleConnection upgrades the request and runs one terminal session
// until either side goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	code, path, err := h.parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.cfg.ReadLimit)

	out := newSurface(conn, h.cfg.WriteTimeout, h.metrics, h.logger)

	rec, err := h.sessions.Create(manager.CreateParams{
		Code:       code,
		Path:       path,
		RemoteAddr: c.ClientIP(),
		Prompt:     pages.PromptFor(code),
	}, out)
	if err != nil {
		if errors.Is(err, manager.ErrTooManySessions) {
			h.metrics.IncSessionsRejected()
		}
		out.sendError("terminal unavailable, try again later")
		out.close(websocket.CloseTryAgainLater, "too many sessions")
		return
	}
	defer func() { _ = h.sessions.Close(rec.ID) }()

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	logger := h.logger.With(zap.String("session_id", rec.ID.String()))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-rec.Context().Done():
			// Reaped or shut down while the page is still open.
			out.close(websocket.CloseGoingAway, "session closed")
			_ = conn.Close()
		case <-done:
		}
	}()

	rec.Start()

	cn := &connection{h: h, rec: rec, out: out, logger: logger}
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Debug("read failed", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.metrics.RecordWSMessage("in", "malformed")
			out.sendError("malformed message")
			continue
		}

		_ = h.sessions.Touch(rec.ID)
		kind := msg.Type
		if !cn.handle(msg) {
			kind = "unknown"
		}
		h.metrics.RecordWSMessage("in", kind)
	}
}

func (h *Handler) parseQuery(c *gin.Context) (int, string, error) {
	code, err := strconv.Atoi(c.Query("code"))
	if err != nil {
		return 0, "", errors.New("invalid code")
	}
	if _, err := h.catalog.Lookup(code); err != nil {
		return 0, "", err
	}

	path := c.DefaultQuery("path", "/")
	if len(path) > h.cfg.MaxPathLen {
		return 0, "", errors.New("path too long")
	}
	return code, path, nil
}

// connection is the per-socket state of the read loop. It is only touched
// from the read loop goroutine.
type connection struct {
	h      *Handler
	rec    *manager.Record
	out    *surface
	logger *logging.Logger

	// active is the window a pointer drag or resize is moving, if any.
	active string
}

// handle dispatches one message and reports whether its type was known.
func (c *connection) handle(msg Message) bool {
	switch msg.Type {
	case TypeSubmit:
		c.rec.Session.Submit(msg.Line)
	case TypeHistory:
		d, ok := shell.ParseDirection(msg.Direction)
		if !ok {
			c.out.sendError("unknown history direction")
			return true
		}
		c.rec.Session.Navigate(d)
	case TypeClick:
		c.rec.Session.Click(msg.Selection)
	case TypePointer:
		c.pointer(msg)
	case TypeHover:
		c.hover(msg)
	case TypeModal:
		c.modal(msg)
	case TypeFullscreenError:
		c.logger.Info("fullscreen request failed", zap.String("error", msg.Message))
	case TypePing:
		c.out.pong()
	default:
		c.out.sendError("unknown message type")
		return false
	}
	return true
}

func (c *connection) pointer(msg Message) {
	switch msg.Phase {
	case PhaseDown:
		c.press(msg)
	case PhaseMove:
		c.rec.Bus.Move(msg.Point())
		switch c.active {
		case WindowTerminal:
			c.out.translate(c.rec.Terminal.Position())
		case WindowModal:
			if m := c.rec.ActiveModal(); m != nil {
				c.out.layout(m)
			}
		}
	case PhaseUp:
		c.rec.Bus.Release()
		if c.active == WindowModal {
			if m := c.rec.ActiveModal(); m != nil {
				c.out.layout(m)
			}
		}
		c.active = ""
	default:
		c.out.sendError("unknown pointer phase")
	}
}

func (c *connection) press(msg Message) {
	switch msg.Window {
	case WindowTerminal:
		if c.rec.Terminal.Press(msg.Target, msg.Point(), msg.Size, msg.Viewport) {
			c.active = WindowTerminal
		}
	case WindowModal:
		m := c.rec.ActiveModal()
		if m == nil {
			return
		}
		if validViewport(msg.Viewport) {
			m.SetViewport(msg.Viewport)
		}
		if m.StartDrag(msg.Target, msg.Point()) {
			c.active = WindowModal
			c.out.layout(m)
		}
	default:
		c.out.sendError("unknown window")
	}
}

func (c *connection) hover(msg Message) {
	if msg.Key == "" || len(msg.Key) > maxKeyLen || utf8.RuneCountInString(msg.Text) > c.h.cfg.MaxHoverText {
		c.out.sendError("invalid hover")
		return
	}

	key, text := msg.Key, msg.Text
	go func() {
		err := c.rec.Scrambler.Run(c.rec.Context(), key, text, func(frame string) {
			c.out.scramble(key, frame)
		})
		switch {
		case errors.Is(err, scramble.ErrTooManyRuns):
			c.out.sendError("too many animations")
		case err != nil && !errors.Is(err, context.Canceled):
			c.logger.Debug("scramble stopped", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (c *connection) modal(msg Message) {
	switch msg.Action {
	case ModalOpen:
		if !validViewport(msg.Viewport) {
			c.out.sendError("viewport required")
			return
		}
		m := c.rec.Modal(msg.Viewport)
		m.SetViewport(msg.Viewport)
		c.out.layout(m)
		return
	case ModalClose:
		c.rec.CloseModal()
		if c.active == WindowModal {
			c.active = ""
		}
		return
	}

	m := c.rec.ActiveModal()
	if m == nil {
		c.out.sendError("manual is not open")
		return
	}

	switch msg.Action {
	case ModalFullscreen:
		m.ToggleFullscreen()
	case ModalReset:
		m.Reset()
		if c.active == WindowModal {
			c.active = ""
		}
	case ModalResize:
		edges, err := drag.ParseEdges(msg.Edges)
		if err != nil {
			c.out.sendError(err.Error())
			return
		}
		if validViewport(msg.Viewport) {
			m.SetViewport(msg.Viewport)
		}
		if !m.StartResize(edges, msg.Point()) {
			return
		}
		c.active = WindowModal
	case ModalViewport:
		if !validViewport(msg.Viewport) {
			return
		}
		m.SetViewport(msg.Viewport)
	default:
		c.out.sendError("unknown modal action")
		return
	}
	c.out.layout(m)
}

func validViewport(v drag.Size) bool {
	return v.Width > 0 && v.Height > 0
}
