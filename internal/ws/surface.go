package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/scorchos/site/internal/drag"
	"github.com/scorchos/site/internal/logging"
	"github.com/scorchos/site/internal/monitoring"
	"github.com/scorchos/site/internal/shell"
)

// surface writes effects and frames to one connection. Writes come from
// the read loop, the boot timers and scramble runs, so they are serialized.
type surface struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
	metrics *monitoring.Metrics
	logger  *logging.Logger
	failed  bool
}

func newSurface(conn *websocket.Conn, timeout time.Duration, metrics *monitoring.Metrics, logger *logging.Logger) *surface {
	return &surface{
		conn:    conn,
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Apply implements shell.Surface.
func (s *surface) Apply(e shell.Effect) {
	s.write(string(e.Type), e)
}

func (s *surface) translate(p drag.Point) {
	s.Apply(shell.Effect{Type: shell.EffectTranslate, X: p.X, Y: p.Y})
}

func (s *surface) scramble(key, frame string) {
	s.Apply(shell.Effect{Type: shell.EffectScramble, Key: key, Value: frame})
}

func (s *surface) layout(m *drag.ModalWindow) {
	l := m.Layout()
	s.write(FrameLayout, Frame{Type: FrameLayout, Layout: &l})
}

func (s *surface) pong() {
	s.write(FramePong, Frame{Type: FramePong})
}

func (s *surface) sendError(msg string) {
	s.write(FrameError, Frame{Type: FrameError, Message: msg})
}

// close sends a close frame. The caller still closes the connection.
func (s *surface) close(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(s.timeout)
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}

func (s *surface) write(kind string, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		s.logger.Error("encode frame", zap.String("type", kind), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// After the first failed write the connection is gone; later effects
	// (a boot timer, a scramble frame) are dropped quietly.
	if s.failed {
		return
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.failed = true
		s.logger.Debug("write failed", zap.String("type", kind), zap.Error(err))
		return
	}
	s.metrics.RecordWSMessage("out", kind)
}
