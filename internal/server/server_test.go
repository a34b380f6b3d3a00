package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scorchos/site/internal/config"
	"github.com/scorchos/site/internal/logging"
	"github.com/scorchos/site/internal/pages"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := NewServer(*cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func rawGet(t *testing.T, url string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	// Setting Accept-Encoding by hand disables transparent decompression.
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRoutes(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/", http.StatusOK},
		{"/about", http.StatusOK},
		{"/portfolio", http.StatusOK},
		{"/case-study/scorch-os", http.StatusOK},
		{"/errors/503", http.StatusServiceUnavailable},
		{"/missing", http.StatusNotFound},
		{"/health", http.StatusOK},
		{"/api/view", http.StatusOK},
		{"/api/sessions", http.StatusOK},
		{"/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := rawGet(t, ts.URL+tt.path, nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestGzip(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		_, ts := newTestServer(t, nil)
		resp := rawGet(t, ts.URL+"/errors/404", map[string]string{"Accept-Encoding": "gzip"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
	})

	t.Run("disabled", func(t *testing.T) {
		_, ts := newTestServer(t, func(c *config.Config) { c.Site.Gzip = false })
		resp := rawGet(t, ts.URL+"/errors/404", map[string]string{"Accept-Encoding": "gzip"})
		assert.Empty(t, resp.Header.Get("Content-Encoding"))
	})
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, nil)

	rawGet(t, ts.URL+"/errors/429", nil)

	resp := rawGet(t, ts.URL+"/metrics", nil)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "site_http_requests_total")
	assert.Contains(t, string(body), `site_error_pages_total{code="429"} 1`)
}

func TestShellOverGzip(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + pages.ShellURL(404, "/gone")
	header := http.Header{"Accept-Encoding": []string{"gzip"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame struct {
		Type  string `json:"type"`
		Block string `json:"block"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "reveal", frame.Type)
	assert.Equal(t, "initial-command", frame.Block)

	assert.Equal(t, 1, srv.Sessions().Count())
	assert.EqualValues(t, 1, srv.Metrics().Snapshot().ActiveSessions)
}

func TestCommandsFeedMetrics(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + pages.ShellURL(500, "/boom")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var frame struct {
			Type string `json:"type"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		if frame.Type == "focus" {
			break
		}
	}

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "submit", "line": "whoami"}))
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "submit", "line": "rm -rf /"}))

	assert.Eventually(t, func() bool {
		return srv.Metrics().Snapshot().Commands == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnectRateLimit(t *testing.T) {
	_, ts := newTestServer(t, func(c *config.Config) {
		c.Shell.ConnectRPS = 1
		c.Shell.ConnectBurst = 1
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + pages.ShellURL(404, "/")
	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	srv, _ := newTestServer(t, func(c *config.Config) {
		c.Server.Host = "127.0.0.1"
		c.Server.Port = strconv.Itoa(port)
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	addr := "http://127.0.0.1:" + strconv.Itoa(port) + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(addr)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
