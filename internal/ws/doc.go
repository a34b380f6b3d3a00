// Package ws connects an error page to its terminal session over a
// WebSocket.
//
// One connection owns one session. The page sends input events and the
// server answers with rendering effects; the page holds no shell state.
//
// Message Types (Client → Server):
//   - submit: Enter pressed, with the input line
//   - history: ArrowUp/ArrowDown recall
//   - click: click in the terminal body, with whether text is selected
//   - pointer: down/move/up for dragging the terminal or manual window
//   - hover: start the scramble animation for a keyed element
//   - modal: open/close/fullscreen/reset/resize/viewport for the manual
//   - fullscreen_error: the browser refused fullscreen
//   - ping: keep-alive
//
// Message Types (Server → Client):
//   - every shell effect (append_echo, reveal, navigate, ...)
//   - translate: terminal window offset while dragging
//   - scramble: one animation frame
//   - layout: the manual window's CSS box
//   - pong, error
//
// Example Usage:
//
//	handler := ws.NewHandler(sessions, catalog, metrics, logger, ws.DefaultConfig())
//	router.GET(pages.ShellPath, handler.HandleConnection)
package ws
