// Package http provides the site's HTTP handlers.
//
// Endpoints:
//   - Pages: /, /about, /portfolio, /case-study/:slug
//   - Errors: /errors/:code, and every unmatched route as a 404 page
//   - View state: GET /api/view, POST /api/view/terminal/:action
//   - Ops: /health, /api/sessions
//
// Errors on page routes are answered with the terminal error page for the
// status code; API routes answer JSON {"error": ...}.
//
// Example Usage:
//
//	handlers := http.NewHandlers(renderer, sessions, metrics, logger)
//	router.NoRoute(handlers.NotFound)
//	router.GET("/errors/:code", handlers.ErrorPage)
package http
