// Package middleware provides the HTTP middleware stack for the site.
//
// Middleware stack includes:
//   - RequestID: tags each request and echoes X-Request-ID
//   - Logger: one zap line per request
//   - CORS: cross-origin rules for the view API
//   - RateLimit: per-IP token buckets for page requests
//   - GlobalRateLimit: one shared bucket for opening shell sessions
//
// Rejections go through a LimitHandler so the site can answer with its
// own 429 error page instead of JSON:
//
//	router.Use(middleware.RequestID(), middleware.Logger(log))
//	router.Use(middleware.RateLimit(cfg, middleware.WithOnLimit(render429)))
package middleware
