// Package main is the entry point for the scorchOS site server.
//
// The server renders the site pages and the terminal error pages, and runs
// one shell session per open error page over a WebSocket.
//
// Configuration:
//   - Environment variables (12-factor), see internal/config
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
