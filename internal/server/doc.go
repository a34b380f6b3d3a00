// Package server wires the site together: configuration, logging, the
// session manager, the page renderer, middleware, HTTP and WebSocket
// routes, metrics, and the server lifecycle.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Load the error catalog and page templates
//  4. Create the session manager with metrics hooks
//  5. Setup HTTP routes and middleware
//  6. Start HTTP server and the idle session reaper
//  7. Graceful shutdown on signal
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(*cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
