// Command errshell runs the terminal error page in a local terminal.
//
// It drives the same shell session the site serves over a WebSocket,
// rendering its effects with bubbletea instead of the browser DOM. Useful
// for trying commands and catalog entries without a browser.
//
// Usage:
//
//	errshell -code 404 -path /missing
//
// Keys: Enter runs the line, Up/Down recall history, Esc or Ctrl+C quits.
// Navigation effects (cd /about, exit) end the program and print the
// target URL.
package main
