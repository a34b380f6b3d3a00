// Package manager keeps the live terminal sessions of the site.
//
// Every error page view opens one session over the WebSocket. The manager
// owns each session's lifetime: it assigns the ULID, enforces the session
// cap, tears sessions down on disconnect and reaps the ones left idle.
// Alongside sessions it keeps per-visitor view state such as whether the
// terminal panel is open.
//
// Sessions are stored in a sync.Map; all per-session serialisation happens
// inside shell.Session.
package manager
