package main

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scorchos/site/internal/shell"
)

// effectsMsg carries every effect queued since the last delivery.
type effectsMsg []shell.Effect

// queue is the session's surface. Effects arrive from the event loop and
// from boot timers, and are handed to bubbletea in batches.
type queue struct {
	mu      sync.Mutex
	pending []shell.Effect
	notify  chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

// Apply implements shell.Surface. It never blocks.
func (q *queue) Apply(e shell.Effect) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *queue) drain() []shell.Effect {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// wait returns a command that blocks until effects are queued.
func (q *queue) wait() tea.Cmd {
	return func() tea.Msg {
		<-q.notify
		return effectsMsg(q.drain())
	}
}
