package uiws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	ws "nhooyr.io/websocket"
)

// ErrNoWorker is returned when no speech worker is connected.
var ErrNoWorker = errors.New("no worker connected")

// Registry keeps at most one live worker connection.
type Registry struct {
	mu   sync.Mutex
	conn *ws.Conn
}

func NewRegistry() *Registry { return &Registry{} }

// Replace sets the connection and closes the previous one if present.
func (r *Registry) Replace(c *ws.Conn) (prevClosed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil {
		_ = r.conn.Close(ws.StatusNormalClosure, "replaced")
		prevClosed = true
	}
	r.conn = c
	return
}

// Remove clears the connection if it is still the given one.
func (r *Registry) Remove(c *ws.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == c {
		r.conn = nil
	}
}

// Connected reports whether a worker is attached.
func (r *Registry) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn != nil
}

// SendJSON writes one message to the worker.
func (r *Registry) SendJSON(ctx context.Context, v any) error {
	r.mu.Lock()
	c := r.conn
	r.mu.Unlock()
	if c == nil {
		return ErrNoWorker
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Write(ctx, ws.MessageText, b)
}
