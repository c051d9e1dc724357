package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"undercover/internal/app"
	"undercover/internal/domain"
)

// closePollInterval is how often CloseAll checks for remaining connections
const closePollInterval = 20 * time.Millisecond

// ErrUnknownHandle is returned when sending to a connection that is gone
var ErrUnknownHandle = errors.New("unknown connection handle")

// Gateway tracks live connections by handle and routes their events to the
// registered handlers. It implements app.Gateway and app.EventSource.
type Gateway struct {
	clients map[string]*Client
	mu      sync.RWMutex

	handlers     map[string]app.EventHandler
	onDisconnect []func(handle string)
	handlersMu   sync.RWMutex

	logger *slog.Logger
}

// NewGateway creates an empty gateway
func NewGateway(logger *slog.Logger) *Gateway {
	return &Gateway{
		clients:  make(map[string]*Client),
		handlers: make(map[string]app.EventHandler),
		logger:   logger,
	}
}

// Send queues an event for the connection behind handle
func (g *Gateway) Send(handle, event string, payload any) error {
	g.mu.RLock()
	client, ok := g.clients[handle]
	g.mu.RUnlock()
	if !ok {
		return ErrUnknownHandle
	}
	return client.Send(NewServerMessage(event, payload))
}

// OnEvent registers the handler for an inbound event name
func (g *Gateway) OnEvent(event string, handler app.EventHandler) {
	g.handlersMu.Lock()
	defer g.handlersMu.Unlock()
	g.handlers[event] = handler
}

// OnDisconnect registers a callback run after a connection closes
func (g *Gateway) OnDisconnect(f func(handle string)) {
	g.handlersMu.Lock()
	defer g.handlersMu.Unlock()
	g.onDisconnect = append(g.onDisconnect, f)
}

// ConnectionCount returns the number of live connections
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// CloseAll closes every live connection and waits until they are gone or
// ctx is done.
func (g *Gateway) CloseAll(ctx context.Context) error {
	g.mu.RLock()
	clients := make([]*Client, 0, len(g.clients))
	for _, c := range g.clients {
		clients = append(clients, c)
	}
	g.mu.RUnlock()

	for _, c := range clients {
		c.Close()
	}

	ticker := time.NewTicker(closePollInterval)
	defer ticker.Stop()
	for g.ConnectionCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (g *Gateway) register(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[c.handle] = c
}

func (g *Gateway) unregister(c *Client) {
	g.mu.Lock()
	if current, ok := g.clients[c.handle]; ok && current == c {
		delete(g.clients, c.handle)
	}
	g.mu.Unlock()

	g.handlersMu.RLock()
	callbacks := append([]func(string){}, g.onDisconnect...)
	g.handlersMu.RUnlock()

	for _, f := range callbacks {
		f(c.handle)
	}
}

// route hands one decoded message to its handler and maps the outcome to
// an error reply for the sender.
func (g *Gateway) route(c *Client, msg ClientMessage) {
	g.handlersMu.RLock()
	handler, ok := g.handlers[msg.Type]
	g.handlersMu.RUnlock()
	if !ok {
		c.sendError(ErrCodeUnknownEvent, "Unknown message type")
		return
	}

	err := handler(c.handle, msg.Payload)
	if err == nil {
		return
	}

	if code := domain.ErrorCode(err); code != "" {
		c.sendError(code, err.Error())
		return
	}
	g.logger.Error("event handler failed", "event", msg.Type, "handle", c.handle, "error", err)
	c.sendError(ErrCodeInternalError, "Something went wrong")
}
