package ipc

import (
	"log/slog"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Connection represents a single host simulation talking to the sidecar.
// Each AI player gets its own connection, identified after the hello handshake.
type Connection struct {
	t        Transport
	handlers map[string]Handler
	Player   int
}

func NewConnection(t Transport, handlers map[string]Handler) *Connection {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Connection{
		t:        t,
		handlers: handlers,
	}
}

func (c *Connection) RegisterHandler(msgType string, handler Handler) {
	c.handlers[msgType] = handler
}

func (c *Connection) Send(msgType string, data any) error {
	env, err := NewEnvelope(msgType, data)
	if err != nil {
		return err
	}
	return c.t.Write(env)
}

// ReadLoop blocks until the connection closes or errors. It owns the transport
// lifetime so callers don't need to track cleanup.
func (c *Connection) ReadLoop() {
	defer c.t.Close()

	for {
		env, err := c.t.Read()
		if err != nil {
			slog.Info("connection read ended", "player", c.Player, "error", err)
			return
		}

		handler, ok := c.handlers[env.Type]
		if !ok {
			slog.Warn("no handler for message type", "type", env.Type)
			continue
		}

		resp, err := handler(env)
		if err != nil {
			slog.Error("handler error", "type", env.Type, "error", err)
			if err := c.Send(TypeError, ErrorMessage{Type: env.Type, Error: err.Error()}); err != nil {
				slog.Error("failed to send error", "type", env.Type, "error", err)
				return
			}
			continue
		}

		if resp != nil {
			if err := c.t.Write(*resp); err != nil {
				slog.Error("failed to send response", "type", resp.Type, "error", err)
				return
			}
			slog.Debug("sent response", "type", resp.Type, "player", c.Player)
		}
	}
}
