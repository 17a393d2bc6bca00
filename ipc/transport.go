package ipc

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Transport moves envelopes between the sidecar and one host simulation.
type Transport interface {
	Read() (Envelope, error)
	Write(env Envelope) error
	Close() error
}

// StreamTransport frames envelopes over a byte stream such as a unix
// socket connection.
type StreamTransport struct {
	rw io.ReadWriteCloser
}

func NewStreamTransport(rw io.ReadWriteCloser) *StreamTransport {
	return &StreamTransport{rw: rw}
}

func (t *StreamTransport) Read() (Envelope, error)  { return ReadEnvelope(t.rw) }
func (t *StreamTransport) Write(env Envelope) error { return WriteEnvelope(t.rw, env) }
func (t *StreamTransport) Close() error             { return t.rw.Close() }

const (
	wsWriteWait = 10 * time.Second
	wsReadWait  = 60 * time.Second
)

// WebsocketTransport carries one envelope per JSON text frame.
type WebsocketTransport struct {
	conn *websocket.Conn
}

func NewWebsocketTransport(conn *websocket.Conn) *WebsocketTransport {
	conn.SetReadLimit(MaxFrame)
	conn.SetReadDeadline(time.Now().Add(wsReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadWait))
	})
	return &WebsocketTransport{conn: conn}
}

func (t *WebsocketTransport) Read() (Envelope, error) {
	var env Envelope
	if err := t.conn.ReadJSON(&env); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			slog.Warn("websocket closed unexpectedly", "error", err)
		}
		return Envelope{}, fmt.Errorf("read websocket: %w", err)
	}
	// Every snapshot counts as liveness.
	t.conn.SetReadDeadline(time.Now().Add(wsReadWait))
	return env, nil
}

func (t *WebsocketTransport) Write(env Envelope) error {
	t.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := t.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("write websocket: %w", err)
	}
	return nil
}

func (t *WebsocketTransport) Close() error {
	t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
	return t.conn.Close()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 << 10,
	WriteBufferSize: 64 << 10,
	// The bridge only listens on loopback; any origin may connect.
	CheckOrigin: func(*http.Request) bool { return true },
}

// WebsocketHandler upgrades each request and hands the transport to serve,
// which owns it until it returns.
func WebsocketHandler(serve func(Transport)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		slog.Info("websocket connection accepted", "remote", r.RemoteAddr)
		serve(NewWebsocketTransport(conn))
	})
}
