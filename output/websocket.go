package output

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/joli/errors"
)

const (
	writeTimeout  = 5 * time.Second
	defaultWSPath = "/ws"
)

// wsClient serializes writes; gorilla connections allow one writer at a time
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(messageType, data)
}

// WebSocket serves a websocket endpoint and broadcasts every value to the clients
// connected at the time of the call.
type WebSocket struct {
	path     string
	logger   *slog.Logger
	upgrader websocket.Upgrader

	listener net.Listener
	server   *http.Server

	clients map[*websocket.Conn]*wsClient
	mu      sync.RWMutex
	closed  bool
}

// NewWebSocket starts listening on cfg.Addr and returns once the listener is bound.
func NewWebSocket(cfg Config, logger *slog.Logger) (*WebSocket, error) {
	path := cfg.WSPath
	if path == "" {
		path = defaultWSPath
	}
	if logger == nil {
		logger = slog.Default()
	}

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, errors.WrapFatal(err, "WebSocket", "NewWebSocket", "listen")
	}

	w := &WebSocket{
		path:   path,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		listener: listener,
		clients:  make(map[*websocket.Conn]*wsClient),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, w.handleUpgrade)
	w.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := w.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			w.logger.Error("websocket server stopped", "component", "websocket", "error", err)
		}
	}()

	return w, nil
}

// URL returns the ws:// address clients connect to
func (w *WebSocket) URL() string {
	return "ws://" + w.listener.Addr().String() + w.path
}

// Clients returns the number of connected clients
func (w *WebSocket) Clients() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.clients)
}

func (w *WebSocket) handleUpgrade(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		w.logger.Debug("websocket upgrade failed", "component", "websocket", "error", err)
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		_ = conn.Close()
		return
	}
	w.clients[conn] = &wsClient{conn: conn}
	count := len(w.clients)
	w.mu.Unlock()

	w.logger.Debug("websocket client connected",
		"component", "websocket", "remote", conn.RemoteAddr().String(), "clients", count)

	// Reads only detect disconnects; clients never send data.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				w.remove(conn)
				return
			}
		}
	}()
}

func (w *WebSocket) remove(conn *websocket.Conn) {
	w.mu.Lock()
	_, ok := w.clients[conn]
	delete(w.clients, conn)
	w.mu.Unlock()

	if ok {
		_ = conn.Close()
	}
}

// Output implements Outputter. Clients that fail to receive are dropped.
func (w *WebSocket) Output(_ context.Context, data any) error {
	b, err := Marshal(data, false)
	if err != nil {
		return errors.WrapInvalid(err, "WebSocket", "Output", "marshal value")
	}

	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return errors.WrapFatal(errors.ErrClosed, "WebSocket", "Output", "check state")
	}
	clients := make([]*wsClient, 0, len(w.clients))
	for _, c := range w.clients {
		clients = append(clients, c)
	}
	w.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(websocket.TextMessage, b); err != nil {
			w.logger.Debug("dropping websocket client", "component", "websocket", "error", err)
			w.remove(c.conn)
		}
	}
	return nil
}

// Close sends a close frame to every client and stops the server.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	clients := w.clients
	w.clients = make(map[*websocket.Conn]*wsClient)
	w.mu.Unlock()

	farewell := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	for conn, c := range clients {
		_ = c.write(websocket.CloseMessage, farewell)
		_ = conn.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return errors.Wrap(w.server.Shutdown(ctx), "WebSocket", "Close", "shutdown server")
}
