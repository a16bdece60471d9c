package channel

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	apperrors "sas-panel/internal/common/errors"
	"sas-panel/internal/common/logger"
	"sas-panel/internal/common/metrics"
)

type outbound struct {
	msg  []byte
	errc chan error
}

// WebSocket is a Transport over a gorilla/websocket connection. One goroutine
// owns writes (messages and pings), another owns reads.
type WebSocket struct {
	conn     *websocket.Conn
	settings Settings
	log      logger.Logger

	send    chan outbound
	receive chan []byte

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Dial connects to url and starts the connection's read and write loops.
func Dial(ctx context.Context, url string, settings Settings, log logger.Logger) (*WebSocket, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: settings.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, apperrors.NewConnectionFailedError(url, err)
	}

	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log.Info("channel connected", map[string]interface{}{"url": url})
	return newWebSocket(conn, settings, log), nil
}

// Upgrade accepts a client connection on the server side.
func Upgrade(w http.ResponseWriter, r *http.Request, settings Settings, log logger.Logger) (*WebSocket, error) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout: settings.HandshakeTimeout,
		CheckOrigin:      func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return newWebSocket(conn, settings, log.WithFields(map[string]interface{}{"remote": r.RemoteAddr})), nil
}

func newWebSocket(conn *websocket.Conn, settings Settings, log logger.Logger) *WebSocket {
	if settings.SendBufferSize <= 0 {
		settings.SendBufferSize = DefaultSettings().SendBufferSize
	}
	if settings.MaxMessageBytes > 0 {
		conn.SetReadLimit(settings.MaxMessageBytes)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ws := &WebSocket{
		conn:     conn,
		settings: settings,
		log:      log,
		send:     make(chan outbound, settings.SendBufferSize),
		receive:  make(chan []byte, settings.SendBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	go ws.writeLoop()
	go ws.readLoop()
	return ws
}

func (ws *WebSocket) Send(ctx context.Context, msg []byte) error {
	out := outbound{msg: msg, errc: make(chan error, 1)}

	select {
	case <-ws.ctx.Done():
		return apperrors.NewConnectionClosedError()
	case <-ctx.Done():
		return ctx.Err()
	case ws.send <- out:
	}

	select {
	case err := <-out.errc:
		return err
	case <-ws.ctx.Done():
		return apperrors.NewConnectionClosedError()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ws *WebSocket) Messages() <-chan []byte {
	return ws.receive
}

func (ws *WebSocket) Done() <-chan struct{} {
	return ws.ctx.Done()
}

// Close sends a close frame and tears the connection down. Safe to call more
// than once and from any goroutine.
func (ws *WebSocket) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = ws.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		ws.cancel()
		err = ws.conn.Close()
	})
	return err
}

func (ws *WebSocket) writeLoop() {
	defer ws.Close()

	var ping <-chan time.Time
	if ws.settings.PingInterval > 0 {
		ticker := time.NewTicker(ws.settings.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-ws.ctx.Done():
			return
		case out := <-ws.send:
			ws.setWriteDeadline()
			if err := ws.conn.WriteMessage(websocket.TextMessage, out.msg); err != nil {
				// A write past its deadline leaves the connection unusable.
				ws.log.Warn("channel write failed", map[string]interface{}{"error": err})
				out.errc <- apperrors.NewTransportSendFailedError(err)
				return
			}
			metrics.ChannelMessages.WithLabelValues("out").Inc()
			out.errc <- nil
		case <-ping:
			deadline := time.Now().Add(ws.settings.PingInterval)
			if ws.settings.WriteTimeout > 0 {
				deadline = time.Now().Add(ws.settings.WriteTimeout)
			}
			if err := ws.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				ws.log.Warn("channel ping failed", map[string]interface{}{"error": err})
				return
			}
		}
	}
}

func (ws *WebSocket) readLoop() {
	defer func() {
		ws.Close()
		close(ws.receive)
	}()

	ws.extendReadDeadline()
	ws.conn.SetPongHandler(func(string) error {
		ws.extendReadDeadline()
		return nil
	})

	for {
		messageType, message, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ws.log.Info("channel closed by peer", nil)
			} else {
				select {
				case <-ws.ctx.Done():
				default:
					ws.log.Warn("channel read failed", map[string]interface{}{"error": err})
				}
			}
			return
		}
		ws.extendReadDeadline()

		switch messageType {
		case websocket.TextMessage, websocket.BinaryMessage:
			metrics.ChannelMessages.WithLabelValues("in").Inc()
			select {
			case <-ws.ctx.Done():
				return
			case ws.receive <- message:
			}
		}
	}
}

func (ws *WebSocket) setWriteDeadline() {
	if ws.settings.WriteTimeout > 0 {
		_ = ws.conn.SetWriteDeadline(time.Now().Add(ws.settings.WriteTimeout))
	} else {
		_ = ws.conn.SetWriteDeadline(time.Time{})
	}
}

func (ws *WebSocket) extendReadDeadline() {
	if d := ws.settings.readTimeout(); d > 0 {
		_ = ws.conn.SetReadDeadline(time.Now().Add(d))
	}
}
