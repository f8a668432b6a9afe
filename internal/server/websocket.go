package server

import (
	"net/http"

	"github.com/goevery/retroboard/internal/broadcaster"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketServer struct {
	logger   *zap.Logger
	upgrader *websocket.Upgrader
	registry broadcaster.Registry
	router   *Router

	sendBufferSize int
	readLimit      int64
}

func NewWebSocketServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	registry broadcaster.Registry,
	router *Router,
	sendBufferSize int,
	readLimit int64,
) *WebSocketServer {
	return &WebSocketServer{
		logger,
		upgrader,
		registry,
		router,
		sendBufferSize,
		readLimit,
	}
}

func (s *WebSocketServer) Register(router *mux.Router) {
	router.HandleFunc("/ws", s.serve).Methods(http.MethodGet)
}

func (s *WebSocketServer) serve(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connection := broadcaster.NewConnection(s.sendBufferSize)
	logger := s.logger.With(zap.String("connectionId", connection.Id))

	s.registry.Register(connection)

	logger.Info("websocket connection established")

	go s.writePump(logger, ws, connection)
	connection.MarkOpen()

	s.readPump(r, logger, ws, connection)

	// Close and read errors both end here. Unregistering closes the send
	// channel, which stops the writer and closes the socket.
	connection.MarkClosing()
	s.registry.Unregister(connection.Id)

	logger.Info("websocket connection closed")
}

func (s *WebSocketServer) readPump(
	r *http.Request,
	logger *zap.Logger,
	ws *websocket.Conn,
	connection *broadcaster.Connection,
) {
	ws.SetReadLimit(s.readLimit)

	ctx := broadcaster.WithConnection(r.Context(), connection)

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Warn("websocket read failed", zap.Error(err))
			}

			return
		}

		s.router.Route(ctx, frame)
	}
}

// writePump is the only goroutine that writes to ws.
func (s *WebSocketServer) writePump(
	logger *zap.Logger,
	ws *websocket.Conn,
	connection *broadcaster.Connection,
) {
	defer ws.Close()

	for frame := range connection.Send() {
		err := ws.WriteMessage(websocket.TextMessage, frame)
		if err != nil {
			logger.Warn("websocket write failed", zap.Error(err))
			connection.MarkClosing()

			return
		}
	}

	_ = ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
}
