package handler

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/capitalize-ai/trip-concierge/internal/model"
	"github.com/capitalize-ai/trip-concierge/internal/service"
	"github.com/capitalize-ai/trip-concierge/pkg/logger"
	"github.com/capitalize-ai/trip-concierge/pkg/metrics"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = 64 << 10
)

// wsFrame is the envelope for every server-sent WebSocket message.
type wsFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// WebSocketHandler runs chat turns over a WebSocket connection.
type WebSocketHandler struct {
	turns    *service.TurnService
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewWebSocketHandler creates a WebSocket handler accepting the given origins.
// "*" accepts any origin.
func NewWebSocketHandler(turns *service.TurnService, origins []string, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		turns: turns,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(origins),
		},
		logger: log,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) || strings.EqualFold(a, u.Scheme+"://"+u.Host) {
				return true
			}
		}
		return false
	}
}

// Serve handles GET /ws?session_id=. Each client frame is a ChatRequest;
// the server answers with token frames and then one turn frame. Frames
// without a session id use the query parameter or the id of the previous
// turn.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithContext(r.Context()).Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.IncrementStreamConnections("websocket")
	defer metrics.DecrementStreamConnections("websocket")

	ctx := r.Context()
	log := h.logger.WithContext(ctx)

	conn.SetReadLimit(wsMaxMessage)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			}
		}
	}()

	write := func(frame wsFrame) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(frame)
	}

	sessionID := r.URL.Query().Get("session_id")
	for {
		var req model.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Info("websocket closed", zap.Error(err))
			}
			return
		}
		if req.SessionID == "" {
			req.SessionID = sessionID
		}

		resp, err := h.turns.HandleTurn(ctx, service.TurnRequest{
			SessionID: req.SessionID,
			Message:   req.Message,
			Language:  req.Language,
			OnToken: func(token string, index int) error {
				return write(wsFrame{Type: "token", Data: &model.TokenEvent{Token: token, Index: index}})
			},
		})
		if err != nil {
			_, code, msg := clientError(err)
			if werr := write(wsFrame{Type: "error", Data: &model.ErrorEvent{Code: code, Message: msg}}); werr != nil {
				return
			}
			continue
		}

		sessionID = resp.SessionID
		if err := write(wsFrame{Type: "turn", Data: resp}); err != nil {
			return
		}
	}
}
