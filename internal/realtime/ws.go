package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
)

const (
	MessageEditStarted  = "edit_started"
	MessageEditFinished = "edit_finished"
	MessagePing         = "ping"
)

type ClientMessage struct {
	Type string `json:"type"`
}

type ServerMessage struct {
	Type         string        `json:"type"`
	ClientID     string        `json:"client_id,omitempty"`
	Policy       Policy        `json:"policy,omitempty"`
	Event        *domain.Event `json:"event,omitempty"`
	ErrorCode    string        `json:"code,omitempty"`
	ErrorMessage string        `json:"message,omitempty"`
}

func NewEventMessage(event domain.Event) *ServerMessage {
	return &ServerMessage{Type: "event", Event: &event}
}

func NewWelcomeMessage(clientID string, policy Policy) *ServerMessage {
	return &ServerMessage{Type: "welcome", ClientID: clientID, Policy: policy}
}

func NewPongMessage() *ServerMessage {
	return &ServerMessage{Type: "pong"}
}

func NewErrorMessage(code, message string) *ServerMessage {
	return &ServerMessage{Type: "error", ErrorCode: code, ErrorMessage: message}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeHTTP upgrades the request and blocks until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	clientID := uuid.NewString()
	h.Register(clientID, conn)
	h.log.Debug("client connected", zap.String("client", clientID))
	defer func() {
		h.Unregister(clientID)
		h.log.Debug("client disconnected", zap.String("client", clientID))
	}()

	h.SendTo(clientID, NewWelcomeMessage(clientID, h.policy))

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.readLoop(clientID, conn)
}

func (h *Hub) readLoop(clientID string, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Info("websocket closed unexpectedly", zap.String("client", clientID), zap.Error(err))
			}
			return
		}
		h.HandleClientMessage(clientID, raw)
	}
}

// HandleClientMessage applies one message received from clientID.
func (h *Hub) HandleClientMessage(clientID string, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.SendTo(clientID, NewErrorMessage("INVALID_JSON", "failed to parse message"))
		return
	}

	switch msg.Type {
	case MessageEditStarted:
		h.SetEditing(clientID, true)
	case MessageEditFinished:
		h.SetEditing(clientID, false)
	case MessagePing:
		h.SendTo(clientID, NewPongMessage())
	default:
		h.SendTo(clientID, NewErrorMessage("UNKNOWN_TYPE", "unknown message type: "+msg.Type))
	}
}
