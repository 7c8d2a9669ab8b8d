package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"studybuilder/internal/model"
	"studybuilder/internal/service"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// StudyAccess is the part of the study service the handler needs
type StudyAccess interface {
	Get(ctx context.Context, studyID, authorID string) (*model.Study, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
	studies StudyAccess
	logger  *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, studies StudyAccess, logger *zap.Logger) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		studies: studies,
		logger:  logger,
	}
}

// StudyWS handles GET /v1/ws/studies/{studyId}
func (h *Handler) StudyWS(w http.ResponseWriter, r *http.Request) {
	studyID := mux.Vars(r)["studyId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := h.studies.Get(r.Context(), studyID, claims.AuthorID); err != nil {
		switch {
		case errors.Is(err, service.ErrStudyNotFound):
			http.Error(w, "study not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotStudyOwner):
			http.Error(w, "token not valid for this study", http.StatusForbidden)
		default:
			h.logger.Error("failed to load study for ws", zap.String("studyId", studyID), zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := &Connection{
		StudyID:  studyID,
		AuthorID: claims.AuthorID,
		Send:     make(chan []byte, 256),
	}
	// Queued before Register, so only this subscriber sees it
	if ack, err := encodeMessage(MsgSubscribed, map[string]string{"studyId": studyID}); err == nil {
		conn.Send <- ack
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Subscribers only listen; inbound frames keep the connection alive
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", zap.String("studyId", conn.StudyID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
