package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgSubscribed MessageType = "subscribed"
	MsgError      MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encodeMessage(msgType MessageType, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: data})
}

// Connection is one subscriber watching a study
type Connection struct {
	StudyID  string
	AuthorID string
	Send     chan []byte
}

// BroadcastMessage is a message for every subscriber of a study
type BroadcastMessage struct {
	StudyID string
	Message *Message
}

// Hub fans study events out to WebSocket subscribers
type Hub struct {
	// Study -> connections; only touched by run
	studies map[string]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub and starts its loop
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		studies:    make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case conn := <-h.register:
			if h.studies[conn.StudyID] == nil {
				h.studies[conn.StudyID] = make(map[*Connection]struct{})
			}
			h.studies[conn.StudyID][conn] = struct{}{}
			h.logger.Debug("subscriber connected", zap.String("studyId", conn.StudyID), zap.String("authorId", conn.AuthorID))

		case conn := <-h.unregister:
			subs, ok := h.studies[conn.StudyID]
			if !ok {
				continue
			}
			if _, ok := subs[conn]; ok {
				delete(subs, conn)
				close(conn.Send)
				if len(subs) == 0 {
					delete(h.studies, conn.StudyID)
				}
				h.logger.Debug("subscriber disconnected", zap.String("studyId", conn.StudyID))
			}

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Warn("failed to encode ws message", zap.Error(err))
				continue
			}
			for conn := range h.studies[msg.StudyID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}

		case <-h.done:
			for _, subs := range h.studies {
				for conn := range subs {
					close(conn.Send)
				}
			}
			h.studies = nil
			return
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// BroadcastToStudy sends a message to every subscriber of a study (implements service.Broadcaster)
func (h *Hub) BroadcastToStudy(studyID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("failed to encode ws payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	msg := &BroadcastMessage{
		StudyID: studyID,
		Message: &Message{Type: MessageType(msgType), Payload: data},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// Close stops the hub loop and closes every subscriber's send channel
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}
