package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"todopro/internal/dto"
	"todopro/internal/service"
	"todopro/pkg/logger"
	"todopro/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 16
)

type streamClient struct {
	conn *websocket.Conn
	send chan *dto.MessageResponse
}

// StreamHandler fans newly posted messages out to websocket subscribers of a
// group. It implements service.MessageBroadcaster.
type StreamHandler struct {
	groups   service.GroupService
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[uint]map[string]*streamClient
}

func NewStreamHandler(groups service.GroupService) *StreamHandler {
	return &StreamHandler{
		groups: groups,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
		clients: make(map[uint]map[string]*streamClient),
	}
}

// Subscribe upgrades the request and streams the group's new messages until
// the peer goes away.
func (h *StreamHandler) Subscribe(c *gin.Context) {
	identity, err := response.Identity(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	groupID, err := paramID(c, "groupId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	// Reuse the listing operation's existence check before upgrading.
	if _, err := h.groups.ListMessages(c.Request.Context(), groupID); err != nil {
		response.Error(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("websocket upgrade failed", "error", err)
		return
	}

	client := &streamClient{
		conn: conn,
		send: make(chan *dto.MessageResponse, clientSendSize),
	}
	clientID := uuid.NewString()

	h.register(groupID, clientID, client)
	logger.FromContext(c.Request.Context()).Info("websocket subscribed",
		"group_id", groupID, "user_id", identity.UserID)

	go h.writePump(client)
	h.readPump(groupID, clientID, client)
}

// BroadcastMessage delivers a persisted message to every subscriber of its
// group. Slow clients are skipped rather than blocking the request.
func (h *StreamHandler) BroadcastMessage(groupID uint, message *dto.MessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[groupID] {
		select {
		case client.send <- message:
		default:
		}
	}
}

func (h *StreamHandler) register(groupID uint, clientID string, client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[groupID] == nil {
		h.clients[groupID] = make(map[string]*streamClient)
	}
	h.clients[groupID][clientID] = client
}

func (h *StreamHandler) unregister(groupID uint, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[groupID]; ok {
		if client, ok := clients[clientID]; ok {
			close(client.send)
			delete(clients, clientID)
		}
		if len(clients) == 0 {
			delete(h.clients, groupID)
		}
	}
}

func (h *StreamHandler) writePump(client *streamClient) {
	for message := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteJSON(message); err != nil {
			return
		}
	}
	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *StreamHandler) readPump(groupID uint, clientID string, client *streamClient) {
	defer func() {
		h.unregister(groupID, clientID)
		client.conn.Close()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
