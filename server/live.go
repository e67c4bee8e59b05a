package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sonogrid/sonogrid/logging"
)

// FrameMessage is one live-stream payload: either a matrix frame as it
// is built, or a terminal status message once the build settles.
type FrameMessage struct {
	TaskID string     `json:"task_id"`
	Index  int        `json:"index"`
	Total  int        `json:"total"`
	Frame  []byte     `json:"frame,omitempty"` // byte-coded bins, base64 over the wire
	Status TaskStatus `json:"status,omitempty"`
}

// LiveHub broadcasts build progress to websocket subscribers, keyed by
// task id. Subscribers that fall behind or error are dropped.
type LiveHub struct {
	mu       sync.Mutex
	clients  map[string]map[*websocket.Conn]bool
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewLiveHub creates an empty hub
func NewLiveHub() *LiveHub {
	return &LiveHub{
		clients: make(map[string]map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logging.WithFields(logging.Fields{
			"component": "live_hub",
		}),
	}
}

// Subscribe upgrades the request and registers the connection for the
// task's frame stream. The connection is dropped when the client closes
// or a write fails.
func (h *LiveHub) Subscribe(w http.ResponseWriter, r *http.Request, taskID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(err, "websocket upgrade failed", logging.Fields{
			"task_id": taskID,
		})
		return
	}

	h.mu.Lock()
	if h.clients[taskID] == nil {
		h.clients[taskID] = make(map[*websocket.Conn]bool)
	}
	h.clients[taskID][conn] = true
	h.mu.Unlock()

	h.logger.Debug("client subscribed", logging.Fields{
		"task_id": taskID,
	})

	// Reads only serve to detect the client going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(taskID, conn)
				return
			}
		}
	}()
}

// Broadcast sends the message to every subscriber of its task
func (h *LiveHub) Broadcast(msg FrameMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients[msg.TaskID] {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(h.clients[msg.TaskID], conn)
		}
	}
}

// CloseTask notifies subscribers of the terminal status and closes
// their connections
func (h *LiveHub) CloseTask(taskID string, status TaskStatus) {
	h.Broadcast(FrameMessage{TaskID: taskID, Status: status})

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients[taskID] {
		conn.Close()
	}
	delete(h.clients, taskID)
}

func (h *LiveHub) remove(taskID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	if set, ok := h.clients[taskID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.clients, taskID)
		}
	}
}

// subscriberCount reports active subscribers for a task
func (h *LiveHub) subscriberCount(taskID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[taskID])
}
