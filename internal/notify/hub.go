package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const writeWait = 10 * time.Second

// Hub relays refresh events from the redis channel to websocket clients
// subscribed per project. Clients receive signals only; they react by
// re-fetching, never by merging.
type Hub struct {
	log      *slog.Logger
	rdb      *redis.Client
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]bool
}

func NewHub(rdb *redis.Client, log *slog.Logger) *Hub {
	return &Hub{
		log: log,
		rdb: rdb,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[string]map[*websocket.Conn]bool),
	}
}

// ServeWS subscribes the caller to one project's refresh signals.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	projectId := r.URL.Query().Get("projectId")
	if projectId == "" {
		http.Error(w, "missing projectId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	if h.conns[projectId] == nil {
		h.conns[projectId] = make(map[*websocket.Conn]bool)
	}
	h.conns[projectId][conn] = true
	h.mu.Unlock()

	// Reader loop only detects disconnects; clients never send payloads.
	go func() {
		defer h.drop(projectId, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(projectId string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[projectId]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, projectId)
		}
	}
	_ = conn.Close()
}

// Run consumes the redis channel until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	sub := h.rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.log.Error("malformed refresh event", slog.String("error", err.Error()))
				continue
			}
			h.broadcast(event, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(event Event, payload []byte) {
	h.mu.RLock()
	targets := make([]*websocket.Conn, 0)
	for conn := range h.conns[event.ProjectId] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(event.ProjectId, conn)
		}
	}
}
