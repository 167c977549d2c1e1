package ws

import (
	"context"
	"sync"
	"time"

	"github.com/workdesk/internal/logger"
	"github.com/workdesk/internal/model"
)

// Hub keeps the set of connected UI clients grouped by userID and fans events
// out to them. Register/unregister go through channels so connection
// bookkeeping happens on the Run goroutine.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]map[*Client]struct{}
	total      int
	maxConns   int
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(maxConns int) *Hub {
	if maxConns <= 0 {
		maxConns = 1000
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		maxConns:   maxConns,
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if h.total >= h.maxConns {
		h.mu.Unlock()
		logger.Errorf("ws: лимит соединений %d достигнут, отклоняю user=%s", h.maxConns, c.userID)
		c.Close()
		return
	}
	set := h.clients[c.userID]
	if set == nil {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.total++
	h.mu.Unlock()
	logger.Debugf("ws: подключён user=%s", c.userID)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			h.total--
			if len(set) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
	h.mu.Unlock()
	c.Close()
}

// NotifyUser доставляет событие всем соединениям пользователя.
// Неподключённый пользователь — no-op: лента и так персистентна.
func (h *Hub) NotifyUser(userID string, msg OutgoingMessage) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.trySend(msg)
	}
}

// Broadcast доставляет событие всем подключённым клиентам (toast и т.п.).
func (h *Hub) Broadcast(msg OutgoingMessage) {
	h.mu.RLock()
	targets := make([]*Client, 0, h.total)
	for _, set := range h.clients {
		for c := range set {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.trySend(msg)
	}
}

// NotificationAdded реализует сток событий для репозитория уведомлений.
func (h *Hub) NotificationAdded(userID string, n *model.Notification) {
	h.NotifyUser(userID, OutgoingMessage{
		Type:    EventNotificationAdded,
		Payload: NotificationAddedPayload{UserID: userID, Notification: n},
	})
}

// ToastShown транслирует toast всем соединениям.
func (h *Hub) ToastShown(message string, at time.Time) {
	h.Broadcast(OutgoingMessage{Type: EventToast, Payload: ToastPayload{Message: message, At: at}})
}

// shutdown collects all clients under the lock, then closes them without
// holding the mutex (Close touches the connection).
func (h *Hub) shutdown() {
	h.mu.Lock()
	all := make([]*Client, 0, h.total)
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	h.total = 0
	h.mu.Unlock()

	for _, c := range all {
		c.Close()
		c.Wait()
	}
}
