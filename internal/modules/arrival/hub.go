package arrival

import (
	"sync"

	"github.com/gorilla/websocket"
)

// feedConn wraps a websocket connection with a write lock. Broadcasts arrive
// from whichever handler goroutine mutated the queue and the ping loop writes
// from its own; gorilla/websocket allows only one concurrent writer.
type feedConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *feedConn) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

func (c *feedConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

// Hub fans queue snapshots out to watchers of a branch. Two kinds of
// watchers: websocket connections from reception screens, and in-process
// subscribers holding a channel.
type Hub struct {
	connections map[int64]map[*feedConn]struct{}
	subscribers map[int64]map[chan QueueSnapshot]struct{}
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]map[*feedConn]struct{}),
		subscribers: make(map[int64]map[chan QueueSnapshot]struct{}),
	}
}

// Register wraps the connection and adds it to the branch's watchers. All
// writes to the connection must go through the returned handle.
func (h *Hub) Register(branchID int64, ws *websocket.Conn) *feedConn {
	conn := &feedConn{ws: ws}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.connections[branchID] == nil {
		h.connections[branchID] = make(map[*feedConn]struct{})
	}
	h.connections[branchID][conn] = struct{}{}
	return conn
}

func (h *Hub) Unregister(branchID int64, conn *feedConn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conns, exists := h.connections[branchID]; exists {
		if _, ok := conns[conn]; ok {
			_ = conn.ws.Close()
			delete(conns, conn)
		}
		if len(conns) == 0 {
			delete(h.connections, branchID)
		}
	}
}

// Subscribe returns a channel receiving every snapshot for the branch and a
// cancel function that must be called when done. A slow receiver loses
// intermediate snapshots rather than blocking the broadcast.
func (h *Hub) Subscribe(branchID int64) (<-chan QueueSnapshot, func()) {
	ch := make(chan QueueSnapshot, 1)

	h.mutex.Lock()
	if h.subscribers[branchID] == nil {
		h.subscribers[branchID] = make(map[chan QueueSnapshot]struct{})
	}
	h.subscribers[branchID][ch] = struct{}{}
	h.mutex.Unlock()

	cancel := func() {
		h.mutex.Lock()
		defer h.mutex.Unlock()
		if subs, exists := h.subscribers[branchID]; exists {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.subscribers, branchID)
			}
		}
	}
	return ch, cancel
}

func (h *Hub) Broadcast(branchID int64, snapshot QueueSnapshot) {
	h.mutex.RLock()
	conns := make([]*feedConn, 0, len(h.connections[branchID]))
	for conn := range h.connections[branchID] {
		conns = append(conns, conn)
	}
	for ch := range h.subscribers[branchID] {
		select {
		case ch <- snapshot:
		default:
			// replace the stale snapshot with the current one
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
	h.mutex.RUnlock()

	for _, conn := range conns {
		if err := conn.writeJSON(snapshot); err != nil {
			h.Unregister(branchID, conn)
		}
	}
}

func (h *Hub) WatcherCount(branchID int64) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections[branchID]) + len(h.subscribers[branchID])
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for branchID, conns := range h.connections {
		for conn := range conns {
			_ = conn.ws.Close()
		}
		delete(h.connections, branchID)
	}
	for branchID, subs := range h.subscribers {
		for ch := range subs {
			close(ch)
		}
		delete(h.subscribers, branchID)
	}
}
