package api

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/game"
)

// Hub fans game state changes out to websocket clients.
type Hub struct {
	mu        sync.Mutex
	clients   map[*client]struct{}
	broadcast chan game.State
}

type client struct {
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*client]struct{}),
		broadcast: make(chan game.State, 32),
	}
}

// Run delivers broadcasts until done is closed. A state older than one
// already delivered is dropped.
func (h *Hub) Run(done <-chan struct{}) {
	var last uint64
	for {
		select {
		case <-done:
			return
		case st := <-h.broadcast:
			if st.Version <= last {
				log.Debug().Uint64("version", st.Version).Uint64("last", last).
					Msg("hub-drop-stale-state")
				continue
			}
			last = st.Version
			msg := stateMessage(st)
			h.mu.Lock()
			for c := range h.clients {
				c.sendRaw(msg)
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues st for every client. It never blocks; if the queue is full
// the update is dropped and clients catch up on the next one.
func (h *Hub) Broadcast(st game.State) {
	select {
	case h.broadcast <- st:
	default:
		log.Warn().Msg("hub-broadcast-queue-full")
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) NumClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func stateMessage(st game.State) []byte {
	return mustMarshal(wsMessage{Type: "state", Payload: mustMarshal(st)})
}

func (c *client) sendRaw(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}
