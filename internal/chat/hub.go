// Package chat relays messages between a trainer and their linked clients
// over websockets. The hub is transport only: message history is the
// backend's concern and nothing is persisted here.
package chat

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"coachconnect/internal/auth"
)

// Message is one chat event as fanned out to room peers. The server stamps
// id, sender and timestamp; clients only supply content and type.
type Message struct {
	ID         string    `json:"id"`
	Room       string    `json:"room"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	Type       string    `json:"type,omitempty"` // text|image|system
	CreatedAt  time.Time `json:"created_at"`
}

type inbound struct {
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The session cookie was already verified by the route guard; origin
	// checks are left to the deployment's reverse proxy.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type peer struct {
	conn *websocket.Conn
	send chan Message
}

// Hub tracks room membership. Rooms are keyed by the trainer's code, so one
// room holds a trainer and every client linked through that code.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*peer]struct{}
	lg    *zap.SugaredLogger
}

func NewHub(lg *zap.SugaredLogger) *Hub {
	return &Hub{rooms: make(map[string]map[*peer]struct{}), lg: lg}
}

// ServeWS upgrades an authenticated request into a room connection. The room
// is the trainer code from the query string.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if claims.Subject == "" {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	room := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("room")))
	if room == "" {
		http.Error(w, "room is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.lg.Warnw("websocket upgrade failed", "error", err, "subject", claims.Subject)
		return
	}

	p := &peer{conn: conn, send: make(chan Message, 16)}
	h.join(room, p)
	h.lg.Infow("chat peer joined", "room", room, "subject", claims.Subject)

	go p.writeLoop()
	h.readLoop(room, p, claims)
}

func (h *Hub) readLoop(room string, p *peer, claims auth.Claims) {
	defer func() {
		h.leave(room, p)
		h.lg.Infow("chat peer left", "room", room, "subject", claims.Subject)
	}()
	for {
		var in inbound
		if err := p.conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Content == "" {
			continue
		}
		h.Broadcast(room, Message{
			ID:         uuid.NewString(),
			Room:       room,
			SenderID:   claims.Subject,
			SenderName: senderName(claims),
			Content:    in.Content,
			Type:       in.Type,
			CreatedAt:  time.Now(),
		})
	}
}

// Broadcast fans a message out to every peer in the room. Peers whose send
// buffer is full are dropped rather than allowed to stall the room.
func (h *Hub) Broadcast(room string, msg Message) {
	h.mu.Lock()
	var slow []*peer
	for p := range h.rooms[room] {
		select {
		case p.send <- msg:
		default:
			slow = append(slow, p)
		}
	}
	h.mu.Unlock()
	for _, p := range slow {
		h.lg.Warnw("dropping slow chat peer", "room", room)
		h.leave(room, p)
	}
}

// RoomSize reports the number of connected peers in a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

func (h *Hub) join(room string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*peer]struct{})
	}
	h.rooms[room][p] = struct{}{}
}

func (h *Hub) leave(room string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if peers, ok := h.rooms[room]; ok {
		if _, member := peers[p]; member {
			delete(peers, p)
			close(p.send)
			if len(peers) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

func (p *peer) writeLoop() {
	defer p.conn.Close()
	for msg := range p.send {
		if err := p.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func senderName(c auth.Claims) string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}
