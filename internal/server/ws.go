package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/shifumi/internal/game"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Events streams game snapshots and match results.
type Events interface {
	Subscribe() (<-chan game.Snapshot, func())
	WatchMatchEnd(fn func(game.MatchResult)) (cancel func())
}

// Message is one frame on the game events socket.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	MessageSnapshot = "snapshot"
	MessageMatchEnd = "match_end"
)

// GameEventsHandler pushes game state to WebSocket clients.
type GameEventsHandler struct {
	game Events
}

// NewGameEventsHandler creates a GameEventsHandler.
func NewGameEventsHandler(g Events) *GameEventsHandler {
	return &GameEventsHandler{game: g}
}

// resultQueue buffers match results without dropping any; matches end at
// human pace so it stays tiny.
type resultQueue struct {
	mu      sync.Mutex
	results []game.MatchResult
	ready   chan struct{}
}

func newResultQueue() *resultQueue {
	return &resultQueue{ready: make(chan struct{}, 1)}
}

func (q *resultQueue) push(r game.MatchResult) {
	q.mu.Lock()
	q.results = append(q.results, r)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *resultQueue) drain() []game.MatchResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.results
	q.results = nil
	return out
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *GameEventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ends := newResultQueue()
	unwatch := h.game.WatchMatchEnd(ends.push)
	defer unwatch()

	updates, cancel := h.game.Subscribe()
	defer cancel()

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-ends.ready:
			for _, res := range ends.drain() {
				if err := h.send(conn, Message{Type: MessageMatchEnd, Data: res}); err != nil {
					return
				}
			}
		case snap, ok := <-updates:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeTimeout))
				return
			}
			if err := h.send(conn, Message{Type: MessageSnapshot, Data: snap}); err != nil {
				return
			}
		}
	}
}

func (h *GameEventsHandler) send(conn *websocket.Conn, msg Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}
