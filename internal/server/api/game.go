package api

import (
	"net/http"

	"github.com/ayusman/shifumi/internal/app"
	"github.com/ayusman/shifumi/internal/game"
)

// Controller is the running game as driven over HTTP.
type Controller interface {
	Status() app.Status
	Snapshot() game.Snapshot
	RoundOptions() []int
	NewMatch(totalRounds int) error
	StartRound() error
	NextRound() error
	FinishMatch() error
}

// GameHandler serves the match commands and state.
type GameHandler struct {
	game Controller
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(c Controller) *GameHandler {
	return &GameHandler{game: c}
}

type newMatchRequest struct {
	Rounds int `json:"rounds"`
}

type gameResponse struct {
	game.Snapshot
	RoundOptions []int `json:"round_options"`
}

// Register adds the game routes to mux.
func (h *GameHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.status)
	mux.HandleFunc("/api/game", h.match)
	mux.HandleFunc("/api/game/start", h.command(h.game.StartRound))
	mux.HandleFunc("/api/game/next", h.command(h.game.NextRound))
	mux.HandleFunc("/api/game/finish", h.command(h.game.FinishMatch))
}

// status handles GET /api/status
func (h *GameHandler) status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.game.Status())
}

// match handles GET /api/game and POST /api/game
func (h *GameHandler) match(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeState(w, http.StatusOK)
	case http.MethodPost:
		var req newMatchRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := h.game.NewMatch(req.Rounds); err != nil {
			writeDomainError(w, err)
			return
		}
		h.writeState(w, http.StatusCreated)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// command wraps a state machine transition as a POST endpoint.
func (h *GameHandler) command(fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := fn(); err != nil {
			writeDomainError(w, err)
			return
		}
		h.writeState(w, http.StatusOK)
	}
}

func (h *GameHandler) writeState(w http.ResponseWriter, status int) {
	writeJSON(w, status, gameResponse{
		Snapshot:     h.game.Snapshot(),
		RoundOptions: h.game.RoundOptions(),
	})
}
