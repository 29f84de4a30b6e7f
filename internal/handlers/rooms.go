// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"net/http"

	"regicide-server/internal/models"
)

type createRoomRequest struct {
	PlayerCount int    `json:"playerCount"`
	IsPrivate   bool   `json:"isPrivate"`
	RoomCode    string `json:"roomCode,omitempty"`
}

type roomSummary struct {
	RoomID      string `json:"roomId"`
	Phase       string `json:"phase"`
	PlayerCount int    `json:"playerCount"`
	Seated      int    `json:"seated"`
	IsPrivate   bool   `json:"isPrivate"`
}

// CreateRoomHandler handles POST /rooms. An empty body creates a public
// 4-player room.
func (rs *RoomServer) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if r.Body != nil {
		// Decode errors fall through to defaults; a bodyless POST is valid.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if req.IsPrivate && req.RoomCode != "" {
		if existing := rs.RoomStore.GetRoomByCode(req.RoomCode); existing != nil {
			http.Error(w, "room code already in use", http.StatusConflict)
			return
		}
	}

	room := rs.NewRoom(models.GameOptions{
		PlayerCount: req.PlayerCount,
		IsPrivate:   req.IsPrivate,
		RoomCode:    req.RoomCode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"roomId":      room.ID.String(),
		"playerCount": room.State.GameOptions.PlayerCount,
		"isPrivate":   room.State.GameOptions.IsPrivate,
		"roomCode":    room.State.GameOptions.RoomCode,
	})
}

// ListRoomsHandler handles GET /rooms and returns the public joinable rooms.
func (rs *RoomServer) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms := rs.RoomStore.ListRooms()
	out := make([]roomSummary, 0, len(rooms))
	for _, room := range rooms {
		room.Mu.Lock()
		if !room.State.GameOptions.IsPrivate && room.State.Phase == models.PhaseWaiting {
			out = append(out, roomSummary{
				RoomID:      room.ID.String(),
				Phase:       string(room.State.Phase),
				PlayerCount: room.State.GameOptions.PlayerCount,
				Seated:      len(room.State.Players),
				IsPrivate:   false,
			})
		}
		room.Mu.Unlock()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"rooms": out})
}

// HealthzHandler reports liveness.
func HealthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
