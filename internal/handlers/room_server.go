// internal/handlers/room_server.go
package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"regicide-server/internal/database"
	"regicide-server/internal/game"
	"regicide-server/internal/models"
)

// RoomServer owns the RoomStore and creates rooms with their lifecycle
// callbacks wired: disposal unregisters the room, game end records results.
type RoomServer struct {
	RoomStore *game.RoomStore
	Logger    *logrus.Logger
}

func NewRoomServer(logger *logrus.Logger) *RoomServer {
	if logger == nil {
		logger = logrus.New()
	}
	return &RoomServer{
		RoomStore: game.NewRoomStore(),
		Logger:    logger,
	}
}

// NewRoom creates a room from the given options, registers it and starts
// its background timers.
func (rs *RoomServer) NewRoom(opts models.GameOptions) *game.Room {
	r := game.NewRoom(opts, rs.Logger)

	r.OnDispose = func(roomID uuid.UUID) {
		rs.RoomStore.DeleteRoom(roomID)
		rs.Logger.Infof("room %s removed from store", roomID)
	}
	r.OnGameEnd = func(roomID uuid.UUID, winner string, scores map[string]int) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.RecordGameResults(ctx, roomID, winner, scores); err != nil {
			rs.Logger.Warnf("room %s: failed to record results: %v", roomID, err)
		}
	}

	attachTransport(r, rs.Logger)
	rs.RoomStore.AddRoom(r)
	r.StartTimers()
	rs.Logger.Infof("room %s created (players=%d, private=%v)", r.ID, opts.PlayerCount, opts.IsPrivate)
	return r
}
