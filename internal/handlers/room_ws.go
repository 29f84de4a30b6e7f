// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"regicide-server/internal/auth"
	"regicide-server/internal/game"
	"regicide-server/internal/middleware"
	"regicide-server/internal/models"
)

const wsWriteTimeout = 3 * time.Second

// joinedMessage is the targeted hello sent right after a successful join or
// rejoin. The token is the reconnection credential for this seat.
type joinedMessage struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}

// RoomWSHandler upgrades GET /rooms/ws/{room_id} to a WebSocket, attaches
// the client to the room (fresh join or token-based rejoin) and runs the
// read loop until the connection drops.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, err := uuid.Parse(chi.URLParam(r, "room_id"))
		if err != nil {
			http.Error(w, "invalid room_id format", http.StatusBadRequest)
			return
		}

		room, ok := rs.RoomStore.GetRoom(roomID)
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", roomID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "internal error during handler exit")

		if c.Subprotocol() != "game" {
			c.Close(websocket.StatusPolicyViolation, "client must use the 'game' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		// A reconnection token maps the client back onto its retained seat;
		// without one, this is a fresh join.
		var sessionID string
		if token := r.URL.Query().Get("token"); token != "" {
			tokenRoom, tokenSession, err := auth.AuthenticateRoomToken(token)
			if err != nil || tokenRoom != roomID.String() {
				logger.Warnf("room %s: rejected reconnect token: %v", roomID, err)
				c.Close(websocket.StatusPolicyViolation, "invalid reconnection token")
				return
			}
			sessionID = tokenSession
			if err := room.HandleRejoin(sessionID, c); err != nil {
				logger.Warnf("room %s: rejoin failed for %s: %v", roomID, sessionID, err)
				c.Close(websocket.StatusPolicyViolation, "rejoin refused")
				return
			}
		} else {
			sessionID = uuid.NewString()
			pseudo := r.URL.Query().Get("pseudo")
			if err := room.HandleJoin(sessionID, pseudo, c); err != nil {
				logger.Warnf("room %s: join refused: %v", roomID, err)
				c.Close(websocket.StatusPolicyViolation, "join refused")
				return
			}
		}

		token, err := auth.CreateRoomToken(roomID.String(), sessionID)
		if err != nil {
			logger.Errorf("room %s: failed to issue reconnect token: %v", roomID, err)
		}
		sendWsMessage(r.Context(), c, joinedMessage{
			Type:      "joined",
			RoomID:    roomID.String(),
			SessionID: sessionID,
			Token:     token,
		}, logger)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readRoomMessages(ctx, c, room, sessionID, logger)

		room.HandleLeave(sessionID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// readRoomMessages reads client messages until the connection closes and
// hands each decoded message to the room. The room serializes processing
// under its own lock.
func readRoomMessages(ctx context.Context, c *websocket.Conn, room *game.Room, sessionID string, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("room %s: websocket closed normally for %s", room.ID, sessionID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("room %s: websocket context canceled for %s", room.ID, sessionID)
			} else {
				logger.Warnf("room %s: websocket read error for %s: %v", room.ID, sessionID, err)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg models.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("room %s: invalid JSON from %s: %v", room.ID, sessionID, err)
			sendWsMessage(ctx, c, map[string]string{"type": "error", "message": "invalid JSON"}, logger)
			continue
		}

		if msg.Type == "ping" {
			sendWsMessage(ctx, c, map[string]string{"type": "pong"}, logger)
			continue
		}

		room.HandleMessage(sessionID, msg)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// attachTransport wires the room's outbound callbacks to WebSocket writes.
// Each callback runs while the room lock is held, so they snapshot what
// they need synchronously and hand the writes to a goroutine.
func attachTransport(room *game.Room, logger *logrus.Logger) {
	room.BroadcastFn = func(ev game.Event) {
		conns := connectedConns(room)
		data, err := json.Marshal(ev)
		if err != nil {
			logger.Errorf("room %s: marshal broadcast %s: %v", room.ID, ev.Type, err)
			return
		}
		go writeAll(conns, data, room.ID, logger)
	}

	room.SendToPlayerFn = func(sessionID string, ev game.Event) {
		var conn *websocket.Conn
		for _, p := range room.State.Players {
			if p.SessionID == sessionID && p.IsConnected && p.Conn != nil {
				conn = p.Conn
				break
			}
		}
		if conn == nil {
			return
		}
		data, err := json.Marshal(ev)
		if err != nil {
			logger.Errorf("room %s: marshal targeted %s: %v", room.ID, ev.Type, err)
			return
		}
		go writeAll([]*websocket.Conn{conn}, data, room.ID, logger)
	}

	room.SyncStateFn = func(state *models.GameState) {
		conns := connectedConns(room)
		data, err := json.Marshal(map[string]interface{}{
			"type":  "state_sync",
			"state": state,
		})
		if err != nil {
			logger.Errorf("room %s: marshal state sync: %v", room.ID, err)
			return
		}
		go writeAll(conns, data, room.ID, logger)
	}
}

// connectedConns snapshots the live connections. Caller holds the room lock.
func connectedConns(room *game.Room) []*websocket.Conn {
	conns := make([]*websocket.Conn, 0, len(room.State.Players))
	for _, p := range room.State.Players {
		if p.IsConnected && p.Conn != nil {
			conns = append(conns, p.Conn)
		}
	}
	return conns
}

func writeAll(conns []*websocket.Conn, data []byte, roomID uuid.UUID, logger *logrus.Logger) {
	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
		err := conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			logger.Warnf("room %s: websocket write failed: %v", roomID, err)
		}
	}
}

func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}, logger *logrus.Logger) {
	if c == nil {
		return
	}
	data, err := json.Marshal(message)
	if err != nil {
		logger.Errorf("marshal websocket message: %v", err)
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	if err := c.Write(writeCtx, websocket.MessageText, data); err != nil {
		logger.Warnf("websocket write failed: %v", err)
	}
}
