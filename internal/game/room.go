// internal/game/room.go
package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"regicide-server/internal/cache"
	"regicide-server/internal/models"
)

// OnGameEndFunc handles a finished game (result recording, room teardown).
type OnGameEndFunc func(roomID uuid.UUID, winner string, scores map[string]int)

const (
	defaultNotReadyKickAfter = 60 * time.Second
	defaultInactivityWindow  = 10 * time.Minute

	notReadySweepInterval   = 5 * time.Second
	inactivitySweepInterval = 30 * time.Second
)

// Room holds the entire state for a single game instance in memory. All
// mutation funnels through its handlers under Mu: inbound messages and timer
// sweeps each run read-validate-mutate-broadcast as one atomic step, so no
// two mutations of the shared state ever race.
type Room struct {
	ID    uuid.UUID
	State *models.GameState

	// Draft-transient state, server-only (never replicated).
	draftCards       []*models.Card            // undealt pool
	draftRound       int
	draftDirection   int                       // -1 = pass left, +1 = pass right
	draftPacks       [][]*models.Card          // packs being built, one per player
	pendingRemaining map[string][]*models.Card // sessionId -> leftover cards awaiting rotation

	// SkipDraft deals 12 random cards per player and jumps straight to the
	// playing phase. Operator-level bypass for testing; never reachable from
	// client messages.
	SkipDraft bool

	// TestMode suppresses end-of-game checks so tests can stage mid-game
	// states without the room finishing underneath them.
	TestMode bool

	NotReadyKickAfter time.Duration
	InactivityWindow  time.Duration

	Mu     sync.Mutex
	rng    *rand.Rand
	logger *logrus.Logger

	done      chan struct{}
	closeOnce sync.Once

	// BroadcastFn sends an event to all connected players. If nil, no
	// broadcast is done.
	BroadcastFn func(ev Event)

	// SendToPlayerFn sends an event to a single specific player.
	SendToPlayerFn func(sessionID string, ev Event)

	// SyncStateFn pushes a full state snapshot to all connected clients.
	// The core never serializes state itself; replication is the
	// transport's concern.
	SyncStateFn func(state *models.GameState)

	// OnDispose is invoked when the room retires itself (empty or inactive).
	OnDispose func(roomID uuid.UUID)

	// OnGameEnd is invoked once at game end with the final scores.
	OnGameEnd OnGameEndFunc

	actionIndex int
}

// NewRoom builds a room in the waiting phase with the given options.
func NewRoom(opts models.GameOptions, logger *logrus.Logger) *Room {
	if opts.PlayerCount != 3 && opts.PlayerCount != 4 {
		opts.PlayerCount = 4
	}
	if logger == nil {
		logger = logrus.New()
	}
	now := nowMs()
	r := &Room{
		ID: uuid.New(),
		State: &models.GameState{
			Phase:        models.PhaseWaiting,
			Players:      []*models.Player{},
			Turn:         0,
			DiscardPile:  []*models.Card{},
			GameOptions:  opts,
			CreatedAt:    now,
			LastActivity: now,
		},
		pendingRemaining:  make(map[string][]*models.Card),
		draftDirection:    -1,
		NotReadyKickAfter: defaultNotReadyKickAfter,
		InactivityWindow:  defaultInactivityWindow,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:            logger,
		done:              make(chan struct{}),
	}
	return r
}

// StartTimers launches the periodic sweeps (not-ready kick, inactivity
// disposal). They run until Close.
func (r *Room) StartTimers() {
	go func() {
		kick := time.NewTicker(notReadySweepInterval)
		idle := time.NewTicker(inactivitySweepInterval)
		defer kick.Stop()
		defer idle.Stop()
		for {
			select {
			case <-r.done:
				return
			case <-kick.C:
				r.Mu.Lock()
				r.kickNotReadyPlayers()
				r.Mu.Unlock()
			case <-idle.C:
				r.Mu.Lock()
				r.checkInactivity()
				r.Mu.Unlock()
			}
		}
	}()
}

// Close stops the room's timers. Idempotent.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// HandleJoin registers a client on the room. In the waiting phase a fresh
// Player is appended; in any later phase only a reconnect to an existing
// seat is accepted.
func (r *Room) HandleJoin(sessionID, pseudo string, conn *websocket.Conn) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if p := r.playerBySession(sessionID); p != nil {
		return r.reconnectLocked(p, conn)
	}

	if r.State.Phase != models.PhaseWaiting {
		return fmt.Errorf("room %s: game already started, cannot join", r.ID)
	}
	if len(r.State.Players) >= r.State.GameOptions.PlayerCount {
		return fmt.Errorf("room %s: full", r.ID)
	}

	if pseudo == "" {
		pseudo = fmt.Sprintf("Player%d", len(r.State.Players)+1)
	}
	p := &models.Player{
		SessionID:   sessionID,
		Pseudo:      pseudo,
		IsConnected: true,
		Hand:        []*models.Card{},
		DraftPack:   []*models.Card{},
		JoinedAt:    nowMs(),
		Conn:        conn,
	}
	r.State.Players = append(r.State.Players, p)
	r.markActivity()
	r.logger.Infof("room %s: %s (%s) joined (%d/%d)", r.ID, pseudo, sessionID, len(r.State.Players), r.State.GameOptions.PlayerCount)
	r.logAction(sessionID, "player_join", nil)

	r.checkGameStart()
	r.syncState()
	return nil
}

// HandleRejoin reattaches a disconnected session to its retained seat.
func (r *Room) HandleRejoin(sessionID string, conn *websocket.Conn) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p := r.playerBySession(sessionID)
	if p == nil {
		return fmt.Errorf("room %s: no seat for session %s", r.ID, sessionID)
	}
	return r.reconnectLocked(p, conn)
}

// reconnectLocked flips a retained seat back to connected. No game data is
// recreated or reset. Assumes lock is held.
func (r *Room) reconnectLocked(p *models.Player, conn *websocket.Conn) error {
	p.IsConnected = true
	p.Conn = conn
	r.markActivity()
	r.logger.Infof("room %s: %s reconnected", r.ID, p.SessionID)
	r.logAction(p.SessionID, "player_reconnect", nil)
	r.syncState()
	return nil
}

// HandleLeave processes a client departure. Waiting rooms free the seat;
// started games retain all player data and only flip the connection flag.
func (r *Room) HandleLeave(sessionID string) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	idx := -1
	for i, p := range r.State.Players {
		if p.SessionID == sessionID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	if r.State.Phase == models.PhaseWaiting {
		r.State.Players = append(r.State.Players[:idx], r.State.Players[idx+1:]...)
		r.markActivity()
		r.logger.Infof("room %s: %s left while waiting, seat freed", r.ID, sessionID)
	} else {
		p := r.State.Players[idx]
		if !p.IsConnected {
			return
		}
		p.IsConnected = false
		p.Conn = nil
		r.logger.Infof("room %s: %s disconnected mid-game, seat retained", r.ID, sessionID)
		r.checkGameContinuation()
	}
	r.logAction(sessionID, "player_leave", nil)
	r.syncState()
}

// HandleMessage dispatches one decoded inbound message. The switch is
// exhaustive over models.MessageType.
func (r *Room) HandleMessage(sessionID string, msg models.InboundMessage) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	switch msg.Type {
	case models.MsgPlayerReady:
		r.handlePlayerReady(sessionID)
	case models.MsgPlayerNotReady:
		r.handlePlayerNotReady(sessionID)
	case models.MsgDraftCards:
		r.handleDraftCards(sessionID, msg.CardIDs)
	case models.MsgPlayCard:
		r.handlePlayCard(sessionID, msg)
	case models.MsgPassTurn:
		r.handlePassTurn(sessionID)
	case models.MsgUseSpecialPower:
		// Reserved in the client protocol; powers resolve through play_card.
		r.logger.Debugf("room %s: use_special_power from %s ignored", r.ID, sessionID)
	default:
		r.logger.Warnf("room %s: unknown message type %q from %s", r.ID, msg.Type, sessionID)
		r.sendError(sessionID, ErrInvalidAction, "Unknown message type")
	}
}

// ---- helpers (all assume lock is held) ----

func (r *Room) playerBySession(sessionID string) *models.Player {
	for _, p := range r.State.Players {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

func (r *Room) currentPlayer() *models.Player {
	if r.State.CurrentPlayerIndex < 0 || r.State.CurrentPlayerIndex >= len(r.State.Players) {
		return nil
	}
	return r.State.Players[r.State.CurrentPlayerIndex]
}

func (r *Room) isPlayerTurn(sessionID string) bool {
	cur := r.currentPlayer()
	return cur != nil && cur.SessionID == sessionID
}

func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.State.Players {
		if p.IsConnected {
			n++
		}
	}
	return n
}

func (r *Room) readyCount() int {
	n := 0
	for _, p := range r.State.Players {
		if p.IsConnected && p.IsReady {
			n++
		}
	}
	return n
}

func (r *Room) connectedPlayers() []*models.Player {
	out := make([]*models.Player, 0, len(r.State.Players))
	for _, p := range r.State.Players {
		if p.IsConnected {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) markActivity() {
	r.State.LastActivity = nowMs()
}

func (r *Room) broadcast(ev Event) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

func (r *Room) sendToPlayer(sessionID string, ev Event) {
	if r.SendToPlayerFn != nil {
		r.SendToPlayerFn(sessionID, ev)
	}
}

func (r *Room) sendError(sessionID string, code ErrorCode, message string) {
	r.sendToPlayer(sessionID, Event{
		Type: EventError,
		Payload: map[string]interface{}{
			"code":    string(code),
			"message": message,
		},
	})
}

func (r *Room) syncState() {
	if r.SyncStateFn != nil {
		r.SyncStateFn(r.State)
	}
}

// logAction pushes an action record onto the historian queue, best effort.
func (r *Room) logAction(sessionID, actionType string, payload map[string]interface{}) {
	r.actionIndex++
	if cache.Rdb == nil {
		return
	}
	rec := cache.RoomActionRecord{
		RoomID:        r.ID,
		ActionIndex:   r.actionIndex,
		ActorSession:  sessionID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func() {
		if err := cache.PublishRoomAction(rec); err != nil {
			r.logger.Debugf("room %s: historian publish failed: %v", r.ID, err)
		}
	}()
}

// checkInactivity retires a room whose last state-mutating message is older
// than the inactivity window, or that has no players left.
func (r *Room) checkInactivity() {
	idle := time.Duration(nowMs()-r.State.LastActivity) * time.Millisecond
	if len(r.State.Players) > 0 && idle < r.InactivityWindow {
		return
	}
	if len(r.State.Players) == 0 && idle < inactivitySweepInterval {
		return
	}
	r.logger.Infof("room %s: disposing (idle %s, %d players)", r.ID, idle, len(r.State.Players))
	r.Close()
	if r.OnDispose != nil {
		go r.OnDispose(r.ID)
	}
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
