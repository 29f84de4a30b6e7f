// internal/game/room_test.go
package game

import (
	"fmt"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regicide-server/internal/models"
)

// mockBroadcaster collects events instead of sending them over WS.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []Event            // events broadcast to everyone
	playerEvents map[string][]Event // events sent to specific players
	syncCount    int
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[string][]Event),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev Event) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) sendToPlayerFn(sessionID string, ev Event) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[sessionID] = append(mb.playerEvents[sessionID], ev)
}

func (mb *mockBroadcaster) syncStateFn(state *models.GameState) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.syncCount++
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = nil
	mb.playerEvents = make(map[string][]Event)
}

func (mb *mockBroadcaster) lastEvent() *Event {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if len(mb.allEvents) == 0 {
		return nil
	}
	return &mb.allEvents[len(mb.allEvents)-1]
}

func (mb *mockBroadcaster) lastPlayerEvent(sessionID string) *Event {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[sessionID]
	if len(events) == 0 {
		return nil
	}
	return &events[len(events)-1]
}

func (mb *mockBroadcaster) eventsOfType(typ EventType) []Event {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	var out []Event
	for _, ev := range mb.allEvents {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (mb *mockBroadcaster) lastErrorCode(sessionID string) string {
	ev := mb.lastPlayerEvent(sessionID)
	if ev == nil || ev.Type != EventError {
		return ""
	}
	code, _ := ev.Payload["code"].(string)
	return code
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// setupWaitingRoom creates a room with the given seat count and joins that
// many players. Deterministic rng so draft layouts are reproducible.
func setupWaitingRoom(t *testing.T, numPlayers int) (*Room, *mockBroadcaster) {
	t.Helper()
	r := NewRoom(models.GameOptions{PlayerCount: numPlayers}, testLogger())
	r.rng = rand.New(rand.NewSource(42))

	mb := newMockBroadcaster()
	r.BroadcastFn = mb.broadcastFn
	r.SendToPlayerFn = mb.sendToPlayerFn
	r.SyncStateFn = mb.syncStateFn

	for i := 0; i < numPlayers; i++ {
		err := r.HandleJoin(sessionN(i), fmt.Sprintf("p%d", i), nil)
		require.NoError(t, err)
	}
	return r, mb
}

// startDraftingRoom readies everyone so the room transitions into drafting.
func startDraftingRoom(t *testing.T, numPlayers int) (*Room, *mockBroadcaster) {
	t.Helper()
	r, mb := setupWaitingRoom(t, numPlayers)
	for i := 0; i < numPlayers; i++ {
		r.HandleMessage(sessionN(i), models.InboundMessage{Type: models.MsgPlayerReady})
	}
	require.Equal(t, models.PhaseDrafting, r.State.Phase)
	mb.clear()
	return r, mb
}

func sessionN(i int) string {
	return fmt.Sprintf("session-%d", i)
}

func TestGameStartsWhenAllReady(t *testing.T) {
	r, mb := setupWaitingRoom(t, 4)

	for i := 0; i < 3; i++ {
		r.HandleMessage(sessionN(i), models.InboundMessage{Type: models.MsgPlayerReady})
		assert.Equal(t, models.PhaseWaiting, r.State.Phase)
	}
	r.HandleMessage(sessionN(3), models.InboundMessage{Type: models.MsgPlayerReady})

	require.Equal(t, models.PhaseDrafting, r.State.Phase)
	assert.GreaterOrEqual(t, r.State.CurrentPlayerIndex, 0)
	assert.Less(t, r.State.CurrentPlayerIndex, 4)
	assert.Equal(t, 1, r.State.Turn)
	require.NotNil(t, r.State.Pyramid)
	assert.Equal(t, 10, r.State.Pyramid.EmptySlots)

	for _, p := range r.State.Players {
		require.NotNil(t, p.SecretKing)
		assert.Equal(t, "king", p.SecretKing.Rank)
		assert.False(t, p.SecretKing.IsVisible)
		assert.Len(t, p.Hand, 1)
		assert.Equal(t, 1, p.HandCount)
		assert.Len(t, p.DraftPack, 4)
	}

	started := mb.eventsOfType(EventDraftStarted)
	require.Len(t, started, 1)
	assert.Equal(t, 1, started[0].Payload["round"])
	assert.Equal(t, 4, started[0].Payload["cardsPerPack"])
}

func TestGameDoesNotStartBelowSeatCount(t *testing.T) {
	r := NewRoom(models.GameOptions{PlayerCount: 4}, testLogger())
	mb := newMockBroadcaster()
	r.BroadcastFn = mb.broadcastFn
	r.SendToPlayerFn = mb.sendToPlayerFn

	for i := 0; i < 3; i++ {
		require.NoError(t, r.HandleJoin(sessionN(i), "", nil))
		r.HandleMessage(sessionN(i), models.InboundMessage{Type: models.MsgPlayerReady})
	}

	assert.Equal(t, models.PhaseWaiting, r.State.Phase)
	waiting := mb.eventsOfType(EventWaitingForPlayers)
	require.NotEmpty(t, waiting)
	last := waiting[len(waiting)-1]
	assert.Equal(t, 3, last.Payload["readyCount"])
	assert.Equal(t, 4, last.Payload["targetCount"])
}

func TestReadyTwiceRejected(t *testing.T) {
	r, mb := setupWaitingRoom(t, 4)

	r.HandleMessage(sessionN(0), models.InboundMessage{Type: models.MsgPlayerReady})
	r.HandleMessage(sessionN(0), models.InboundMessage{Type: models.MsgPlayerReady})

	assert.Equal(t, string(ErrAlreadyReady), mb.lastErrorCode(sessionN(0)))
	assert.True(t, r.State.Players[0].IsReady)
}

func TestNotReadyWithoutReadyRejected(t *testing.T) {
	r, mb := setupWaitingRoom(t, 4)

	r.HandleMessage(sessionN(0), models.InboundMessage{Type: models.MsgPlayerNotReady})
	assert.Equal(t, string(ErrNotReady), mb.lastErrorCode(sessionN(0)))

	r.HandleMessage(sessionN(0), models.InboundMessage{Type: models.MsgPlayerReady})
	r.HandleMessage(sessionN(0), models.InboundMessage{Type: models.MsgPlayerNotReady})
	assert.False(t, r.State.Players[0].IsReady)
}

func TestReadyAfterStartRejected(t *testing.T) {
	r, mb := startDraftingRoom(t, 4)

	r.HandleMessage(sessionN(0), models.InboundMessage{Type: models.MsgPlayerReady})
	assert.Equal(t, string(ErrGameAlreadyStarted), mb.lastErrorCode(sessionN(0)))
}

func TestLeaveWhileWaitingFreesSeat(t *testing.T) {
	r, _ := setupWaitingRoom(t, 4)

	r.HandleLeave(sessionN(1))
	assert.Len(t, r.State.Players, 3)
	assert.Nil(t, func() *models.Player {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		return r.playerBySession(sessionN(1))
	}())
}

func TestDisconnectMidGameRetainsSeat(t *testing.T) {
	r, _ := startDraftingRoom(t, 4)

	handBefore := len(r.State.Players[1].Hand)
	r.HandleLeave(sessionN(1))

	require.Len(t, r.State.Players, 4)
	p := r.State.Players[1]
	assert.False(t, p.IsConnected)
	assert.Len(t, p.Hand, handBefore)
	assert.NotNil(t, p.SecretKing)
	assert.NotEqual(t, models.PhaseFinished, r.State.Phase)
}

func TestRejoinRestoresConnection(t *testing.T) {
	r, _ := startDraftingRoom(t, 4)

	r.HandleLeave(sessionN(2))
	require.False(t, r.State.Players[2].IsConnected)

	require.NoError(t, r.HandleRejoin(sessionN(2), nil))
	assert.True(t, r.State.Players[2].IsConnected)
	assert.NotNil(t, r.State.Players[2].SecretKing)
}

func TestJoinAfterStartRejected(t *testing.T) {
	r, _ := startDraftingRoom(t, 4)

	err := r.HandleJoin("late-session", "late", nil)
	assert.Error(t, err)
	assert.Len(t, r.State.Players, 4)
}

func TestGameForceEndsBelowTwoConnected(t *testing.T) {
	r, mb := startDraftingRoom(t, 4)

	r.HandleLeave(sessionN(0))
	r.HandleLeave(sessionN(1))
	assert.NotEqual(t, models.PhaseFinished, r.State.Phase)

	r.HandleLeave(sessionN(2))
	assert.Equal(t, models.PhaseFinished, r.State.Phase)

	ended := mb.eventsOfType(EventGameEnded)
	require.Len(t, ended, 1)
	assert.NotEmpty(t, ended[0].Payload["reason"])
}

func TestKickNotReadyPlayers(t *testing.T) {
	r, _ := setupWaitingRoom(t, 4)

	r.Mu.Lock()
	r.State.Players[0].IsReady = true
	r.State.Players[1].JoinedAt = nowMs() - (2 * time.Minute).Milliseconds()
	r.kickNotReadyPlayers()
	r.Mu.Unlock()

	require.Len(t, r.State.Players, 3)
	for _, p := range r.State.Players {
		assert.NotEqual(t, sessionN(1), p.SessionID)
	}
}

func TestUnknownMessageRejected(t *testing.T) {
	r, mb := setupWaitingRoom(t, 4)

	r.HandleMessage(sessionN(0), models.InboundMessage{Type: "launch_missiles"})
	assert.Equal(t, string(ErrInvalidAction), mb.lastErrorCode(sessionN(0)))
}

func TestSkipDraftDealsTwelveAndStartsPlaying(t *testing.T) {
	r, mb := setupWaitingRoom(t, 4)
	r.SkipDraft = true

	for i := 0; i < 4; i++ {
		r.HandleMessage(sessionN(i), models.InboundMessage{Type: models.MsgPlayerReady})
	}

	require.Equal(t, models.PhasePlaying, r.State.Phase)
	assert.Equal(t, 0, r.State.CurrentPlayerIndex)
	assert.Equal(t, 1, r.State.Turn)
	for _, p := range r.State.Players {
		assert.Len(t, p.Hand, 13)
		assert.Equal(t, 13, p.HandCount)
	}
	require.Len(t, mb.eventsOfType(EventDraftComplete), 1)
}
