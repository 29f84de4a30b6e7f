// internal/game/draft_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regicide-server/internal/models"
)

// pickFirst submits the first n card ids of the player's current pack.
func pickFirst(r *Room, sessionID string, n int) {
	var p *models.Player
	for _, pl := range r.State.Players {
		if pl.SessionID == sessionID {
			p = pl
			break
		}
	}
	ids := make([]string, 0, n)
	for i := 0; i < n && i < len(p.DraftPack); i++ {
		ids = append(ids, p.DraftPack[i].ID)
	}
	r.HandleMessage(sessionID, models.InboundMessage{Type: models.MsgDraftCards, CardIDs: ids})
}

// cardsInCirculation counts every card in hands, packs, the pending map and
// the undealt pool. Must stay 52 for the whole draft.
func cardsInCirculation(r *Room) int {
	total := len(r.draftCards)
	for _, p := range r.State.Players {
		total += len(p.Hand) + len(p.DraftPack)
	}
	for _, rem := range r.pendingRemaining {
		total += len(rem)
	}
	return total
}

func TestThreePlayerFirstPickNeedsTwoCards(t *testing.T) {
	r, mb := startDraftingRoom(t, 3)
	p := r.State.Players[0]
	require.Len(t, p.DraftPack, 4)

	// One id is not enough on a fresh 4-card pack.
	r.HandleMessage(p.SessionID, models.InboundMessage{
		Type:    models.MsgDraftCards,
		CardIDs: []string{p.DraftPack[0].ID},
	})
	assert.Equal(t, string(ErrWrongPickCount), mb.lastErrorCode(p.SessionID))
	assert.False(t, p.HasPicked)

	// Three is too many.
	r.HandleMessage(p.SessionID, models.InboundMessage{
		Type:    models.MsgDraftCards,
		CardIDs: []string{p.DraftPack[0].ID, p.DraftPack[1].ID, p.DraftPack[2].ID},
	})
	assert.Equal(t, string(ErrWrongPickCount), mb.lastErrorCode(p.SessionID))

	// Exactly two succeeds.
	pickFirst(r, p.SessionID, 2)
	assert.True(t, p.HasPicked)
	assert.Len(t, p.Hand, 3) // secret king + 2 picks
	assert.Equal(t, 3, p.HandCount)
}

func TestFourPlayerAlwaysPicksOne(t *testing.T) {
	r, mb := startDraftingRoom(t, 4)
	p := r.State.Players[0]

	r.HandleMessage(p.SessionID, models.InboundMessage{
		Type:    models.MsgDraftCards,
		CardIDs: []string{p.DraftPack[0].ID, p.DraftPack[1].ID},
	})
	assert.Equal(t, string(ErrWrongPickCount), mb.lastErrorCode(p.SessionID))

	pickFirst(r, p.SessionID, 1)
	assert.True(t, p.HasPicked)
	assert.Len(t, p.Hand, 2)
}

func TestPickRejectsForeignCard(t *testing.T) {
	r, mb := startDraftingRoom(t, 4)
	p0 := r.State.Players[0]
	p1 := r.State.Players[1]

	r.HandleMessage(p0.SessionID, models.InboundMessage{
		Type:    models.MsgDraftCards,
		CardIDs: []string{p1.DraftPack[0].ID},
	})
	assert.Equal(t, string(ErrCardNotInPack), mb.lastErrorCode(p0.SessionID))
	assert.False(t, p0.HasPicked)
}

func TestDoublePickRejected(t *testing.T) {
	r, mb := startDraftingRoom(t, 4)
	p := r.State.Players[0]

	pickFirst(r, p.SessionID, 1)
	r.HandleMessage(p.SessionID, models.InboundMessage{
		Type:    models.MsgDraftCards,
		CardIDs: []string{"whatever"},
	})
	assert.Equal(t, string(ErrAlreadyPicked), mb.lastErrorCode(p.SessionID))
}

func TestDraftOutsideDraftingPhaseRejected(t *testing.T) {
	r, mb := setupWaitingRoom(t, 4)

	r.HandleMessage(sessionN(0), models.InboundMessage{
		Type:    models.MsgDraftCards,
		CardIDs: []string{"x"},
	})
	assert.Equal(t, string(ErrNotDraftingPhase), mb.lastErrorCode(sessionN(0)))
}

func TestRotationWaitsForAllPicks(t *testing.T) {
	r, _ := startDraftingRoom(t, 4)

	packsBefore := make(map[string][]string)
	for _, p := range r.State.Players {
		ids := make([]string, len(p.DraftPack))
		for i, c := range p.DraftPack {
			ids[i] = c.ID
		}
		packsBefore[p.SessionID] = ids
	}

	// Two of four pick; nothing may rotate yet.
	pickFirst(r, sessionN(0), 1)
	pickFirst(r, sessionN(1), 1)

	assert.Len(t, r.pendingRemaining, 2)
	for _, p := range r.State.Players[2:] {
		assert.Len(t, p.DraftPack, 4, "unpicked players keep their original pack")
	}

	// Remaining two pick; the barrier opens and every pack rotates.
	pickFirst(r, sessionN(2), 1)
	pickFirst(r, sessionN(3), 1)

	assert.Empty(t, r.pendingRemaining)
	for i, p := range r.State.Players {
		require.Len(t, p.DraftPack, 3)
		assert.False(t, p.HasPicked)

		// Direction -1: player i now holds the leftovers of player i+1.
		source := packsBefore[sessionN((i+1)%4)]
		for _, c := range p.DraftPack {
			assert.Contains(t, source, c.ID)
		}
	}
}

func TestRotationNotifiesReceivers(t *testing.T) {
	r, mb := startDraftingRoom(t, 4)

	for i := 0; i < 4; i++ {
		pickFirst(r, sessionN(i), 1)
	}

	for i := 0; i < 4; i++ {
		ev := mb.lastPlayerEvent(sessionN(i))
		require.NotNil(t, ev)
		assert.Equal(t, EventDraftPackReceived, ev.Type)
		assert.Equal(t, 3, ev.Payload["cardsCount"])
	}
}

func TestDraftConservesCards(t *testing.T) {
	r, _ := startDraftingRoom(t, 4)
	require.Equal(t, 52, cardsInCirculation(r))

	pickFirst(r, sessionN(0), 1)
	pickFirst(r, sessionN(1), 1)
	require.Equal(t, 52, cardsInCirculation(r))

	pickFirst(r, sessionN(2), 1)
	pickFirst(r, sessionN(3), 1)
	require.Equal(t, 52, cardsInCirculation(r))
}

// driveDraft picks greedily for every player until the room leaves the
// drafting phase.
func driveDraft(t *testing.T, r *Room) {
	t.Helper()
	for iter := 0; iter < 200; iter++ {
		if r.State.Phase != models.PhaseDrafting {
			return
		}
		progressed := false
		for _, p := range r.State.Players {
			if len(p.DraftPack) == 0 || p.HasPicked {
				continue
			}
			n := r.expectedPickCount(len(r.State.Players), len(p.DraftPack) == draftCardsPerPack)
			if n > len(p.DraftPack) {
				n = len(p.DraftPack)
			}
			pickFirst(r, p.SessionID, n)
			progressed = true
		}
		require.True(t, progressed, "draft stalled with no one able to pick")
	}
	t.Fatal("draft did not finish within the iteration limit")
}

func TestFullDraftReachesPlayingPhase(t *testing.T) {
	for _, numPlayers := range []int{3, 4} {
		r, mb := startDraftingRoom(t, numPlayers)
		driveDraft(t, r)

		require.Equal(t, models.PhasePlaying, r.State.Phase)
		assert.Equal(t, 0, r.State.CurrentPlayerIndex)
		assert.Empty(t, r.State.DiscardPile)
		require.Len(t, mb.eventsOfType(EventDraftComplete), 1)

		for _, p := range r.State.Players {
			assert.GreaterOrEqual(t, len(p.Hand), draftTargetHand)
			assert.Equal(t, len(p.Hand), p.HandCount)
			assert.Empty(t, p.DraftPack)
			assert.False(t, p.HasPicked)
		}
	}
}

func TestThreePlayerGameSetsExcludedSuit(t *testing.T) {
	r, _ := startDraftingRoom(t, 3)

	excluded := r.State.GameOptions.ExcludedSuit
	require.NotEmpty(t, excluded)
	for _, p := range r.State.Players {
		assert.NotEqual(t, excluded, p.SecretKing.Suit)
	}
}

func TestFourPlayerGameHasNoExcludedSuit(t *testing.T) {
	r, _ := startDraftingRoom(t, 4)
	assert.Empty(t, r.State.GameOptions.ExcludedSuit)
}
