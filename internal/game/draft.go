// internal/game/draft.go
package game

import "regicide-server/internal/models"

const (
	draftCardsPerPack = 4
	draftTargetHand   = 13 // 12 drafted + 1 secret king
	draftedPerPlayer  = 12
)

// setupCards builds the deck, deals the secret kings and prepares the draft
// pool and the empty pyramid.
func (r *Room) setupCards() {
	fullDeck := NewDeck()

	kings := make([]*models.Card, 0, 4)
	nonKings := make([]*models.Card, 0, 48)
	for _, c := range fullDeck {
		if c.Rank == "king" {
			kings = append(kings, c)
		} else {
			nonKings = append(nonKings, c)
		}
	}

	r.distributeSecretKings(kings)

	Shuffle(r.rng, nonKings)

	r.State.Pyramid = models.NewPyramid()

	r.draftCards = nonKings
	r.draftRound = 1
	r.draftDirection = -1
	r.logger.Infof("room %s: cards set up, %d cards in draft pool", r.ID, len(r.draftCards))
}

// distributeSecretKings shuffles the four kings and deals one straight into
// each player's hand, hidden. In a 3-player game the unassigned king's suit
// becomes the excluded suit.
func (r *Room) distributeSecretKings(kings []*models.Card) {
	Shuffle(r.rng, kings)

	for i, p := range r.State.Players {
		king := kings[i]
		king.IsVisible = false
		p.SecretKing = king
		p.Hand = append(p.Hand, king)
		p.SyncHandCount()
		r.logger.Infof("room %s: %s received secret king of %s", r.ID, p.Pseudo, king.Suit)
	}

	if len(r.State.Players) == 3 {
		r.State.GameOptions.ExcludedSuit = kings[3].Suit
		r.logger.Infof("room %s: excluded suit is %s", r.ID, kings[3].Suit)
	}
}

// startDraftPhase opens round 1: builds the first packs, hands them out and
// announces the draft parameters.
func (r *Room) startDraftPhase() {
	playerCount := len(r.State.Players)

	totalCardsNeeded := draftedPerPlayer * playerCount
	perRound := playerCount * draftCardsPerPack
	totalRounds := (totalCardsNeeded + perRound - 1) / perRound

	r.createDraftPacks()
	r.distributeDraftPacks()

	r.broadcast(Event{
		Type: EventDraftStarted,
		Payload: map[string]interface{}{
			"round":        r.draftRound,
			"cardsPerPack": draftCardsPerPack,
			"pickCount":    r.expectedPickCount(playerCount, true),
			"totalRounds":  totalRounds,
		},
	})
	r.syncState()
}

// createDraftPacks pops one 4-card pack per player off the pool. A nearly
// empty pool yields short packs.
func (r *Room) createDraftPacks() {
	playerCount := len(r.State.Players)
	r.draftPacks = make([][]*models.Card, 0, playerCount)
	for i := 0; i < playerCount; i++ {
		pack := make([]*models.Card, 0, draftCardsPerPack)
		for j := 0; j < draftCardsPerPack && len(r.draftCards) > 0; j++ {
			last := len(r.draftCards) - 1
			pack = append(pack, r.draftCards[last])
			r.draftCards = r.draftCards[:last]
		}
		r.draftPacks = append(r.draftPacks, pack)
	}
	r.logger.Debugf("room %s: created %d packs for round %d", r.ID, len(r.draftPacks), r.draftRound)
}

// distributeDraftPacks copies the freshly built packs onto the players and
// tells everyone a pack is waiting.
func (r *Room) distributeDraftPacks() {
	for i, p := range r.State.Players {
		if i >= len(r.draftPacks) {
			break
		}
		p.DraftPack = append([]*models.Card{}, r.draftPacks[i]...)
	}

	r.broadcast(Event{
		Type: EventDraftPackReceived,
		Payload: map[string]interface{}{
			"round":     r.draftRound,
			"pickCount": r.expectedPickCount(len(r.State.Players), true),
		},
	})
}

// expectedPickCount is 1 everywhere except a 3-player first pick from a
// full 4-card pack, which takes 2.
func (r *Room) expectedPickCount(playerCount int, isFirstPick bool) int {
	if playerCount == 3 && isFirstPick {
		return 2
	}
	return 1
}

// handleDraftCards validates and applies one player's pick for the current
// pack.
func (r *Room) handleDraftCards(sessionID string, cardIDs []string) {
	if r.State.Phase != models.PhaseDrafting {
		r.sendError(sessionID, ErrNotDraftingPhase, "The draft phase is not active")
		return
	}
	p := r.playerBySession(sessionID)
	if p == nil {
		r.sendError(sessionID, ErrPlayerNotFound, "Player not found")
		return
	}
	if p.HasPicked {
		r.sendError(sessionID, ErrAlreadyPicked, "You already picked this turn")
		return
	}
	if len(cardIDs) == 0 {
		r.sendError(sessionID, ErrInvalidCardSelection, "Invalid card selection")
		return
	}

	playerCount := len(r.State.Players)
	isFirstPick := len(p.DraftPack) == draftCardsPerPack
	expected := r.expectedPickCount(playerCount, isFirstPick)

	if len(cardIDs) != expected {
		r.sendError(sessionID, ErrWrongPickCount, "You must pick exactly the expected number of cards")
		return
	}

	selected := make([]*models.Card, 0, expected)
	for _, id := range cardIDs {
		var found *models.Card
		for _, c := range p.DraftPack {
			if c.ID == id {
				found = c
				break
			}
		}
		if found == nil {
			r.sendError(sessionID, ErrCardNotInPack, "Card not available in your pack")
			return
		}
		selected = append(selected, found)
	}

	r.markActivity()
	r.logAction(sessionID, "draft_pick", map[string]interface{}{"cardIds": cardIDs})
	r.processDraftSelection(p, selected)
	r.syncState()
}

// processDraftSelection moves the picked cards to the player's hand, stages
// the remainder for rotation and checks the barrier.
func (r *Room) processDraftSelection(p *models.Player, selected []*models.Card) {
	p.Hand = append(p.Hand, selected...)

	remaining := make([]*models.Card, 0, len(p.DraftPack))
	for _, c := range p.DraftPack {
		picked := false
		for _, s := range selected {
			if s.ID == c.ID {
				picked = true
				break
			}
		}
		if !picked {
			remaining = append(remaining, c)
		}
	}
	r.pendingRemaining[p.SessionID] = remaining

	p.HasPicked = true
	p.SyncHandCount()
	p.DraftPack = p.DraftPack[:0]

	r.logger.Infof("room %s: %s picked %d cards, %d pending redistribution", r.ID, p.Pseudo, len(selected), len(remaining))

	r.checkAllPlayersPicked()
}

// checkAllPlayersPicked is the rotation barrier: leftovers only move once no
// connected player is still holding a pack.
func (r *Room) checkAllPlayersPicked() {
	connected := r.connectedPlayers()

	stillPicking := 0
	withPacks := 0
	for _, p := range connected {
		if len(p.DraftPack) > 0 {
			withPacks++
			if !p.HasPicked {
				stillPicking++
			}
		}
	}

	if stillPicking == 0 && len(r.pendingRemaining) > 0 {
		r.redistributeRemainingCards()
		return
	}

	if withPacks == 0 && len(r.pendingRemaining) == 0 {
		r.checkDraftRoundComplete()
	}
}

// redistributeRemainingCards rotates every staged leftover pack one seat in
// the draft direction. Only fires once every connected player has staged.
func (r *Room) redistributeRemainingCards() {
	connected := r.connectedPlayers()

	staged := 0
	for _, p := range connected {
		if _, ok := r.pendingRemaining[p.SessionID]; ok {
			staged++
		}
	}
	if staged != len(connected) {
		r.logger.Debugf("room %s: rotation barrier not met (%d/%d staged)", r.ID, staged, len(connected))
		return
	}

	rotated := false
	for i, p := range connected {
		remaining := r.pendingRemaining[p.SessionID]
		if len(remaining) == 0 {
			continue
		}
		rotated = true

		nextIdx := (i + r.draftDirection + len(connected)) % len(connected)
		next := connected[nextIdx]

		next.DraftPack = append([]*models.Card{}, remaining...)
		next.HasPicked = false

		r.logger.Debugf("room %s: rotated %d cards from %s to %s", r.ID, len(remaining), p.Pseudo, next.Pseudo)

		r.sendToPlayer(next.SessionID, Event{
			Type: EventDraftPackReceived,
			Payload: map[string]interface{}{
				"round":      r.draftRound,
				"cardsCount": len(remaining),
				"pickCount":  r.expectedPickCount(len(r.State.Players), len(remaining) == draftCardsPerPack),
			},
		})
	}

	r.pendingRemaining = make(map[string][]*models.Card)

	if !rotated {
		r.checkDraftRoundComplete()
	}
}

// checkDraftRoundComplete ends the round once no cards remain in circulation.
func (r *Room) checkDraftRoundComplete() {
	for _, p := range r.State.Players {
		if len(p.DraftPack) > 0 {
			return
		}
	}
	if len(r.pendingRemaining) > 0 {
		return
	}
	r.completeDraftRound()
}

// completeDraftRound resets per-round pick state then either finalizes the
// draft or opens the next round.
func (r *Room) completeDraftRound() {
	r.logger.Infof("room %s: draft round %d complete", r.ID, r.draftRound)

	for _, p := range r.State.Players {
		p.HasPicked = false
		p.DraftPack = p.DraftPack[:0]
	}
	r.pendingRemaining = make(map[string][]*models.Card)

	if r.isDraftComplete() {
		r.finalizeDraft()
	} else {
		r.startNextDraftRound()
	}
}

// isDraftComplete: every hand reached the target size, or the pool can no
// longer fill a full round of packs.
func (r *Room) isDraftComplete() bool {
	allFull := true
	for _, p := range r.State.Players {
		if len(p.Hand) < draftTargetHand {
			allFull = false
			break
		}
	}
	poolExhausted := len(r.draftCards) < len(r.State.Players)*draftCardsPerPack
	return allFull || poolExhausted
}

func (r *Room) startNextDraftRound() {
	r.draftRound++
	r.logger.Infof("room %s: starting draft round %d", r.ID, r.draftRound)
	r.createDraftPacks()
	r.distributeDraftPacks()
}

// finalizeDraft transitions drafting -> playing.
func (r *Room) finalizeDraft() {
	r.State.Phase = models.PhasePlaying
	r.State.CurrentPlayerIndex = 0
	r.State.DiscardPile = []*models.Card{}

	r.broadcast(Event{
		Type: EventDraftComplete,
		Payload: map[string]interface{}{
			"message":       "Draft phase complete, the game begins",
			"currentPlayer": r.State.Players[0].SessionID,
		},
	})
	r.logger.Infof("room %s: draft complete, %s starts", r.ID, r.State.Players[0].Pseudo)
}

// skipToPlayingPhase deals 12 random pool cards per player and jumps
// straight to playing. Debug path, gated by Room.SkipDraft.
func (r *Room) skipToPlayingPhase() {
	for _, p := range r.State.Players {
		for i := 0; i < draftedPerPlayer && len(r.draftCards) > 0; i++ {
			idx := r.rng.Intn(len(r.draftCards))
			card := r.draftCards[idx]
			r.draftCards = append(r.draftCards[:idx], r.draftCards[idx+1:]...)
			p.Hand = append(p.Hand, card)
		}
		p.SyncHandCount()
	}

	r.State.Phase = models.PhasePlaying
	r.State.CurrentPlayerIndex = 0
	r.State.Turn = 1
	r.State.DiscardPile = []*models.Card{}

	if len(r.State.Players) > 0 {
		r.broadcast(Event{
			Type: EventDraftComplete,
			Payload: map[string]interface{}{
				"message":       "Draft phase skipped, the game begins",
				"currentPlayer": r.State.Players[0].SessionID,
			},
		})
	}
	r.syncState()
}
