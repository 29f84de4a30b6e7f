// internal/game/gameplay.go
package game

import "regicide-server/internal/models"

// handlePlayCard runs the full play pipeline for one card: shared
// validations, action dispatch, then turn finalization on success. A panic
// inside an action handler is caught here and surfaced to the acting client
// only; room state was not partially mutated before the failing step.
func (r *Room) handlePlayCard(sessionID string, msg models.InboundMessage) {
	if r.State.Phase != models.PhasePlaying {
		r.sendError(sessionID, ErrGameNotPlaying, "The game is not in progress")
		return
	}
	if !r.isPlayerTurn(sessionID) {
		r.sendError(sessionID, ErrNotYourTurn, "It is not your turn")
		return
	}
	p := r.playerBySession(sessionID)
	if p == nil {
		r.sendError(sessionID, ErrPlayerNotFound, "Player not found")
		return
	}
	if msg.CardID == "" || msg.Action == "" || msg.Target == nil {
		r.sendError(sessionID, ErrInvalidPlayMessage, "Invalid play message")
		return
	}
	card := p.HandCard(msg.CardID)
	if card == nil {
		r.sendError(sessionID, ErrCardNotInHand, "That card is not in your hand")
		return
	}

	ok := false
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Errorf("room %s: play_card panic from %s: %v", r.ID, sessionID, rec)
				r.sendError(sessionID, ErrPlayCardError, "Error while playing the card")
				ok = false
			}
		}()
		switch msg.Action {
		case models.ActionPlace:
			ok = r.handlePlace(p, card, msg.Target)
		case models.ActionReplace:
			ok = r.handleReplace(p, card, msg.Target)
		case models.ActionSpecialPower:
			ok = r.handleSpecialPower(p, card, msg.Target)
		default:
			r.sendError(sessionID, ErrInvalidAction, "Invalid action")
		}
	}()

	if ok {
		r.logAction(sessionID, "play_card", map[string]interface{}{
			"cardId": msg.CardID,
			"action": string(msg.Action),
		})
		r.finalizeTurn(p, card)
		r.syncState()
	}
}

// handlePlace puts a card from hand onto an empty pyramid slot.
func (r *Room) handlePlace(p *models.Player, card *models.Card, target *models.PlayTarget) bool {
	row, col := target.Row, target.Col
	existing := r.State.Pyramid.Get(row, col)
	if existing == nil {
		r.sendError(p.SessionID, ErrInvalidPosition, "Invalid pyramid position")
		return false
	}
	if !existing.IsEmpty {
		r.sendError(p.SessionID, ErrPositionOccupied, "That slot is already occupied")
		return false
	}
	if !r.canPlaceAt(card, row, col) {
		r.sendError(p.SessionID, ErrInvalidPlacement, "Placement violates the support rule")
		return false
	}

	r.State.Pyramid.Set(row, col, card)
	r.logger.Infof("room %s: %s placed %s of %s at (%d,%d)", r.ID, p.Pseudo, card.Rank, card.Suit, row, col)

	r.broadcast(Event{
		Type: EventCardPlaced,
		Payload: map[string]interface{}{
			"playerSessionId": p.SessionID,
			"pseudo":          p.Pseudo,
			"card":            cardPayload(card),
			"position":        map[string]interface{}{"row": row, "col": col},
		},
	})
	return true
}

// handleReplace swaps a card from hand for an occupied slot, discarding the
// displaced card. Structural support is not re-checked; it was validated
// when the displaced card arrived.
func (r *Room) handleReplace(p *models.Player, card *models.Card, target *models.PlayTarget) bool {
	row, col := target.Row, target.Col
	existing := r.State.Pyramid.Get(row, col)
	if existing == nil {
		r.sendError(p.SessionID, ErrInvalidPosition, "Invalid pyramid position")
		return false
	}
	if existing.IsEmpty {
		r.sendError(p.SessionID, ErrNoCardToReplace, "No card to replace at that position")
		return false
	}
	if !canReplaceAt(card, existing, row) {
		r.sendError(p.SessionID, ErrCannotReplaceCard, "That card cannot replace the existing card")
		return false
	}

	existing.Position = nil
	r.State.DiscardPile = append(r.State.DiscardPile, existing)
	r.State.Pyramid.Set(row, col, card)
	r.logger.Infof("room %s: %s replaced %s of %s with %s of %s at (%d,%d)",
		r.ID, p.Pseudo, existing.Rank, existing.Suit, card.Rank, card.Suit, row, col)

	r.broadcast(Event{
		Type: EventCardReplaced,
		Payload: map[string]interface{}{
			"playerSessionId": p.SessionID,
			"pseudo":          p.Pseudo,
			"newCard":         cardPayload(card),
			"replacedCard":    cardPayload(existing),
			"position":        map[string]interface{}{"row": row, "col": col},
		},
	})
	return true
}

// handleSpecialPower executes the base place/replace first; the power only
// resolves if the base action succeeded, so a failed base leaves no trace.
func (r *Room) handleSpecialPower(p *models.Player, card *models.Card, target *models.PlayTarget) bool {
	var baseOK bool
	switch target.BaseAction {
	case models.ActionPlace:
		baseOK = r.handlePlace(p, card, target)
	case models.ActionReplace:
		baseOK = r.handleReplace(p, card, target)
	default:
		r.sendError(p.SessionID, ErrInvalidBaseAction, "Invalid base action for a special power")
		return false
	}
	if !baseOK {
		return false
	}

	switch card.Type() {
	case models.TypeQueen:
		return r.handleQueenPower(p, target)
	case models.TypeJack:
		return r.handleJackPower(p, target)
	case models.TypeAce, models.TypeKing:
		// No effect beyond the base action.
		return true
	default:
		r.sendError(p.SessionID, ErrNotSpecialCard, "That card has no special power")
		return false
	}
}

// handleQueenPower swaps the positions of two existing pyramid cards. Pure
// position swap, no support or hierarchy re-validation.
func (r *Room) handleQueenPower(p *models.Player, target *models.PlayTarget) bool {
	if len(target.ExchangeTargets) != 2 {
		r.sendError(p.SessionID, ErrInvalidQueenTargets, "The queen needs exactly 2 cards to exchange")
		return false
	}
	pos1, pos2 := target.ExchangeTargets[0], target.ExchangeTargets[1]
	card1 := r.State.Pyramid.Get(pos1.Row, pos1.Col)
	card2 := r.State.Pyramid.Get(pos2.Row, pos2.Col)
	if card1 == nil || card2 == nil || card1.IsEmpty || card2.IsEmpty {
		r.sendError(p.SessionID, ErrInvalidExchangeCards, "Both positions must hold real cards")
		return false
	}

	r.State.Pyramid.Set(pos1.Row, pos1.Col, card2)
	r.State.Pyramid.Set(pos2.Row, pos2.Col, card1)
	r.logger.Infof("room %s: %s used queen power, swapped (%d,%d) and (%d,%d)",
		r.ID, p.Pseudo, pos1.Row, pos1.Col, pos2.Row, pos2.Col)

	r.broadcast(Event{
		Type: EventQueenPowerUsed,
		Payload: map[string]interface{}{
			"playerSessionId":    p.SessionID,
			"pseudo":             p.Pseudo,
			"exchangedPositions": []models.Position{pos1, pos2},
		},
	})
	return true
}

// handleJackPower gives a hand card to a target player and pulls back a
// uniformly random card from their hand, never the one just given. A target
// left with only the given card turns the exchange into a pure gift.
func (r *Room) handleJackPower(p *models.Player, target *models.PlayTarget) bool {
	if target.GiveCardID == "" || target.TargetPlayerID == "" {
		r.sendError(p.SessionID, ErrInvalidJackTargets, "The jack needs a card to give and a target player")
		return false
	}
	targetPlayer := r.playerBySession(target.TargetPlayerID)
	if targetPlayer == nil || targetPlayer.SessionID == p.SessionID {
		r.sendError(p.SessionID, ErrTargetPlayerNotFound, "Target player not found")
		return false
	}
	give := p.HandCard(target.GiveCardID)
	if give == nil {
		r.sendError(p.SessionID, ErrCardToGiveNotFound, "Card to give not found in your hand")
		return false
	}

	p.RemoveFromHand(give.ID)
	targetPlayer.Hand = append(targetPlayer.Hand, give)

	candidates := make([]*models.Card, 0, len(targetPlayer.Hand))
	for _, c := range targetPlayer.Hand {
		if c.ID != give.ID {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) > 0 {
		received := candidates[r.rng.Intn(len(candidates))]
		targetPlayer.RemoveFromHand(received.ID)
		p.Hand = append(p.Hand, received)
	}
	p.SyncHandCount()
	targetPlayer.SyncHandCount()
	r.logger.Infof("room %s: %s used jack power on %s", r.ID, p.Pseudo, targetPlayer.Pseudo)

	r.broadcast(Event{
		Type: EventJackPowerUsed,
		Payload: map[string]interface{}{
			"playerSessionId":       p.SessionID,
			"pseudo":                p.Pseudo,
			"targetPlayerSessionId": targetPlayer.SessionID,
			"targetPseudo":          targetPlayer.Pseudo,
		},
	})
	return true
}

// finalizeTurn removes the played card from hand, checks the end condition
// and advances to the next connected player.
func (r *Room) finalizeTurn(p *models.Player, played *models.Card) {
	p.RemoveFromHand(played.ID)
	r.markActivity()

	if !r.TestMode && r.checkGameEnd() {
		return
	}
	r.nextPlayer()
}

// nextPlayer advances currentPlayerIndex to the next connected player in
// seat order, wrapping, and bumps the turn counter.
func (r *Room) nextPlayer() {
	if r.connectedCount() == 0 {
		r.endGame("No connected players")
		return
	}

	n := len(r.State.Players)
	for attempts := 0; attempts < n; attempts++ {
		r.State.CurrentPlayerIndex = (r.State.CurrentPlayerIndex + 1) % n
		if r.State.Players[r.State.CurrentPlayerIndex].IsConnected {
			break
		}
	}
	r.State.Turn++

	cur := r.currentPlayer()
	r.logger.Infof("room %s: turn %d, %s to play", r.ID, r.State.Turn, cur.Pseudo)
	r.broadcast(Event{
		Type: EventTurnChanged,
		Payload: map[string]interface{}{
			"currentPlayerSessionId": cur.SessionID,
			"currentPseudo":          cur.Pseudo,
			"turn":                   r.State.Turn,
		},
	})
}

// handlePassTurn lets the current player skip only when no card in their
// hand has any legal target.
func (r *Room) handlePassTurn(sessionID string) {
	if r.State.Phase != models.PhasePlaying {
		r.sendError(sessionID, ErrGameNotPlaying, "The game is not in progress")
		return
	}
	if !r.isPlayerTurn(sessionID) {
		r.sendError(sessionID, ErrNotYourTurn, "It is not your turn")
		return
	}
	p := r.playerBySession(sessionID)
	if p == nil {
		r.sendError(sessionID, ErrPlayerNotFound, "Player not found")
		return
	}
	if r.canPlayerPlay(p) {
		r.sendError(sessionID, ErrCanStillPlay, "You still have a legal play")
		return
	}

	r.markActivity()
	r.logAction(sessionID, "pass_turn", nil)
	r.logger.Infof("room %s: %s passes", r.ID, p.Pseudo)

	r.nextPlayer()
	if !r.TestMode {
		r.checkGameEnd()
	}
	r.syncState()
}

func cardPayload(c *models.Card) map[string]interface{} {
	return map[string]interface{}{
		"id":    c.ID,
		"value": c.NumericValue,
		"suit":  string(c.Suit),
		"type":  string(c.Type()),
	}
}
