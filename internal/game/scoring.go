// internal/game/scoring.go
package game

import "regicide-server/internal/models"

// checkGameEnd evaluates the end conditions after a successful play or
// pass: every hand empty, or at most one connected player still has a legal
// action left. Returns true when the game was ended.
func (r *Room) checkGameEnd() bool {
	allEmpty := true
	for _, p := range r.State.Players {
		if len(p.Hand) > 0 {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		r.logger.Infof("room %s: ending, all hands empty", r.ID)
		r.endGameAndCalculateScores()
		return true
	}

	canPlay := 0
	for _, p := range r.State.Players {
		if p.IsConnected && len(p.Hand) > 0 && r.canPlayerPlay(p) {
			canPlay++
		}
	}
	if canPlay <= 1 {
		r.logger.Infof("room %s: ending, %d players can still play", r.ID, canPlay)
		r.endGameAndCalculateScores()
		return true
	}
	return false
}

// endGameAndCalculateScores freezes the game, scores every player from the
// final pyramid and announces the winner with the full breakdown, secret
// kings revealed.
func (r *Room) endGameAndCalculateScores() {
	for _, p := range r.State.Players {
		p.Score = r.calculatePlayerScore(p)
		r.logger.Infof("room %s: %s final score %d", r.ID, p.Pseudo, p.Score)
	}

	if len(r.State.Players) == 0 {
		r.State.Phase = models.PhaseFinished
		return
	}

	// Strict max; ties resolve to the first player encountered in seat order.
	winner := r.State.Players[0]
	for _, p := range r.State.Players[1:] {
		if p.Score > winner.Score {
			winner = p
		}
	}

	r.State.Winner = winner.SessionID
	r.State.Phase = models.PhaseFinished
	r.logger.Infof("room %s: finished, winner %s with %d points", r.ID, winner.Pseudo, winner.Score)
	r.logAction("", "game_finished", map[string]interface{}{"winner": winner.SessionID})

	finalScores := make([]map[string]interface{}, 0, len(r.State.Players))
	scores := make(map[string]int, len(r.State.Players))
	for _, p := range r.State.Players {
		scores[p.SessionID] = p.Score
		entry := map[string]interface{}{
			"sessionId": p.SessionID,
			"pseudo":    p.Pseudo,
			"score":     p.Score,
		}
		if p.SecretKing != nil {
			entry["secretKing"] = map[string]interface{}{
				"suit":  string(p.SecretKing.Suit),
				"value": p.SecretKing.NumericValue,
			}
		}
		finalScores = append(finalScores, entry)
	}

	r.broadcast(Event{
		Type: EventGameFinished,
		Payload: map[string]interface{}{
			"winner": map[string]interface{}{
				"sessionId": winner.SessionID,
				"pseudo":    winner.Pseudo,
				"score":     winner.Score,
			},
			"finalScores": finalScores,
		},
	})

	if r.OnGameEnd != nil {
		go r.OnGameEnd(r.ID, winner.SessionID, scores)
	}
}

// calculatePlayerScore sums numericValue * row multiplier over all pyramid
// cards matching the player's secret-king suit. An excluded suit (3-player
// games) scores zero no matter what is on the board.
func (r *Room) calculatePlayerScore(p *models.Player) int {
	if p.SecretKing == nil {
		return 0
	}
	suit := p.SecretKing.Suit
	if r.State.GameOptions.ExcludedSuit == suit {
		return 0
	}

	total := 0
	for row := 1; row <= 4; row++ {
		for _, card := range r.State.Pyramid.Row(row) {
			if card != nil && !card.IsEmpty && card.Suit == suit {
				total += card.NumericValue * row
			}
		}
	}
	return total
}

// endGame force-finishes the game without scoring (e.g. too few players
// left). The reason is broadcast verbatim.
func (r *Room) endGame(reason string) {
	if r.State.Phase == models.PhaseFinished {
		return
	}
	r.State.Phase = models.PhaseFinished
	r.logger.Infof("room %s: ended: %s", r.ID, reason)
	r.logAction("", "game_ended", map[string]interface{}{"reason": reason})
	r.broadcast(Event{
		Type:    EventGameEnded,
		Payload: map[string]interface{}{"reason": reason},
	})
}
