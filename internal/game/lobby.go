// internal/game/lobby.go
package game

import "regicide-server/internal/models"

// handlePlayerReady marks a waiting player as ready and starts the game if
// the start condition is now met.
func (r *Room) handlePlayerReady(sessionID string) {
	if r.State.Phase != models.PhaseWaiting {
		r.sendError(sessionID, ErrGameAlreadyStarted, "The game has already started")
		return
	}
	p := r.playerBySession(sessionID)
	if p == nil {
		r.sendError(sessionID, ErrPlayerNotFound, "Player not found")
		return
	}
	if p.IsReady {
		r.sendError(sessionID, ErrAlreadyReady, "You are already ready")
		return
	}

	p.IsReady = true
	r.markActivity()
	r.logAction(sessionID, "player_ready", nil)

	r.broadcast(Event{
		Type: EventPlayerReadyUpdate,
		Payload: map[string]interface{}{
			"playerSessionId": sessionID,
			"pseudo":          p.Pseudo,
			"isReady":         true,
			"readyCount":      r.readyCount(),
			"totalPlayers":    r.connectedCount(),
		},
	})
	r.logger.Infof("room %s: %s is ready (%d/%d)", r.ID, p.Pseudo, r.readyCount(), r.connectedCount())

	r.checkGameStart()
	r.syncState()
}

// handlePlayerNotReady reverses a ready mark while still waiting.
func (r *Room) handlePlayerNotReady(sessionID string) {
	if r.State.Phase != models.PhaseWaiting {
		r.sendError(sessionID, ErrGameAlreadyStarted, "The game has already started")
		return
	}
	p := r.playerBySession(sessionID)
	if p == nil {
		r.sendError(sessionID, ErrPlayerNotFound, "Player not found")
		return
	}
	if !p.IsReady {
		r.sendError(sessionID, ErrNotReady, "You were not ready")
		return
	}

	p.IsReady = false
	r.markActivity()
	r.logAction(sessionID, "player_not_ready", nil)

	r.broadcast(Event{
		Type: EventPlayerReadyUpdate,
		Payload: map[string]interface{}{
			"playerSessionId": sessionID,
			"pseudo":          p.Pseudo,
			"isReady":         false,
			"readyCount":      r.readyCount(),
			"totalPlayers":    r.connectedCount(),
		},
	})
	r.logger.Infof("room %s: %s is no longer ready (%d/%d)", r.ID, p.Pseudo, r.readyCount(), r.connectedCount())
	r.syncState()
}

// checkGameStart starts the game when the connected-player count exactly
// matches the configured seat count and every one of them is ready.
// Otherwise a waiting_for_players status is broadcast.
func (r *Room) checkGameStart() {
	if r.State.Phase != models.PhaseWaiting {
		return
	}

	connected := r.connectedCount()
	ready := r.readyCount()
	target := r.State.GameOptions.PlayerCount

	if connected == target && ready == connected {
		r.State.CurrentPlayerIndex = r.rng.Intn(len(r.State.Players))
		r.logger.Infof("room %s: all players ready, starting player is %s", r.ID, r.State.Players[r.State.CurrentPlayerIndex].Pseudo)
		r.startGame()
		return
	}

	r.broadcast(Event{
		Type: EventWaitingForPlayers,
		Payload: map[string]interface{}{
			"readyCount":  ready,
			"totalCount":  connected,
			"targetCount": target,
		},
	})
}

// startGame transitions waiting -> drafting: builds the deck, hands out the
// secret kings and opens the first draft round.
func (r *Room) startGame() {
	r.logger.Infof("room %s: starting game with %d players", r.ID, len(r.State.Players))
	r.logAction("", "game_start", map[string]interface{}{"playerCount": len(r.State.Players)})

	r.setupCards()

	if r.SkipDraft {
		r.logger.Warnf("room %s: draft skipped, dealing directly", r.ID)
		r.skipToPlayingPhase()
		return
	}

	r.State.Phase = models.PhaseDrafting
	r.State.Turn = 1
	r.startDraftPhase()
}

// kickNotReadyPlayers evicts waiting players that never readied up within
// the grace window. Runs on the 5s sweep.
func (r *Room) kickNotReadyPlayers() {
	if r.State.Phase != models.PhaseWaiting {
		return
	}
	now := nowMs()
	kept := r.State.Players[:0]
	for _, p := range r.State.Players {
		if !p.IsReady && now-p.JoinedAt > r.NotReadyKickAfter.Milliseconds() {
			r.logger.Infof("room %s: evicting %s (not ready after %s)", r.ID, p.Pseudo, r.NotReadyKickAfter)
			p.Conn = nil
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) != len(r.State.Players) {
		r.State.Players = kept
		r.syncState()
	}
}

// checkGameContinuation force-ends a started game that can no longer be
// played because too few players remain connected.
func (r *Room) checkGameContinuation() {
	if r.State.Phase == models.PhaseWaiting || r.State.Phase == models.PhaseFinished {
		return
	}
	if r.connectedCount() < 2 {
		r.endGame("Not enough connected players")
	}
}
