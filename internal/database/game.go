// internal/database/game.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RecordGameResults persists the final outcome of a finished room: one games
// row plus one game_results row per seat. Safe to call more than once; both
// writes upsert.
func RecordGameResults(ctx context.Context, roomID uuid.UUID, winnerSession string, scores map[string]int) error {
	if DB == nil {
		return nil
	}

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, winner_session)
			VALUES ($1, 'completed', $2)
			ON CONFLICT (id) DO UPDATE SET status = 'completed', winner_session = $2
		`
		if _, e := tx.Exec(ctx, upsertGame, roomID, winnerSession); e != nil {
			return e
		}

		for session, score := range scores {
			q := `
				INSERT INTO game_results (game_id, session_id, score, did_win)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (game_id, session_id)
				DO UPDATE SET score=$3, did_win=$4
			`
			if _, e := tx.Exec(ctx, q, roomID, session, score, session == winnerSession); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}
