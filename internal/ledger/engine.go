// Package ledger implements the scoring core: atomic round settlement against
// the storage collaborator, and snapshot recomputation for the update broker.
package ledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

const playersPerGame = 4

type Engine struct {
	store     Store
	publisher Publisher
}

func NewEngine(store Store, publisher Publisher) *Engine {
	return &Engine{store: store, publisher: publisher}
}

// CreateGame creates a game and its four players in one transaction.
func (e *Engine) CreateGame(ctx context.Context, playerNames []string) (GameWithPlayers, error) {
	if len(playerNames) != playersPerGame {
		return GameWithPlayers{}, fmt.Errorf("%w: exactly four player names are required", ErrInvalidInput)
	}

	var created GameWithPlayers
	err := e.store.Transact(ctx, func(tx Store) error {
		game, err := tx.CreateGame(ctx)
		if err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		players := make([]Player, 0, playersPerGame)
		for _, name := range playerNames {
			player, err := tx.CreatePlayer(ctx, name, 0, game.ID)
			if err != nil {
				return fmt.Errorf("create player %q: %w", name, err)
			}
			players = append(players, player)
		}
		if err := tx.RecordEvent(ctx, game.ID, nil, "game_created", EventPayload{PlayerNames: playerNames}); err != nil {
			return fmt.Errorf("record event: %w", err)
		}
		created = GameWithPlayers{Game: game, Players: players}
		return nil
	})
	if err != nil {
		return GameWithPlayers{}, err
	}
	return created, nil
}

// SettleRound records one round as a single atomic unit: the round row, one
// result per player, and the four balance adjustments. Either everything
// commits or nothing does; no observer ever sees a partial round. On commit
// the refreshed snapshot is handed to the publisher.
func (e *Engine) SettleRound(ctx context.Context, gameID uint, bet int, entries []ResultEntry) (RoundDetails, error) {
	if len(entries) != playersPerGame {
		return RoundDetails{}, fmt.Errorf("%w: exactly four player results are required", ErrInvalidInput)
	}

	var details RoundDetails
	err := e.store.Transact(ctx, func(tx Store) error {
		exists, err := tx.GameExists(ctx, gameID)
		if err != nil {
			return fmt.Errorf("check game %d: %w", gameID, err)
		}
		if !exists {
			return fmt.Errorf("game %d: %w", gameID, ErrGameNotFound)
		}

		round, err := tx.CreateRound(ctx, bet, gameID)
		if err != nil {
			return fmt.Errorf("create round: %w", err)
		}

		players := make([]Player, 0, playersPerGame)
		results := make([]Result, 0, playersPerGame)
		for _, entry := range entries {
			player, err := tx.GetPlayer(ctx, entry.PlayerID)
			if err != nil {
				return fmt.Errorf("player %d: %w", entry.PlayerID, err)
			}
			if player.GameID != gameID {
				return fmt.Errorf("player %d belongs to game %d: %w", player.ID, player.GameID, ErrPlayerNotFound)
			}
			player.Balance += entry.Profit
			if err := tx.SetPlayerBalance(ctx, player.ID, player.Balance); err != nil {
				return fmt.Errorf("update balance for player %d: %w", player.ID, err)
			}
			result, err := tx.CreateResult(ctx, entry.Profit, round.ID, player.ID)
			if err != nil {
				return fmt.Errorf("create result for player %d: %w", player.ID, err)
			}
			players = append(players, player)
			results = append(results, result)
		}

		if err := tx.RecordEvent(ctx, gameID, &round.ID, "round_settled", EventPayload{Bet: bet}); err != nil {
			return fmt.Errorf("record event: %w", err)
		}
		details = RoundDetails{Round: round, Players: players, Results: results}
		return nil
	})
	if err != nil {
		return RoundDetails{}, err
	}

	e.publishSnapshot(ctx, gameID)
	return details, nil
}

func (e *Engine) publishSnapshot(ctx context.Context, gameID uint) {
	if e.publisher == nil {
		return
	}
	snapshot, err := e.Snapshot(ctx, gameID)
	if err != nil {
		log.Error().Err(err).Uint("game_id", gameID).Msg("snapshot recompute after settlement failed")
		return
	}
	e.publisher.Publish(gameID, snapshot)
}

// Snapshot re-derives the full game view from storage: players, rounds in
// creation order, and results grouped by round.
func (e *Engine) Snapshot(ctx context.Context, gameID uint) (Snapshot, error) {
	exists, err := e.store.GameExists(ctx, gameID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("check game %d: %w", gameID, err)
	}
	if !exists {
		return Snapshot{}, fmt.Errorf("game %d: %w", gameID, ErrGameNotFound)
	}

	players, err := e.store.ListPlayers(ctx, gameID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list players: %w", err)
	}
	rounds, err := e.store.ListRounds(ctx, gameID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list rounds: %w", err)
	}

	roundIDs := make([]uint, 0, len(rounds))
	for _, round := range rounds {
		roundIDs = append(roundIDs, round.ID)
	}
	var results []Result
	if len(roundIDs) > 0 {
		results, err = e.store.ListResultsByRoundIDs(ctx, roundIDs)
		if err != nil {
			return Snapshot{}, fmt.Errorf("list results: %w", err)
		}
	}
	resultsByRound := make(map[uint][]Result, len(rounds))
	for _, result := range results {
		resultsByRound[result.RoundID] = append(resultsByRound[result.RoundID], result)
	}

	grouped := make([]RoundWithResults, 0, len(rounds))
	for _, round := range rounds {
		roundResults := resultsByRound[round.ID]
		if roundResults == nil {
			roundResults = []Result{}
		}
		grouped = append(grouped, RoundWithResults{
			RoundID: round.ID,
			Bet:     round.Bet,
			Results: roundResults,
		})
	}

	return Snapshot{Game: Game{ID: gameID}, Players: players, Rounds: grouped}, nil
}

func (e *Engine) GameExists(ctx context.Context, gameID uint) (bool, error) {
	return e.store.GameExists(ctx, gameID)
}
