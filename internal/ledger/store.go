package ledger

import "context"

// Store is the storage collaborator the engine drives. Implementations must
// translate their own not-found conditions into ErrGameNotFound and
// ErrPlayerNotFound so the engine can classify failures.
type Store interface {
	// Transact runs fn against a store whose writes commit or roll back as
	// one unit. Isolation between concurrently committed units is the
	// implementation's responsibility.
	Transact(ctx context.Context, fn func(Store) error) error

	CreateGame(ctx context.Context) (Game, error)
	GameExists(ctx context.Context, gameID uint) (bool, error)

	CreatePlayer(ctx context.Context, name string, balance int, gameID uint) (Player, error)
	GetPlayer(ctx context.Context, playerID uint) (Player, error)
	SetPlayerBalance(ctx context.Context, playerID uint, balance int) error

	CreateRound(ctx context.Context, bet int, gameID uint) (Round, error)
	CreateResult(ctx context.Context, profit int, roundID, playerID uint) (Result, error)

	ListPlayers(ctx context.Context, gameID uint) ([]Player, error)
	ListRounds(ctx context.Context, gameID uint) ([]Round, error)
	ListResultsByRoundIDs(ctx context.Context, roundIDs []uint) ([]Result, error)

	// RecordEvent appends an audit row; payload is marshalled to JSON.
	RecordEvent(ctx context.Context, gameID uint, roundID *uint, eventType string, payload any) error
}

// Publisher receives the refreshed snapshot after a settlement commits.
type Publisher interface {
	Publish(gameID uint, snapshot Snapshot)
}
