package ledger

// Domain types mirror the persisted entities. JSON field names are the wire
// format clients already speak, so they stay camelCase.

type Game struct {
	ID uint `json:"id"`
}

type Player struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Balance int    `json:"balance"`
	GameID  uint   `json:"gameId"`
}

type Round struct {
	ID     uint `json:"id"`
	Bet    int  `json:"bet"`
	GameID uint `json:"gameId"`
}

type Result struct {
	ID       uint `json:"id"`
	Profit   int  `json:"profit"`
	RoundID  uint `json:"roundId"`
	PlayerID uint `json:"playerId"`
}

// RoundWithResults groups a round with its four results for snapshot delivery.
type RoundWithResults struct {
	RoundID uint     `json:"roundId"`
	Bet     int      `json:"bet"`
	Results []Result `json:"results"`
}

// Snapshot is the full derived view of a game, recomputed from storage on
// every publish and on every stream join.
type Snapshot struct {
	Game    Game               `json:"game"`
	Players []Player           `json:"players"`
	Rounds  []RoundWithResults `json:"roundWithResults"`
}

// GameWithPlayers is the create-game response payload.
type GameWithPlayers struct {
	Game    Game     `json:"game"`
	Players []Player `json:"players"`
}

// RoundDetails is the settle-round response payload: the committed round, the
// players with their updated balances, and the created results.
type RoundDetails struct {
	Round   Round    `json:"round"`
	Players []Player `json:"players"`
	Results []Result `json:"results"`
}

// ResultEntry is one player's declared profit (or loss) for a round.
type ResultEntry struct {
	PlayerID uint `json:"playerId" binding:"required"`
	Profit   int  `json:"profit"`
}
