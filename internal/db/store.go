package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mahjong-ledger/internal/ledger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store implements ledger.Store on a GORM connection. Inside Transact all
// methods run against the transaction handle, so the engine's unit of work
// maps directly onto a database transaction.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) Transact(ctx context.Context, fn func(ledger.Store) error) error {
	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{conn: tx})
	})
}

func (s *Store) CreateGame(ctx context.Context) (ledger.Game, error) {
	record := Game{}
	if err := s.conn.WithContext(ctx).Create(&record).Error; err != nil {
		return ledger.Game{}, err
	}
	return ledger.Game{ID: record.ID}, nil
}

func (s *Store) GameExists(ctx context.Context, gameID uint) (bool, error) {
	var count int64
	err := s.conn.WithContext(ctx).Model(&Game{}).Where("id = ?", gameID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreatePlayer(ctx context.Context, name string, balance int, gameID uint) (ledger.Player, error) {
	exists, err := s.GameExists(ctx, gameID)
	if err != nil {
		return ledger.Player{}, err
	}
	if !exists {
		return ledger.Player{}, fmt.Errorf("game %d: %w", gameID, ledger.ErrGameNotFound)
	}
	record := Player{GameID: gameID, Name: name, Balance: balance}
	if err := s.conn.WithContext(ctx).Create(&record).Error; err != nil {
		return ledger.Player{}, err
	}
	return toPlayer(record), nil
}

func (s *Store) GetPlayer(ctx context.Context, playerID uint) (ledger.Player, error) {
	var record Player
	err := s.conn.WithContext(ctx).First(&record, playerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ledger.Player{}, ledger.ErrPlayerNotFound
	}
	if err != nil {
		return ledger.Player{}, err
	}
	return toPlayer(record), nil
}

func (s *Store) SetPlayerBalance(ctx context.Context, playerID uint, balance int) error {
	res := s.conn.WithContext(ctx).Model(&Player{}).Where("id = ?", playerID).Update("balance", balance)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ledger.ErrPlayerNotFound
	}
	return nil
}

func (s *Store) CreateRound(ctx context.Context, bet int, gameID uint) (ledger.Round, error) {
	record := Round{GameID: gameID, Bet: bet}
	if err := s.conn.WithContext(ctx).Create(&record).Error; err != nil {
		return ledger.Round{}, err
	}
	return ledger.Round{ID: record.ID, Bet: record.Bet, GameID: record.GameID}, nil
}

func (s *Store) CreateResult(ctx context.Context, profit int, roundID, playerID uint) (ledger.Result, error) {
	record := Result{RoundID: roundID, PlayerID: playerID, Profit: profit}
	if err := s.conn.WithContext(ctx).Create(&record).Error; err != nil {
		return ledger.Result{}, err
	}
	return toResult(record), nil
}

func (s *Store) ListPlayers(ctx context.Context, gameID uint) ([]ledger.Player, error) {
	var records []Player
	err := s.conn.WithContext(ctx).Where("game_id = ?", gameID).Order("id").Find(&records).Error
	if err != nil {
		return nil, err
	}
	players := make([]ledger.Player, 0, len(records))
	for _, record := range records {
		players = append(players, toPlayer(record))
	}
	return players, nil
}

func (s *Store) ListRounds(ctx context.Context, gameID uint) ([]ledger.Round, error) {
	var records []Round
	err := s.conn.WithContext(ctx).Where("game_id = ?", gameID).Order("id").Find(&records).Error
	if err != nil {
		return nil, err
	}
	rounds := make([]ledger.Round, 0, len(records))
	for _, record := range records {
		rounds = append(rounds, ledger.Round{ID: record.ID, Bet: record.Bet, GameID: record.GameID})
	}
	return rounds, nil
}

func (s *Store) ListResultsByRoundIDs(ctx context.Context, roundIDs []uint) ([]ledger.Result, error) {
	if len(roundIDs) == 0 {
		return nil, nil
	}
	var records []Result
	err := s.conn.WithContext(ctx).Where("round_id IN ?", roundIDs).Order("id").Find(&records).Error
	if err != nil {
		return nil, err
	}
	results := make([]ledger.Result, 0, len(records))
	for _, record := range records {
		results = append(results, toResult(record))
	}
	return results, nil
}

func (s *Store) RecordEvent(ctx context.Context, gameID uint, roundID *uint, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := Event{
		GameID:  gameID,
		RoundID: roundID,
		Type:    eventType,
		Payload: datatypes.JSON(data),
	}
	return s.conn.WithContext(ctx).Create(&event).Error
}

func toPlayer(record Player) ledger.Player {
	return ledger.Player{
		ID:      record.ID,
		Name:    record.Name,
		Balance: record.Balance,
		GameID:  record.GameID,
	}
}

func toResult(record Result) ledger.Result {
	return ledger.Result{
		ID:       record.ID,
		Profit:   record.Profit,
		RoundID:  record.RoundID,
		PlayerID: record.PlayerID,
	}
}
