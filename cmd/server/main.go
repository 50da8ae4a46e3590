package main

import (
	"net/http"
	"os"
	"time"

	"mahjong-ledger/internal/broadcast"
	"mahjong-ledger/internal/config"
	"mahjong-ledger/internal/db"
	"mahjong-ledger/internal/ledger"
	"mahjong-ledger/internal/logging"
	"mahjong-ledger/internal/server"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})

	conn, err := db.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	store := db.NewStore(conn)
	broker := broadcast.NewBroker(time.Duration(cfg.TopicGraceSeconds) * time.Second)
	engine := ledger.NewEngine(store, broker)
	srv := server.New(engine, broker, cfg)

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Info().Str("addr", addr).Msg("mahjong-ledger server listening")
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
