package main

import (
	"fmt"

	"sweeper-lite/board"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string `env:"SWEEPER_ADDR,default=:3002" validate:"required"`
	NounsPath         string `env:"SWEEPER_NOUNS_PATH,default=data/animals.txt"`
	AdjectivesPath    string `env:"SWEEPER_ADJECTIVES_PATH,default=data/adjectives.txt"`
	BoardWidth        uint16 `env:"SWEEPER_BOARD_WIDTH,default=20" validate:"min=1,max=100"`
	BoardHeight       uint16 `env:"SWEEPER_BOARD_HEIGHT,default=20" validate:"min=1,max=100"`
	BoardMines        uint32 `env:"SWEEPER_BOARD_MINES,default=80"`
	TrustProxyHeaders bool   `env:"SWEEPER_TRUST_PROXY_HEADERS,default=true"`
	LedgerMode        string `env:"SWEEPER_LEDGER_MODE,default=memory" validate:"oneof=off memory sqlite postgres"`
	LedgerSQLitePath  string `env:"SWEEPER_LEDGER_SQLITE_PATH,default=data/sweeper.db" validate:"required_if=LedgerMode sqlite"`
	LedgerDSN         string `env:"SWEEPER_LEDGER_DSN"`
	LedgerRetain      int    `env:"SWEEPER_LEDGER_RETAIN,default=500" validate:"min=1"`
	OutboundBuffer    int    `env:"SWEEPER_OUTBOUND_BUFFER,default=1024" validate:"min=16"`
}

var validate = validator.New()

// loadConfig reads an optional .env file, then the environment.
func loadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Board().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Board() board.Config {
	return board.Config{Width: c.BoardWidth, Height: c.BoardHeight, Mines: c.BoardMines}
}
