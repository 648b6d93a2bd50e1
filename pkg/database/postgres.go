package database

import (
	"database/sql"
	"fmt"

	"github.com/bpadilla17/radladder-game/config"

	_ "github.com/lib/pq"
)

func NewPostgresClient(cfg *config.DBConfig) (*Client, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{
		db:     db,
		driver: DriverPostgres,
	}, nil
}
