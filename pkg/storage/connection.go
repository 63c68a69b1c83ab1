package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"igcrawler/pkg/config"
	"igcrawler/pkg/logger"
)

// Open connects to PostgreSQL and verifies the connection
func Open(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.GetLogger().Info("Connected to PostgreSQL")
	return db, nil
}
