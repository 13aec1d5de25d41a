package database

import (
	"context"
	"database/sql"
)

// EnsureSchema creates the application tables when they do not exist.
// The service owns its schema the same way the original deployment did;
// statements are idempotent so startup is safe to repeat.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			login VARCHAR(190) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_users_login (login)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS films (
			id BIGINT NOT NULL AUTO_INCREMENT,
			title VARCHAR(512) NOT NULL,
			description TEXT NULL,
			image_url VARCHAR(1024) NULL,
			genres JSON NOT NULL,
			year INT NULL,
			rating DOUBLE NULL,
			film_url VARCHAR(1024) NULL,
			PRIMARY KEY (id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS film_watchlist (
			user_login VARCHAR(190) NOT NULL,
			film_id BIGINT NOT NULL,
			added DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_login, film_id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS film_watched (
			user_login VARCHAR(190) NOT NULL,
			film_id BIGINT NOT NULL,
			added DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_login, film_id)
		) ENGINE=InnoDB`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
