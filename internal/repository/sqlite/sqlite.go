// Package sqlite implements the repository interfaces on SQLite via
// database/sql. The driver is modernc.org/sqlite, a pure Go build, so the
// binary cross-compiles without CGo and tests can run against ":memory:".
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB pool and implements repository.UserRepository,
// repository.InteractionRepository, and repository.CourseRepository. It is
// the persistence context handed to the services at construction.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests), verifies the
// connection, applies the pragmas the server relies on, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL keeps reads concurrent with the occasional write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id                    TEXT PRIMARY KEY,
			username              TEXT NOT NULL UNIQUE,
			email                 TEXT NOT NULL UNIQUE,
			password_hash         TEXT NOT NULL DEFAULT '',
			onboarding_done       INTEGER NOT NULL DEFAULT 0,
			used_in_collaborative INTEGER NOT NULL DEFAULT 0,
			created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// GitHub sign-in arrived after password accounts; the column is added
	// idempotently so existing databases migrate in place. Uniqueness only
	// applies to real GitHub ids, 0 marks a password-only account.
	if err := db.addColumnIfNotExists("users", "github_id",
		"INTEGER NOT NULL DEFAULT 0"); err != nil {
		return fmt.Errorf("adding github_id to users: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
		ON users(github_id) WHERE github_id != 0;
	`)
	if err != nil {
		return fmt.Errorf("creating users github_id index: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_preferences (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			category   TEXT NOT NULL,
			value      TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_user_preferences_user_id
		ON user_preferences(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating user_preferences table: %w", err)
	}

	// course_id is intentionally not a foreign key into courses: interactions
	// must survive catalog reloads and may reference courses that were never
	// imported.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_interactions (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL REFERENCES users(id),
			course_id        INTEGER NOT NULL,
			interaction_type TEXT NOT NULL,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_user_interactions_user_id
		ON user_interactions(user_id);
		CREATE INDEX IF NOT EXISTS idx_user_interactions_course_id
		ON user_interactions(course_id);
	`)
	if err != nil {
		return fmt.Errorf("creating user_interactions table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS courses (
			course_id        INTEGER PRIMARY KEY,
			title            TEXT NOT NULL,
			url              TEXT NOT NULL DEFAULT '',
			is_paid          INTEGER NOT NULL DEFAULT 0,
			price            REAL NOT NULL DEFAULT 0,
			num_subscribers  INTEGER NOT NULL DEFAULT 0,
			num_reviews      INTEGER NOT NULL DEFAULT 0,
			num_lectures     INTEGER NOT NULL DEFAULT 0,
			level            TEXT NOT NULL DEFAULT '',
			content_duration REAL NOT NULL DEFAULT 0,
			published_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			subject          TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_courses_subject ON courses(subject);
	`)
	if err != nil {
		return fmt.Errorf("creating courses table: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column only if it is missing, keeping ALTER
// TABLE migrations safe to run on every start.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
