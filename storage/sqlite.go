package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists sessions in a SQLite database. Each session is
// one row with its transcript serialized as JSON; the active pointer lives
// in a single-row meta table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (or creates) the database at dbPath and
// ensures the schema is current.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	r := &SQLiteRepository{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		messages TEXT NOT NULL DEFAULT '[]'
	);
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return err
	}
	return r.migrateSchema()
}

// migrateSchema adds columns introduced after the first release to
// databases created before them.
func (r *SQLiteRepository) migrateSchema() error {
	hasTitle, err := r.columnExists("sessions", "title")
	if err != nil {
		return err
	}
	if !hasTitle {
		if _, err := r.db.Exec(`ALTER TABLE sessions ADD COLUMN title TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("failed to add title column: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) columnExists(table, column string) (bool, error) {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Load reads every session row plus the active pointer.
func (r *SQLiteRepository) Load() (State, error) {
	rows, err := r.db.Query(`SELECT id, title, messages FROM sessions ORDER BY id ASC`)
	if err != nil {
		return State{}, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var persisted []persistedSession
	for rows.Next() {
		var ps persistedSession
		var messagesJSON string
		if err := rows.Scan(&ps.ID, &ps.Title, &messagesJSON); err != nil {
			return State{}, fmt.Errorf("failed to scan session: %w", err)
		}
		if err := json.Unmarshal([]byte(messagesJSON), &ps.Messages); err != nil {
			// Keep the session visible even when its transcript is unreadable.
			ps.Messages = nil
		}
		persisted = append(persisted, ps)
	}
	if err := rows.Err(); err != nil {
		return State{}, err
	}

	state := State{Sessions: fromPersisted(persisted)}
	var activeStr string
	err = r.db.QueryRow(`SELECT value FROM meta WHERE key = 'active_session'`).Scan(&activeStr)
	if err == nil {
		fmt.Sscanf(activeStr, "%d", &state.ActiveID)
	} else if err != sql.ErrNoRows {
		return State{}, fmt.Errorf("failed to read active session: %w", err)
	}
	return state, nil
}

// Save replaces the stored state inside one transaction.
func (r *SQLiteRepository) Save(state State) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	for _, ps := range toPersisted(state.Sessions) {
		messagesJSON, err := json.Marshal(ps.Messages)
		if err != nil {
			return fmt.Errorf("failed to marshal messages: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO sessions (id, title, messages) VALUES (?, ?, ?)`,
			ps.ID, ps.Title, string(messagesJSON),
		); err != nil {
			return fmt.Errorf("failed to save session %d: %w", ps.ID, err)
		}
	}
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('active_session', ?)`,
		fmt.Sprintf("%d", state.ActiveID),
	); err != nil {
		return fmt.Errorf("failed to save active session: %w", err)
	}
	return tx.Commit()
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
