package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// sqliteSchema creates the agents and logins tables plus the supporting
// indexes used for direct identifier lookup.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS agents (
	agent_id    TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL,
	company     TEXT NOT NULL DEFAULT '',
	nationality TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL,
	last_login  TIMESTAMP
);

CREATE TABLE IF NOT EXISTS logins (
	id        INTEGER PRIMARY KEY,
	agent_ref TEXT NOT NULL,
	login_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_agents_email ON agents(email);
CREATE INDEX IF NOT EXISTS idx_agents_company ON agents(company);
CREATE INDEX IF NOT EXISTS idx_logins_agent_ref ON logins(agent_ref);
`

// SQLiteStore implements RecordStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given DSN,
// configures WAL mode, and ensures the schema exists.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	// WAL mode allows concurrent readers to proceed without blocking the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AllAgents returns every agent profile record.
func (s *SQLiteStore) AllAgents(ctx context.Context) ([]Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT agent_id, name, email, company, nationality, created_at, last_login FROM agents`)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		var lastLogin sql.NullTime
		if err := rows.Scan(&a.AgentID, &a.Name, &a.Email, &a.Company, &a.Nationality, &a.CreatedAt, &lastLogin); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			a.LastLogin = &t
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// AllLogins returns every login event.
func (s *SQLiteStore) AllLogins(ctx context.Context) ([]LoginEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, agent_ref, login_at FROM logins`)
	if err != nil {
		return nil, fmt.Errorf("failed to query logins: %w", err)
	}
	defer rows.Close()

	var logins []LoginEvent
	for rows.Next() {
		var l LoginEvent
		if err := rows.Scan(&l.ID, &l.AgentRef, &l.LoginAt); err != nil {
			return nil, fmt.Errorf("failed to scan login: %w", err)
		}
		logins = append(logins, l)
	}
	return logins, rows.Err()
}

// InsertAgent upserts a single agent record.
func (s *SQLiteStore) InsertAgent(ctx context.Context, a Agent) error {
	var lastLogin interface{}
	if a.LastLogin != nil {
		lastLogin = *a.LastLogin
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agents (agent_id, name, email, company, nationality, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(agent_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			company = excluded.company,
			nationality = excluded.nationality,
			created_at = excluded.created_at,
			last_login = excluded.last_login
	`, a.AgentID, a.Name, a.Email, a.Company, a.Nationality, a.CreatedAt, lastLogin)
	if err != nil {
		return fmt.Errorf("failed to insert agent %s: %w", a.AgentID, err)
	}
	return nil
}

// InsertLogin upserts a single login event.
func (s *SQLiteStore) InsertLogin(ctx context.Context, l LoginEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO logins (id, agent_ref, login_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent_ref = excluded.agent_ref,
			login_at = excluded.login_at
	`, l.ID, l.AgentRef, l.LoginAt)
	if err != nil {
		return fmt.Errorf("failed to insert login %d: %w", l.ID, err)
	}
	return nil
}

// Stats returns aggregate counts computed directly in SQL.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT company),
		       COUNT(DISTINCT nationality)
		FROM agents`)
	if err := row.Scan(&st.TotalAgents, &st.Companies, &st.Nationalities); err != nil {
		return Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}
	return st, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ RecordStore = (*SQLiteStore)(nil)
