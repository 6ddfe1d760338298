package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per camera run or client connection
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL CHECK(source IN ('camera', 'websocket', 'http')),
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Letters table - stable letters emitted during a session, in order
		`CREATE TABLE IF NOT EXISTS letters (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			hand TEXT NOT NULL DEFAULT '',
			letter TEXT NOT NULL,
			confidence REAL NOT NULL,
			stability_score REAL NOT NULL,
			secondary_method TEXT NOT NULL DEFAULT '',
			confusion_group TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_letters_session_id ON letters(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
