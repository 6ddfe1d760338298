package store

import (
	"database/sql"
	"strings"
	"time"
)

// LetterRecord is one stable letter emitted during a session.
type LetterRecord struct {
	ID              int64     `json:"id"`
	SessionID       string    `json:"session_id"`
	Hand            string    `json:"hand,omitempty"`
	Letter          string    `json:"letter"`
	Confidence      float64   `json:"confidence"`
	StabilityScore  float64   `json:"stability_score"`
	SecondaryMethod string    `json:"secondary_classification,omitempty"`
	ConfusionGroup  string    `json:"confusion_group,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// LetterRepository stores the letters of each session.
type LetterRepository struct {
	db *sql.DB
}

// Letters returns the letter repository for this store.
func (s *Store) Letters() *LetterRepository {
	return &LetterRepository{db: s.db}
}

// Append records a letter at the end of its session.
// It returns ErrNotFound when the session does not exist.
func (r *LetterRepository) Append(l *LetterRecord) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	var exists int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, l.SessionID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	result, err := r.db.Exec(
		`INSERT INTO letters (session_id, hand, letter, confidence, stability_score, secondary_method, confusion_group, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.SessionID, l.Hand, l.Letter, l.Confidence, l.StabilityScore, l.SecondaryMethod, l.ConfusionGroup, l.CreatedAt,
	)
	if err != nil {
		return err
	}

	l.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's letters in the order they were emitted.
func (r *LetterRepository) ListBySession(sessionID string) ([]*LetterRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, hand, letter, confidence, stability_score, secondary_method, confusion_group, created_at
		 FROM letters WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var letters []*LetterRecord
	for rows.Next() {
		l := &LetterRecord{}
		err := rows.Scan(&l.ID, &l.SessionID, &l.Hand, &l.Letter, &l.Confidence, &l.StabilityScore,
			&l.SecondaryMethod, &l.ConfusionGroup, &l.CreatedAt)
		if err != nil {
			return nil, err
		}
		letters = append(letters, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return letters, nil
}

// Transcript concatenates a session's letters into a single string.
func (r *LetterRepository) Transcript(sessionID string) (string, error) {
	letters, err := r.ListBySession(sessionID)
	if err != nil {
		return "", err
	}
	return TranscriptOf(letters), nil
}

// TranscriptOf concatenates the letters in order.
func TranscriptOf(letters []*LetterRecord) string {
	var b strings.Builder
	for _, l := range letters {
		b.WriteString(l.Letter)
	}
	return b.String()
}
