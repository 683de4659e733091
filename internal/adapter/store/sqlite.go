package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"recall/internal/domain"
)

// timeLayout is fixed-width (fractional seconds zero-padded, always
// UTC) so the stored text sorts in chronological order. RFC3339Nano
// would strip trailing zeros and break lexicographic ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository is the canonical store: documents, chunks and
// conversation messages in one SQLite file. A single connection
// serializes concurrent callers.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteRepository{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteRepository) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id     TEXT PRIMARY KEY,
			corpus     TEXT NOT NULL,
			metadata   TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			version    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			chunk_id TEXT PRIMARY KEY,
			doc_id   TEXT NOT NULL,
			seq      INTEGER NOT NULL,
			text     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id                 TEXT PRIMARY KEY,
			session_id         TEXT NOT NULL,
			role               TEXT NOT NULL,
			raw_content        TEXT NOT NULL,
			normalized_content TEXT,
			metadata           TEXT NOT NULL,
			created_at         TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteRepository) DocumentExists(docID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM documents WHERE doc_id = ?`, docID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveDocument writes the document row and all chunk rows in one
// transaction. A duplicate doc id surfaces as domain.ErrDocumentExists
// even when two writers race past the exists check.
func (s *SQLiteRepository) SaveDocument(doc domain.Document, chunks []domain.Chunk) error {
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO documents (doc_id, corpus, metadata, created_at, updated_at, version) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Corpus, string(meta),
		doc.CreatedAt.UTC().Format(timeLayout),
		doc.UpdatedAt.UTC().Format(timeLayout),
		doc.Version,
	)
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("%w: %s", domain.ErrDocumentExists, doc.ID)
		}
		return err
	}

	for _, c := range chunks {
		if _, err := tx.Exec(
			`INSERT INTO chunks (chunk_id, doc_id, seq, text) VALUES (?, ?, ?, ?)`,
			c.ID, c.DocID, c.Seq, c.Text,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteRepository) GetDocument(docID string) (domain.Document, error) {
	var (
		doc                  domain.Document
		meta, created, updated string
	)
	err := s.db.QueryRow(
		`SELECT doc_id, corpus, metadata, created_at, updated_at, version FROM documents WHERE doc_id = ?`,
		docID,
	).Scan(&doc.ID, &doc.Corpus, &meta, &created, &updated, &doc.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, fmt.Errorf("%w: document %s", domain.ErrNotFound, docID)
	}
	if err != nil {
		return domain.Document{}, err
	}

	if err := json.Unmarshal([]byte(meta), &doc.Metadata); err != nil {
		return domain.Document{}, err
	}
	if doc.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return domain.Document{}, fmt.Errorf("parsing created_at for document %s: %w", docID, err)
	}
	if doc.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return domain.Document{}, fmt.Errorf("parsing updated_at for document %s: %w", docID, err)
	}
	return doc, nil
}

func (s *SQLiteRepository) ListChunks(docID string) ([]domain.Chunk, error) {
	rows, err := s.db.Query(
		`SELECT chunk_id, doc_id, seq, text FROM chunks WHERE doc_id = ? ORDER BY seq ASC`,
		docID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.DocID, &c.Seq, &c.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *SQLiteRepository) SaveMessage(msg domain.Message) error {
	meta, err := json.Marshal(msg.Metadata)
	if err != nil {
		return err
	}
	var normalized sql.NullString
	if msg.NormalizedContent != "" {
		normalized = sql.NullString{String: msg.NormalizedContent, Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO messages (id, session_id, role, raw_content, normalized_content, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.RawContent, normalized, string(meta),
		msg.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

func (s *SQLiteRepository) GetSessionMessages(sessionID string) ([]domain.Message, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, role, raw_content, normalized_content, metadata, created_at
		 FROM messages WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var (
			m          domain.Message
			normalized sql.NullString
			meta       string
			created    string
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.RawContent, &normalized, &meta, &created); err != nil {
			return nil, err
		}
		m.NormalizedContent = normalized.String
		if err := json.Unmarshal([]byte(meta), &m.Metadata); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parsing created_at for message %s: %w", m.ID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
