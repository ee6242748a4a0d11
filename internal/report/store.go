package report

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raysh454/pharmaflow/internal/logging"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrArtifactNotFound = errors.New("report not found")

// Artifact is one stored report document.
type Artifact struct {
	RequestID   string
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store keeps rendered reports in SQLite, one row per request.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenStore opens (or creates) the database at path and runs schema.sql.
// ":memory:" gives a private in-memory store.
func OpenStore(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure dir for %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Save inserts or replaces the artifact for a.RequestID.
func (s *Store) Save(ctx context.Context, a Artifact) error {
	if a.RequestID == "" {
		return errors.New("artifact request id is required")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (request_id, content_type, body, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(request_id) DO UPDATE SET content_type = excluded.content_type,
		 body = excluded.body, created_at = excluded.created_at`,
		a.RequestID, a.ContentType, a.Body, a.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save report %s: %w", a.RequestID, err)
	}
	s.logger.Debug("report saved",
		logging.Field{Key: "request_id", Value: a.RequestID},
		logging.Field{Key: "bytes", Value: len(a.Body)})
	return nil
}

// Get returns the artifact for id or ErrArtifactNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Artifact, error) {
	var (
		a  = Artifact{RequestID: id}
		ms int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT content_type, body, created_at FROM reports WHERE request_id = ?`, id).
		Scan(&a.ContentType, &a.Body, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}
	a.CreatedAt = time.UnixMilli(ms)
	return &a, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
