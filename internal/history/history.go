// Package history persists per-run summaries so quality trends can be
// inspected across runs. Persistence is strictly best-effort: a storage
// fault never fails a quality run.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/qgate-dev/qgate/domain"
)

// Store provides SQLite-backed storage for run summaries
type Store struct {
	db     *sql.DB
	dbPath string
}

// Entry is one persisted run summary
type Entry struct {
	ID            int64             `json:"id"`
	ProjectPath   string            `json:"project_path"`
	Revision      string            `json:"revision,omitempty"`
	OverallStatus domain.Status     `json:"overall_status"`
	Statuses      map[string]string `json:"statuses"`
	Violations    int               `json:"violations"`
	RecordedAt    string            `json:"recorded_at"`
}

// DefaultPath returns the store location under the XDG data directory
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join("qgate", "qgate.db"))
}

// Open opens or creates the store at path. An empty path uses DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, domain.NewDomainError(domain.ErrCodeStorageError, "cannot resolve history path", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeStorageError, "cannot create history directory", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeStorageError, "cannot open history store", err)
	}

	// SQLite supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, dbPath: path}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    project_path   TEXT NOT NULL,
    revision       TEXT NOT NULL DEFAULT '',
    overall_status TEXT NOT NULL,
    statuses       TEXT NOT NULL,
    violations     INTEGER NOT NULL,
    recorded_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project_path, recorded_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return domain.NewDomainError(domain.ErrCodeStorageError, "cannot initialize history schema", err)
	}
	return nil
}

// Record persists a run summary derived from the report
func (s *Store) Record(report *domain.QualityReport) error {
	statuses := make(map[string]string, len(report.Results))
	for _, r := range report.Results {
		statuses[r.Type] = string(r.Status)
	}
	encoded, err := json.Marshal(statuses)
	if err != nil {
		return domain.NewDomainError(domain.ErrCodeStorageError, "cannot encode run statuses", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (project_path, revision, overall_status, statuses, violations, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		report.ProjectPath,
		report.Revision,
		string(report.OverallStatus),
		string(encoded),
		report.TotalViolations(),
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return domain.NewDomainError(domain.ErrCodeStorageError, "cannot record run", err)
	}
	return nil
}

// Recent returns up to limit entries for a project, newest first. An empty
// projectPath returns entries for all projects.
func (s *Store) Recent(projectPath string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, project_path, revision, overall_status, statuses, violations, recorded_at
		  FROM runs`
	args := []any{}
	if projectPath != "" {
		query += ` WHERE project_path = ?`
		args = append(args, projectPath)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeStorageError, "cannot query history", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var encoded string
		var status string
		if err := rows.Scan(&e.ID, &e.ProjectPath, &e.Revision, &status, &encoded, &e.Violations, &e.RecordedAt); err != nil {
			return nil, domain.NewDomainError(domain.ErrCodeStorageError, "cannot scan history row", err)
		}
		e.OverallStatus = domain.Status(status)
		if err := json.Unmarshal([]byte(encoded), &e.Statuses); err != nil {
			return nil, domain.NewDomainError(domain.ErrCodeStorageError, fmt.Sprintf("corrupt statuses for run %d", e.ID), err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}
