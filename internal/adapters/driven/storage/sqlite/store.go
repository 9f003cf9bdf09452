package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/assetchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// CorruptSuffix is appended to an unreadable index database moved aside.
const CorruptSuffix = ".corrupt"

// Store persists index snapshots.
type Store struct {
	db   *sql.DB
	path string
}

// Info describes the persisted snapshot without loading its vectors.
type Info struct {
	Model       string
	Dimensions  int
	Fingerprint string
	Documents   int
	BuiltAt     time.Time
}

// NewStore opens (or creates) the index database at path.
// If path is empty, defaults to ./data/index.db.
//
// The index is derived data. A file that cannot be opened as an index
// database is moved aside to path+".corrupt" and replaced by an empty one,
// so the next Open rebuilds instead of failing startup.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = domain.DefaultIndexPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	s, err := openStore(path)
	if err == nil {
		return s, nil
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, err
	}

	logger.Warn("Index database %s is unreadable, moving it aside: %v", path, err)
	if qErr := quarantine(path); qErr != nil {
		return nil, fmt.Errorf("%w (moving it aside: %w)", err, qErr)
	}
	return openStore(path)
}

func openStore(path string) (*Store, error) {
	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// quarantine renames path to path+".corrupt" and drops its WAL side files.
func quarantine(path string) error {
	if err := os.Rename(path, path+CorruptSuffix); err != nil {
		return err
	}
	for _, side := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + side); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted snapshot.
func (s *Store) Load(ctx context.Context) (*domain.IndexSnapshot, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc_type, doc_key, body, embedding
		FROM index_documents
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	snap := &domain.IndexSnapshot{
		Model:       info.Model,
		Dimensions:  info.Dimensions,
		Fingerprint: info.Fingerprint,
		Documents:   make([]domain.Document, 0, info.Documents),
		Vectors:     make([][]float32, 0, info.Documents),
	}
	for rows.Next() {
		var (
			doc  domain.Document
			blob []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Type, &doc.Key, &doc.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		vec := bytesToFloat32Slice(blob)
		if len(vec) != info.Dimensions {
			return nil, fmt.Errorf("%w: document %s has %d dimensions, expected %d",
				domain.ErrIndexIncompatible, doc.ID, len(vec), info.Dimensions)
		}
		snap.Documents = append(snap.Documents, doc)
		snap.Vectors = append(snap.Vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	if len(snap.Documents) != info.Documents {
		return nil, fmt.Errorf("%w: %d documents stored, metadata says %d",
			domain.ErrIndexIncompatible, len(snap.Documents), info.Documents)
	}

	return snap, nil
}

// Info reads the snapshot metadata.
// Returns domain.ErrIndexNotFound when nothing has been saved yet.
func (s *Store) Info(ctx context.Context) (*Info, error) {
	var (
		info    Info
		builtAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT model, dimensions, fingerprint, document_count, built_at
		FROM index_meta WHERE id = 1
	`).Scan(&info.Model, &info.Dimensions, &info.Fingerprint, &info.Documents, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading index metadata: %w", err)
	}
	info.BuiltAt, _ = time.Parse(time.RFC3339, builtAt)
	return &info, nil
}

// Save replaces the persisted snapshot in a single transaction.
func (s *Store) Save(ctx context.Context, snap *domain.IndexSnapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", domain.ErrInvalidInput)
	}
	if len(snap.Documents) != len(snap.Vectors) {
		return fmt.Errorf("%w: %d documents but %d vectors",
			domain.ErrInvalidInput, len(snap.Documents), len(snap.Vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM index_documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO index_meta (id, model, dimensions, fingerprint, document_count, built_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			model = excluded.model,
			dimensions = excluded.dimensions,
			fingerprint = excluded.fingerprint,
			document_count = excluded.document_count,
			built_at = excluded.built_at
	`, snap.Model, snap.Dimensions, snap.Fingerprint, len(snap.Documents),
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("saving index metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_documents (position, id, doc_type, doc_key, body, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, doc := range snap.Documents {
		if len(snap.Vectors[i]) != snap.Dimensions {
			return fmt.Errorf("%w: document %s has %d dimensions, expected %d",
				domain.ErrInvalidInput, doc.ID, len(snap.Vectors[i]), snap.Dimensions)
		}
		if _, err := stmt.ExecContext(ctx, i, doc.ID, string(doc.Type), doc.Key, doc.Text,
			float32SliceToBytes(snap.Vectors[i])); err != nil {
			return fmt.Errorf("saving document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_vector_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
