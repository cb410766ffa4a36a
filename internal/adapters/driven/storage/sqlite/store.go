package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
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

	"github.com/custodia-labs/brahma/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/brahma/internal/adapters/driven/storage/vectormath"
	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driven"
	"github.com/custodia-labs/brahma/internal/logger"
)

const (
	// DatabaseFile is the SQLite file inside the index directory.
	DatabaseFile = "vectors.db"

	// ManifestFile marks a completed index.
	ManifestFile = "index.json"

	// lookupBatch bounds the number of parameters in one IN clause.
	lookupBatch = 500
)

// Ensure Store implements the interface.
var _ driven.VectorIndex = (*Store)(nil)

// Store is a SQLite-backed vector index.
type Store struct {
	db           *sql.DB
	dir          string
	path         string
	manifestPath string
}

// NewStore opens or creates the vector index in dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: index directory is empty", domain.ErrConfiguration)
	}

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:           db,
		dir:          dir,
		path:         dbPath,
		manifestPath: filepath.Join(dir, ManifestFile),
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Open is a driven.VectorIndexOpener backed by NewStore.
func Open(dir string) (driven.VectorIndex, error) {
	s, err := NewStore(dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
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
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_vectors.up.sql" -> 1
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

// Replace swaps the full contents of the index in one transaction,
// then writes the manifest that marks the index ready.
func (s *Store) Replace(ctx context.Context, entries []domain.IndexEntry, manifest domain.IndexManifest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, seq, source, page, position, content, content_hash, model, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]struct{}, len(entries))
	var seq int64
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		if err := insertEntry(ctx, stmt, e, seq); err != nil {
			return err
		}
		seq++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	if manifest.BuiltAt.IsZero() {
		manifest.BuiltAt = time.Now().UTC()
	}
	manifest.Chunks = len(seen)
	return s.writeManifest(manifest)
}

// Upsert adds entries or replaces those with the same chunk ID.
// Replaced entries keep their original sequence.
func (s *Store) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var next int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq) + 1, 0) FROM chunks").Scan(&next); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, seq, source, page, position, content, content_hash, model, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			page = excluded.page,
			position = excluded.position,
			content = excluded.content,
			content_hash = excluded.content_hash,
			model = excluded.model,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if err := insertEntry(ctx, stmt, e, next); err != nil {
			return err
		}
		next++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	if m, err := s.Manifest(ctx); err == nil {
		if n, err := s.Count(ctx); err == nil {
			m.Chunks = n
			return s.writeManifest(*m)
		}
	}
	return nil
}

func insertEntry(ctx context.Context, stmt *sql.Stmt, e domain.IndexEntry, seq int64) error {
	var page sql.NullInt64
	if e.Page != nil {
		page = sql.NullInt64{Int64: int64(*e.Page), Valid: true}
	}
	_, err := stmt.ExecContext(ctx,
		e.ID, seq, e.Source, page, e.Position, e.Content, e.ContentHash, e.Model,
		float32SliceToBytes(e.Embedding))
	if err != nil {
		return fmt.Errorf("inserting chunk %s: %w", e.ID, err)
	}
	return nil
}

// Query returns up to k entries nearest to vector by cosine distance.
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, source, page, position, content, content_hash, model, embedding
		FROM chunks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	skipped := 0
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		if len(e.Embedding) != len(vector) {
			skipped++
			continue
		}
		hits = append(hits, driven.VectorHit{
			Entry:    e,
			Distance: vectormath.CosineDistance(vector, e.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	if skipped > 0 {
		logger.Debug("vector query skipped %d chunks with %d-dimension mismatch", skipped, len(vector))
	}

	return vectormath.TopK(hits, k), nil
}

// Lookup returns stored entries for the given IDs.
func (s *Store) Lookup(ctx context.Context, ids []string) (map[string]domain.IndexEntry, error) {
	found := make(map[string]domain.IndexEntry, len(ids))

	for start := 0; start < len(ids); start += lookupBatch {
		end := min(start+lookupBatch, len(ids))
		batch := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		//nolint:gosec // placeholders are generated, values are bound
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, seq, source, page, position, content, content_hash, model, embedding
			FROM chunks WHERE id IN (`+placeholders+`)
		`, args...)
		if err != nil {
			return nil, fmt.Errorf("looking up chunks: %w", err)
		}
		for rows.Next() {
			e, err := scanEntry(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			found[e.ID] = e
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterating chunks: %w", err)
		}
	}

	return found, nil
}

// Exists reports whether a completed index is present.
func (s *Store) Exists(_ context.Context) bool {
	_, err := os.Stat(s.manifestPath)
	return err == nil
}

// Manifest reads the manifest written by the last Replace.
func (s *Store) Manifest(_ context.Context) (*domain.IndexManifest, error) {
	data, err := os.ReadFile(s.manifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrIndexNotReady
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m domain.IndexManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: corrupt manifest: %w", domain.ErrIndexNotReady, err)
	}
	return &m, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// writeManifest writes the manifest through a temporary file and rename.
func (s *Store) writeManifest(m domain.IndexManifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ManifestFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing manifest: %w", err)
	}
	if err := os.Rename(tmpName, s.manifestPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("installing manifest: %w", err)
	}
	return nil
}

// scanEntry reads one chunks row.
func scanEntry(rows *sql.Rows) (domain.IndexEntry, error) {
	var (
		e    domain.IndexEntry
		page sql.NullInt64
		blob []byte
	)
	if err := rows.Scan(&e.ID, &e.Seq, &e.Source, &page, &e.Position,
		&e.Content, &e.ContentHash, &e.Model, &blob); err != nil {
		return e, fmt.Errorf("scanning chunk: %w", err)
	}
	if page.Valid {
		e.Page = domain.IntPtr(int(page.Int64))
	}
	e.Embedding = bytesToFloat32Slice(blob)
	return e, nil
}

// float32SliceToBytes converts a float32 slice to bytes for BLOB storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts bytes from BLOB storage to a float32 slice.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
