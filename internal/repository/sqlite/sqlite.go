package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shipperizer/internal/domain"

	_ "modernc.org/sqlite"
)

const digestKey = "autosave_digest"

// Repository implements repository.AutosaveStore using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if dbPath != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		image TEXT,
		position_x REAL NOT NULL DEFAULT 0,
		position_y REAL NOT NULL DEFAULT 0,
		ordinal INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('love', 'hate', 'friend')),
		merged INTEGER NOT NULL DEFAULT 0,
		ordinal INTEGER NOT NULL,
		FOREIGN KEY (source_id) REFERENCES entities(id) ON DELETE CASCADE,
		FOREIGN KEY (target_id) REFERENCES entities(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Save replaces the stored snapshot in one transaction, skipping the write
// when the content digest is unchanged
func (r *Repository) Save(ctx context.Context, snap domain.Snapshot) (bool, error) {
	digest, err := snapshotDigest(snap)
	if err != nil {
		return false, fmt.Errorf("failed to digest snapshot: %w", err)
	}

	var current string
	err = r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, digestKey).Scan(&current)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to read digest: %w", err)
	}
	if current == digest {
		return false, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships`); err != nil {
		return false, fmt.Errorf("failed to clear relationships: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return false, fmt.Errorf("failed to clear entities: %w", err)
	}

	entityStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (id, image, position_x, position_y, ordinal)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return false, fmt.Errorf("failed to prepare entity insert: %w", err)
	}
	defer entityStmt.Close()

	for i, e := range snap.Entities {
		if _, err := entityStmt.ExecContext(ctx, e.ID, stringToNull(e.Image), e.Position.X, e.Position.Y, i); err != nil {
			return false, fmt.Errorf("failed to insert entity %s: %w", e.ID, err)
		}
	}

	relStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relationships (id, source_id, target_id, kind, merged, ordinal)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return false, fmt.Errorf("failed to prepare relationship insert: %w", err)
	}
	defer relStmt.Close()

	for i, rel := range snap.Relationships {
		source, target := rel.Endpoints()
		kind := domain.KindOf(rel)
		if _, err := relStmt.ExecContext(ctx, rel.ID(), source, target, string(kind), boolToInt(domain.IsMerged(rel)), i); err != nil {
			return false, fmt.Errorf("failed to insert relationship %s: %w", rel.ID(), err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, digestKey, digest, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("failed to store digest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit autosave: %w", err)
	}
	return true, nil
}

// Load reads the stored snapshot. It returns nil when nothing has been saved.
func (r *Repository) Load(ctx context.Context) (*domain.Snapshot, error) {
	var digest string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, digestKey).Scan(&digest)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read digest: %w", err)
	}

	snap := domain.NewSnapshot()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, image, position_x, position_y FROM entities ORDER BY ordinal
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e     domain.Entity
			image sql.NullString
		)
		if err := rows.Scan(&e.ID, &image, &e.Position.X, &e.Position.Y); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		e.Image = nullToString(image)
		snap.Entities = append(snap.Entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}

	relRows, err := r.db.QueryContext(ctx, `
		SELECT source_id, target_id, kind, merged FROM relationships ORDER BY ordinal
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer relRows.Close()

	for relRows.Next() {
		var (
			source, target, rawKind string
			merged                  int
		)
		if err := relRows.Scan(&source, &target, &rawKind, &merged); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		kind, err := domain.ParseKind(rawKind)
		if err != nil {
			return nil, fmt.Errorf("stored relationship %s->%s: %w", source, target, err)
		}
		if merged != 0 {
			snap.Relationships = append(snap.Relationships, domain.NewMerged(source, target, kind))
		} else {
			snap.Relationships = append(snap.Relationships, domain.NewDirected(source, target, kind))
		}
	}
	if err := relRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationships: %w", err)
	}

	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("stored autosave is inconsistent: %w", err)
	}
	return &snap, nil
}

// Clear deletes the autosave entirely
func (r *Repository) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM relationships`,
		`DELETE FROM entities`,
		`DELETE FROM metadata WHERE key = '` + digestKey + `'`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear autosave: %w", err)
		}
	}
	return tx.Commit()
}
