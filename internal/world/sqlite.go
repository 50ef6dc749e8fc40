package world

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite is a world persisted in a SQLite database. Each Execute call is one
// transaction, run on the world queue.
type SQLite struct {
	db *sql.DB
	q  *Queue
}

// ImportRecord describes one finished import.
type ImportRecord struct {
	File                string
	X, Y, Z             int
	SizeX, SizeY, SizeZ int
	Placed, Skipped     int
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("world: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("world: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("world: pragmas: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("world: schema: %w", err)
	}
	return &SQLite{db: db, q: NewQueue()}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS blocks (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (x, y, z)
		) WITHOUT ROWID;`,
		`CREATE TABLE IF NOT EXISTS imports (
			id TEXT PRIMARY KEY,
			file TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			size_x INTEGER NOT NULL,
			size_y INTEGER NOT NULL,
			size_z INTEGER NOT NULL,
			placed INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			imported_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// SolidAt reports whether a block is stored at the position.
// Query errors count as empty. It must not be called from inside Execute.
func (s *SQLite) SolidAt(x, y, z int) bool {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM blocks WHERE x=? AND y=? AND z=?`, x, y, z).Scan(&one)
	return err == nil
}

// Execute runs fn inside a transaction on the world queue. The transaction
// is rolled back if fn fails.
func (s *SQLite) Execute(ctx context.Context, fn func(Tx) error) error {
	return s.q.Submit(ctx, func() error {
		tx, err := s.db.BeginTx(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("world: begin: %w", err)
		}
		stmt, err := tx.Prepare(`INSERT INTO blocks(x,y,z,name) VALUES(?,?,?,?)
			ON CONFLICT(x,y,z) DO UPDATE SET name=excluded.name`)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("world: prepare: %w", err)
		}
		defer stmt.Close()

		if err := fn(sqlTx{stmt}); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("world: commit: %w", err)
		}
		return nil
	})
}

// Block returns the block name at the position.
func (s *SQLite) Block(x, y, z int) (string, bool, error) {
	var name string
	err := s.db.QueryRow(`SELECT name FROM blocks WHERE x=? AND y=? AND z=?`, x, y, z).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("world: block: %w", err)
	}
	return name, true, nil
}

// Count returns the number of stored blocks.
func (s *SQLite) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM blocks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("world: count: %w", err)
	}
	return n, nil
}

// RecordImport stores rec and returns its generated id.
func (s *SQLite) RecordImport(ctx context.Context, rec ImportRecord) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imports(id,file,x,y,z,size_x,size_y,size_z,placed,skipped,imported_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		id, rec.File, rec.X, rec.Y, rec.Z, rec.SizeX, rec.SizeY, rec.SizeZ,
		rec.Placed, rec.Skipped, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("world: record import: %w", err)
	}
	return id, nil
}

// Imports returns the number of recorded imports.
func (s *SQLite) Imports() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM imports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("world: imports: %w", err)
	}
	return n, nil
}

// Close drains the queue and closes the database.
func (s *SQLite) Close() error {
	s.q.Close()
	return s.db.Close()
}

type sqlTx struct{ stmt *sql.Stmt }

func (t sqlTx) SetBlock(x, y, z int, name string) error {
	if _, err := t.stmt.Exec(x, y, z, name); err != nil {
		return fmt.Errorf("world: set block %d,%d,%d: %w", x, y, z, err)
	}
	return nil
}
