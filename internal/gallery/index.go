package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/bakkerme/photoselector/internal/core"
)

const (
	defaultIndexTable     = "media_items"
	defaultIndexAuthority = "photoselector"
)

// Index hands out stable item ids for files on disk. The same path keeps
// its id across process restarts.
type Index struct {
	db         *sql.DB
	table      string
	tableIdent string
	authority  string
}

func NewSQLiteIndex(dsn, table, authority string) (*Index, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn is required")
	}
	if table == "" {
		table = defaultIndexTable
	}
	if authority == "" {
		authority = defaultIndexAuthority
	}
	tableIdent, err := quoteSQLiteIdentifier(table)
	if err != nil {
		return nil, err
	}
	if err := ensureSQLiteDir(dsn); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	index := &Index{
		db:         db,
		table:      table,
		tableIdent: tableIdent,
		authority:  authority,
	}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

// Resolve returns the id for path, assigning a new one the first time the
// path is seen.
func (x *Index) Resolve(ctx context.Context, path string) (core.ItemID, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	var id string
	err := x.db.QueryRowContext(ctx, fmt.Sprintf("SELECT id FROM %s WHERE path = ?", x.tableIdent), path).Scan(&id)
	switch {
	case err == nil:
		_, err = x.db.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET seen_at = ? WHERE id = ?", x.tableIdent), time.Now().UTC(), id)
		return core.ItemID(id), err
	case !errors.Is(err, sql.ErrNoRows):
		return "", err
	}

	id = fmt.Sprintf("content://%s/media/%s", x.authority, uuid.NewString())
	_, err = x.db.ExecContext(
		ctx,
		fmt.Sprintf("INSERT INTO %s (id, path, seen_at) VALUES (?, ?, ?)", x.tableIdent),
		id,
		path,
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert media item: %w", err)
	}
	return core.ItemID(id), nil
}

// Path returns the file path recorded for id.
func (x *Index) Path(ctx context.Context, id core.ItemID) (string, bool, error) {
	var path string
	err := x.db.QueryRowContext(ctx, fmt.Sprintf("SELECT path FROM %s WHERE id = ?", x.tableIdent), string(id)).Scan(&path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return path, true, nil
}

// Prune drops every row whose id is not in keep and reports how many went.
func (x *Index) Prune(ctx context.Context, keep []core.ItemID) (int, error) {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "CREATE TEMP TABLE IF NOT EXISTS keep_ids (id TEXT PRIMARY KEY)"); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM keep_ids"); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO keep_ids (id) VALUES (?)")
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()
	for _, id := range keep {
		if _, err := stmt.ExecContext(ctx, string(id)); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	res, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id NOT IN (SELECT id FROM keep_ids)", x.tableIdent))
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (x *Index) Close() error {
	if x == nil || x.db == nil {
		return nil
	}
	return x.db.Close()
}

func (x *Index) ensureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		seen_at TIMESTAMP NOT NULL
	)`, x.tableIdent)
	if _, err := x.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sqlite table: %w", err)
	}
	return nil
}

func ensureSQLiteDir(dsn string) error {
	if strings.HasPrefix(dsn, "file:") {
		dsn = strings.TrimPrefix(dsn, "file:")
		if idx := strings.IndexRune(dsn, '?'); idx >= 0 {
			dsn = dsn[:idx]
		}
	}
	if dsn == "" || dsn == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

var sqliteIdentifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteSQLiteIdentifier(identifier string) (string, error) {
	if !sqliteIdentifierPattern.MatchString(identifier) {
		return "", fmt.Errorf("sqlite table name %q must match %s", identifier, sqliteIdentifierPattern.String())
	}
	return `"` + identifier + `"`, nil
}
