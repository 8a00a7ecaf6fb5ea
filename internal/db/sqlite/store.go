// Package sqlite is the primary figure store. Besides CRUD it serves the
// fallback search path with owner-scoped LIKE filtering over flat columns.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/figdex/internal/db"
	"github.com/kailas-cloud/figdex/internal/db/sqlite/migrations"
	"github.com/kailas-cloud/figdex/internal/domain"
	"github.com/kailas-cloud/figdex/internal/domain/figure"
)

// columns maps Predicate field names to figure table columns.
var columns = map[string]string{
	db.FieldName:         "name",
	db.FieldManufacturer: "manufacturer_name",
	db.FieldScale:        "scale",
	db.FieldLocation:     "resolved_location",
	db.FieldBoxNumber:    "resolved_box",
	db.FieldOrigin:       "origin",
	db.FieldCategory:     "category",
	db.FieldVersion:      "version",
}

const selectColumns = `id, owner_id, name, alt_title, manufacturer, company_roles, artist_roles,
	scale, origin, version, category, classification, materials, releases, tags,
	location, box_number, link, image_url, popularity, created_at, updated_at`

// Store is the SQLite-backed figure store.
type Store struct {
	db   *sql.DB
	path string
}

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// NewStore opens (creating if needed) the database file at path and runs
// migrations. MemoryPath gives a throwaway database for tests.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)" // WAL for concurrent readers during writes
	if path == MemoryPath {
		dsn = path
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		// Every connection would get its own empty database.
		conn.SetMaxOpenConns(1)
	}

	s := &Store{db: conn, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
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

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// migrate runs all pending NNN_name.up.sql migrations in order.
func (s *Store) migrate(fsys fs.FS) error {
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
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
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
	}
	return nil
}

// Save inserts or replaces a figure. The effective manufacturer, location and
// box columns are recomputed on every save. Saving over another owner's id
// yields domain.ErrConflict.
func (s *Store) Save(ctx context.Context, f *figure.Figure) error {
	companyRoles, err := marshalList(f.CompanyRoles)
	if err != nil {
		return fmt.Errorf("marshalling company roles: %w", err)
	}
	artistRoles, err := marshalList(f.ArtistRoles)
	if err != nil {
		return fmt.Errorf("marshalling artist roles: %w", err)
	}
	releases, err := marshalList(f.Releases)
	if err != nil {
		return fmt.Errorf("marshalling releases: %w", err)
	}
	tags, err := marshalList(f.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO figures (id, owner_id, name, alt_title, manufacturer, company_roles, artist_roles,
			scale, origin, version, category, classification, materials, releases, tags,
			location, box_number, link, image_url, popularity,
			manufacturer_name, resolved_location, resolved_box, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			alt_title = excluded.alt_title,
			manufacturer = excluded.manufacturer,
			company_roles = excluded.company_roles,
			artist_roles = excluded.artist_roles,
			scale = excluded.scale,
			origin = excluded.origin,
			version = excluded.version,
			category = excluded.category,
			classification = excluded.classification,
			materials = excluded.materials,
			releases = excluded.releases,
			tags = excluded.tags,
			location = excluded.location,
			box_number = excluded.box_number,
			link = excluded.link,
			image_url = excluded.image_url,
			popularity = excluded.popularity,
			manufacturer_name = excluded.manufacturer_name,
			resolved_location = excluded.resolved_location,
			resolved_box = excluded.resolved_box,
			updated_at = excluded.updated_at
		WHERE figures.owner_id = excluded.owner_id
	`, f.ID, f.OwnerID, f.Name, f.AltTitle, f.Manufacturer, companyRoles, artistRoles,
		f.Scale, f.Origin, f.Version, f.Category, f.Classification, f.Materials, releases, tags,
		f.Location, f.BoxNumber, f.Link, f.ImageURL, f.Popularity,
		f.ManufacturerName(), f.ResolvedLocation(), f.ResolvedBoxNumber(),
		f.CreatedAt.UTC(), f.UpdatedAt.UTC())
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("saving figure: %w", err)}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	// The owner guard skipped the update: the id belongs to someone else.
	if n == 0 {
		return domain.ErrConflict
	}
	return nil
}

// Get returns one figure of an owner, or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, ownerID, id string) (*figure.Figure, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM figures WHERE owner_id = ? AND id = ?`, ownerID, id)

	f, err := scanFigure(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return f, nil
}

// Delete removes one figure of an owner. A missing figure yields domain.ErrNotFound.
func (s *Store) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM figures WHERE owner_id = ? AND id = ?", ownerID, id)
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: fmt.Errorf("deleting figure: %w", err)}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByOwner returns an owner's figures ordered by name. limit <= 0 means all.
func (s *Store) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]figure.Figure, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM figures WHERE owner_id = ?
		ORDER BY name COLLATE NOCASE, id LIMIT ? OFFSET ?`, ownerID, limit, offset)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return collect(rows)
}

// FindFiltered returns up to limit figures of ownerID matching p, in
// (name, id) order. Every term must match at least one of p.Fields,
// case-insensitively under Unicode case folding.
func (s *Store) FindFiltered(ctx context.Context, ownerID string, p db.Predicate, limit int) ([]figure.Figure, error) {
	if ownerID == "" {
		return nil, domain.ErrOwnerRequired
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	where, args, err := buildPredicate(p)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + selectColumns + ` FROM figures WHERE owner_id = ? AND ` + where +
		` ORDER BY name COLLATE NOCASE, id LIMIT ?`
	all := make([]any, 0, len(args)+2)
	all = append(all, ownerID)
	all = append(all, args...)
	all = append(all, limit)

	rows, err := s.db.QueryContext(ctx, query, all...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return collect(rows)
}

// buildPredicate renders p as an AND of per-term OR groups of LIKE clauses.
// Only whitelisted columns are interpolated; values are bound.
func buildPredicate(p db.Predicate) (string, []any, error) {
	cols := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		col, ok := columns[f]
		if !ok {
			return "", nil, fmt.Errorf("unknown predicate field %q", f)
		}
		cols = append(cols, col)
	}

	var (
		groups []string
		args   []any
	)
	for _, term := range p.Terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		esc := escapeLike(term)

		var alts []string
		for _, col := range cols {
			switch p.Mode {
			case db.MatchWordPrefix:
				alts = append(alts,
					fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, foldFunc, col),
					fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, foldFunc, col))
				args = append(args, esc+"%", "% "+esc+"%")
			default:
				alts = append(alts, fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, foldFunc, col))
				args = append(args, "%"+esc+"%")
			}
		}
		groups = append(groups, "("+strings.Join(alts, " OR ")+")")
	}
	if len(groups) == 0 {
		return "", nil, errors.New("predicate has no non-empty terms")
	}
	return strings.Join(groups, " AND "), args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFigure(row scanner) (*figure.Figure, error) {
	var (
		f                                         figure.Figure
		companyRoles, artistRoles, releases, tags string
		createdAt, updatedAt                      time.Time
	)
	if err := row.Scan(&f.ID, &f.OwnerID, &f.Name, &f.AltTitle, &f.Manufacturer,
		&companyRoles, &artistRoles, &f.Scale, &f.Origin, &f.Version, &f.Category,
		&f.Classification, &f.Materials, &releases, &tags, &f.Location, &f.BoxNumber,
		&f.Link, &f.ImageURL, &f.Popularity, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(companyRoles), &f.CompanyRoles); err != nil {
		return nil, fmt.Errorf("unmarshaling company roles: %w", err)
	}
	if err := json.Unmarshal([]byte(artistRoles), &f.ArtistRoles); err != nil {
		return nil, fmt.Errorf("unmarshaling artist roles: %w", err)
	}
	if err := json.Unmarshal([]byte(releases), &f.Releases); err != nil {
		return nil, fmt.Errorf("unmarshaling releases: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &f.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	f.CreatedAt = createdAt
	f.UpdatedAt = updatedAt
	return &f, nil
}

func collect(rows *sql.Rows) ([]figure.Figure, error) {
	defer rows.Close()

	var out []figure.Figure //nolint:prealloc // size unknown from query
	for rows.Next() {
		f, err := scanFigure(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning figure: %w", err)
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}

// marshalList encodes a slice as JSON, writing [] rather than null for nil.
func marshalList[T any](v []T) (string, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
