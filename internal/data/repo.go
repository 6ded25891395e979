package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Waypoint is a named target position.
type Waypoint struct {
	Name      string     `json:"name"`
	Position  [3]float64 `json:"position"`
	CreatedAt time.Time  `json:"created_at"`
}

type WaypointRepo interface {
	SaveWaypoint(ctx context.Context, w *Waypoint) error
	GetWaypoint(ctx context.Context, name string) (*Waypoint, error)
	DeleteWaypoint(ctx context.Context, name string) error
	ListWaypoints(ctx context.Context) ([]*Waypoint, error)
	Close() error
}

var (
	ErrWaypointNotFound = errors.New("waypoint not found")
	ErrInvalidWaypoint  = errors.New("invalid waypoint name")
)

var nameRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

// NormalizeName lower-cases and trims a waypoint name and checks it.
func NormalizeName(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if !nameRe.MatchString(n) {
		return "", fmt.Errorf("%w: %q", ErrInvalidWaypoint, name)
	}
	return n, nil
}

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(path string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of concurrent HTTP handlers.
	db.SetMaxOpenConns(1)
	r := &SQLiteRepo{db: db}
	if err := r.init(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepo) init() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS waypoints(
		name TEXT PRIMARY KEY,
		x REAL NOT NULL,
		y REAL NOT NULL,
		z REAL NOT NULL,
		created_at DATETIME
	);`)
	if err != nil {
		return fmt.Errorf("failed to create waypoints table: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) SaveWaypoint(ctx context.Context, w *Waypoint) error {
	name, err := NormalizeName(w.Name)
	if err != nil {
		return err
	}
	w.Name = name
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO waypoints(name, x, y, z, created_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			x=excluded.x,
			y=excluded.y,
			z=excluded.z,
			created_at=excluded.created_at;`,
		w.Name, w.Position[0], w.Position[1], w.Position[2], w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save waypoint: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) GetWaypoint(ctx context.Context, name string) (*Waypoint, error) {
	n, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	var w Waypoint
	err = r.db.QueryRowContext(ctx, `SELECT name, x, y, z, created_at FROM waypoints WHERE name=?;`, n).
		Scan(&w.Name, &w.Position[0], &w.Position[1], &w.Position[2], &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrWaypointNotFound, n)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waypoint: %w", err)
	}
	return &w, nil
}

func (r *SQLiteRepo) DeleteWaypoint(ctx context.Context, name string) error {
	n, err := NormalizeName(name)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM waypoints WHERE name=?`, n)
	if err != nil {
		return fmt.Errorf("failed to delete waypoint: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", ErrWaypointNotFound, n)
	}
	return nil
}

func (r *SQLiteRepo) ListWaypoints(ctx context.Context) ([]*Waypoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, x, y, z, created_at FROM waypoints ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list waypoints: %w", err)
	}
	defer rows.Close()
	out := []*Waypoint{}
	for rows.Next() {
		var w Waypoint
		if err := rows.Scan(&w.Name, &w.Position[0], &w.Position[1], &w.Position[2], &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan waypoint: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}
