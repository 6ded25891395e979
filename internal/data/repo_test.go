package data

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	r, err := NewSQLiteRepo(filepath.Join(t.TempDir(), "relay.db"))
	if err != nil {
		t.Fatalf("open repo failed: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSaveAndGetWaypoint(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	if err := r.SaveWaypoint(ctx, &Waypoint{Name: " Home ", Position: [3]float64{1, 2.5, -3}}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	w, err := r.GetWaypoint(ctx, "HOME")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if w.Name != "home" || w.Position != [3]float64{1, 2.5, -3} {
		t.Fatalf("unexpected waypoint: %#v", w)
	}
	if w.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestSaveWaypointUpserts(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_ = r.SaveWaypoint(ctx, &Waypoint{Name: "dock", Position: [3]float64{1, 0, 0}})
	if err := r.SaveWaypoint(ctx, &Waypoint{Name: "dock", Position: [3]float64{0, 0, 4}}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	w, err := r.GetWaypoint(ctx, "dock")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if w.Position != [3]float64{0, 0, 4} {
		t.Fatalf("expected updated position, got %v", w.Position)
	}
	all, err := r.ListWaypoints(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 waypoint, got %d", len(all))
	}
}

func TestListWaypointsOrderedByName(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.SaveWaypoint(ctx, &Waypoint{Name: name}); err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
	}
	all, err := r.ListWaypoints(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 || all[0].Name != "alpha" || all[1].Name != "mid" || all[2].Name != "zeta" {
		t.Fatalf("unexpected order: %v", all)
	}
}

func TestGetAndDeleteMissingWaypoint(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	if _, err := r.GetWaypoint(ctx, "nowhere"); !errors.Is(err, ErrWaypointNotFound) {
		t.Fatalf("expected ErrWaypointNotFound, got %v", err)
	}
	if err := r.DeleteWaypoint(ctx, "nowhere"); !errors.Is(err, ErrWaypointNotFound) {
		t.Fatalf("expected ErrWaypointNotFound on delete, got %v", err)
	}

	_ = r.SaveWaypoint(ctx, &Waypoint{Name: "gone"})
	if err := r.DeleteWaypoint(ctx, "gone"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := r.GetWaypoint(ctx, "gone"); !errors.Is(err, ErrWaypointNotFound) {
		t.Fatalf("expected waypoint removed, got %v", err)
	}
}

func TestInvalidWaypointNames(t *testing.T) {
	r := newTestRepo(t)
	for _, name := range []string{"", "two words", "semi;colon", "ünï"} {
		err := r.SaveWaypoint(context.Background(), &Waypoint{Name: name})
		if !errors.Is(err, ErrInvalidWaypoint) {
			t.Fatalf("name %q: expected ErrInvalidWaypoint, got %v", name, err)
		}
	}
}
