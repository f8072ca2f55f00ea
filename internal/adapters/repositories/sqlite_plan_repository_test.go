package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/ports"
)

func testRepo(t *testing.T) *SqlitePlanRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every pooled connection would get its own in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewSqlitePlanRepository(db)
}

func samplePlan(id string, createdAt time.Time) *domain.RoutePlan {
	return &domain.RoutePlan{
		ID: id,
		Segments: []domain.RouteSegment{{
			Coordinates:          []domain.Coordinate{{Lat: 34.573, Lng: 135.483}, {Lat: 34.550, Lng: 135.500}},
			DistanceKm:           15.5,
			ElevationGainM:       250,
			ElevationLossM:       50,
			EstimatedDurationMin: 60,
			Surface:              domain.SurfacePaved,
		}},
		TotalDistanceKm:     15.5,
		TotalElevationGainM: 250,
		TotalDurationMin:    60,
		Warnings:            []string{"Long distance ride"},
		RecommendedGear:     []string{"Helmet"},
		RiskScore:           12.5,
		Narrative:           "An easy spin along the coast.",
		CreatedAt:           createdAt,
	}
}

func TestSaveAndGetByID(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	plan := samplePlan("plan-1", time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC))

	if err := repo.Save(ctx, plan); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByID(ctx, "plan-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ID != plan.ID || got.RiskScore != plan.RiskScore || got.Narrative != plan.Narrative {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Segments) != 1 || got.Segments[0].Surface != domain.SurfacePaved {
		t.Fatalf("segments not preserved: %+v", got.Segments)
	}
}

func TestSaveReplacesExistingPlan(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)

	if err := repo.Save(ctx, samplePlan("plan-1", createdAt)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	updated := samplePlan("plan-1", createdAt)
	updated.RiskScore = 42
	if err := repo.Save(ctx, updated); err != nil {
		t.Fatalf("Save replace: %v", err)
	}

	got, err := repo.GetByID(ctx, "plan-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.RiskScore != 42 {
		t.Fatalf("expected replaced plan, got score %.1f", got.RiskScore)
	}

	plans, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("expected single plan after replace, got %d", len(plans))
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.GetByID(context.Background(), "nope")
	if !errors.Is(err, ports.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestListRecentNewestFirst(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "mid", "new"} {
		if err := repo.Save(ctx, samplePlan(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	plans, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}
	if plans[0].ID != "new" || plans[1].ID != "mid" {
		t.Fatalf("expected newest first, got %s then %s", plans[0].ID, plans[1].ID)
	}
}
