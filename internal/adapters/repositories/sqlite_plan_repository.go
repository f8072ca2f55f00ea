package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cycling-route-service/internal/domain"
	"cycling-route-service/internal/ports"
)

// SQLite-backed implementation of the PlanRepository port. Plans are stored
// as opaque JSON blobs keyed by id; only created_at is queryable.
type SqlitePlanRepository struct{ DB *sql.DB }

func NewSqlitePlanRepository(db *sql.DB) *SqlitePlanRepository {
	return &SqlitePlanRepository{DB: db}
}

// Save stores the plan, replacing any previous plan with the same id.
func (s *SqlitePlanRepository) Save(ctx context.Context, plan *domain.RoutePlan) error {
	if s.DB == nil {
		return errors.New("sqlite plan repository: DB is nil")
	}
	if plan == nil || plan.ID == "" {
		return errors.New("save plan: plan with non-empty id required")
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("save plan %q: marshal: %w", plan.ID, err)
	}

	query := `
	INSERT OR REPLACE INTO route_plans (
		id,
		data,
		created_at
	)
	VALUES (?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, plan.ID, string(data), plan.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("save plan %q: insert: %w", plan.ID, err)
	}

	return nil
}

// GetByID returns the stored plan or ports.ErrPlanNotFound.
func (s *SqlitePlanRepository) GetByID(ctx context.Context, id string) (*domain.RoutePlan, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite plan repository: DB is nil")
	}
	if id == "" {
		return nil, errors.New("get plan: id must be non-empty")
	}

	var data string
	query := `SELECT data FROM route_plans WHERE id = ?;`
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %q: query: %w", id, err)
	}

	var plan domain.RoutePlan
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		return nil, fmt.Errorf("get plan %q: unmarshal: %w", id, err)
	}

	return &plan, nil
}

// ListRecent returns up to limit plans ordered newest first.
func (s *SqlitePlanRepository) ListRecent(ctx context.Context, limit int) ([]*domain.RoutePlan, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite plan repository: DB is nil")
	}
	if limit <= 0 {
		return []*domain.RoutePlan{}, nil
	}

	query := `
	SELECT data
	FROM route_plans
	ORDER BY created_at DESC
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: query: %w", err)
	}
	defer rows.Close()

	plans := make([]*domain.RoutePlan, 0, limit)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("list plans: scan row: %w", err)
		}
		var plan domain.RoutePlan
		if err := json.Unmarshal([]byte(data), &plan); err != nil {
			return nil, fmt.Errorf("list plans: unmarshal: %w", err)
		}
		plans = append(plans, &plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: row iteration: %w", err)
	}

	return plans, nil
}
