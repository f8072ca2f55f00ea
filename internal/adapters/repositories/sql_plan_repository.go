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

// Postgres-backed implementation of the PlanRepository port, for deployments
// that share one database between replicas. Same storage model as the SQLite
// flavor: opaque JSON keyed by id.
type SQLPlanRepository struct{ DB *sql.DB }

func NewSQLPlanRepository(db *sql.DB) *SQLPlanRepository {
	return &SQLPlanRepository{DB: db}
}

func (s *SQLPlanRepository) Save(ctx context.Context, plan *domain.RoutePlan) error {
	if s.DB == nil {
		return errors.New("sql plan repository: DB is nil")
	}
	if plan == nil || plan.ID == "" {
		return errors.New("save plan: plan with non-empty id required")
	}

	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("save plan %q: marshal: %w", plan.ID, err)
	}

	query := `
	INSERT INTO route_plans (id, data, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET
		data = EXCLUDED.data,
		created_at = EXCLUDED.created_at;
	`
	if _, err := s.DB.ExecContext(ctx, query, plan.ID, string(data), plan.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("save plan %q: upsert: %w", plan.ID, err)
	}

	return nil
}

func (s *SQLPlanRepository) GetByID(ctx context.Context, id string) (*domain.RoutePlan, error) {
	if s.DB == nil {
		return nil, errors.New("sql plan repository: DB is nil")
	}
	if id == "" {
		return nil, errors.New("get plan: id must be non-empty")
	}

	var data string
	query := `SELECT data FROM route_plans WHERE id = $1;`
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

func (s *SQLPlanRepository) ListRecent(ctx context.Context, limit int) ([]*domain.RoutePlan, error) {
	if s.DB == nil {
		return nil, errors.New("sql plan repository: DB is nil")
	}
	if limit <= 0 {
		return []*domain.RoutePlan{}, nil
	}

	query := `
	SELECT data
	FROM route_plans
	ORDER BY created_at DESC
	LIMIT $1;
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
