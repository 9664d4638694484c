// Copyright 2026 The GymFit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gymfit/gymfit/internal/plan"
)

// PlanRepository implements plan.Repository
type PlanRepository struct {
	db *DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, tier, display_name, description, price_monthly, price_yearly, staff_quota,
	custom_fields, analytics_charts, storefront, custom_landing_page`

func scanPlan(row pgx.Row) (*plan.Plan, error) {
	var p plan.Plan
	var customFields, analyticsCharts, storefront, customLandingPage bool

	err := row.Scan(
		&p.ID, &p.Tier, &p.DisplayName, &p.Description,
		&p.PriceMonthly, &p.PriceYearly, &p.StaffQuota,
		&customFields, &analyticsCharts, &storefront, &customLandingPage,
	)
	if err != nil {
		return nil, err
	}

	p.Features = map[plan.Feature]bool{
		plan.FeatureCustomFields:      customFields,
		plan.FeatureAnalyticsCharts:   analyticsCharts,
		plan.FeatureStorefront:        storefront,
		plan.FeatureCustomLandingPage: customLandingPage,
	}
	return &p, nil
}

// GetByID retrieves a plan by ID
func (r *PlanRepository) GetByID(ctx context.Context, id string) (*plan.Plan, error) {
	row := r.db.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, plan.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return p, nil
}

// List retrieves all plans
func (r *PlanRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	rows, err := r.db.pool.Query(ctx, `SELECT `+planColumns+` FROM plans ORDER BY staff_quota`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*plan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
