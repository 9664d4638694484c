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

package plan

import (
	"context"
	"fmt"
	"sort"
)

// Catalog is a read-only snapshot of the available plans. The snapshot is
// built once (from the builtin seed or from the plan repository) and is safe
// for concurrent reads; updates replace the whole Catalog rather than
// mutating a live one, so no reader observes a half-updated plan.
type Catalog struct {
	byID   map[string]*Plan
	byTier map[Tier]*Plan
}

// NewCatalog builds a catalog snapshot from the given plans.
func NewCatalog(plans []*Plan) (*Catalog, error) {
	c := &Catalog{
		byID:   make(map[string]*Plan, len(plans)),
		byTier: make(map[Tier]*Plan, len(plans)),
	}
	for _, p := range plans {
		if p.ID == "" {
			return nil, fmt.Errorf("plan with tier %q has no id", p.Tier)
		}
		if !p.Tier.Valid() {
			return nil, fmt.Errorf("plan %s has unknown tier %q", p.ID, p.Tier)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate plan id %s", p.ID)
		}
		c.byID[p.ID] = p
		c.byTier[p.Tier] = p
	}
	return c, nil
}

// Load builds a catalog from the plan repository.
func Load(ctx context.Context, repo Repository) (*Catalog, error) {
	plans, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan catalog: %w", err)
	}
	return NewCatalog(plans)
}

// Get returns the plan with the given ID.
func (c *Catalog) Get(id string) (*Plan, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

// GetByTier returns the plan for the given tier.
func (c *Catalog) GetByTier(tier Tier) (*Plan, error) {
	p, ok := c.byTier[tier]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

// List returns all plans ordered from lowest to highest tier.
func (c *Catalog) List() []*Plan {
	plans := make([]*Plan, 0, len(c.byID))
	for _, p := range c.byID {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].Tier.Less(plans[j].Tier)
	})
	return plans
}

// Builtin returns the seed catalog shipped with the product. The repository
// seeds these rows during migration; the IDs are stable and referenced by
// tenant records.
func Builtin() *Catalog {
	c, err := NewCatalog(BuiltinPlans())
	if err != nil {
		// BuiltinPlans is a compile-time constant set; a failure here is a
		// programming error.
		panic(err)
	}
	return c
}

// BuiltinPlans returns the three product tiers.
func BuiltinPlans() []*Plan {
	return []*Plan{
		{
			ID:           "plan-master",
			Tier:         TierMaster,
			DisplayName:  "Master",
			Description:  "For small single-trainer gyms",
			PriceMonthly: 49.90,
			PriceYearly:  479.00,
			StaffQuota:   1,
			Features: map[Feature]bool{
				FeatureCustomFields:      false,
				FeatureAnalyticsCharts:   false,
				FeatureStorefront:        false,
				FeatureCustomLandingPage: false,
			},
		},
		{
			ID:           "plan-premium",
			Tier:         TierPremium,
			DisplayName:  "Premium",
			Description:  "For growing gyms",
			PriceMonthly: 99.90,
			PriceYearly:  959.00,
			StaffQuota:   3,
			Features: map[Feature]bool{
				FeatureCustomFields:      true,
				FeatureAnalyticsCharts:   true,
				FeatureStorefront:        false,
				FeatureCustomLandingPage: false,
			},
		},
		{
			ID:           "plan-elite",
			Tier:         TierElite,
			DisplayName:  "Elite",
			Description:  "Full feature set",
			PriceMonthly: 199.90,
			PriceYearly:  1919.00,
			StaffQuota:   10,
			Features: map[Feature]bool{
				FeatureCustomFields:      true,
				FeatureAnalyticsCharts:   true,
				FeatureStorefront:        true,
				FeatureCustomLandingPage: true,
			},
		},
	}
}
