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
	"errors"
)

// Domain errors
var (
	ErrPlanNotFound = errors.New("plan not found")
)

// Tier identifies a subscription tier. Tiers are ordered:
// master < premium < elite.
type Tier string

const (
	TierMaster  Tier = "master"
	TierPremium Tier = "premium"
	TierElite   Tier = "elite"
)

// tierRank orders tiers for comparison. Unknown tiers rank below master.
var tierRank = map[Tier]int{
	TierMaster:  1,
	TierPremium: 2,
	TierElite:   3,
}

// Less reports whether t is a lower tier than other.
func (t Tier) Less(other Tier) bool {
	return tierRank[t] < tierRank[other]
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Feature is a boolean capability a plan may enable for a tenant.
type Feature string

const (
	FeatureCustomFields      Feature = "custom_fields"
	FeatureAnalyticsCharts   Feature = "analytics_charts"
	FeatureStorefront        Feature = "storefront"
	FeatureCustomLandingPage Feature = "custom_landing_page"
)

// Plan is a subscription tier record. Plans are immutable once referenced
// by a tenant; the catalog is seeded at provisioning time and never mutated
// at runtime.
type Plan struct {
	ID           string
	Tier         Tier
	DisplayName  string
	Description  string
	PriceMonthly float64
	PriceYearly  float64

	// StaffQuota is the maximum number of staff-trainer users the plan
	// permits per tenant.
	StaffQuota int

	Features map[Feature]bool
}

// HasFeature reports whether the plan enables the given feature.
func (p *Plan) HasFeature(f Feature) bool {
	if p == nil {
		return false
	}
	return p.Features[f]
}

// Repository defines the interface for plan storage.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
}
