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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPurpose: Validates the builtin catalog matches the product tiers the
// rest of the system depends on (quotas, feature sets, tier ordering).
// Scope: Unit Test
// Expected: Three plans with quotas 1/3/10, features strictly increasing by
// tier, and tiers totally ordered master < premium < elite.
// Test Case ID: PLN-01
func TestPlan_BuiltinCatalog(t *testing.T) {
	c := Builtin()

	master, err := c.GetByTier(TierMaster)
	require.NoError(t, err)
	premium, err := c.GetByTier(TierPremium)
	require.NoError(t, err)
	elite, err := c.GetByTier(TierElite)
	require.NoError(t, err)

	assert.Equal(t, 1, master.StaffQuota)
	assert.Equal(t, 3, premium.StaffQuota)
	assert.Equal(t, 10, elite.StaffQuota)

	assert.False(t, master.HasFeature(FeatureAnalyticsCharts))
	assert.True(t, premium.HasFeature(FeatureAnalyticsCharts))
	assert.True(t, premium.HasFeature(FeatureCustomFields))
	assert.False(t, premium.HasFeature(FeatureStorefront))
	assert.True(t, elite.HasFeature(FeatureStorefront))
	assert.True(t, elite.HasFeature(FeatureCustomLandingPage))

	assert.True(t, TierMaster.Less(TierPremium))
	assert.True(t, TierPremium.Less(TierElite))
	assert.False(t, TierElite.Less(TierMaster))
}

// TestPurpose: Validates catalog lookups fail closed for unknown plans.
// Scope: Unit Test
// Expected: ErrPlanNotFound for IDs and tiers outside the catalog.
// Test Case ID: PLN-02
func TestPlan_Catalog_UnknownPlan(t *testing.T) {
	c := Builtin()

	_, err := c.Get("plan-enterprise")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	_, err = c.GetByTier(Tier("platinum"))
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

// TestPurpose: Validates catalog construction rejects malformed plan sets.
// Scope: Unit Test
// Expected: Errors for duplicate IDs and invalid tiers.
// Test Case ID: PLN-03
func TestPlan_NewCatalog_Validation(t *testing.T) {
	plans := BuiltinPlans()
	plans[1].ID = plans[0].ID

	_, err := NewCatalog(plans)
	assert.Error(t, err)

	_, err = NewCatalog([]*Plan{{ID: "plan-x", Tier: Tier("bogus"), StaffQuota: 1}})
	assert.Error(t, err)
}
