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

package http

import (
	"testing"
	"time"
)

// TestPurpose: Validates per-IP token buckets are independent and exhaust
// at the configured burst.
// Scope: Unit Test
// Expected: One client draining its burst gets refused while a second
// client is unaffected; a drained bucket refills over time.
// Test Case ID: RLM-01
func TestRateLimiter_PerIPBuckets(t *testing.T) {
	rl := NewRateLimiter(100, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst refused", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("expected refusal past the burst")
	}

	if !rl.Allow("10.0.0.2") {
		t.Error("a different client must have its own bucket")
	}

	// 100 rps refills a token in 10ms.
	time.Sleep(50 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Error("expected the bucket to refill")
	}
}
