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

package session

import (
	"strings"
	"testing"
	"time"
)

// TestPurpose: Validates the persisted blob cannot be forged or edited: a
// client rewriting its tenant binding must come back as no session.
// Scope: Unit Test
// Security: Session token integrity
// Expected: Decode yields nil for tokens signed with another key, tokens
// with a modified payload, and tokens from another issuer.
// Test Case ID: TOK-01
func TestTokenCodec_TamperResistance(t *testing.T) {
	codec := NewTokenCodec(testSecret, "gymfit-test", time.Hour)
	tenantID := "t-caxufit"
	sess := &Session{ID: "sess-1", UserID: "user-1", TenantID: &tenantID, IssuedAt: time.Now()}

	token, err := codec.Encode(sess)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if got := codec.Decode(token); got == nil || got.SessionID != sess.ID {
		t.Fatalf("expected clean decode, got %v", got)
	}

	// Different signing key.
	other := NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), "gymfit-test", time.Hour)
	if other.Decode(token) != nil {
		t.Error("expected nil for token signed with another key")
	}

	// Edited payload keeps the old signature.
	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if codec.Decode(strings.Join(parts, ".")) != nil {
		t.Error("expected nil for tampered payload")
	}

	// Wrong issuer.
	foreign := NewTokenCodec(testSecret, "other-service", time.Hour)
	foreignToken, err := foreign.Encode(sess)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if codec.Decode(foreignToken) != nil {
		t.Error("expected nil for foreign issuer")
	}
}
