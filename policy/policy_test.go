// Copyright 2025 Google LLC
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

package policy

import (
	"errors"
	"testing"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		threshold int
		want      Decision
	}{
		{name: "below threshold", size: 3, threshold: 5, want: AutoApprove},
		{name: "at threshold", size: 5, threshold: 5, want: AutoApprove},
		{name: "above threshold", size: 10, threshold: 5, want: RequireConfirmation},
		{name: "bulk images", size: 4, threshold: 1, want: RequireConfirmation},
		{name: "single image", size: 1, threshold: 1, want: AutoApprove},
		{name: "zero threshold", size: 1, threshold: 0, want: RequireConfirmation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.size, tt.threshold); got != tt.want {
				t.Errorf("Decide(%d, %d) = %v, want %v", tt.size, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestNewThreshold(t *testing.T) {
	th, err := NewThreshold(5)
	if err != nil {
		t.Fatalf("NewThreshold(5) unexpected error: %v", err)
	}
	if got := th.Limit(); got != 5 {
		t.Errorf("Limit() = %d, want 5", got)
	}
	if got := th.Decide(6); got != RequireConfirmation {
		t.Errorf("Decide(6) = %v, want RequireConfirmation", got)
	}

	if _, err := NewThreshold(-1); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("NewThreshold(-1) error = %v, want ErrInvalidThreshold", err)
	}
}

func TestDecisionString(t *testing.T) {
	if got := AutoApprove.String(); got != "auto_approve" {
		t.Errorf("AutoApprove.String() = %q", got)
	}
	if got := RequireConfirmation.String(); got != "require_confirmation" {
		t.Errorf("RequireConfirmation.String() = %q", got)
	}
}
