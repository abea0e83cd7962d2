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

// Package policy decides whether a gated tool invocation may execute
// automatically or has to be approved by a human first.
//
// The decision is a pure function of the invocation's size attribute and a
// per-tool threshold supplied at gate construction time. Policies carry no
// state of their own.
package policy

import (
	"errors"
	"fmt"
)

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	// AutoApprove allows the invocation to execute without human review.
	AutoApprove Decision = iota
	// RequireConfirmation suspends the invocation until a human decides.
	RequireConfirmation
)

func (d Decision) String() string {
	switch d {
	case AutoApprove:
		return "auto_approve"
	case RequireConfirmation:
		return "require_confirmation"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// ErrInvalidThreshold is returned when a threshold cannot express a valid
// policy. It is a configuration error: nothing is evaluated and no state is
// written on its behalf.
var ErrInvalidThreshold = errors.New("invalid confirmation threshold")

// Decide returns RequireConfirmation when size exceeds threshold and
// AutoApprove otherwise. Pure and total for threshold >= 0.
func Decide(size, threshold int) Decision {
	if size <= threshold {
		return AutoApprove
	}
	return RequireConfirmation
}

// Threshold is the per-tool approval boundary. Tools with independent
// thresholds coexist; there is no global policy state.
type Threshold struct {
	limit int
}

// NewThreshold validates limit and returns the policy for it.
func NewThreshold(limit int) (*Threshold, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidThreshold, limit)
	}
	return &Threshold{limit: limit}, nil
}

// Decide evaluates the policy for one invocation's size attribute.
func (t *Threshold) Decide(size int) Decision {
	return Decide(size, t.limit)
}

// Limit returns the configured boundary.
func (t *Threshold) Limit() int {
	return t.limit
}
