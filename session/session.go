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

// Package session stores the suspended state of gated tool invocations.
//
// A session owns at most one pending invocation at a time. The store is the
// correlation point between a suspension and the later turn that resumes it:
// the resumed attempt replays the arguments recorded here, never arguments
// supplied with the decision.
package session

import (
	"context"
	"maps"
	"time"

	"google.golang.org/toolgate/confirmation"
)

// Invocation identifies one tool call attempt. A resumed attempt is a new
// Invocation value carrying the same ID, session and arguments as the
// suspended one.
type Invocation struct {
	// ID is unique per attempt, typically the function call id.
	ID string
	// SessionID is the owning session.
	SessionID string
	// ToolName is the tool being invoked.
	ToolName string
	// Args are the named invocation parameters. Never mutated after creation.
	Args map[string]any
}

// Clone returns a deep enough copy for handing out of the store.
func (inv *Invocation) Clone() *Invocation {
	if inv == nil {
		return nil
	}
	c := *inv
	c.Args = maps.Clone(inv.Args)
	return &c
}

// PendingInvocation is the suspended state of a gated tool call awaiting an
// external decision.
type PendingInvocation struct {
	// Invocation is the original request, replayed verbatim on resumption.
	Invocation Invocation
	// State is Pending for as long as the record is stored.
	State confirmation.State
	// Hint explains to the approver why the call suspended.
	Hint string
	// Payload echoes the arguments for the approver's reference.
	Payload map[string]any
	// Created is when the invocation suspended.
	Created time.Time
	// Expires bounds how long the record may stay pending.
	// Zero means the record never expires.
	Expires time.Time
}

// Expired reports whether the record's expiry has passed at now.
func (p *PendingInvocation) Expired(now time.Time) bool {
	return !p.Expires.IsZero() && now.After(p.Expires)
}

// Clone returns a copy safe to hand to callers without exposing store
// internals to mutation.
func (p *PendingInvocation) Clone() *PendingInvocation {
	if p == nil {
		return nil
	}
	c := *p
	c.Invocation = *p.Invocation.Clone()
	c.Payload = maps.Clone(p.Payload)
	return &c
}

// Resolution is the terminal outcome retained after a pending invocation
// resolves. It lets a duplicate resumption observe the already-computed
// result instead of executing the gated action a second time.
type Resolution struct {
	// InvocationID correlates the resolution with the resolved attempt.
	InvocationID string
	// ToolName is the tool that was gated.
	ToolName string
	// State is Confirmed or Rejected.
	State confirmation.State
	// Status is the terminal result status: approved, rejected or error.
	Status string
	// Message is the human-readable outcome.
	Message string
	// Fields are the domain fields of an approved result, nil otherwise.
	Fields map[string]any
	// Resolved is when the decision was applied.
	Resolved time.Time
}

// Clone returns a copy safe to hand to callers.
func (r *Resolution) Clone() *Resolution {
	if r == nil {
		return nil
	}
	c := *r
	c.Fields = maps.Clone(r.Fields)
	return &c
}

// Service is keyed storage of pending invocations and their resolutions.
// Implementations must isolate sessions from each other and keep operations
// on a single session id linearizable, so a stale resumption can never
// revive a cleared record.
type Service interface {
	// PutPending stores the record for its session. It fails with
	// ErrPendingInvocationExists if the session already has one.
	PutPending(ctx context.Context, rec *PendingInvocation) error

	// Pending returns the session's pending record without consuming it.
	// It fails with ErrNoPendingInvocation when there is none.
	Pending(ctx context.Context, sessionID string) (*PendingInvocation, error)

	// TakePending atomically removes and returns the session's pending
	// record. It fails with ErrNoPendingInvocation when there is none.
	TakePending(ctx context.Context, sessionID string) (*PendingInvocation, error)

	// ClearPending removes the session's pending record if present.
	ClearPending(ctx context.Context, sessionID string) error

	// PutResolution records the terminal outcome for a session, replacing
	// any previous one.
	PutResolution(ctx context.Context, sessionID string, res *Resolution) error

	// Resolution returns the session's most recent terminal outcome.
	// It fails with ErrNoResolution when there is none.
	Resolution(ctx context.Context, sessionID string) (*Resolution, error)
}
