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

// Package gate enforces human approval around side-effecting tool calls.
//
// A Gate wraps one gated action with a per-tool threshold policy. Small
// invocations execute immediately; large ones suspend, surface a
// confirmation request, and execute at most once when the approver's
// decision arrives on a later turn.
package gate

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"google.golang.org/toolgate/confirmation"
	"google.golang.org/toolgate/internal/telemetry"
	"google.golang.org/toolgate/policy"
	"google.golang.org/toolgate/session"
	"google.golang.org/toolgate/tool"
)

// Action executes the gated side effect once approval, automatic or human,
// is settled. The context exposes the attached decision (nil on the
// auto-approve path). The returned fields become the approved result; a
// "message" entry, if present, is lifted into the result message.
type Action func(ctx tool.Context, args map[string]any) (map[string]any, error)

// Config is used to create a [Gate].
type Config struct {
	// Name of the gated tool. Required.
	Name string
	// Description of the gated tool.
	Description string

	// Threshold is the size boundary above which approval is required.
	// Must be >= 0.
	Threshold int
	// SizeArg names the invocation argument holding the size attribute the
	// threshold applies to. When empty the policy never fires and the gate
	// relies on the action requesting confirmation itself.
	SizeArg string

	// Hint builds the approver-facing explanation for a suspension.
	// Optional; a generic hint is used when nil.
	Hint func(args map[string]any) string

	// Action is the gated operation. Required.
	Action Action

	// Sessions stores suspended invocations. Required.
	Sessions session.Service

	// TTL bounds how long a suspension may stay pending. Zero means an
	// approval can remain outstanding indefinitely, which is the default.
	TTL time.Duration
}

// Gate is the confirmation state machine for one gated tool.
type Gate struct {
	name        string
	description string
	policy      *policy.Threshold
	sizeArg     string
	hint        func(args map[string]any) string
	action      Action
	sessions    session.Service
	ttl         time.Duration
}

// New creates a [Gate]. Configuration problems are reported before any
// invocation state can be written.
func New(cfg Config) (*Gate, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrConfiguration)
	}
	if cfg.Action == nil {
		return nil, fmt.Errorf("%w: gate %q requires an action", ErrConfiguration, cfg.Name)
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("%w: gate %q requires a session service", ErrConfiguration, cfg.Name)
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("%w: gate %q has negative TTL %v", ErrConfiguration, cfg.Name, cfg.TTL)
	}
	threshold, err := policy.NewThreshold(cfg.Threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: gate %q: %w", ErrConfiguration, cfg.Name, err)
	}

	hint := cfg.Hint
	if hint == nil {
		name := cfg.Name
		hint = func(map[string]any) string {
			return fmt.Sprintf("Tool %q requires approval before executing.", name)
		}
	}

	return &Gate{
		name:        cfg.Name,
		description: cfg.Description,
		policy:      threshold,
		sizeArg:     cfg.SizeArg,
		hint:        hint,
		action:      cfg.Action,
		sessions:    cfg.Sessions,
		ttl:         cfg.TTL,
	}, nil
}

// Name implements tool.Tool.
func (g *Gate) Name() string { return g.name }

// Description implements tool.Tool.
func (g *Gate) Description() string { return g.description }

// Evaluate runs one attempt of the gated tool call. With a nil decision this
// is a fresh attempt: the threshold is checked and the call either executes
// or suspends. With a decision attached it is a resumption and delegates to
// [Gate.Resume]; the invocation's arguments are ignored in favor of the
// stored record, so an approver cannot silently alter what they approved.
func (g *Gate) Evaluate(ctx context.Context, inv *session.Invocation, decision *confirmation.ToolConfirmation) (*Result, error) {
	if decision != nil {
		return g.Resume(ctx, inv.SessionID, decision)
	}

	ctx, end := telemetry.StartSpan(ctx, "toolgate.evaluate",
		attribute.String("tool", g.name),
		attribute.String("session", inv.SessionID))
	defer end()

	// One outstanding gated call per session. A second one is rejected
	// rather than queued.
	_, err := g.sessions.Pending(ctx, inv.SessionID)
	if err == nil {
		return nil, fmt.Errorf("%w: session %s", session.ErrPendingInvocationExists, inv.SessionID)
	}
	if !errors.Is(err, session.ErrNoPendingInvocation) {
		return nil, err
	}

	if g.sizeArg != "" {
		size, err := g.size(inv)
		if err != nil {
			return nil, err
		}
		if g.policy.Decide(size) == policy.RequireConfirmation {
			return g.suspend(ctx, inv, g.hint(inv.Args), maps.Clone(inv.Args))
		}
	}

	actions := &tool.Actions{}
	tctx := tool.NewContext(ctx, inv.SessionID, inv.ID, nil, actions)
	fields, err := g.action(tctx, inv.Args)
	if err != nil {
		return nil, &ActionError{Tool: g.name, Err: err}
	}

	// The action may gate itself regardless of the threshold.
	if req := actions.RequestedConfirmation; req != nil {
		return g.suspend(ctx, inv, req.Hint, req.Payload)
	}

	message, rest := popMessage(fields)
	if message == "" {
		message = fmt.Sprintf("Tool %q executed.", g.name)
	}
	return Approved(message, rest), nil
}

// Resume applies the approver's decision to the session's suspended
// invocation. The threshold is not re-evaluated: the stored record is
// trusted, so a config change between suspend and resume cannot flip the
// outcome. Resuming an already-resolved invocation returns the previously
// computed terminal result without executing the action again.
func (g *Gate) Resume(ctx context.Context, sessionID string, decision *confirmation.ToolConfirmation) (*Result, error) {
	ctx, end := telemetry.StartSpan(ctx, "toolgate.resume",
		attribute.String("tool", g.name),
		attribute.String("session", sessionID),
		attribute.Bool("confirmed", decision.Confirmed))
	defer end()

	rec, err := g.sessions.TakePending(ctx, sessionID)
	if errors.Is(err, session.ErrNoPendingInvocation) {
		if res, rerr := g.sessions.Resolution(ctx, sessionID); rerr == nil {
			return resultFromResolution(res), nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if rec.Invocation.ToolName != g.name {
		return nil, fmt.Errorf("pending invocation of session %s belongs to tool %q, not %q", sessionID, rec.Invocation.ToolName, g.name)
	}

	now := time.Now()
	if rec.Expired(now) {
		return nil, fmt.Errorf("%w: session %s suspended at %v", session.ErrPendingInvocationExpired, sessionID, rec.Created)
	}

	if !decision.Confirmed {
		result := Rejected(fmt.Sprintf("Invocation of %q was rejected by the approver.", g.name))
		if err := g.resolve(ctx, sessionID, rec, confirmation.Rejected, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	// The record is already cleared. If the action fails now the invocation
	// stays resolved; it is reported, not retried.
	actions := &tool.Actions{}
	tctx := tool.NewContext(ctx, sessionID, rec.Invocation.ID, decision, actions)
	fields, err := g.action(tctx, rec.Invocation.Args)
	if err != nil {
		aerr := &ActionError{Tool: g.name, Err: err}
		result := Errored(aerr.Error())
		if rerr := g.resolve(ctx, sessionID, rec, confirmation.Confirmed, result); rerr != nil {
			return nil, rerr
		}
		return nil, aerr
	}

	message, rest := popMessage(fields)
	if message == "" {
		message = fmt.Sprintf("Tool %q executed after approval.", g.name)
	}
	result := Approved(message, rest)
	if err := g.resolve(ctx, sessionID, rec, confirmation.Confirmed, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Gate) size(inv *session.Invocation) (int, error) {
	raw, ok := inv.Args[g.sizeArg]
	if !ok {
		return 0, fmt.Errorf("%w: gate %q expects size attribute %q in the arguments", ErrConfiguration, g.name, g.sizeArg)
	}
	size, ok := asInt(raw)
	if !ok {
		return 0, fmt.Errorf("%w: gate %q size attribute %q is %v (%T), not an integer", ErrConfiguration, g.name, g.sizeArg, raw, raw)
	}
	return size, nil
}

func (g *Gate) suspend(ctx context.Context, inv *session.Invocation, hint string, payload map[string]any) (*Result, error) {
	now := time.Now()
	rec := &session.PendingInvocation{
		Invocation: *inv.Clone(),
		State:      confirmation.Pending,
		Hint:       hint,
		Payload:    payload,
		Created:    now,
	}
	if g.ttl > 0 {
		rec.Expires = now.Add(g.ttl)
	}
	if err := g.sessions.PutPending(ctx, rec); err != nil {
		return nil, err
	}
	req := &confirmation.Request{
		ID:       inv.ID,
		ToolName: g.name,
		Hint:     hint,
		Payload:  payload,
	}
	return Pending(fmt.Sprintf("Invocation of %q requires approval.", g.name), req), nil
}

func (g *Gate) resolve(ctx context.Context, sessionID string, rec *session.PendingInvocation, state confirmation.State, result *Result) error {
	return g.sessions.PutResolution(ctx, sessionID, &session.Resolution{
		InvocationID: rec.Invocation.ID,
		ToolName:     g.name,
		State:        state,
		Status:       string(result.Status),
		Message:      result.Message,
		Fields:       maps.Clone(result.Fields),
		Resolved:     time.Now(),
	})
}

func resultFromResolution(res *session.Resolution) *Result {
	switch Status(res.Status) {
	case StatusApproved:
		return Approved(res.Message, maps.Clone(res.Fields))
	case StatusRejected:
		return Rejected(res.Message)
	default:
		return Errored(res.Message)
	}
}

func popMessage(fields map[string]any) (string, map[string]any) {
	message, ok := fields["message"].(string)
	if !ok {
		return "", fields
	}
	rest := maps.Clone(fields)
	delete(rest, "message")
	return message, rest
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	default:
		return 0, false
	}
}

// floatToInt accepts only integral floats. JSON decoding delivers counts as
// float64, and a fractional size must not truncate below the threshold.
func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
