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

// Package runner drives one conversational turn through the confirmation
// gates.
//
// A turn is either a fresh request, in which case the planner selects a tool
// call and the matching gate evaluates it, or a resumption carrying an
// approver's decision, in which case the suspended invocation is replayed
// with the decision attached. The runner never blocks waiting for an
// approval: a suspension returns immediately as a pending turn.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"google.golang.org/toolgate/confirmation"
	"google.golang.org/toolgate/gate"
	"google.golang.org/toolgate/internal/telemetry"
	"google.golang.org/toolgate/session"
)

// Planner is the external reasoning step that selects a tool call for a user
// turn. Returning a nil call means the turn needs no tool.
type Planner interface {
	Plan(ctx context.Context, sessionID string, message *genai.Content) (*genai.FunctionCall, error)
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, sessionID string, message *genai.Content) (*genai.FunctionCall, error)

func (f PlannerFunc) Plan(ctx context.Context, sessionID string, message *genai.Content) (*genai.FunctionCall, error) {
	return f(ctx, sessionID, message)
}

// Config is used to create a [Runner].
type Config struct {
	// AppName labels the application for telemetry.
	AppName string
	// Planner selects tool calls for fresh turns. Required.
	Planner Planner
	// Sessions must be the same service the gates use. Required.
	Sessions session.Service
	// Gates are the tools this runner can route to.
	Gates []*gate.Gate
}

// Runner orchestrates turns for an application.
type Runner struct {
	appName  string
	planner  Planner
	sessions session.Service
	gates    map[string]*gate.Gate
}

// New creates a new [Runner].
func New(cfg Config) (*Runner, error) {
	if cfg.Planner == nil {
		return nil, fmt.Errorf("planner is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session service is required")
	}
	gates := make(map[string]*gate.Gate, len(cfg.Gates))
	for _, g := range cfg.Gates {
		if _, ok := gates[g.Name()]; ok {
			return nil, fmt.Errorf("duplicate gate %q", g.Name())
		}
		gates[g.Name()] = g
	}
	return &Runner{
		appName:  cfg.AppName,
		planner:  cfg.Planner,
		sessions: cfg.Sessions,
		gates:    gates,
	}, nil
}

// Turn is the outcome of one orchestrated turn.
type Turn struct {
	// SessionID is the session the turn belongs to.
	SessionID string
	// ToolName is the tool that was invoked, if any.
	ToolName string
	// Result is the gate outcome. Nil when the turn involved no tool call.
	// A pending result carries the confirmation request for the approver.
	Result *gate.Result
	// Err holds the typed failure behind a StatusError result, so callers
	// can distinguish protocol violations from action failures.
	Err error
}

// Run executes one turn. A message carrying a confirmation FunctionResponse
// is treated as a resumption of the session's suspended invocation; any
// other message is planned as a fresh request.
//
// Gate and protocol failures are rendered as a StatusError result with the
// typed cause in Turn.Err; Run itself fails only on malformed input or
// planner errors.
func (r *Runner) Run(ctx context.Context, sessionID string, message *genai.Content) (*Turn, error) {
	if message == nil {
		return nil, fmt.Errorf("message is required")
	}

	ctx, end := telemetry.StartSpan(ctx, "toolgate.turn",
		attribute.String("app", r.appName),
		attribute.String("session", sessionID))
	defer end()

	decision, err := decisionFrom(message)
	if err != nil {
		return nil, err
	}
	if decision != nil {
		return r.resume(ctx, sessionID, decision)
	}

	call, err := r.planner.Plan(ctx, sessionID, message)
	if err != nil {
		return nil, fmt.Errorf("planner failed: %w", err)
	}
	if call == nil {
		return &Turn{SessionID: sessionID}, nil
	}

	g, ok := r.gates[call.Name]
	if !ok {
		return nil, fmt.Errorf("planner selected unknown tool %q", call.Name)
	}

	id := call.ID
	if id == "" {
		id = uuid.NewString()
	}
	inv := &session.Invocation{
		ID:        id,
		SessionID: sessionID,
		ToolName:  call.Name,
		Args:      call.Args,
	}
	result, err := g.Evaluate(ctx, inv, nil)
	return r.turn(sessionID, call.Name, result, err), nil
}

// resume correlates the inbound decision with the session's suspended
// invocation. The stored record decides which gate resumes and with which
// arguments; nothing from the resumption message can alter them.
func (r *Runner) resume(ctx context.Context, sessionID string, decision *confirmation.ToolConfirmation) (*Turn, error) {
	var toolName string
	rec, err := r.sessions.Pending(ctx, sessionID)
	switch {
	case err == nil:
		toolName = rec.Invocation.ToolName
	case errors.Is(err, session.ErrNoPendingInvocation):
		// Possibly a duplicate decision for an already-resolved invocation.
		res, rerr := r.sessions.Resolution(ctx, sessionID)
		if rerr != nil {
			return r.turn(sessionID, "", nil, err), nil
		}
		toolName = res.ToolName
	default:
		return nil, err
	}

	g, ok := r.gates[toolName]
	if !ok {
		return nil, fmt.Errorf("suspended invocation belongs to unknown tool %q", toolName)
	}
	result, err := g.Resume(ctx, sessionID, decision)
	return r.turn(sessionID, toolName, result, err), nil
}

func (r *Runner) turn(sessionID, toolName string, result *gate.Result, err error) *Turn {
	if err != nil {
		return &Turn{
			SessionID: sessionID,
			ToolName:  toolName,
			Result:    gate.Errored(err.Error()),
			Err:       err,
		}
	}
	return &Turn{SessionID: sessionID, ToolName: toolName, Result: result}
}

func decisionFrom(message *genai.Content) (*confirmation.ToolConfirmation, error) {
	for _, part := range message.Parts {
		if part == nil || part.FunctionResponse == nil {
			continue
		}
		tc, err := confirmation.FromFunctionResponse(part.FunctionResponse)
		if err != nil {
			return nil, err
		}
		if tc != nil {
			return tc, nil
		}
	}
	return nil, nil
}

// NewDecisionContent builds the message an approver sends to resume a
// suspended invocation.
func NewDecisionContent(confirmed bool, payload any) *genai.Content {
	response := map[string]any{"confirmed": confirmed}
	if payload != nil {
		response["payload"] = payload
	}
	return &genai.Content{
		Role: string(genai.RoleUser),
		Parts: []*genai.Part{{
			FunctionResponse: &genai.FunctionResponse{
				Name:     confirmation.RequestConfirmationFunctionCallName,
				Response: response,
			},
		}},
	}
}
