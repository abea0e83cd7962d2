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

// Package tool defines the interface between gated actions and the
// confirmation machinery around them.
package tool

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"google.golang.org/toolgate/confirmation"
)

// Tool describes a callable tool.
type Tool interface {
	// Name returns the name of the tool.
	Name() string
	// Description returns a description of the tool.
	Description() string
}

// Context is handed to a tool function when it executes. Besides the plain
// request context it exposes the confirmation surface: whether a decision is
// already attached to this attempt, and a way to suspend for approval.
type Context interface {
	context.Context

	// SessionID identifies the owning session.
	SessionID() string

	// FunctionCallID is unique per tool call attempt.
	FunctionCallID() string

	// ToolConfirmation returns the approver's decision when this attempt is a
	// resumption, nil on a fresh attempt.
	ToolConfirmation() *confirmation.ToolConfirmation

	// RequestConfirmation asks to suspend the current invocation until a
	// human decides. The hint tells the approver what they are approving;
	// the payload echoes whatever context they need to decide.
	RequestConfirmation(hint string, payload map[string]any) error
}

// Actions collects what a tool asked for during one execution. The caller
// owns the value and inspects it after the tool returns.
type Actions struct {
	// RequestedConfirmation is set when the tool asked to suspend.
	RequestedConfirmation *confirmation.Request
}

// NewContext builds the Context for one tool call attempt. The confirmation
// is nil on a fresh attempt and carries the approver's decision on a
// resumption.
func NewContext(ctx context.Context, sessionID, functionCallID string, tc *confirmation.ToolConfirmation, actions *Actions) Context {
	if functionCallID == "" {
		functionCallID = uuid.NewString()
	}
	if actions == nil {
		actions = &Actions{}
	}
	return &toolContext{
		Context:        ctx,
		sessionID:      sessionID,
		functionCallID: functionCallID,
		confirmation:   tc,
		actions:        actions,
	}
}

type toolContext struct {
	context.Context
	sessionID      string
	functionCallID string
	confirmation   *confirmation.ToolConfirmation
	actions        *Actions
}

func (c *toolContext) SessionID() string {
	return c.sessionID
}

func (c *toolContext) FunctionCallID() string {
	return c.functionCallID
}

func (c *toolContext) ToolConfirmation() *confirmation.ToolConfirmation {
	return c.confirmation
}

func (c *toolContext) RequestConfirmation(hint string, payload map[string]any) error {
	if c.functionCallID == "" {
		return fmt.Errorf("function call id not set when requesting confirmation for tool")
	}
	c.actions.RequestedConfirmation = &confirmation.Request{
		ID:      c.functionCallID,
		Hint:    hint,
		Payload: maps.Clone(payload),
	}
	return nil
}
