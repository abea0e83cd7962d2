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

// Package confirmation provides the structures exchanged with a human
// approver when a tool execution is gated on their decision.
package confirmation

import "fmt"

// State tracks where a gated invocation stands in the approval protocol.
type State int

const (
	// None is the state before any gate evaluation.
	None State = iota
	// Pending means the invocation is suspended awaiting a decision.
	Pending
	// Confirmed means the approver allowed the action. Only ever set from an
	// external decision, never derived internally.
	Confirmed
	// Rejected means the approver denied the action.
	Rejected
)

func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ToolConfirmation is the approver's decision for one suspended tool call,
// delivered back on a later turn.
type ToolConfirmation struct {
	// Confirmed is true if the approver allowed the action.
	Confirmed bool

	// Payload carries any additional context the approver attached.
	// Application-specific; may be nil.
	Payload any
}

// Request is surfaced to the approver when an invocation suspends. It echoes
// the original arguments so the approver sees exactly what they are deciding
// about.
type Request struct {
	// ID correlates the request with the suspended invocation.
	ID string
	// ToolName is the tool whose execution is gated.
	ToolName string
	// Hint explains why confirmation is needed.
	Hint string
	// Payload echoes the invocation arguments for the approver's reference.
	Payload map[string]any
}
