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

package gate

import "google.golang.org/toolgate/confirmation"

// Status tags a Result.
type Status string

const (
	// StatusApproved means the gated action executed.
	StatusApproved Status = "approved"
	// StatusPending means the invocation suspended awaiting approval.
	StatusPending Status = "pending"
	// StatusRejected means the approver denied the action.
	StatusRejected Status = "rejected"
	// StatusError means the invocation failed terminally.
	StatusError Status = "error"
)

// Result is the outcome of one gate evaluation. Use the constructors; they
// enforce which fields each status may carry.
type Result struct {
	// Status tags the outcome.
	Status Status
	// Message is human-readable.
	Message string
	// Fields are domain results of the executed action.
	// Populated only when Status is StatusApproved.
	Fields map[string]any
	// Confirmation is the approval request surfaced to the approver.
	// Populated only when Status is StatusPending.
	Confirmation *confirmation.Request
}

// Approved builds the result of an executed action.
func Approved(message string, fields map[string]any) *Result {
	return &Result{Status: StatusApproved, Message: message, Fields: fields}
}

// Pending builds the result of a suspended invocation. The request gives the
// approver the hint and echoed arguments they need to decide.
func Pending(message string, req *confirmation.Request) *Result {
	return &Result{Status: StatusPending, Message: message, Confirmation: req}
}

// Rejected builds the result of a denied invocation.
func Rejected(message string) *Result {
	return &Result{Status: StatusRejected, Message: message}
}

// Errored builds the result of a terminally failed invocation.
func Errored(message string) *Result {
	return &Result{Status: StatusError, Message: message}
}
