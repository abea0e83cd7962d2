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

package session

import "errors"

var (
	// ErrNoPendingInvocation is returned when a resumption arrives for a
	// session with nothing to resume. Callers must treat it as a protocol
	// violation, not silently succeed.
	ErrNoPendingInvocation = errors.New("no pending invocation for session")

	// ErrPendingInvocationExists is returned when a gated call arrives while
	// the session already has an invocation awaiting a decision.
	ErrPendingInvocationExists = errors.New("session already has a pending invocation")

	// ErrPendingInvocationExpired is returned when a resumption arrives after
	// the pending record's expiry passed.
	ErrPendingInvocationExpired = errors.New("pending invocation expired")

	// ErrNoResolution is returned when a session has no recorded terminal
	// outcome.
	ErrNoResolution = errors.New("no resolved invocation for session")
)
