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

import (
	"errors"
	"fmt"
)

// ErrConfiguration is returned when a gate cannot be built or evaluated
// because its configuration is incomplete or inconsistent. It aborts the
// invocation before any state is written.
var ErrConfiguration = errors.New("gate: invalid configuration")

// ActionError reports that the gated action itself failed after approval was
// settled. The pending record is already cleared when this is returned: the
// resolve-at-most-once invariant takes priority over retrying, so retries
// are the action's own concern.
type ActionError struct {
	// Tool is the gate the action belongs to.
	Tool string
	// Err is the failure returned by the action.
	Err error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("gated action %q failed: %v", e.Tool, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
