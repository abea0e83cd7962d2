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

// Package functiontool wraps a plain Go function as a callable tool. The
// input schema is derived from the function's argument type by reflection
// and used to validate incoming arguments before the function runs.
package functiontool

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"google.golang.org/toolgate/tool"
)

// Config configures the wrapped function.
type Config struct {
	// Name of the tool. Required.
	Name string
	// Description of the tool, shown to planners and approvers.
	Description string
}

// Handler is the function being wrapped. TArgs is decoded from the
// invocation arguments; TResults is marshalled into the result fields.
type Handler[TArgs, TResults any] func(ctx tool.Context, args TArgs) (TResults, error)

// Tool is a callable tool backed by a Go function.
type Tool[TArgs, TResults any] struct {
	name        string
	description string
	handler     Handler[TArgs, TResults]

	inputSchema   *jsonschema.Schema
	inputResolved *jsonschema.Resolved
}

// New wraps handler as a tool, deriving the argument schema from TArgs.
func New[TArgs, TResults any](cfg Config, handler Handler[TArgs, TResults]) (*Tool[TArgs, TResults], error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("function tool requires a name")
	}
	if handler == nil {
		return nil, fmt.Errorf("function tool %q requires a handler", cfg.Name)
	}

	schema, err := jsonschema.For[TArgs](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to derive schema for %q: %w", cfg.Name, err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema for %q: %w", cfg.Name, err)
	}

	return &Tool[TArgs, TResults]{
		name:          cfg.Name,
		description:   cfg.Description,
		handler:       handler,
		inputSchema:   schema,
		inputResolved: resolved,
	}, nil
}

// Name implements tool.Tool.
func (t *Tool[TArgs, TResults]) Name() string {
	return t.name
}

// Description implements tool.Tool.
func (t *Tool[TArgs, TResults]) Description() string {
	return t.description
}

// InputSchema returns the derived argument schema.
func (t *Tool[TArgs, TResults]) InputSchema() *jsonschema.Schema {
	return t.inputSchema
}

// Call validates args against the derived schema, runs the handler and
// returns its result as a field map.
func (t *Tool[TArgs, TResults]) Call(ctx tool.Context, args map[string]any) (map[string]any, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal arguments for %q: %w", t.name, err)
	}
	if err := t.inputResolved.Validate(args); err != nil {
		return nil, fmt.Errorf("invalid arguments for %q: %w", t.name, err)
	}

	// Disallow unknown fields so extra arguments fail loudly instead of
	// being dropped by json.Unmarshal.
	var in TArgs
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments for %q: %w", t.name, err)
	}

	out, err := t.handler(ctx, in)
	if err != nil {
		return nil, err
	}

	outData, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result of %q: %w", t.name, err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(outData, &fields); err != nil {
		return nil, fmt.Errorf("result of %q is not an object: %w", t.name, err)
	}
	return fields, nil
}
