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

package functiontool

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/toolgate/tool"
)

type convertArgs struct {
	Amount float64 `json:"amount"`
	Base   string  `json:"base"`
	Target string  `json:"target"`
}

type convertResult struct {
	Converted float64 `json:"converted"`
	Message   string  `json:"message"`
}

func newConvertTool(t *testing.T) *Tool[convertArgs, convertResult] {
	t.Helper()
	ft, err := New(Config{
		Name:        "convert_currency",
		Description: "Converts an amount between currencies.",
	}, func(ctx tool.Context, args convertArgs) (convertResult, error) {
		if args.Base == "" {
			return convertResult{}, errors.New("base currency required")
		}
		return convertResult{
			Converted: args.Amount * 0.93,
			Message:   "converted",
		}, nil
	})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return ft
}

func TestCall(t *testing.T) {
	ft := newConvertTool(t)

	if got := ft.Name(); got != "convert_currency" {
		t.Errorf("Name() = %q", got)
	}
	if ft.InputSchema() == nil {
		t.Error("InputSchema() = nil")
	}

	ctx := tool.NewContext(t.Context(), "s1", "call-1", nil, nil)
	got, err := ft.Call(ctx, map[string]any{
		"amount": float64(100),
		"base":   "usd",
		"target": "eur",
	})
	if err != nil {
		t.Fatalf("Call() unexpected error: %v", err)
	}
	want := map[string]any{"converted": float64(93), "message": "converted"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Call() mismatch (-want +got):\n%s", diff)
	}
}

func TestCallRejectsUnknownArgument(t *testing.T) {
	ft := newConvertTool(t)
	ctx := tool.NewContext(t.Context(), "s1", "call-1", nil, nil)

	_, err := ft.Call(ctx, map[string]any{
		"amount":  float64(100),
		"base":    "usd",
		"target":  "eur",
		"surplus": true,
	})
	if err == nil {
		t.Error("Call() with unknown argument expected error")
	}
}

func TestCallPropagatesHandlerError(t *testing.T) {
	ft := newConvertTool(t)
	ctx := tool.NewContext(t.Context(), "s1", "call-1", nil, nil)

	_, err := ft.Call(ctx, map[string]any{"amount": float64(1), "base": "", "target": "eur"})
	if err == nil || err.Error() != "base currency required" {
		t.Errorf("Call() error = %v, want handler error", err)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New[convertArgs, convertResult](Config{}, nil); err == nil {
		t.Error("New() without name expected error")
	}
	if _, err := New[convertArgs, convertResult](Config{Name: "x"}, nil); err == nil {
		t.Error("New() without handler expected error")
	}
}
