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

package runner_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/genai"

	"google.golang.org/toolgate/gate"
	"google.golang.org/toolgate/runner"
	"google.golang.org/toolgate/session"
	"google.golang.org/toolgate/tool"
)

// orderPlanner always selects place_shipping_order and parses the container
// count out of the message text, standing in for the LLM reasoning step.
func orderPlanner(containers int) runner.Planner {
	return runner.PlannerFunc(func(ctx context.Context, sessionID string, message *genai.Content) (*genai.FunctionCall, error) {
		return &genai.FunctionCall{
			ID:   "call-" + sessionID,
			Name: "place_shipping_order",
			Args: map[string]any{"num_containers": containers, "destination": "Rotterdam"},
		}, nil
	})
}

func newShippingRunner(t *testing.T, sessions session.Service, planner runner.Planner, executions *int) *runner.Runner {
	t.Helper()
	g, err := gate.New(gate.Config{
		Name:      "place_shipping_order",
		Threshold: 5,
		SizeArg:   "num_containers",
		Hint: func(args map[string]any) string {
			return fmt.Sprintf("Large order: %v containers to %v. Approve?", args["num_containers"], args["destination"])
		},
		Action: func(ctx tool.Context, args map[string]any) (map[string]any, error) {
			if executions != nil {
				*executions++
			}
			suffix := "AUTO"
			if ctx.ToolConfirmation() != nil {
				suffix = "HUMAN"
			}
			return map[string]any{
				"order_id": fmt.Sprintf("ORD-%v-%s", args["num_containers"], suffix),
				"message":  fmt.Sprintf("Order approved: %v containers to %v", args["num_containers"], args["destination"]),
			}, nil
		},
		Sessions: sessions,
	})
	if err != nil {
		t.Fatalf("gate.New() unexpected error: %v", err)
	}

	r, err := runner.New(runner.Config{
		AppName:  "shipping_coordinator",
		Planner:  planner,
		Sessions: sessions,
		Gates:    []*gate.Gate{g},
	})
	if err != nil {
		t.Fatalf("runner.New() unexpected error: %v", err)
	}
	return r
}

func TestFreshTurnAutoApproves(t *testing.T) {
	sessions := session.InMemoryService()
	r := newShippingRunner(t, sessions, orderPlanner(3), nil)

	turn, err := r.Run(t.Context(), "s1", genai.NewContentFromText("Ship 3 containers to Rotterdam", genai.RoleUser))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if turn.Result.Status != gate.StatusApproved {
		t.Fatalf("Run() status = %s, want approved", turn.Result.Status)
	}
	if turn.ToolName != "place_shipping_order" {
		t.Errorf("Run() tool = %q", turn.ToolName)
	}
	if !strings.Contains(turn.Result.Message, "3") {
		t.Errorf("Run() message = %q", turn.Result.Message)
	}
}

func TestSuspendAndResume(t *testing.T) {
	sessions := session.InMemoryService()
	r := newShippingRunner(t, sessions, orderPlanner(10), nil)

	turn, err := r.Run(t.Context(), "s1", genai.NewContentFromText("Ship 10 containers to Rotterdam", genai.RoleUser))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if turn.Result.Status != gate.StatusPending {
		t.Fatalf("fresh turn status = %s, want pending", turn.Result.Status)
	}
	// The pending turn surfaces enough context for the approver.
	req := turn.Result.Confirmation
	if req == nil {
		t.Fatal("pending turn has no confirmation request")
	}
	if !strings.Contains(req.Hint, "10 containers") {
		t.Errorf("hint = %q", req.Hint)
	}
	if req.Payload["destination"] != "Rotterdam" {
		t.Errorf("payload = %v", req.Payload)
	}

	turn, err = r.Run(t.Context(), "s1", runner.NewDecisionContent(true, nil))
	if err != nil {
		t.Fatalf("resume Run() unexpected error: %v", err)
	}
	if turn.Result.Status != gate.StatusApproved {
		t.Fatalf("resumed turn status = %s, want approved", turn.Result.Status)
	}
	if got := turn.Result.Fields["order_id"]; got != "ORD-10-HUMAN" {
		t.Errorf("order_id = %v, want ORD-10-HUMAN", got)
	}
}

func TestResumeRejection(t *testing.T) {
	sessions := session.InMemoryService()
	executions := 0
	r := newShippingRunner(t, sessions, orderPlanner(10), &executions)

	if _, err := r.Run(t.Context(), "s1", genai.NewContentFromText("Ship 10 containers", genai.RoleUser)); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	turn, err := r.Run(t.Context(), "s1", runner.NewDecisionContent(false, map[string]any{"reason": "budget"}))
	if err != nil {
		t.Fatalf("resume Run() unexpected error: %v", err)
	}
	if turn.Result.Status != gate.StatusRejected {
		t.Fatalf("resumed turn status = %s, want rejected", turn.Result.Status)
	}
	if executions != 0 {
		t.Errorf("rejected order executed the action %d times", executions)
	}
}

func TestDecisionWithoutSuspension(t *testing.T) {
	sessions := session.InMemoryService()
	r := newShippingRunner(t, sessions, orderPlanner(3), nil)

	turn, err := r.Run(t.Context(), "fresh-session", runner.NewDecisionContent(true, nil))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if turn.Result.Status != gate.StatusError {
		t.Fatalf("Run() status = %s, want error", turn.Result.Status)
	}
	if !errors.Is(turn.Err, session.ErrNoPendingInvocation) {
		t.Errorf("Turn.Err = %v, want ErrNoPendingInvocation", turn.Err)
	}
}

func TestDuplicateDecisionReturnsStoredOutcome(t *testing.T) {
	sessions := session.InMemoryService()
	executions := 0
	r := newShippingRunner(t, sessions, orderPlanner(10), &executions)

	if _, err := r.Run(t.Context(), "s1", genai.NewContentFromText("Ship 10 containers", genai.RoleUser)); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	first, err := r.Run(t.Context(), "s1", runner.NewDecisionContent(true, nil))
	if err != nil {
		t.Fatalf("resume Run() unexpected error: %v", err)
	}
	second, err := r.Run(t.Context(), "s1", runner.NewDecisionContent(true, nil))
	if err != nil {
		t.Fatalf("duplicate resume Run() unexpected error: %v", err)
	}

	if executions != 1 {
		t.Errorf("action executed %d times, want exactly once", executions)
	}
	if second.Result.Status != gate.StatusApproved {
		t.Errorf("duplicate resume status = %s, want approved", second.Result.Status)
	}
	if first.Result.Fields["order_id"] != second.Result.Fields["order_id"] {
		t.Errorf("duplicate resume produced a different order: %v vs %v",
			first.Result.Fields["order_id"], second.Result.Fields["order_id"])
	}
}

func TestPlannerErrors(t *testing.T) {
	sessions := session.InMemoryService()

	failing := runner.PlannerFunc(func(ctx context.Context, sessionID string, message *genai.Content) (*genai.FunctionCall, error) {
		return nil, errors.New("model unavailable")
	})
	r := newShippingRunner(t, sessions, failing, nil)
	if _, err := r.Run(t.Context(), "s1", genai.NewContentFromText("hi", genai.RoleUser)); err == nil {
		t.Error("Run() with failing planner expected error")
	}

	unknown := runner.PlannerFunc(func(ctx context.Context, sessionID string, message *genai.Content) (*genai.FunctionCall, error) {
		return &genai.FunctionCall{Name: "no_such_tool"}, nil
	})
	r = newShippingRunner(t, sessions, unknown, nil)
	if _, err := r.Run(t.Context(), "s1", genai.NewContentFromText("hi", genai.RoleUser)); err == nil {
		t.Error("Run() with unknown tool expected error")
	}
}

func TestTurnWithoutToolCall(t *testing.T) {
	sessions := session.InMemoryService()
	idle := runner.PlannerFunc(func(ctx context.Context, sessionID string, message *genai.Content) (*genai.FunctionCall, error) {
		return nil, nil
	})
	r := newShippingRunner(t, sessions, idle, nil)

	turn, err := r.Run(t.Context(), "s1", genai.NewContentFromText("hello", genai.RoleUser))
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if turn.Result != nil || turn.ToolName != "" {
		t.Errorf("idle turn = %+v, want empty", turn)
	}
}

func TestNewValidation(t *testing.T) {
	sessions := session.InMemoryService()
	if _, err := runner.New(runner.Config{Sessions: sessions}); err == nil {
		t.Error("New() without planner expected error")
	}
	if _, err := runner.New(runner.Config{Planner: orderPlanner(1)}); err == nil {
		t.Error("New() without sessions expected error")
	}
}
