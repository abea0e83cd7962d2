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

package root

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"google.golang.org/toolgate/gate"
	"google.golang.org/toolgate/runner"
	"google.golang.org/toolgate/session"
	"google.golang.org/toolgate/tool"
)

const shippingTool = "place_shipping_order"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Starts an interactive shipping session with a confirmation gate.",
	Long: `Starts a console session against the demo shipping tool. Orders at or
below the configured threshold are placed immediately; larger orders suspend
until approved with 'approve' or 'reject'. With --db, a suspended order
survives the process and can be resolved from a later run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return flags.runChat(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatOrderPattern = regexp.MustCompile(`(?i)(\d+)\s+containers?(?:\s+to\s+(.+?))?\s*$`)

func (f *rootFlags) runChat(ctx context.Context) error {
	sessions, err := f.openSessions()
	if err != nil {
		return err
	}

	settings := gate.ToolSettings{Threshold: 5, SizeArg: "num_containers"}
	if f.configPath != "" {
		file, err := gate.LoadFile(f.configPath)
		if err != nil {
			return err
		}
		if s, ok := file.Tools[shippingTool]; ok {
			settings = s
		}
	}
	ttl, err := settings.ParseTTL()
	if err != nil {
		return err
	}

	shipping, err := gate.New(gate.Config{
		Name:        shippingTool,
		Description: "Places a container shipping order.",
		Threshold:   settings.Threshold,
		SizeArg:     settings.SizeArg,
		Hint: func(args map[string]any) string {
			return fmt.Sprintf("Order of %v containers to %v exceeds the auto-approval limit of %d.",
				args["num_containers"], args["destination"], settings.Threshold)
		},
		Action: func(ctx tool.Context, args map[string]any) (map[string]any, error) {
			suffix := "AUTO"
			if ctx.ToolConfirmation() != nil {
				suffix = "HUMAN"
			}
			return map[string]any{
				"order_id": fmt.Sprintf("ORD-%v-%s", args["num_containers"], suffix),
				"message":  fmt.Sprintf("Order placed: %v containers to %v.", args["num_containers"], args["destination"]),
			}, nil
		},
		Sessions: sessions,
		TTL:      ttl,
	})
	if err != nil {
		return err
	}

	r, err := runner.New(runner.Config{
		AppName:  "toolgate",
		Planner:  runner.PlannerFunc(planShippingOrder),
		Sessions: sessions,
		Gates:    []*gate.Gate{shipping},
	})
	if err != nil {
		return err
	}

	fmt.Printf("Session %s. Try: ship 8 containers to Hamburg\n", f.sessionID)
	fmt.Println("Commands: approve | reject | exit")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		input = strings.TrimSpace(input)

		var message *genai.Content
		switch strings.ToLower(input) {
		case "exit", "quit":
			return nil
		case "approve":
			message = runner.NewDecisionContent(true, nil)
		case "reject":
			message = runner.NewDecisionContent(false, nil)
		case "":
			continue
		default:
			message = genai.NewContentFromText(input, genai.RoleUser)
		}

		turn, err := r.Run(ctx, f.sessionID, message)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		printTurn(turn)
	}
}

func planShippingOrder(ctx context.Context, sessionID string, message *genai.Content) (*genai.FunctionCall, error) {
	var text strings.Builder
	for _, part := range message.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	m := chatOrderPattern.FindStringSubmatch(text.String())
	if m == nil {
		return nil, nil
	}
	count, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, nil
	}
	destination := strings.TrimSpace(m[2])
	if destination == "" {
		destination = "the default port"
	}
	return &genai.FunctionCall{
		Name: shippingTool,
		Args: map[string]any{"num_containers": count, "destination": destination},
	}, nil
}

func printTurn(turn *runner.Turn) {
	if turn.Result == nil {
		fmt.Println("No tool call for that input. Try: ship 8 containers to Hamburg")
		return
	}
	switch turn.Result.Status {
	case gate.StatusApproved:
		fmt.Printf("APPROVED  %s (order %v)\n", turn.Result.Message, turn.Result.Fields["order_id"])
	case gate.StatusPending:
		fmt.Printf("PENDING   %s\n", turn.Result.Confirmation.Hint)
		fmt.Println("          Resolve with 'approve' or 'reject'.")
	case gate.StatusRejected:
		fmt.Printf("REJECTED  %s\n", turn.Result.Message)
	case gate.StatusError:
		if errors.Is(turn.Err, session.ErrNoPendingInvocation) {
			fmt.Println("Nothing is waiting for a decision in this session.")
			return
		}
		fmt.Printf("ERROR     %s\n", turn.Result.Message)
	}
}
