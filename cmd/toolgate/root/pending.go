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
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"google.golang.org/toolgate/session/database"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Lists suspended invocations waiting for approval.",
	Long: `Lists every suspended invocation in the session store, oldest first.
Requires --db; an in-memory store has nothing to inspect from outside the
process that owns it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return flags.listPending(cmd)
	},
}

func init() {
	rootCmd.AddCommand(pendingCmd)
}

func (f *rootFlags) listPending(cmd *cobra.Command) error {
	if f.dbPath == "" {
		return fmt.Errorf("pending requires --db")
	}
	svc, err := database.Open(f.dbPath)
	if err != nil {
		return err
	}

	recs, err := svc.ListPending(cmd.Context())
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("No suspended invocations.")
		return nil
	}

	now := time.Now()
	for _, rec := range recs {
		args, _ := json.Marshal(rec.Invocation.Args)
		fmt.Printf("session=%s tool=%s invocation=%s\n", rec.Invocation.SessionID, rec.Invocation.ToolName, rec.Invocation.ID)
		fmt.Printf("  suspended: %s\n", rec.Created.Format(time.RFC3339))
		if !rec.Expires.IsZero() {
			state := "expires"
			if rec.Expired(now) {
				state = "expired"
			}
			fmt.Printf("  %s: %s\n", state, rec.Expires.Format(time.RFC3339))
		}
		fmt.Printf("  hint: %s\n", rec.Hint)
		fmt.Printf("  args: %s\n", args)
	}
	return nil
}
