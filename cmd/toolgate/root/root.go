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

// Package root holds the toolgate command tree.
package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"google.golang.org/toolgate/session"
	"google.golang.org/toolgate/session/database"
)

type rootFlags struct {
	configPath string
	dbPath     string
	sessionID  string
}

var flags rootFlags

var rootCmd = &cobra.Command{
	Use:           "toolgate",
	Short:         "Runs and inspects confirmation-gated tool sessions.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to the gate configuration YAML")
	rootCmd.PersistentFlags().StringVarP(&flags.dbPath, "db", "d", "", "Path to a SQLite session store; empty keeps sessions in memory")
	rootCmd.PersistentFlags().StringVarP(&flags.sessionID, "session", "s", "console", "Session identifier")
}

// Execute runs the command tree.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// openSessions picks the session store from the flags. The SQLite store
// lets a suspension outlive the process; approvals can then be given from
// a later run.
func (f *rootFlags) openSessions() (session.Service, error) {
	if f.dbPath == "" {
		return session.InMemoryService(), nil
	}
	return database.Open(f.dbPath)
}
