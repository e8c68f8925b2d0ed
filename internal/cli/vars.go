// Copyright 2026 The Oakflow Authors
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

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakflow/oakflow/pkg/process/expression"
)

func newVarsCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vars",
		Short: "Manage persisted process variables",
	}
	cmd.AddCommand(newVarsSetCommand(g), newVarsRemoveCommand(g))
	return cmd
}

func newVarsSetCommand(g *globalFlags) *cobra.Command {
	var instanceID int64

	cmd := &cobra.Command{
		Use:   "set key=value [key=value...]",
		Short: "Set persisted variables for an instance",
		Long: `Persist one or more variables for a process instance. Keys must match
the variable key grammar (letter or underscore, then letters, digits,
or underscores); invalid keys are refused.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if _, err := app.Store.InstanceByID(ctx, instanceID); err != nil {
				return err
			}

			for _, arg := range args {
				key, raw, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected key=value, got %q", arg)
				}
				if !expression.IsSafeVariableKey(key) {
					return fmt.Errorf("invalid variable key %q", key)
				}
				if err := app.Store.SetVariable(ctx, instanceID, key, parseValue(raw)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&instanceID, "instance", 0, "process instance ID")
	cmd.MarkFlagRequired("instance")

	return cmd
}

func newVarsRemoveCommand(g *globalFlags) *cobra.Command {
	var instanceID int64

	cmd := &cobra.Command{
		Use:   "rm <key>",
		Short: "Remove a persisted variable from an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if err := app.Store.DeleteVariable(ctx, instanceID, args[0]); err != nil {
				return err
			}
			return app.Engine.RemoveVariable(ctx, instanceID, args[0])
		},
	}

	cmd.Flags().Int64Var(&instanceID, "instance", 0, "process instance ID")
	cmd.MarkFlagRequired("instance")

	return cmd
}
