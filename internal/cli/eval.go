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

	"github.com/spf13/cobra"
)

func newEvalCommand(g *globalFlags) *cobra.Command {
	var (
		instanceID int64
		fallback   bool
	)

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate a single expression against an instance context",
		Long: `Evaluate one expression against the variable context of a process
instance. Text not wrapped as ${...} passes through unchanged. With
--fallback the expression is resolved across the process instance
tree: ancestors for nested instances, the descendant subtree for
roots.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			var value any
			if fallback {
				inst, err := app.Store.InstanceByID(ctx, instanceID)
				if err != nil {
					return err
				}
				value, err = app.Engine.EvalWithFallback(ctx, inst, args[0])
				if err != nil {
					return err
				}
			} else {
				value, err = app.Engine.Eval(ctx, instanceID, args[0])
				if err != nil {
					return err
				}
			}

			if value == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "<no value>")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().Int64Var(&instanceID, "instance", 0, "process instance ID")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "resolve across the process instance tree")
	cmd.MarkFlagRequired("instance")

	return cmd
}

func newInterpCommand(g *globalFlags) *cobra.Command {
	var instanceID int64

	cmd := &cobra.Command{
		Use:   "interp <text>",
		Short: "Interpolate ${...} tokens in a string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			inst, err := app.Store.InstanceByID(ctx, instanceID)
			if err != nil {
				return err
			}
			out, err := app.Engine.EvalString(ctx, inst, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&instanceID, "instance", 0, "process instance ID")
	cmd.MarkFlagRequired("instance")

	return cmd
}
