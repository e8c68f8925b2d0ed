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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakflow/oakflow/pkg/process"
)

func newInstanceCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Manage process instances",
	}
	cmd.AddCommand(newInstanceAddCommand(g), newInstanceListCommand(g))
	return cmd
}

func newInstanceAddCommand(g *globalFlags) *cobra.Command {
	var (
		id       int64
		parentID int64
		name     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a process instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Store.SaveInstance(cmd.Context(), &process.Instance{
				ID:       id,
				ParentID: parentID,
				Name:     name,
				State:    "running",
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "instance ID")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "parent instance ID (0 for root)")
	cmd.Flags().StringVar(&name, "name", "", "process definition name")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newInstanceListCommand(g *globalFlags) *cobra.Command {
	var parentID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List process instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			q := app.Store.Query()
			if cmd.Flags().Changed("parent") {
				q = q.ParentID(parentID)
			}
			instances, err := q.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPARENT\tNAME\tSTATE")
			for _, inst := range instances {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", inst.ID, inst.ParentID, inst.Name, inst.State)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&parentID, "parent", 0, "only direct children of this instance")

	return cmd
}
