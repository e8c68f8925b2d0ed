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

// Package cli implements the oakflow command line interface.
package cli

import "github.com/spf13/cobra"

// NewRootCommand builds the oakflow root command.
func NewRootCommand(version string) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:     "oakflow",
		Short:   "Evaluate sandboxed process expressions",
		Long: `oakflow evaluates whitelisted ${...} expressions against the variable
contexts of process instances, resolving missing values across the
process instance tree.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	g.register(root.PersistentFlags())

	root.AddCommand(
		newEvalCommand(g),
		newInterpCommand(g),
		newVarsCommand(g),
		newInstanceCommand(g),
		newWarmupCommand(g),
	)

	return root
}
