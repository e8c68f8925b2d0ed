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

import "github.com/spf13/cobra"

func newWarmupCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "warmup",
		Short: "Rebuild the variable context cache for every instance",
		Long: `Rebuild the cached variable context of every known process instance.
Useful after a cold start with a shared (Redis) context store, so the
first evaluation does not pay the lazy-build cost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(g)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Engine.InitContexts(cmd.Context())
		},
	}
}
