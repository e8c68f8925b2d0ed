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

// Package process defines the process instance model and the persistence
// interfaces the expression engine resolves against.
package process

import "context"

// Instance is a single running execution of a process definition.
// Instances form a forest: ParentID <= 0 marks a root, every other
// instance has exactly one parent.
type Instance struct {
	// ID uniquely identifies the instance.
	ID int64

	// ParentID is the parent instance ID, or 0 for root instances.
	ParentID int64

	// Name is the process definition name this instance was started from.
	Name string

	// State is the engine-level lifecycle state (e.g. "running", "ended").
	State string
}

// IsRoot reports whether the instance has no parent.
func (i *Instance) IsRoot() bool {
	return i.ParentID <= 0
}

// Variable is one persisted (key, value) pair belonging to an instance.
type Variable struct {
	Key   string
	Value any
}

// Service provides access to persisted process instances and their
// variables. Implementations must be safe for concurrent use.
type Service interface {
	// InstanceByID returns the instance with the given ID, or a
	// *errors.NotFoundError when no such instance exists.
	InstanceByID(ctx context.Context, id int64) (*Instance, error)

	// Variables returns the persisted variables of an instance in
	// storage order. An unknown instance yields an empty slice.
	Variables(ctx context.Context, id int64) ([]Variable, error)

	// Query starts a new instance query.
	Query() InstanceQuery
}

// InstanceQuery is a builder for instance lookups. Without filters it
// lists every known instance.
type InstanceQuery interface {
	// ParentID restricts the query to direct children of the given instance.
	ParentID(id int64) InstanceQuery

	// List executes the query.
	List(ctx context.Context) ([]*Instance, error)
}

// Provider contributes additional context data for instances it supports.
// Providers are consulted when a variable context is built; their keys are
// subject to the same whitelist as persisted variables.
type Provider interface {
	// Supports reports whether this provider has data for the instance.
	Supports(inst *Instance) bool

	// Data returns the variables to merge into the instance context.
	Data(inst *Instance) map[string]any
}
