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

package errors

import "fmt"

// InputKind identifies which category of untrusted input was rejected.
type InputKind string

const (
	// KindVariableKey marks a rejected variable key.
	KindVariableKey InputKind = "variable_key"
	// KindExpression marks a rejected expression body.
	KindExpression InputKind = "expression"
)

// RejectedInputError represents input that failed whitelist validation.
// Rejected expressions are surfaced to the caller: they signal a potential
// injection attempt rather than a missing value, and must never be
// confused with a nil evaluation result.
type RejectedInputError struct {
	// Kind identifies whether a key or an expression was rejected
	Kind InputKind

	// Input is the offending text
	Input string
}

// Error implements the error interface.
func (e *RejectedInputError) Error() string {
	return fmt.Sprintf("unsafe %s rejected: %q", e.Kind, e.Input)
}

// ContextMissingError represents a mutation that requires a variable
// context which does not exist and could not be built.
type ContextMissingError struct {
	// InstanceID is the process instance whose context is missing
	InstanceID int64
}

// Error implements the error interface.
func (e *ContextMissingError) Error() string {
	return fmt.Sprintf("process instance %d has no variable context", e.InstanceID)
}

// NotFoundError represents a resource not found error.
// Use this when a requested resource does not exist.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "process instance")
	Resource string

	// ID is the identifier that was not found
	ID int64
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Resource, e.ID)
}
