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

// Package memory provides an in-memory process.Service, used by tests
// and by the CLI's seeded demo mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oakflow/oakflow/pkg/errors"
	"github.com/oakflow/oakflow/pkg/process"
)

// Service is an in-memory implementation of process.Service.
// Queries list instances in ascending ID order for determinism.
type Service struct {
	mu        sync.RWMutex
	instances map[int64]*process.Instance
	variables map[int64][]process.Variable
}

// New creates an empty in-memory service.
func New() *Service {
	return &Service{
		instances: make(map[int64]*process.Instance),
		variables: make(map[int64][]process.Variable),
	}
}

// AddInstance registers an instance, replacing any prior one with the
// same ID.
func (s *Service) AddInstance(inst *process.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *inst
	s.instances[inst.ID] = &cp
}

// SetVariables replaces the persisted variables of an instance.
func (s *Service) SetVariables(id int64, vars ...process.Variable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variables[id] = append([]process.Variable(nil), vars...)
}

// InstanceByID implements process.Service.
func (s *Service) InstanceByID(_ context.Context, id int64) (*process.Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, &errors.NotFoundError{Resource: "process instance", ID: id}
	}
	cp := *inst
	return &cp, nil
}

// Variables implements process.Service.
func (s *Service) Variables(_ context.Context, id int64) ([]process.Variable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]process.Variable(nil), s.variables[id]...), nil
}

// Query implements process.Service.
func (s *Service) Query() process.InstanceQuery {
	return &query{svc: s}
}

type query struct {
	svc      *Service
	parentID *int64
}

// ParentID implements process.InstanceQuery.
func (q *query) ParentID(id int64) process.InstanceQuery {
	q.parentID = &id
	return q
}

// List implements process.InstanceQuery.
func (q *query) List(_ context.Context) ([]*process.Instance, error) {
	q.svc.mu.RLock()
	defer q.svc.mu.RUnlock()

	var out []*process.Instance
	for _, inst := range q.svc.instances {
		if q.parentID != nil && inst.ParentID != *q.parentID {
			continue
		}
		cp := *inst
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
