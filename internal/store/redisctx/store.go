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

// Package redisctx provides a Redis-backed context store, for
// deployments where several engine workers must share variable
// contexts. Payloads are JSON, so numeric values round-trip as
// float64.
package redisctx

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/oakflow/oakflow/pkg/process/expression"
)

// Store implements expression.Store using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for cached contexts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached contexts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "oakflow:context:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(id int64) string {
	return s.prefix + strconv.FormatInt(id, 10)
}

// Contains implements expression.Store.
func (s *Store) Contains(ctx context.Context, id int64) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("checking context for instance %d: %w", id, err)
	}
	return n > 0, nil
}

// Get implements expression.Store. Absent contexts yield (nil, nil).
func (s *Store) Get(ctx context.Context, id int64) (*expression.Context, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("loading context for instance %d: %w", id, err)
	}

	var vars map[string]any
	if err := json.Unmarshal([]byte(val), &vars); err != nil {
		return nil, fmt.Errorf("decoding context for instance %d: %w", id, err)
	}
	return expression.NewContextFrom(vars), nil
}

// Put implements expression.Store.
func (s *Store) Put(ctx context.Context, id int64, c *expression.Context) error {
	data, err := json.Marshal(c.Entries())
	if err != nil {
		return fmt.Errorf("encoding context for instance %d: %w", id, err)
	}
	if err := s.client.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("saving context for instance %d: %w", id, err)
	}
	return nil
}

// Remove implements expression.Store.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("removing context for instance %d: %w", id, err)
	}
	return n > 0, nil
}
