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

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	logger.Info("hello", slog.Int64(InstanceIDKey, 7))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, float64(7), entry["instance_id"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "warn", Format: FormatText, Output: &buf})

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_NilConfigDefaults(t *testing.T) {
	assert.NotNil(t, New(nil))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("OAKFLOW_DEBUG", "")
	t.Setenv("OAKFLOW_LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "text")

	cfg := FromEnv()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, FormatText, cfg.Format)
}

func TestFromEnv_DebugTakesPrecedence(t *testing.T) {
	t.Setenv("OAKFLOW_DEBUG", "1")
	t.Setenv("OAKFLOW_LOG_LEVEL", "error")

	cfg := FromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.AddSource)
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})

	logger = WithComponent(logger, "expression")
	logger = WithCorrelationID(logger, "abc-123")
	WithInstance(logger, 9).Info("tagged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "expression", entry["component"])
	assert.Equal(t, "abc-123", entry["correlation_id"])
	assert.Equal(t, float64(9), entry["instance_id"])
}
