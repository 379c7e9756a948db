package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("UTC+7", 7*60*60)
	log := New(&buf, loc, "info")

	log.WithFields(logrus.Fields{
		"component": "database",
		"event":     "db_migration_check",
	}).Info("starting")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "starting", entry["msg"])
	assert.Equal(t, "database", entry["component"])
	assert.Equal(t, "db_migration_check", entry["event"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(ts, "+07:00"), "ts %q not rendered in configured location", ts)
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, time.UTC, "warn")

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), `"level":"warning"`)
}

func TestNew_InvalidLevelKeepsInfo(t *testing.T) {
	log := New(&bytes.Buffer{}, nil, "loud")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))

	ctx = WithRequestID(ctx, "req-42")
	assert.Equal(t, "req-42", RequestID(ctx))
}
