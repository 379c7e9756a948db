package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library/internal/config"
	"library/internal/database"
	"library/internal/logging"
	"library/internal/repository/memory"
)

func TestSetup_LogLevel(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		flag     string
		fallback string
		want     logrus.Level
	}{
		{name: "config default", want: logrus.InfoLevel},
		{name: "fallback when unset", fallback: "warn", want: logrus.WarnLevel},
		{name: "env beats fallback", env: "debug", fallback: "warn", want: logrus.DebugLevel},
		{name: "flag beats env", env: "debug", flag: "error", fallback: "warn", want: logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)

			_, log := setup(&rootOptions{logLevel: tt.flag}, tt.fallback)

			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestStoreName(t *testing.T) {
	assert.Equal(t, "MongoDB", storeName(config.DriverMongo))
	assert.Equal(t, "PostgreSQL", storeName(config.DriverPostgres))
	assert.Equal(t, "memory store", storeName(config.DriverMemory))
	assert.Equal(t, "redis", storeName("redis"))
}

func TestNewBookService(t *testing.T) {
	store := &database.Store{Name: "memory store", Books: memory.NewBookMemory()}
	reg := prometheus.NewRegistry()

	svc, err := newBookService(store, logging.Discard(), reg)
	require.NoError(t, err)
	_, err = svc.Create(t.Context(), "Dune", "1965", "656f1c2e9d1e4a0b8c7d6e5f")
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(mfs))
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "book_operations_total")

	_, err = newBookService(store, logging.Discard(), reg)
	assert.Error(t, err)
}

func TestMenuCommand_ConnectionFailure(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"menu"})

	err := cmd.Execute()

	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out.String(), `Error connecting to redis: unsupported store driver "redis"`)
	assert.NotContains(t, out.String(), "LIBRARY APP")
}

func TestMenuCommand_MemoryStore(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	const author = "656f1c2e9d1e4a0b8c7d6e5f"
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(strings.Join([]string{"1", "Dune", "1965", author, "2", "5"}, "\n") + "\n"))
	cmd.SetArgs([]string{"menu"})

	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "--- Connected to memory store successfully ---\n")
	assert.Contains(t, got, "SUCCESS: Book added with Author ID reference.\n")
	assert.Contains(t, got, "| Title: Dune | Author (Ref ID): "+author+" | Year: 1965\n")
	assert.True(t, strings.HasSuffix(got, "Goodbye!\n"))
}
