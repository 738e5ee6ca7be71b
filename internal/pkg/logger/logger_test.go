package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToLogDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(LogOption{Format: "json", LogDir: dir, Level: "debug"}))
	defer func() { _ = Init(LogOption{}) }()

	Infof("[test] hello %s", "resolver")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, defaultLogFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[test] hello resolver")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Init(LogOption{Level: "verbose"}))
}
