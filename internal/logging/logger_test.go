package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetState() {
	mu.Lock()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	enabled = false
	logLevel = LevelInfo
	mu.Unlock()
}

func TestDisabledLoggingIsNoOp(t *testing.T) {
	defer resetState()
	resetState()

	ws := t.TempDir()
	require.NoError(t, Initialize(ws, false, "info"))

	Audit("should not be written")
	Get(CategoryRules).Error("neither should this")

	_, err := os.Stat(filepath.Join(ws, ".a11ylint", "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestDebugLoggingWritesCategoryFiles(t *testing.T) {
	defer resetState()
	resetState()

	ws := t.TempDir()
	require.NoError(t, Initialize(ws, true, "debug"))
	defer CloseAll()

	Audit("audited %d files", 3)
	Store("saved run %s", "abc")

	logsDir := filepath.Join(ws, ".a11ylint", "logs")
	entries, err := os.ReadDir(logsDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	date := time.Now().Format("2006-01-02")
	assert.Contains(t, names, date+"_audit.log")
	assert.Contains(t, names, date+"_store.log")

	data, err := os.ReadFile(filepath.Join(logsDir, date+"_audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "audited 3 files")
}

func TestLevelFiltering(t *testing.T) {
	defer resetState()
	resetState()

	ws := t.TempDir()
	require.NoError(t, Initialize(ws, true, "warn"))
	defer CloseAll()

	l := Get(CategoryAudit)
	l.Debug("debug line")
	l.Info("info line")
	l.Warn("warn line")

	date := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(ws, ".a11ylint", "logs", date+"_audit.log"))
	require.NoError(t, err)
	out := string(data)
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "warn line")
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	defer resetState()
	assert.Error(t, Initialize("", true, "info"))
}

func TestTimer(t *testing.T) {
	defer resetState()
	resetState()

	timer := StartTimer(CategoryAudit, "noop")
	elapsed := timer.Stop()
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))

	timer = StartTimer(CategoryAudit, "slow op")
	time.Sleep(2 * time.Millisecond)
	elapsed = timer.StopWithThreshold(time.Millisecond)
	assert.Greater(t, elapsed, time.Millisecond)
}
