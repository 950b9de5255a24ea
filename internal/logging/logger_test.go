package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("world", &buf)

	l.Debug("скрыто %d", 1)
	l.Info("видно %d", 2)
	l.Error("ошибка %s", "x")

	out := buf.String()
	assert.NotContains(t, out, "скрыто")
	assert.Contains(t, out, "[INFO] [world] видно 2")
	assert.Contains(t, out, "[ERROR] [world] ошибка x")

	buf.Reset()
	l.SetLevels(TRACE, TRACE)
	l.Trace("трассировка")
	assert.Contains(t, buf.String(), "[TRACE]")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger("storage", dir)
	require.NoError(t, err)

	l.Debug("в файл")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "повторное закрытие не должно падать")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "storage_"))

	data, err := os.ReadFile(dir + "/" + entries[0].Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[DEBUG] [storage] в файл")
}

func TestLoggerManager(t *testing.T) {
	lm := NewLoggerManager("")

	a, err := lm.GetLogger("world")
	require.NoError(t, err)
	b := lm.MustGetLogger("world")
	assert.Same(t, a, b)

	lm.MustGetLogger("storage")
	assert.Equal(t, []string{"storage", "world"}, lm.ListComponents())

	assert.NoError(t, lm.SetLogLevel("world", DEBUG, DEBUG))
	assert.Error(t, lm.SetLogLevel("network", DEBUG, DEBUG))

	assert.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.ListComponents())
}

func TestInitLoggerManager(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { InitLoggerManager("") })

	lm := InitLoggerManager(dir)
	assert.Same(t, lm, GetLoggerManager())
	assert.Equal(t, dir, lm.Dir())

	world := GetWorldLogger()
	GetStorageLogger()
	assert.Equal(t, []string{"storage", "world"}, lm.ListComponents())

	require.NoError(t, lm.SetLogLevel("world", ERROR, WARN))
	world.Info("отфильтровано")
	world.Warn("записано")

	// Замена менеджера закрывает логгеры прежнего
	InitLoggerManager("")
	assert.Empty(t, lm.ListComponents())
	assert.NotSame(t, world, GetWorldLogger())

	matches, err := filepath.Glob(filepath.Join(dir, "world_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[WARN] [world] записано")
	assert.NotContains(t, string(data), "отфильтровано")
}

func TestHexDump(t *testing.T) {
	assert.Equal(t, "No data", HexDump(nil))
	assert.Contains(t, HexDump([]byte{0xde, 0xad}), "de ad")
	assert.Equal(t, 16, strings.Count(HexDump(make([]byte, 1024)), "\n"), "дамп ограничен 256 байтами")
}
