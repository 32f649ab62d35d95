package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := `# comment
FTT_TEST_DSN=postgres://localhost/food
FTT_TEST_QUOTED="quoted value"
FTT_TEST_EXISTING=from-file
not a pair
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("FTT_TEST_EXISTING", "from-env")
	// Registers cleanup for keys the file will set
	t.Setenv("FTT_TEST_DSN", "")
	os.Unsetenv("FTT_TEST_DSN")
	t.Setenv("FTT_TEST_QUOTED", "")
	os.Unsetenv("FTT_TEST_QUOTED")

	require.NoError(t, LoadEnvFile(path))

	assert.Equal(t, "postgres://localhost/food", os.Getenv("FTT_TEST_DSN"))
	assert.Equal(t, "quoted value", os.Getenv("FTT_TEST_QUOTED"))
	assert.Equal(t, "from-env", os.Getenv("FTT_TEST_EXISTING"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("FTT_TEST_STR", "value")
	t.Setenv("FTT_TEST_INT", "42")
	t.Setenv("FTT_TEST_BAD_INT", "forty")
	t.Setenv("FTT_TEST_BOOL", "true")
	t.Setenv("FTT_TEST_DUR", "250ms")

	assert.Equal(t, "value", Env("FTT_TEST_STR", "x"))
	assert.Equal(t, "x", Env("FTT_TEST_UNSET", "x"))
	assert.Equal(t, 42, EnvInt("FTT_TEST_INT", 1))
	assert.Equal(t, 1, EnvInt("FTT_TEST_BAD_INT", 1))
	assert.True(t, EnvBool("FTT_TEST_BOOL", false))
	assert.False(t, EnvBool("FTT_TEST_UNSET", false))
	assert.Equal(t, 250*time.Millisecond, EnvDuration("FTT_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, EnvDuration("FTT_TEST_UNSET", time.Second))
}
