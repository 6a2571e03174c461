package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/internhub/pkg/config"
)

type toastSettings struct {
	MaxToasts int           `env:"TOAST_MAX" envDefault:"3"`
	Duration  time.Duration `env:"TOAST_DURATION" envDefault:"5s"`
	Sound     bool          `env:"TOAST_SOUND" envDefault:"true"`
}

type requiredSettings struct {
	URL string `env:"FEED_URL,required"`
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load[toastSettings](config.WithEnvironment(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxToasts)
	assert.Equal(t, 5*time.Second, cfg.Duration)
	assert.True(t, cfg.Sound)
}

func TestLoad_FromEnvironmentMap(t *testing.T) {
	cfg, err := config.Load[toastSettings](config.WithEnvironment(map[string]string{
		"TOAST_MAX":      "1",
		"TOAST_DURATION": "2s",
		"TOAST_SOUND":    "false",
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxToasts)
	assert.Equal(t, 2*time.Second, cfg.Duration)
	assert.False(t, cfg.Sound)
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("TOAST_MAX", "7")

	cfg, err := config.Load[toastSettings](config.WithEnvFiles())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxToasts)
}

func TestLoad_Prefix(t *testing.T) {
	cfg, err := config.Load[toastSettings](
		config.WithPrefix("INTERNHUB_"),
		config.WithEnvironment(map[string]string{"INTERNHUB_TOAST_MAX": "0"}),
	)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxToasts)
}

func TestLoad_MissingRequired(t *testing.T) {
	_, err := config.Load[requiredSettings](config.WithEnvironment(map[string]string{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrParsingConfig))
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("FEED_URL=redis://localhost:6379/0\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("FEED_URL") })

	cfg, err := config.Load[requiredSettings](config.WithEnvFiles(file, filepath.Join(dir, "missing.env")))
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/0", cfg.URL)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() {
		config.MustLoad[requiredSettings](config.WithEnvironment(map[string]string{}))
	})
}
