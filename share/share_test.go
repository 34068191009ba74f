package share

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("TRICKS_LISTEN", "0.0.0.0:8080")
	t.Setenv("TRICKS_CACHE_EXPIRES", "1h")
	t.Setenv("TRICKS_DEBUG", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Listen)
	assert.Equal(t, time.Hour, cfg.CacheExpires)
	assert.Equal(t, "en", cfg.DefaultLocale)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("TRICKS_CACHE_EXPIRES", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestIsContextClosedError(t *testing.T) {
	assert.True(t, IsContextClosedError(context.Canceled))
	assert.True(t, IsContextClosedError(&url.Error{Op: "Get", URL: "/", Err: context.DeadlineExceeded}))
	assert.True(t, IsContextClosedError(errors.WithStack(context.Canceled)))
	assert.False(t, IsContextClosedError(errors.New("boom")))
	assert.False(t, IsContextClosedError(nil))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}
