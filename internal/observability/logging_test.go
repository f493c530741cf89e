package observability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfell/emberfell/internal/config"
	"github.com/emberfell/emberfell/internal/observability"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := observability.NewLogger(config.LoggingConfig{Level: "debug", Format: format})
		require.NoError(t, err, format)
		require.NotNil(t, logger)
		assert.Equal(t, "emberfell", logger.Name())
	}
}

func TestNewLogger_RejectsBadLevel(t *testing.T) {
	_, err := observability.NewLogger(config.LoggingConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}

func TestNewLogger_RejectsBadFormat(t *testing.T) {
	_, err := observability.NewLogger(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
