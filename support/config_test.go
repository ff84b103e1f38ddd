package support

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	t.Run("loads defaults", func(t *testing.T) {
		cfg, err := Load(NewViper())
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 10, cfg.Initial)
		assert.Equal(t, 3, cfg.Calls)
		assert.Equal(t, StoreNative, cfg.Store)
		assert.Equal(t, ":3000", cfg.Address())
		assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("reads the environment", func(t *testing.T) {
		t.Setenv("WEE_HOST_PORT", "8081")
		t.Setenv("WEE_HOST_LOG_LEVEL", "debug")
		t.Setenv("WEE_HOST_SHUTDOWN_TIMEOUT", "250ms")

		cfg, err := Load(NewViper())
		require.NoError(t, err)

		assert.Equal(t, 250*time.Millisecond, cfg.ShutdownTimeout)
		assert.Equal(t, 8081, cfg.Port)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("rejects an unknown store", func(t *testing.T) {
		v := NewViper()
		v.Set("store", "postgres")

		_, err := Load(v)

		var invalid *InvalidConfigError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "store", invalid.Key)
	})

	t.Run("requires a honeycomb team", func(t *testing.T) {
		v := NewViper()
		v.Set("telemetry", TelemetryHoneycomb)

		_, err := Load(v)
		assert.Error(t, err)
	})

	t.Run("requires an esdb connection string", func(t *testing.T) {
		v := NewViper()
		v.Set("store", StoreESDB)
		v.Set("esdb", "")

		_, err := Load(v)

		var invalid *InvalidConfigError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "esdb", invalid.Key)
	})
}

func TestLogger(t *testing.T) {
	var out bytes.Buffer

	logger, err := newLogger(Config{LogLevel: "warn", LogFormat: "json"}, &out)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"message":"shown"`)

	_, err = newLogger(Config{LogLevel: "loud"}, &out)
	assert.Error(t, err)
}

func TestTelemetry(t *testing.T) {
	shutdown, err := Telemetry(context.Background(), Config{Telemetry: TelemetryNone})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
