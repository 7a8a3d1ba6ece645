package mofujobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	t.Run("fills empty config", func(t *testing.T) {
		cfg := ConsumerConfig{
			Subject:     SubjectIndexPost,
			DurableName: DurableIndexPost,
		}
		cfg.applyDefaults()

		require.Equal(t, "JOBS-INDEX-POST", cfg.StreamName)
		require.Equal(t, DefaultConcurrency, cfg.Concurrency)
		require.Equal(t, DefaultBackoff(), cfg.Backoff)
		require.Equal(t, DefaultAckWait, cfg.AckWait)
		require.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)
		require.Equal(t, DefaultMaxWaiting, cfg.MaxWaiting)
		require.Equal(t, DefaultInactiveThreshold, cfg.InactiveThreshold)
		require.NotNil(t, cfg.Logger)
		require.NotNil(t, cfg.Metrics)
	})

	t.Run("preserves custom values", func(t *testing.T) {
		backoff := []time.Duration{time.Second, 5 * time.Second}
		cfg := ConsumerConfig{
			Subject:           SubjectEmail,
			StreamName:        "CUSTOM-STREAM",
			DurableName:       "custom-durable",
			Concurrency:       8,
			Backoff:           backoff,
			AckWait:           time.Minute,
			FetchTimeout:      10 * time.Second,
			MaxWaiting:        64,
			InactiveThreshold: time.Hour,
		}
		cfg.applyDefaults()

		require.Equal(t, "CUSTOM-STREAM", cfg.StreamName)
		require.Equal(t, 8, cfg.Concurrency)
		require.Equal(t, backoff, cfg.Backoff)
		require.Equal(t, time.Minute, cfg.AckWait)
		require.Equal(t, 10*time.Second, cfg.FetchTimeout)
		require.Equal(t, 64, cfg.MaxWaiting)
		require.Equal(t, time.Hour, cfg.InactiveThreshold)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() ConsumerConfig {
		cfg := ConsumerConfig{
			Subject:     SubjectIndexUser,
			DurableName: DurableIndexUser,
		}
		cfg.applyDefaults()

		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		cfg := valid()
		require.NoError(t, cfg.validate())
	})

	t.Run("missing subject", func(t *testing.T) {
		cfg := valid()
		cfg.Subject = ""
		require.ErrorIs(t, cfg.validate(), ErrInvalidConfig)
	})

	t.Run("missing durable name", func(t *testing.T) {
		cfg := valid()
		cfg.DurableName = ""
		require.ErrorIs(t, cfg.validate(), ErrInvalidConfig)
	})

	t.Run("zero concurrency", func(t *testing.T) {
		cfg := valid()
		cfg.Concurrency = 0
		require.ErrorIs(t, cfg.validate(), ErrInvalidConfig)
	})

	t.Run("negative backoff entry", func(t *testing.T) {
		cfg := valid()
		cfg.Backoff = []time.Duration{time.Second, -time.Second}
		require.ErrorIs(t, cfg.validate(), ErrInvalidConfig)
	})
}

func TestMaxDeliver(t *testing.T) {
	cfg := ConsumerConfig{Backoff: DefaultBackoff()}
	require.Equal(t, 6, cfg.MaxDeliver())

	cfg.Backoff = nil
	require.Equal(t, 1, cfg.MaxDeliver())

	cfg.Backoff = []time.Duration{time.Second}
	require.Equal(t, 2, cfg.MaxDeliver())
}

func TestDefaultBackoffIsFresh(t *testing.T) {
	a := DefaultBackoff()
	a[0] = time.Hour
	require.Equal(t, time.Second, DefaultBackoff()[0])
}
