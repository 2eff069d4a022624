package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

func TestCache(t *testing.T) {
	t.Parallel()

	rec := entities.DomainRecord{
		Status:        entities.StatusOnline,
		HasSSL:        true,
		DaysRemaining: entities.IntPtr(40),
	}

	t.Run("fresh until ttl elapses", func(t *testing.T) {
		t.Parallel()

		clock := clockwork.NewFakeClock()
		c := NewCache(clock, DefaultCacheTTL)

		_, ok := c.Get("example.com")
		require.False(t, ok)

		c.Put("example.com", rec)
		clock.Advance(DefaultCacheTTL - time.Second)
		got, ok := c.Get("example.com")
		require.True(t, ok)
		require.Equal(t, rec, got)

		clock.Advance(time.Second)
		_, ok = c.Get("example.com")
		require.False(t, ok)
	})

	t.Run("put overwrites and restamps", func(t *testing.T) {
		t.Parallel()

		clock := clockwork.NewFakeClock()
		c := NewCache(clock, DefaultCacheTTL)

		c.Put("example.com", rec)
		clock.Advance(DefaultCacheTTL)

		offline := entities.DomainRecord{Status: entities.StatusOffline, ErrorMessage: "connect: refused"}
		c.Put("example.com", offline)
		got, ok := c.Get("example.com")
		require.True(t, ok)
		require.Equal(t, offline, got)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		t.Parallel()

		c := NewCache(clockwork.NewFakeClock(), DefaultCacheTTL)
		c.Put("example.com", rec)

		got, _ := c.Get("example.com")
		*got.DaysRemaining = 1

		again, _ := c.Get("example.com")
		require.Equal(t, 40, *again.DaysRemaining)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		c := NewCache(clockwork.NewFakeClock(), DefaultCacheTTL)
		c.Put("example.com", rec)
		c.Delete("example.com")
		c.Delete("example.com")

		_, ok := c.Get("example.com")
		require.False(t, ok)
	})
}
