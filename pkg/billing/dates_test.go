package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRenewalBase(t *testing.T) {
	t.Run("future expiry wins", func(t *testing.T) {
		base := renewalBase(date(2025, 1, 10), date(2025, 1, 5))
		assert.Equal(t, date(2025, 1, 10), base)
	})

	t.Run("lapsed expiry restarts from today", func(t *testing.T) {
		base := renewalBase(date(2025, 1, 1), date(2025, 2, 1))
		assert.Equal(t, date(2025, 2, 1), base)
	})

	t.Run("expiring today restarts from today", func(t *testing.T) {
		base := renewalBase(date(2025, 3, 15), date(2025, 3, 15))
		assert.Equal(t, date(2025, 3, 15), base)
	})

	t.Run("time of day is ignored", func(t *testing.T) {
		base := renewalBase(
			time.Date(2025, 1, 10, 23, 59, 0, 0, time.UTC),
			time.Date(2025, 1, 10, 0, 1, 0, 0, time.UTC),
		)
		assert.Equal(t, date(2025, 1, 10), base)
	})
}

func TestExtendExpiry(t *testing.T) {
	t.Run("two months is sixty days not two calendar months", func(t *testing.T) {
		got := extendExpiry(date(2025, 1, 10), date(2025, 1, 5), 2)
		assert.Equal(t, date(2025, 3, 11), got)
	})

	t.Run("lapsed account renews from today", func(t *testing.T) {
		got := extendExpiry(date(2025, 1, 1), date(2025, 2, 1), 1)
		assert.Equal(t, date(2025, 3, 3), got)
	})

	t.Run("twelve months is 360 days", func(t *testing.T) {
		start := date(2025, 1, 1)
		got := extendExpiry(start, date(2024, 6, 1), 12)
		assert.Equal(t, start.AddDate(0, 0, 360), got)
	})
}
