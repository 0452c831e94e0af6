//go:build integration

package rod_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, opts ...rod.ManagerOption) *rod.BrowserManager {
	t.Helper()

	m, err := rod.NewBrowserManager(append([]rod.ManagerOption{rod.WithNoSandbox()}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestBrowserManager_Acquire(t *testing.T) {
	t.Parallel()

	t.Run("replaces the browser after its quota", func(t *testing.T) {
		t.Parallel()

		m := newManager(t, rod.WithMaxPages(2))

		for range 2 {
			_, release, err := m.Acquire()
			require.NoError(t, err)
			release()
		}
		assert.Equal(t, 1, m.Launches())

		_, release, err := m.Acquire()
		require.NoError(t, err)
		release()
		assert.Equal(t, 2, m.Launches())
	})

	t.Run("keeps a replaced browser open for pages in flight", func(t *testing.T) {
		t.Parallel()

		m := newManager(t, rod.WithMaxPages(1))

		first, releaseFirst, err := m.Acquire()
		require.NoError(t, err)
		second, releaseSecond, err := m.Acquire()
		require.NoError(t, err)
		defer releaseSecond()

		assert.NotSame(t, first, second)
		page, err := first.Page(proto.TargetCreateTarget{})
		require.NoError(t, err, "replaced browser closed while still in use")
		require.NoError(t, page.Close())

		releaseFirst()
		releaseFirst()
	})

	t.Run("fails after close", func(t *testing.T) {
		t.Parallel()

		m := newManager(t)
		require.NoError(t, m.Close())
		require.NoError(t, m.Close())

		_, _, err := m.Acquire()

		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}
