package replay_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"groscore/internal/domain"
	"groscore/internal/protocol/replay"
)

func newWindow(t *testing.T, size int) *replay.Window {
	t.Helper()
	w, err := replay.New(size)
	require.NoError(t, err)
	return w
}

func TestWindow_ForwardProgress(t *testing.T) {
	w := newWindow(t, 32)
	for _, n := range []uint64{0, 1, 2, 10, 11, 100} {
		require.NoError(t, w.Accept(n), "seq %d", n)
	}
	high, seen := w.High()
	require.True(t, seen)
	require.Equal(t, uint64(100), high)
}

func TestWindow_FirstNumberNeedNotBeZero(t *testing.T) {
	w := newWindow(t, 32)
	require.NoError(t, w.Accept(5))
	require.NoError(t, w.Accept(3))
	require.ErrorIs(t, w.Accept(5), domain.ErrReplayDetected)
}

func TestWindow_DuplicateRejected(t *testing.T) {
	w := newWindow(t, 32)
	require.NoError(t, w.Accept(7))
	before := w.State()

	err := w.Accept(7)
	require.ErrorIs(t, err, domain.ErrReplayDetected)
	require.Equal(t, before, w.State(), "a rejected number must not change the window")
}

func TestWindow_Edges(t *testing.T) {
	const size = 32
	w := newWindow(t, size)
	require.NoError(t, w.Accept(100))

	// W-1 behind the high-water mark is still inside the window.
	require.NoError(t, w.Check(100-size+1))
	require.NoError(t, w.Accept(100-size+1))
	// W behind is too old regardless of whether it was ever seen.
	require.ErrorIs(t, w.Accept(100-size), domain.ErrReplayDetected)
	require.ErrorIs(t, w.Accept(0), domain.ErrReplayDetected)
}

func TestWindow_OutOfOrderInside(t *testing.T) {
	w := newWindow(t, 32)
	for _, n := range []uint64{10, 8, 9, 3, 12, 11} {
		require.NoError(t, w.Accept(n), "seq %d", n)
	}
	for _, n := range []uint64{10, 8, 9, 3, 12, 11} {
		require.ErrorIs(t, w.Accept(n), domain.ErrReplayDetected, "seq %d", n)
	}
}

func TestWindow_LargeJumpClears(t *testing.T) {
	w := newWindow(t, 32)
	require.NoError(t, w.Accept(1))
	require.NoError(t, w.Accept(2))
	require.NoError(t, w.Accept(2+32))
	// 3..33 were never seen and are still inside the window.
	require.NoError(t, w.Accept(3))
	require.NoError(t, w.Accept(33))
	require.ErrorIs(t, w.Accept(2), domain.ErrReplayDetected)
}

func TestWindow_WideWindowShiftsAcrossWords(t *testing.T) {
	w := newWindow(t, 100)
	require.NoError(t, w.Accept(0))
	require.NoError(t, w.Accept(1))
	require.NoError(t, w.Accept(70)) // 0 and 1 move into the second word
	require.ErrorIs(t, w.Accept(0), domain.ErrReplayDetected)
	require.ErrorIs(t, w.Accept(1), domain.ErrReplayDetected)
	require.NoError(t, w.Accept(2))
	require.NoError(t, w.Accept(99)) // 0 now sits in the oldest slot
	require.ErrorIs(t, w.Accept(0), domain.ErrReplayDetected)
	require.ErrorIs(t, w.Accept(2), domain.ErrReplayDetected)
	require.NoError(t, w.Accept(3))
}

func TestWindow_RestoreNeverRollsBack(t *testing.T) {
	w := newWindow(t, 32)
	require.NoError(t, w.Accept(40))
	old := w.State()
	require.NoError(t, w.Accept(50))

	applied, err := w.Restore(old)
	require.NoError(t, err)
	require.False(t, applied)
	high, _ := w.High()
	require.Equal(t, uint64(50), high)

	fresh := newWindow(t, 32)
	applied, err = fresh.Restore(w.State())
	require.NoError(t, err)
	require.True(t, applied)
	require.ErrorIs(t, fresh.Accept(40), domain.ErrReplayDetected)
	require.ErrorIs(t, fresh.Accept(50), domain.ErrReplayDetected)
	require.NoError(t, fresh.Accept(45))

	_, err = newWindow(t, 64).Restore(w.State())
	require.Error(t, err)
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := replay.New(0)
	require.ErrorIs(t, err, replay.ErrInvalidSize)
}
