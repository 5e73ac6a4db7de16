package replay

import (
	"errors"
	"fmt"

	"groscore/internal/domain"
)

// DefaultSize is the window size used when none is configured.
const DefaultSize = 32

var ErrInvalidSize = errors.New("replay window size must be positive")

// Window is a sliding anti-replay window.
type Window struct {
	size int
	high uint64
	seen bool
	bits []uint64 // bit i marks high-i
}

// New returns an empty window of the given size.
func New(size int) (*Window, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return &Window{size: size, bits: make([]uint64, (size+63)/64)}, nil
}

// Size returns W.
func (w *Window) Size() int { return w.size }

// High returns the high-water mark and whether any number was accepted yet.
func (w *Window) High() (uint64, bool) { return w.high, w.seen }

// Check reports whether seq would be accepted, without changing the window.
func (w *Window) Check(seq uint64) error {
	if !w.seen || seq > w.high {
		return nil
	}
	offset := w.high - seq
	if offset >= uint64(w.size) {
		return domain.Errorf(domain.KindReplayDetected, "sequence number %d is older than window [%d, %d]", seq, w.high-uint64(w.size)+1, w.high)
	}
	if w.test(int(offset)) {
		return domain.Errorf(domain.KindReplayDetected, "sequence number %d already accepted", seq)
	}
	return nil
}

// Accept checks seq and, if it passes, marks it as accepted.
func (w *Window) Accept(seq uint64) error {
	if err := w.Check(seq); err != nil {
		return err
	}
	switch {
	case !w.seen:
		w.seen = true
		w.high = seq
		w.clear()
	case seq > w.high:
		w.shift(seq - w.high)
		w.high = seq
	}
	w.set(int(w.high - seq))
	return nil
}

// State returns a snapshot suitable for persistence.
func (w *Window) State() domain.WindowState {
	return domain.WindowState{
		High:   w.high,
		Seen:   w.seen,
		Size:   w.size,
		Bitmap: append([]uint64(nil), w.bits...),
	}
}

// Restore loads st unless that would move the high-water mark backward. It
// reports whether the snapshot was applied.
func (w *Window) Restore(st domain.WindowState) (bool, error) {
	if !st.Seen {
		return false, nil
	}
	if w.seen && st.High <= w.high {
		return false, nil
	}
	if st.Size != w.size {
		return false, fmt.Errorf("window size %d, snapshot size %d", w.size, st.Size)
	}
	if len(st.Bitmap) != len(w.bits) {
		return false, fmt.Errorf("snapshot bitmap has %d words, want %d", len(st.Bitmap), len(w.bits))
	}
	w.high, w.seen = st.High, true
	copy(w.bits, st.Bitmap)
	w.maskTail()
	return true, nil
}

func (w *Window) test(i int) bool { return w.bits[i/64]&(1<<(i%64)) != 0 }

func (w *Window) set(i int) { w.bits[i/64] |= 1 << (i % 64) }

func (w *Window) clear() {
	for i := range w.bits {
		w.bits[i] = 0
	}
}

// shift moves every mark n positions older, dropping those past the window.
func (w *Window) shift(n uint64) {
	if n >= uint64(w.size) {
		w.clear()
		return
	}
	words, bits := int(n/64), uint(n%64)
	for i := len(w.bits) - 1; i >= 0; i-- {
		var v uint64
		if j := i - words; j >= 0 {
			v = w.bits[j] << bits
			if bits > 0 && j-1 >= 0 {
				v |= w.bits[j-1] >> (64 - bits)
			}
		}
		w.bits[i] = v
	}
	w.maskTail()
}

// maskTail clears the unused high bits of the last word.
func (w *Window) maskTail() {
	if r := w.size % 64; r != 0 {
		w.bits[len(w.bits)-1] &= (1 << r) - 1
	}
}
