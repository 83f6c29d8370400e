package core

// delayLine delays a signal by a fixed number of ticks. It is a single ring
// buffer sized to its depth rather than a chain of discrete registers; the
// observable behavior is an exact depth-tick delay. Depth zero is a wire:
// the output of a tick equals the input of the same tick.
type delayLine[T any] struct {
	buf  []T
	head int
	in   T
}

func newDelayLine[T any](depth int) *delayLine[T] {
	return &delayLine[T]{buf: make([]T, depth)}
}

// Evaluate stages this tick's input and returns the value emerging this
// tick.
func (d *delayLine[T]) Evaluate(in T) T {
	d.in = in
	if len(d.buf) == 0 {
		return in
	}

	return d.buf[d.head]
}

// Commit overwrites the oldest slot with the staged input and advances the
// ring.
func (d *delayLine[T]) Commit() {
	if len(d.buf) == 0 {
		return
	}

	d.buf[d.head] = d.in
	d.head = (d.head + 1) % len(d.buf)
}

func (d *delayLine[T]) Reset() {
	var zero T
	for i := range d.buf {
		d.buf[i] = zero
	}
	d.head = 0
	d.in = zero
}

// aligner is a bank of per-lane delay lines. A skew aligner delays lane x by
// x ticks, so a flat bundle presented on one tick reaches the array boundary
// with the stagger the wavefront expects. A deskew aligner delays lane x by
// the complement width-1-x, undoing the array's output skew so every lane of
// a logical row becomes available on the same tick.
type aligner[T any] struct {
	lanes []*delayLine[T]
	out   []T
}

func newSkewAligner[T any](width int) *aligner[T] {
	a := &aligner[T]{
		lanes: make([]*delayLine[T], width),
		out:   make([]T, width),
	}
	for i := range a.lanes {
		a.lanes[i] = newDelayLine[T](i)
	}

	return a
}

func newDeskewAligner[T any](width int) *aligner[T] {
	a := &aligner[T]{
		lanes: make([]*delayLine[T], width),
		out:   make([]T, width),
	}
	for i := range a.lanes {
		a.lanes[i] = newDelayLine[T](width - 1 - i)
	}

	return a
}

// Evaluate presents one flat bundle and returns the per-lane values emerging
// this tick. The returned slice is reused across ticks.
func (a *aligner[T]) Evaluate(in []T) []T {
	for i, lane := range a.lanes {
		a.out[i] = lane.Evaluate(in[i])
	}

	return a.out
}

func (a *aligner[T]) Commit() {
	for _, lane := range a.lanes {
		lane.Commit()
	}
}

func (a *aligner[T]) Reset() {
	for _, lane := range a.lanes {
		lane.Reset()
	}
}
