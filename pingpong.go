package outline

// PingPong selects which of two owned buffers is the read source and which is
// the write target of a jump flood iteration. The buffers themselves are never
// moved; only the selector changes.
type PingPong[T any] struct {
	bufs [2]T
	read int
}

// NewPingPong starts with primary as the read source.
func NewPingPong[T any](primary, secondary T) PingPong[T] {
	return PingPong[T]{bufs: [2]T{primary, secondary}}
}

func (p *PingPong[T]) Primary() T   { return p.bufs[0] }
func (p *PingPong[T]) Secondary() T { return p.bufs[1] }

// Read returns the buffer the current iteration samples from.
func (p *PingPong[T]) Read() T { return p.bufs[p.read] }

// Write returns the buffer the current iteration renders into.
func (p *PingPong[T]) Write() T { return p.bufs[1-p.read] }

// ReadIndex is 0 when the primary buffer is the read source.
func (p *PingPong[T]) ReadIndex() int { return p.read }

// Swap exchanges the roles after an iteration has been fully written.
func (p *PingPong[T]) Swap() { p.read = 1 - p.read }

// Reset makes the primary buffer the read source again, which is where seed
// initialization writes.
func (p *PingPong[T]) Reset() { p.read = 0 }

// ResultIndex is the buffer holding the output after n iterations that
// started from Reset.
func ResultIndex(n int) int { return n % 2 }
