package acquire

// barrier is a two-party join: it counts a fixed number of arrivals and
// fires its callback exactly once, when the last expected arrival lands.
// Extra arrivals after firing are ignored.
//
// It is not safe for concurrent use; the coordinator touches it from its
// single event-loop goroutine only, so no locking is needed.
type barrier struct {
	remaining int
	fn        func()
}

func newBarrier(parties int, fn func()) *barrier {
	return &barrier{remaining: parties, fn: fn}
}

func (b *barrier) arrive() {
	if b.remaining == 0 {
		return
	}
	b.remaining--
	if b.remaining == 0 && b.fn != nil {
		fn := b.fn
		b.fn = nil
		fn()
	}
}
