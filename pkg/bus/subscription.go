package bus

import (
	"sync"
	"sync/atomic"
)

// SubscribeOption tunes a subscription.
type SubscribeOption func(*Subscription)

// WithOverflowDrop makes the subscription drop indications instead of
// blocking the dispatcher when its buffer is full. Drops are counted.
func WithOverflowDrop() SubscribeOption {
	return func(s *Subscription) {
		s.dropOnFull = true
	}
}

// WithBuffer sets the subscription channel capacity. Default 16.
func WithBuffer(n int) SubscribeOption {
	return func(s *Subscription) {
		s.buffer = n
	}
}

// Subscription is a stream of matching indications in wire order. By
// default a slow consumer backpressures the bus dispatcher; opt into
// dropping with WithOverflowDrop.
type Subscription struct {
	bus        *Bus
	matcher    Matcher
	ch         chan Indication
	quit       chan struct{}
	buffer     int
	dropOnFull bool
	overflow   atomic.Uint64
	closeOnce  sync.Once
}

// Subscribe registers a listener for every indication the matcher
// accepts. The channel closes when the subscription is cancelled or the
// bus disconnects.
func (b *Bus) Subscribe(match Matcher, opts ...SubscribeOption) *Subscription {
	s := &Subscription{bus: b, matcher: match, buffer: 16, quit: make(chan struct{})}
	for _, opt := range opts {
		opt(s)
	}
	s.ch = make(chan Indication, s.buffer)

	b.mu.Lock()
	if b.failed {
		b.mu.Unlock()
		s.closeOnce.Do(func() {
			close(s.quit)
			close(s.ch)
		})
		return s
	}
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s
}

// C is the stream of matching indications.
func (s *Subscription) C() <-chan Indication {
	return s.ch
}

// Overflow reports how many indications were dropped on this
// subscription. Always zero unless WithOverflowDrop was set.
func (s *Subscription) Overflow() uint64 {
	return s.overflow.Load()
}

// Close cancels the subscription and closes its channel.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)

		b := s.bus
		b.mu.Lock()
		for i, x := range b.subs {
			if x == s {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()

		// Waiting for deliverMu guarantees no dispatch is mid-send on
		// this channel when it closes.
		b.deliverMu.Lock()
		close(s.ch)
		b.deliverMu.Unlock()
	})
}

// deliver pushes one indication, honouring the overflow policy. The
// caller holds the bus deliver mutex.
func (s *Subscription) deliver(ind Indication, done <-chan struct{}) {
	if s.dropOnFull {
		select {
		case s.ch <- ind:
		default:
			s.overflow.Add(1)
		}
		return
	}
	select {
	case s.ch <- ind:
	case <-s.quit:
	case <-done:
	}
}
