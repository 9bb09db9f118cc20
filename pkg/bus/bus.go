// Package bus multiplexes MT commands over a single serial transport: it
// serialises synchronous requests, correlates replies, matches async
// callbacks to their originating requests, and fans indications out to
// subscribers.
package bus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/urmzd/znp/pkg/mt"
)

// Config tunes the bus timeouts and watchdog.
type Config struct {
	// SREQTimeout bounds the wait for an SRSP. Default 15 s.
	SREQTimeout time.Duration

	// ARSPTimeout bounds the wait for an AREQ callback. Default 30 s.
	ARSPTimeout time.Duration

	// WatchdogInterval spaces the periodic SYS.PING probes. Zero
	// disables the watchdog.
	WatchdogInterval time.Duration

	// WatchdogFailures is how many consecutive ping timeouts promote to
	// a disconnect. Default 3.
	WatchdogFailures int
}

func (c Config) withDefaults() Config {
	if c.SREQTimeout == 0 {
		c.SREQTimeout = 15 * time.Second
	}
	if c.ARSPTimeout == 0 {
		c.ARSPTimeout = 30 * time.Second
	}
	if c.WatchdogFailures == 0 {
		c.WatchdogFailures = 3
	}
	return c
}

type result struct {
	args mt.Args
	err  error
}

// sreqWaiter is the head of the single-slot SREQ lane.
type sreqWaiter struct {
	cmd *mt.Command
	ch  chan result // buffered, one delivery
}

// cbWaiter waits for one matching AREQ indication.
type cbWaiter struct {
	matcher Matcher
	ch      chan Indication // buffered, one delivery
}

type writeJob struct {
	data []byte
	done chan error
}

// Bus is the MT command multiplexer. It owns the transport's read and
// write halves through two long-lived goroutines; all other callers
// suspend on the futures those goroutines complete.
type Bus struct {
	cfg Config
	log zerolog.Logger
	tr  io.ReadWriteCloser
	dec *mt.Decoder

	writeCh chan writeJob
	done    chan struct{}

	// sreqSem is the single-slot SREQ lane. Holding the token means the
	// caller's request is the outstanding SREQ.
	sreqSem chan struct{}

	mu      sync.Mutex
	current *sreqWaiter
	waiters []*cbWaiter
	subs    []*Subscription
	failErr error
	failed  bool

	// deliverMu serialises subscriber delivery against subscription
	// close, so a channel is never closed mid-send.
	deliverMu sync.Mutex
}

// New starts a bus over the given transport. The transport is owned by
// the bus from this point on and is closed when the bus fails or closes.
func New(tr io.ReadWriteCloser, cfg Config, log zerolog.Logger) *Bus {
	b := &Bus{
		cfg:     cfg.withDefaults(),
		log:     log,
		tr:      tr,
		dec:     mt.NewDecoder(),
		writeCh: make(chan writeJob),
		done:    make(chan struct{}),
		sreqSem: make(chan struct{}, 1),
	}
	go b.readLoop()
	go b.writeLoop()
	if b.cfg.WatchdogInterval > 0 {
		go b.watchdog()
	}
	return b
}

// Stats returns the decoder's framing counters.
func (b *Bus) Stats() mt.DecoderStats {
	return b.dec.Stats()
}

// Close tears the bus down. Idempotent.
func (b *Bus) Close() {
	b.fail(ErrDisconnected)
}

// Err returns the terminal error once the bus has failed, nil otherwise.
func (b *Bus) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failErr
}

// Request sends an SREQ and waits for its SRSP. Requests are serialised:
// at most one SREQ is outstanding at any instant, and a new one waits for
// the previous response, timeout, or cancellation.
func (b *Bus) Request(ctx context.Context, cmd *mt.Command, args mt.Args) (mt.Args, error) {
	if cmd.Type != mt.SREQ {
		return nil, fmt.Errorf("bus: %s is not an SREQ command", cmd.Name)
	}
	frame, err := cmd.Frame(args)
	if err != nil {
		return nil, err
	}
	wire, err := frame.Encode()
	if err != nil {
		return nil, err
	}

	// Acquire the SREQ lane.
	select {
	case b.sreqSem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s", ErrCancelled, cmd.Name)
	case <-b.done:
		return nil, fmt.Errorf("%w: %s", ErrDisconnected, cmd.Name)
	}

	w := &sreqWaiter{cmd: cmd, ch: make(chan result, 1)}
	b.mu.Lock()
	if b.failed {
		b.mu.Unlock()
		<-b.sreqSem
		return nil, fmt.Errorf("%w: %s", ErrDisconnected, cmd.Name)
	}
	b.current = w
	b.mu.Unlock()

	if err := b.write(ctx, wire); err != nil {
		b.clearCurrent(w)
		<-b.sreqSem
		return nil, fmt.Errorf("%s: %w", cmd.Name, err)
	}

	b.log.Debug().Str("cmd", cmd.Name).Msg("SREQ sent")

	deadline := time.After(b.cfg.SREQTimeout)

	select {
	case res := <-w.ch:
		b.clearCurrent(w)
		<-b.sreqSem
		if res.err != nil {
			return nil, res.err
		}
		return res.args, nil
	case <-deadline:
		b.clearCurrent(w)
		<-b.sreqSem
		b.log.Warn().Str("cmd", cmd.Name).Dur("timeout", b.cfg.SREQTimeout).Msg("SREQ timed out")
		return nil, fmt.Errorf("%w: %s", ErrTimeout, cmd.Name)
	case <-ctx.Done():
		// The caller is gone but the SRSP may still be in flight.
		// Releasing the lane now would let the next SREQ's response be
		// misattributed, so hold it until the reply or the deadline.
		go func() {
			select {
			case <-w.ch:
			case <-deadline:
			case <-b.done:
			}
			b.clearCurrent(w)
			<-b.sreqSem
		}()
		return nil, fmt.Errorf("%w: %s", ErrCancelled, cmd.Name)
	case <-b.done:
		b.clearCurrent(w)
		<-b.sreqSem
		return nil, fmt.Errorf("%w: %s", ErrDisconnected, cmd.Name)
	}
}

// RequestStatus issues an SREQ whose response carries a Status field and
// maps a non-success status to a CommandStatusError.
func (b *Bus) RequestStatus(ctx context.Context, cmd *mt.Command, args mt.Args) (mt.Args, error) {
	rsp, err := b.Request(ctx, cmd, args)
	if err != nil {
		return nil, err
	}
	if v, ok := rsp["Status"]; ok {
		if st, ok := v.(uint8); ok && mt.Status(st) != mt.StatusSuccess {
			return rsp, &CommandStatusError{Command: cmd, Status: mt.Status(st)}
		}
	}
	return rsp, nil
}

// Send fires an AREQ without waiting for anything.
func (b *Bus) Send(ctx context.Context, cmd *mt.Command, args mt.Args) error {
	if cmd.Type != mt.AREQ {
		return fmt.Errorf("bus: %s is not an AREQ command", cmd.Name)
	}
	frame, err := cmd.Frame(args)
	if err != nil {
		return err
	}
	wire, err := frame.Encode()
	if err != nil {
		return err
	}
	if err := b.write(ctx, wire); err != nil {
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	b.log.Debug().Str("cmd", cmd.Name).Msg("AREQ sent")
	return nil
}

// RequestCallback sends a request and waits for the AREQ indication that
// completes it. The waiter is registered before the request goes out, so
// an indication racing ahead of the SRSP is still captured. If match has
// no command, the request's declared Callback is used. A failed request
// cancels the pending matcher.
func (b *Bus) RequestCallback(ctx context.Context, cmd *mt.Command, args mt.Args, match Matcher) (mt.Args, error) {
	if match.Command == nil {
		if cmd.Callback == nil {
			return nil, fmt.Errorf("bus: %s has no callback to wait for", cmd.Name)
		}
		match.Command = cmd.Callback
	}

	w := b.addWaiter(match)

	var err error
	switch cmd.Type {
	case mt.SREQ:
		_, err = b.RequestStatus(ctx, cmd, args)
	case mt.AREQ:
		err = b.Send(ctx, cmd, args)
	default:
		err = fmt.Errorf("bus: %s is not a request command", cmd.Name)
	}
	if err != nil {
		b.removeWaiter(w)
		return nil, err
	}

	deadline := time.After(b.cfg.ARSPTimeout)

	select {
	case ind := <-w.ch:
		return ind.Args, nil
	case <-deadline:
		b.removeWaiter(w)
		return nil, fmt.Errorf("%w: callback for %s", ErrTimeout, cmd.Name)
	case <-ctx.Done():
		b.removeWaiter(w)
		return nil, fmt.Errorf("%w: callback for %s", ErrCancelled, cmd.Name)
	case <-b.done:
		b.removeWaiter(w)
		return nil, fmt.Errorf("%w: callback for %s", ErrDisconnected, cmd.Name)
	}
}

// WaitFor blocks until one indication matches, bounded by the ARSP
// timeout and the context.
func (b *Bus) WaitFor(ctx context.Context, match Matcher) (Indication, error) {
	w := b.addWaiter(match)

	deadline := time.After(b.cfg.ARSPTimeout)

	select {
	case ind := <-w.ch:
		return ind, nil
	case <-deadline:
		b.removeWaiter(w)
		return Indication{}, ErrTimeout
	case <-ctx.Done():
		b.removeWaiter(w)
		return Indication{}, ErrCancelled
	case <-b.done:
		b.removeWaiter(w)
		return Indication{}, ErrDisconnected
	}
}

func (b *Bus) addWaiter(match Matcher) *cbWaiter {
	w := &cbWaiter{matcher: match, ch: make(chan Indication, 1)}
	b.mu.Lock()
	b.waiters = append(b.waiters, w)
	b.mu.Unlock()
	return w
}

func (b *Bus) removeWaiter(w *cbWaiter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, x := range b.waiters {
		if x == w {
			b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
			return
		}
	}
}

func (b *Bus) clearCurrent(w *sreqWaiter) {
	b.mu.Lock()
	if b.current == w {
		b.current = nil
	}
	b.mu.Unlock()
}

// write hands a wire frame to the writer goroutine and waits for the
// transport write to finish, preserving frame atomicity and emit order.
func (b *Bus) write(ctx context.Context, wire []byte) error {
	job := writeJob{data: wire, done: make(chan error, 1)}
	select {
	case b.writeCh <- job:
	case <-ctx.Done():
		return ErrCancelled
	case <-b.done:
		return ErrDisconnected
	}
	select {
	case err := <-job.done:
		return err
	case <-b.done:
		return ErrDisconnected
	}
}

func (b *Bus) writeLoop() {
	for {
		select {
		case job := <-b.writeCh:
			_, err := b.tr.Write(job.data)
			job.done <- err
			if err != nil {
				b.log.Error().Err(err).Msg("Transport write failed")
				b.fail(fmt.Errorf("%w: %v", ErrDisconnected, err))
				return
			}
		case <-b.done:
			return
		}
	}
}

func (b *Bus) readLoop() {
	buf := make([]byte, 256)
	for {
		n, err := b.tr.Read(buf)
		if n > 0 {
			for _, frame := range b.dec.Push(buf[:n]) {
				b.dispatch(frame)
			}
		}
		if err != nil {
			select {
			case <-b.done:
			default:
				b.log.Error().Err(err).Msg("Transport read failed")
			}
			b.fail(fmt.Errorf("%w: %v", ErrDisconnected, err))
			return
		}
	}
}

func (b *Bus) dispatch(frame mt.Frame) {
	switch frame.Type {
	case mt.SRSP:
		b.dispatchSRSP(frame)
	case mt.AREQ:
		b.dispatchAREQ(frame)
	default:
		b.log.Warn().Stringer("frame", frame).Msg("Dropping frame with unexpected type")
	}
}

func (b *Bus) dispatchSRSP(frame mt.Frame) {
	b.mu.Lock()
	w := b.current
	b.current = nil
	b.mu.Unlock()

	if w == nil {
		// No head waiter. The firmware occasionally replays an SRSP
		// after the requester timed out; log and discard.
		b.log.Warn().Stringer("frame", frame).Msg("Unsolicited SRSP discarded")
		return
	}

	if frame.Subsystem != w.cmd.Subsystem || frame.ID != w.cmd.ID {
		err := &ProtocolError{Reason: fmt.Sprintf("SRSP does not match outstanding %s", w.cmd.Name), Frame: frame}
		b.log.Error().Err(err).Msg("SRSP mismatch")
		w.ch <- result{err: err}
		return
	}

	args, err := mt.DecodeFields(w.cmd.Rsp, frame.Data)
	if err != nil {
		perr := &ProtocolError{Reason: err.Error(), Frame: frame}
		b.log.Error().Err(perr).Msg("SRSP decode failed")
		w.ch <- result{err: perr}
		return
	}

	b.log.Debug().Str("cmd", w.cmd.Name).Msg("SRSP received")
	w.ch <- result{args: args}
}

func (b *Bus) dispatchAREQ(frame mt.Frame) {
	cmd, args, err := mt.DecodeFrame(frame)
	if err != nil {
		b.log.Warn().Err(err).Stringer("frame", frame).Msg("Indication payload decode failed")
		args = nil
	}
	if cmd == nil && err == nil {
		b.log.Debug().Stringer("frame", frame).Msg("Unknown indication")
	}
	ind := Indication{Command: cmd, Args: args, Frame: frame}

	// One-shot callback waiters first, then every matching subscriber.
	// Waiter and subscriber delivery happens on this goroutine, so all
	// listeners observe indications in wire order.
	b.mu.Lock()
	var hit *cbWaiter
	for i, w := range b.waiters {
		if w.matcher.matches(ind) {
			hit = w
			b.waiters = append(b.waiters[:i], b.waiters[i+1:]...)
			break
		}
	}
	subs := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matcher.matches(ind) {
			subs = append(subs, s)
		}
	}
	b.mu.Unlock()

	if hit != nil {
		hit.ch <- ind
	}
	b.deliverMu.Lock()
	for _, s := range subs {
		s.deliver(ind, b.done)
	}
	b.deliverMu.Unlock()
}

// watchdog probes the firmware with SYS.PING and promotes repeated
// timeouts to a disconnect.
func (b *Bus) watchdog() {
	ticker := time.NewTicker(b.cfg.WatchdogInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), b.cfg.SREQTimeout)
			_, err := b.Request(ctx, mt.SysPing, nil)
			cancel()
			switch {
			case err == nil:
				failures = 0
			case errors.Is(err, ErrTimeout):
				failures++
				b.log.Warn().Int("failures", failures).Msg("Watchdog ping timed out")
				if failures >= b.cfg.WatchdogFailures {
					b.fail(fmt.Errorf("%w: watchdog gave up after %d pings", ErrDisconnected, failures))
					return
				}
			default:
				// Disconnect or protocol error; fail() already ran or
				// the next tick will try again.
			}
		case <-b.done:
			return
		}
	}
}

// fail moves the bus to its terminal state: every waiter completes with
// the error, subscriptions close, and the transport shuts down.
func (b *Bus) fail(err error) {
	b.mu.Lock()
	if b.failed {
		b.mu.Unlock()
		return
	}
	b.failed = true
	b.failErr = err
	current := b.current
	b.current = nil
	b.waiters = nil
	subs := b.subs
	b.subs = nil
	close(b.done)
	b.mu.Unlock()

	// Callback waiters select on b.done and report ErrDisconnected
	// themselves; only the SREQ head needs an explicit completion.
	if current != nil {
		current.ch <- result{err: err}
	}
	for _, s := range subs {
		sub := s
		sub.closeOnce.Do(func() {
			close(sub.quit)
			b.deliverMu.Lock()
			close(sub.ch)
			b.deliverMu.Unlock()
		})
	}
	_ = b.tr.Close()

	b.log.Info().Err(err).Msg("Bus shut down")
}
