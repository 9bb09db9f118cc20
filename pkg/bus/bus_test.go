package bus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/znp/pkg/bus"
	"github.com/urmzd/znp/pkg/mt"
	"github.com/urmzd/znp/pkg/znptest"
)

func newTestBus(t *testing.T, cfg bus.Config) (*bus.Bus, *znptest.Simulator) {
	t.Helper()
	sim := znptest.New()
	if cfg.SREQTimeout == 0 {
		cfg.SREQTimeout = 500 * time.Millisecond
	}
	if cfg.ARSPTimeout == 0 {
		cfg.ARSPTimeout = time.Second
	}
	b := bus.New(sim.Transport(), cfg, zerolog.Nop())
	t.Cleanup(func() {
		b.Close()
		sim.Close()
	})
	return b, sim
}

func incomingMsg(seq uint8) mt.Args {
	return mt.Args{
		"GroupId":        uint16(0),
		"ClusterId":      uint16(0x0006),
		"SrcAddr":        uint16(0x1234),
		"SrcEndpoint":    uint8(1),
		"DstEndpoint":    uint8(1),
		"WasBroadcast":   false,
		"LQI":            uint8(120),
		"SecurityUse":    false,
		"Timestamp":      uint32(0),
		"TransSeqNumber": seq,
		"Data":           []byte{0x10, seq},
	}
}

func TestRequestResponse(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})
	sim.Reply(mt.SysPing, mt.Args{"Capabilities": uint16(0x0779)})

	rsp, err := b.Request(context.Background(), mt.SysPing, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0779), rsp.Uint16("Capabilities"))
}

// Two SREQs issued concurrently must hit the wire strictly one after the
// other: the second is written only after the first response arrives.
func TestSREQSerialisation(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	sim.Handle(mt.SysPing, func(f mt.Frame, _ mt.Args) []mt.Frame {
		time.Sleep(100 * time.Millisecond)
		return []mt.Frame{znptest.SRSP(mt.SysPing, mt.Args{"Capabilities": uint16(1)})}
	})
	sim.Reply(mt.SysRandom, mt.Args{"Value": uint16(0x5A5A)})

	var wg sync.WaitGroup
	wg.Add(2)
	start := make(chan struct{})
	go func() {
		defer wg.Done()
		<-start
		_, err := b.Request(context.Background(), mt.SysPing, nil)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		<-start
		time.Sleep(10 * time.Millisecond) // let the ping go first
		_, err := b.Request(context.Background(), mt.SysRandom, nil)
		assert.NoError(t, err)
	}()
	close(start)
	wg.Wait()

	sent := sim.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, uint8(0x01), sent[0].ID, "ping must be written first")
	assert.Equal(t, uint8(0x0C), sent[1].ID, "random must wait for the ping SRSP")
}

// A callback indication racing ahead of the SRSP must still reach the
// waiter registered by RequestCallback.
func TestCallbackBeforeSRSP(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	sim.Handle(mt.AfDataRequest, func(f mt.Frame, args mt.Args) []mt.Frame {
		confirm := znptest.AREQ(mt.AfDataConfirm, mt.Args{
			"Status":   uint8(0),
			"Endpoint": uint8(1),
			"TransId":  args.Uint8("TransId"),
		})
		return []mt.Frame{confirm, znptest.SRSP(mt.AfDataRequest, mt.Args{"Status": uint8(0)})}
	})

	cb, err := b.RequestCallback(context.Background(), mt.AfDataRequest, mt.Args{
		"DstAddr":     uint16(0x1234),
		"DstEndpoint": uint8(1),
		"SrcEndpoint": uint8(1),
		"ClusterId":   uint16(6),
		"TransId":     uint8(0x42),
		"Options":     uint8(0),
		"Radius":      uint8(30),
		"Data":        []byte{1},
	}, bus.MatchFields(mt.AfDataConfirm, mt.Args{"TransId": uint8(0x42)}))
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), cb.Uint8("TransId"))
}

// Confirms arriving in reversed order must resolve the matching callers.
func TestReversedConfirmMatching(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	var mu sync.Mutex
	var pending []uint8
	sim.Handle(mt.AfDataRequest, func(f mt.Frame, args mt.Args) []mt.Frame {
		mu.Lock()
		pending = append(pending, args.Uint8("TransId"))
		n := len(pending)
		mu.Unlock()

		out := []mt.Frame{znptest.SRSP(mt.AfDataRequest, mt.Args{"Status": uint8(0)})}
		if n == 2 {
			// Confirm both, newest first.
			mu.Lock()
			first, second := pending[1], pending[0]
			mu.Unlock()
			for _, id := range []uint8{first, second} {
				out = append(out, znptest.AREQ(mt.AfDataConfirm, mt.Args{
					"Status": uint8(0), "Endpoint": uint8(1), "TransId": id,
				}))
			}
		}
		return out
	})

	send := func(id uint8) (mt.Args, error) {
		return b.RequestCallback(context.Background(), mt.AfDataRequest, mt.Args{
			"DstAddr":     uint16(0x1234),
			"DstEndpoint": uint8(1),
			"SrcEndpoint": uint8(1),
			"ClusterId":   uint16(6),
			"TransId":     id,
			"Options":     uint8(0),
			"Radius":      uint8(30),
			"Data":        []byte{id},
		}, bus.MatchFields(mt.AfDataConfirm, mt.Args{"TransId": id}))
	}

	var wg sync.WaitGroup
	results := make([]mt.Args, 2)
	errs := make([]error, 2)
	for i, id := range []uint8{0x10, 0x20} {
		wg.Add(1)
		go func(i int, id uint8) {
			defer wg.Done()
			results[i], errs[i] = send(id)
		}(i, id)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, uint8(0x10), results[0].Uint8("TransId"))
	assert.Equal(t, uint8(0x20), results[1].Uint8("TransId"))
}

// SRSP/AREQ interleave: indications queued ahead of the SRSP are all
// delivered in wire order, and the SREQ future resolves only on the SRSP.
func TestSRSPAREQInterleave(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	sub := b.Subscribe(bus.MatchCommand(mt.AfIncomingMsg))

	sim.Handle(mt.SysPing, func(mt.Frame, mt.Args) []mt.Frame {
		return []mt.Frame{
			znptest.AREQ(mt.AfIncomingMsg, incomingMsg(1)),
			znptest.AREQ(mt.AfIncomingMsg, incomingMsg(2)),
			znptest.SRSP(mt.SysPing, mt.Args{"Capabilities": uint16(1)}),
		}
	})

	_, err := b.Request(context.Background(), mt.SysPing, nil)
	require.NoError(t, err)

	first := <-sub.C()
	second := <-sub.C()
	assert.Equal(t, uint8(1), first.Args.Uint8("TransSeqNumber"))
	assert.Equal(t, uint8(2), second.Args.Uint8("TransSeqNumber"))
}

func TestSubscribeDeliversAllInOrder(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	sub := b.Subscribe(bus.MatchCommand(mt.AfIncomingMsg), bus.WithBuffer(32))

	const k = 10
	for i := 0; i < k; i++ {
		sim.InjectAREQ(mt.AfIncomingMsg, incomingMsg(uint8(i)))
	}

	for i := 0; i < k; i++ {
		select {
		case ind := <-sub.C():
			assert.Equal(t, uint8(i), ind.Args.Uint8("TransSeqNumber"))
		case <-time.After(time.Second):
			t.Fatalf("indication %d never arrived", i)
		}
	}
}

func TestTimeoutThenRecovery(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{SREQTimeout: 100 * time.Millisecond})

	sim.Silent(mt.SysPing)
	_, err := b.Request(context.Background(), mt.SysPing, nil)
	require.ErrorIs(t, err, bus.ErrTimeout)

	sim.Reply(mt.SysRandom, mt.Args{"Value": uint16(7)})
	rsp, err := b.Request(context.Background(), mt.SysRandom, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), rsp.Uint16("Value"))
}

func TestCancelledWaiterGetsNothing(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	release := make(chan struct{})
	sim.Handle(mt.SysPing, func(mt.Frame, mt.Args) []mt.Frame {
		<-release
		return []mt.Frame{znptest.SRSP(mt.SysPing, mt.Args{"Capabilities": uint16(1)})}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := b.Request(ctx, mt.SysPing, nil)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, bus.ErrCancelled)

	// Release the late SRSP; the lane must recover for the next caller.
	close(release)
	sim.Reply(mt.SysRandom, mt.Args{"Value": uint16(3)})
	_, err := b.Request(context.Background(), mt.SysRandom, nil)
	require.NoError(t, err)
}

func TestUnsolicitedSRSPIsDiscarded(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	sim.Inject(znptest.SRSP(mt.SysPing, mt.Args{"Capabilities": uint16(9)}))
	time.Sleep(50 * time.Millisecond)

	// The bus must still be alive and serve requests.
	sim.Reply(mt.SysRandom, mt.Args{"Value": uint16(4)})
	rsp, err := b.Request(context.Background(), mt.SysRandom, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), rsp.Uint16("Value"))
}

func TestMismatchedSRSPIsProtocolError(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	sim.Handle(mt.SysPing, func(mt.Frame, mt.Args) []mt.Frame {
		return []mt.Frame{znptest.SRSP(mt.SysRandom, mt.Args{"Value": uint16(1)})}
	})

	_, err := b.Request(context.Background(), mt.SysPing, nil)
	var perr *bus.ProtocolError
	require.ErrorAs(t, err, &perr)
}

func TestFramingErrorRecovery(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	sub := b.Subscribe(bus.MatchCommand(mt.ZdoStateChangeInd))

	good := znptest.AREQ(mt.ZdoStateChangeInd, mt.Args{"State": uint8(9)})
	wire, err := good.Encode()
	require.NoError(t, err)

	bad := append([]byte(nil), wire...)
	bad[len(bad)-1] ^= 0xFF

	sim.InjectRaw(wire)
	sim.InjectRaw(bad)
	sim.InjectRaw(wire)

	for i := 0; i < 2; i++ {
		select {
		case ind := <-sub.C():
			assert.Equal(t, uint8(9), ind.Args.Uint8("State"))
		case <-time.After(time.Second):
			t.Fatal("valid frame was not delivered")
		}
	}
	assert.Equal(t, uint64(1), b.Stats().BadFCS)
}

func TestDisconnectFailsWaiters(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})

	sim.Silent(mt.SysPing)
	done := make(chan error, 1)
	go func() {
		_, err := b.Request(context.Background(), mt.SysPing, nil)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	sim.Close()

	require.ErrorIs(t, <-done, bus.ErrDisconnected)
	require.ErrorIs(t, b.Err(), bus.ErrDisconnected)
}

func TestWatchdogPromotesToDisconnect(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{
		SREQTimeout:      50 * time.Millisecond,
		WatchdogInterval: 30 * time.Millisecond,
		WatchdogFailures: 2,
	})
	sim.Silent(mt.SysPing)

	require.Eventually(t, func() bool {
		return b.Err() != nil
	}, 2*time.Second, 20*time.Millisecond, "watchdog never tripped")
	assert.ErrorIs(t, b.Err(), bus.ErrDisconnected)
}

func TestRequestStatusMapsFirmwareError(t *testing.T) {
	b, sim := newTestBus(t, bus.Config{})
	sim.Reply(mt.UtilLedControl, mt.Args{"Status": uint8(mt.StatusInvalidParameter)})

	_, err := b.RequestStatus(context.Background(), mt.UtilLedControl, mt.Args{
		"LedId": uint8(3), "Mode": uint8(1),
	})
	st, ok := bus.AsStatus(err)
	require.True(t, ok, "expected a CommandStatusError, got %v", err)
	assert.Equal(t, mt.StatusInvalidParameter, st)
}
