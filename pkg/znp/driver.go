// Package znp is the host-side driver for TI ZNP Zigbee coprocessors. It
// layers the coordinator lifecycle, the AF data plane, and ZDO network
// management on top of the MT bus.
package znp

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/urmzd/znp/pkg/bus"
	"github.com/urmzd/znp/pkg/mt"
	"github.com/urmzd/znp/pkg/nvram"
	"github.com/urmzd/znp/pkg/serial"
)

// transportFactory reopens the byte stream on (re)connect.
type transportFactory func() (io.ReadWriteCloser, error)

// Driver is the public coordinator handle.
type Driver struct {
	cfg Config
	log zerolog.Logger

	openTransport transportFactory

	mu        sync.Mutex
	state     State
	bus       *bus.Bus
	nv        *nvram.Manager
	version   Version
	network   NetworkInfo
	devices   map[uint64]*Device
	lastStart StartMode

	permitUntil time.Time

	// Transaction ids for AF data requests.
	nextTransID uint8
	transInUse  map[uint8]bool

	dataSem chan struct{}

	events       chan Event
	eventsClosed bool
	pumpSub      *bus.Subscription
	pumpDone     chan struct{}

	closed bool
}

// Open connects to the coprocessor over the configured serial port.
func Open(cfg Config) (*Driver, error) {
	cfg = cfg.withDefaults()
	d := newDriver(cfg, func() (io.ReadWriteCloser, error) {
		return serial.Open(cfg.serialConfig(), *cfg.Logger)
	})
	if err := d.connect(); err != nil {
		return nil, err
	}
	return d, nil
}

// OpenWithTransport connects over an already-open byte stream; used by
// tests and by tools that manage the port themselves.
func OpenWithTransport(cfg Config, tr io.ReadWriteCloser) (*Driver, error) {
	cfg = cfg.withDefaults()
	opened := false
	d := newDriver(cfg, func() (io.ReadWriteCloser, error) {
		if opened {
			return nil, fmt.Errorf("znp: transport cannot be reopened")
		}
		opened = true
		return tr, nil
	})
	if err := d.connect(); err != nil {
		return nil, err
	}
	return d, nil
}

func newDriver(cfg Config, open transportFactory) *Driver {
	return &Driver{
		cfg:           cfg,
		log:           *cfg.Logger,
		openTransport: open,
		state:         StateDisconnected,
		devices:       map[uint64]*Device{},
		transInUse:    map[uint8]bool{},
		dataSem:       make(chan struct{}, cfg.MaxConcurrentRequests),
		events:        make(chan Event, 64),
	}
}

func validateTXPower(p *int) error {
	if p != nil && (*p < MinTXPower || *p > MaxTXPower) {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidTXPower, *p, MinTXPower, MaxTXPower)
	}
	return nil
}

// connect opens the transport and builds the bus and NVRAM manager.
func (d *Driver) connect() error {
	if err := validateTXPower(d.cfg.TXPower); err != nil {
		return err
	}

	tr, err := d.openTransport()
	if err != nil {
		return err
	}

	b := bus.New(tr, bus.Config{
		SREQTimeout:      d.cfg.SREQTimeout,
		ARSPTimeout:      d.cfg.ARSPTimeout,
		WatchdogInterval: d.cfg.WatchdogInterval,
	}, d.log)

	d.mu.Lock()
	d.bus = b
	d.nv = nvram.New(b, d.log)
	d.pumpDone = make(chan struct{})
	d.pumpSub = b.Subscribe(bus.Matcher{}, bus.WithBuffer(64))
	d.mu.Unlock()

	go d.pump(d.pumpSub, d.pumpDone)
	go d.supervise(b)

	return nil
}

// Indications returns the driver's event stream. The channel closes when
// the driver shuts down for good.
func (d *Driver) Indications() <-chan Event {
	return d.events
}

// State returns the current lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Version returns the probed firmware identity. Zero before Start.
func (d *Driver) Version() Version {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// NetworkInfo returns a copy of the formed network's parameters.
func (d *Driver) NetworkInfo() NetworkInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	ni := d.network
	ni.NetworkKey = append([]byte(nil), d.network.NetworkKey...)
	ni.TCLinkKey = append([]byte(nil), d.network.TCLinkKey...)
	return ni
}

// Devices returns a snapshot of the device table.
func (d *Driver) Devices() []Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Device, 0, len(d.devices))
	for _, dev := range d.devices {
		out = append(out, *dev)
	}
	return out
}

// Close drains and shuts the driver down. Idempotent.
func (d *Driver) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.setStateLocked(StateStopping)
	b := d.bus
	d.mu.Unlock()

	if b != nil {
		b.Close()
	}

	d.mu.Lock()
	d.setStateLocked(StateDisconnected)
	d.eventsClosed = true
	close(d.events)
	d.mu.Unlock()

	d.log.Info().Msg("Driver closed")
}

// setStateLocked moves the lifecycle and emits the change. Callers hold
// d.mu.
func (d *Driver) setStateLocked(s State) {
	if d.state == s {
		return
	}
	d.log.Info().Stringer("from", d.state).Stringer("to", s).Msg("State change")
	d.state = s
	d.emitLocked(StateChanged{State: s})
}

// transitionLocked enforces the legal state graph.
func (d *Driver) transitionLocked(from []State, to State) error {
	for _, f := range from {
		if d.state == f {
			d.setStateLocked(to)
			return nil
		}
	}
	return &StateError{From: d.state, To: to}
}

// emit pushes an event without ever blocking the caller; the stream is
// buffered and overflow drops with a warning.
func (d *Driver) emit(e Event) {
	d.mu.Lock()
	d.emitLocked(e)
	d.mu.Unlock()
}

func (d *Driver) emitLocked(e Event) {
	if d.eventsClosed {
		return
	}
	select {
	case d.events <- e:
	default:
		d.log.Warn().Msg("Indication stream full, dropping event")
	}
}

// supervise watches the bus and drives reconnection after a loss.
func (d *Driver) supervise(b *bus.Bus) {
	// Bus termination is observed via its Err transitioning; poll
	// cheaply since there is no dedicated signal channel exported.
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		d.mu.Lock()
		if d.closed || d.bus != b {
			d.mu.Unlock()
			return
		}
		err := b.Err()
		if err == nil {
			d.mu.Unlock()
			continue
		}

		d.log.Warn().Err(err).Msg("Bus lost")
		d.setStateLocked(StateFailed)
		retry := d.cfg.AutoReconnectRetryDelay
		mode := d.lastStart
		d.mu.Unlock()

		if retry <= 0 {
			return
		}

		for {
			time.Sleep(retry)
			d.mu.Lock()
			if d.closed {
				d.mu.Unlock()
				return
			}
			d.setStateLocked(StateDisconnected)
			d.mu.Unlock()

			if err := d.connect(); err != nil {
				d.log.Warn().Err(err).Dur("retry", retry).Msg("Reconnect failed")
				continue
			}
			if mode != nil {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				err := d.Start(ctx, mode)
				cancel()
				if err != nil {
					d.log.Error().Err(err).Msg("Restart after reconnect failed")
				}
			}
			return
		}
	}
}

// pump turns raw bus indications into typed events and keeps the device
// table current.
func (d *Driver) pump(sub *bus.Subscription, done chan struct{}) {
	defer close(done)
	for ind := range sub.C() {
		d.handleIndication(ind)
	}
}

func (d *Driver) handleIndication(ind bus.Indication) {
	if ind.Command == nil {
		d.emit(RawIndication{
			Subsystem: uint8(ind.Frame.Subsystem),
			ID:        ind.Frame.ID,
			Payload:   ind.Frame.Data,
		})
		return
	}

	switch ind.Command {
	case mt.AfIncomingMsg:
		d.emit(IncomingMessage{
			GroupID:        ind.Args.Uint16("GroupId"),
			Cluster:        ind.Args.Uint16("ClusterId"),
			Src:            ind.Args.Uint16("SrcAddr"),
			SrcEndpoint:    ind.Args.Uint8("SrcEndpoint"),
			DstEndpoint:    ind.Args.Uint8("DstEndpoint"),
			WasBroadcast:   ind.Args.Bool("WasBroadcast"),
			LQI:            ind.Args.Uint8("LQI"),
			SecurityUse:    ind.Args.Bool("SecurityUse"),
			Timestamp:      ind.Args.Uint32("Timestamp"),
			TransSeqNumber: ind.Args.Uint8("TransSeqNumber"),
			Payload:        ind.Args.Bytes("Data"),
		})
		d.touchDevice(ind.Args.Uint16("SrcAddr"), ind.Args.Uint8("LQI"))

	case mt.AfIncomingMsgExt:
		d.emit(IncomingMessage{
			GroupID:        ind.Args.Uint16("GroupId"),
			Cluster:        ind.Args.Uint16("ClusterId"),
			Src:            uint16(ind.Args.Uint64("SrcAddr")),
			SrcEndpoint:    ind.Args.Uint8("SrcEndpoint"),
			DstEndpoint:    ind.Args.Uint8("DstEndpoint"),
			WasBroadcast:   ind.Args.Bool("WasBroadcast"),
			LQI:            ind.Args.Uint8("LQI"),
			SecurityUse:    ind.Args.Bool("SecurityUse"),
			Timestamp:      ind.Args.Uint32("Timestamp"),
			TransSeqNumber: ind.Args.Uint8("TransSeqNumber"),
			Payload:        ind.Args.Bytes("Data"),
		})

	case mt.ZdoEndDeviceAnnceInd:
		dev := d.upsertDevice(ind.Args.Uint64("IEEEAddr"), ind.Args.Uint16("NwkAddr"))
		d.emit(DeviceAnnounced{Device: dev, Capabilities: ind.Args.Uint8("Capabilities")})

	case mt.ZdoTcDevInd:
		dev := d.upsertDevice(ind.Args.Uint64("ExtAddr"), ind.Args.Uint16("SrcNwkAddr"))
		d.emit(DeviceJoined{Device: dev})

	case mt.ZdoLeaveInd:
		ieee := ind.Args.Uint64("ExtAddr")
		nwk := ind.Args.Uint16("SrcAddr")
		d.mu.Lock()
		delete(d.devices, ieee)
		d.mu.Unlock()
		d.emit(DeviceLeft{IEEE: ieee, Nwk: nwk})

	case mt.ZdoSrcRtgInd:
		var relays []uint16
		for _, r := range ind.Args.List("RelayList") {
			relays = append(relays, r.Uint16("Addr"))
		}
		d.emit(SourceRoute{Dst: ind.Args.Uint16("DstAddr"), Relays: relays})

	case mt.ZdoPermitJoinInd:
		remaining := time.Duration(ind.Args.Uint8("Duration")) * time.Second
		d.mu.Lock()
		d.permitUntil = time.Now().Add(remaining)
		d.mu.Unlock()
		d.emit(PermitJoinChanged{Remaining: remaining})

	case mt.ZdoNwkAddrRsp, mt.ZdoIeeeAddrRsp:
		if ind.Args.Status() == mt.StatusSuccess {
			d.upsertDevice(ind.Args.Uint64("IEEEAddr"), ind.Args.Uint16("NwkAddr"))
		}
	}
}

// upsertDevice records or refreshes a device table entry and returns a
// copy.
func (d *Driver) upsertDevice(ieee uint64, nwk uint16) Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	dev, ok := d.devices[ieee]
	if !ok {
		dev = &Device{IEEE: ieee, Relationship: RelationChildRx}
		d.devices[ieee] = dev
	}
	dev.Nwk = nwk
	dev.LastSeen = time.Now()
	return *dev
}

func (d *Driver) touchDevice(nwk uint16, lqi uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, dev := range d.devices {
		if dev.Nwk == nwk {
			dev.LQI = lqi
			dev.LastSeen = time.Now()
			return
		}
	}
}

// requireRunning guards data-plane entry points.
func (d *Driver) requireRunning() (*bus.Bus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if d.state != StateRunning {
		return nil, fmt.Errorf("%w (state %s)", ErrNotRunning, d.state)
	}
	return d.bus, nil
}

// busHandle returns the bus regardless of lifecycle state, for
// operations legal while not running (backup, reset, probing).
func (d *Driver) busHandle() (*bus.Bus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.bus == nil {
		return nil, ErrClosed
	}
	return d.bus, nil
}
