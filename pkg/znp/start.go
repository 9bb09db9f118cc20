package znp

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/urmzd/znp/pkg/backup"
	"github.com/urmzd/znp/pkg/bus"
	"github.com/urmzd/znp/pkg/mt"
	"github.com/urmzd/znp/pkg/nvram"
)

// StartMode selects how Start brings the network up.
type StartMode interface {
	mode() string
}

// FormConfig parameterises forming a new network. Zero values are
// randomised or defaulted.
type FormConfig struct {
	// Channel is the logical channel (11..26). Zero picks 11.
	Channel uint8

	// ChannelMask overrides the single-channel mask derived from
	// Channel.
	ChannelMask uint32

	// PanID of the new network; zero randomises.
	PanID uint16

	// ExtendedPanID of the new network; zero randomises.
	ExtendedPanID uint64

	// NetworkKey (16 bytes); nil randomises.
	NetworkKey []byte
}

type formMode struct{ cfg FormConfig }

func (formMode) mode() string { return "form" }

// Form starts a brand new network.
func Form(cfg FormConfig) StartMode { return formMode{cfg: cfg} }

type restoreMode struct{ doc *backup.Document }

func (restoreMode) mode() string { return "restore" }

// Restore brings the network from a backup document back up.
func Restore(doc *backup.Document) StartMode { return restoreMode{doc: doc} }

// JoinConfig parameterises joining an existing network.
type JoinConfig struct {
	ChannelMask uint32
	PanID       uint16
}

type joinMode struct{ cfg JoinConfig }

func (joinMode) mode() string { return "join" }

// Join steers onto an existing network instead of forming one.
func Join(cfg JoinConfig) StartMode { return joinMode{cfg: cfg} }

// startupTimeout bounds the wait for the coordinator-started indication.
const startupTimeout = 30 * time.Second

// defaultTCLinkKey is the well-known "ZigBeeAlliance09" trust center key.
var defaultTCLinkKey = []byte("ZigBeeAlliance09")

// Start drives disconnected -> probing -> configuring -> {forming |
// restoring | joining} -> running. On failure the driver parks in the
// failed state.
func (d *Driver) Start(ctx context.Context, m StartMode) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if err := d.transitionLocked([]State{StateDisconnected, StateFailed}, StateProbing); err != nil {
		d.mu.Unlock()
		return err
	}
	d.lastStart = m
	b := d.bus
	nv := d.nv
	d.mu.Unlock()

	err := d.startInner(ctx, b, nv, m)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.setStateLocked(StateFailed)
		return err
	}
	d.setStateLocked(StateRunning)
	return nil
}

func (d *Driver) startInner(ctx context.Context, b *bus.Bus, nv *nvram.Manager, m StartMode) error {
	version, err := d.probe(ctx, b)
	if err != nil {
		return &StartupError{Phase: "probing", Reason: err}
	}

	d.mu.Lock()
	d.version = version
	d.setStateLocked(StateConfiguring)
	d.mu.Unlock()

	switch mode := m.(type) {
	case formMode:
		if err := d.form(ctx, b, nv, version, mode.cfg, true); err != nil {
			return &StartupError{Phase: "forming", Reason: err}
		}
	case restoreMode:
		if err := d.restore(ctx, b, nv, version, mode.doc); err != nil {
			return &StartupError{Phase: "restoring", Reason: err}
		}
	case joinMode:
		if err := d.join(ctx, b, nv, version, mode.cfg); err != nil {
			return &StartupError{Phase: "joining", Reason: err}
		}
	default:
		return &StartupError{Phase: "configuring", Reason: fmt.Errorf("unknown start mode %T", m)}
	}

	if err := d.finishStartup(ctx, b, nv, version); err != nil {
		return &StartupError{Phase: "finishing", Reason: err}
	}
	return nil
}

// probe issues SYS.VERSION and branches the protocol flavour.
func (d *Driver) probe(ctx context.Context, b *bus.Bus) (Version, error) {
	rsp, err := b.Request(ctx, mt.SysVersion, nil)
	if err != nil {
		return Version{}, err
	}

	v := Version{
		TransportRev: rsp.Uint8("TransportRev"),
		Product:      rsp.Uint8("Product"),
		MajorRel:     rsp.Uint8("MajorRel"),
		MinorRel:     rsp.Uint8("MinorRel"),
		MaintRel:     rsp.Uint8("MaintRel"),
	}
	if extra := rsp.Bytes("Extra"); len(extra) >= 4 {
		v.CodeRevision = binary.LittleEndian.Uint32(extra)
	}

	switch {
	case v.MajorRel <= 2:
		v.Flavour = nvram.ZStack12
	case v.CodeRevision == 0:
		v.Flavour = nvram.ZStack30
	default:
		v.Flavour = nvram.ZStack3x
	}

	d.log.Info().Stringer("version", v).Msg("Firmware probed")
	return v, nil
}

// writeBaseConfig writes the NVRAM the coordinator role requires and
// applies tx power and LED settings.
func (d *Driver) writeBaseConfig(ctx context.Context, b *bus.Bus, nv *nvram.Manager, net NetworkInfo) error {
	items := []struct {
		id    nvram.NVID
		value []byte
	}{
		{nvram.NVLogicalType, []byte{0x00}}, // coordinator
		{nvram.NVZdoDirectCB, []byte{0x01}},
		{nvram.NVChanList, le32(net.ChannelMask)},
		{nvram.NVPanID, le16(net.PanID)},
		{nvram.NVExtendedPanID, le64(net.ExtendedPanID)},
		{nvram.NVApsUseExtPanID, le64(net.ExtendedPanID)},
		{nvram.NVPreCfgKey, net.NetworkKey},
		{nvram.NVPreCfgKeysEnable, []byte{0x00}},
		{nvram.NVConcentratorEnable, []byte{0x01}},
		{nvram.NVConcentratorDisc, []byte{120}},
		{nvram.NVConcentratorRC, []byte{0x01}},
	}
	for _, item := range items {
		if err := nv.WriteLegacy(ctx, item.id, item.value); err != nil {
			return err
		}
	}

	if d.cfg.TXPower != nil {
		_, err := b.Request(ctx, mt.SysSetTxPower, mt.Args{"TXPower": int8(*d.cfg.TXPower)})
		if err != nil {
			return err
		}
	}
	if _, err := b.RequestStatus(ctx, mt.UtilLedControl, mt.Args{
		"LedId": uint8(3), "Mode": uint8(d.cfg.LEDMode),
	}); err != nil {
		// Not every build carries LED support; a firmware refusal is
		// informational only.
		var cse *bus.CommandStatusError
		if !errors.As(err, &cse) {
			return err
		}
		d.log.Debug().Err(err).Msg("LED control unsupported")
	}
	return nil
}

// form configures and starts a new network. When fresh is false the
// network parameters already live in NVRAM and only the start sequence
// runs.
func (d *Driver) form(ctx context.Context, b *bus.Bus, nv *nvram.Manager, v Version, cfg FormConfig, fresh bool) error {
	net := d.networkFromForm(cfg)

	if fresh {
		if err := nv.ResetDevice(ctx, v.Flavour, nvram.ResetNetwork); err != nil {
			return err
		}
		if err := d.writeBaseConfig(ctx, b, nv, net); err != nil {
			return err
		}
		// The NIB is rebuilt from NV on boot; reset so the new
		// parameters take.
		if err := nv.Reset(ctx); err != nil {
			return err
		}
	}

	d.mu.Lock()
	d.setStateLocked(StateForming)
	d.network = net
	d.mu.Unlock()

	if err := d.startCoordinator(ctx, b, v, true); err != nil {
		return err
	}

	return nil
}

// networkFromForm fills in randomised parameters where the caller left
// zeros.
func (d *Driver) networkFromForm(cfg FormConfig) NetworkInfo {
	net := NetworkInfo{
		PanID:         cfg.PanID,
		ExtendedPanID: cfg.ExtendedPanID,
		Channel:       cfg.Channel,
		ChannelMask:   cfg.ChannelMask,
		NetworkKey:    cfg.NetworkKey,
		TCLinkKey:     append([]byte(nil), defaultTCLinkKey...),
	}
	if net.Channel == 0 {
		net.Channel = 11
	}
	if net.ChannelMask == 0 {
		net.ChannelMask = 1 << net.Channel
	}
	if net.PanID == 0 {
		net.PanID = uint16(randUint64()%0xFFFE) + 1
	}
	if net.ExtendedPanID == 0 {
		net.ExtendedPanID = randUint64()
	}
	if len(net.NetworkKey) != 16 {
		key := make([]byte, 16)
		_, _ = rand.Read(key)
		net.NetworkKey = key
	}
	return net
}

// startCoordinator runs the flavour-specific start sequence and waits
// for the device to report the coordinator state.
func (d *Driver) startCoordinator(ctx context.Context, b *bus.Bus, v Version, forming bool) error {
	states := b.Subscribe(bus.MatchCommand(mt.ZdoStateChangeInd), bus.WithBuffer(8))
	defer states.Close()

	switch v.Flavour {
	case nvram.ZStack12:
		if _, err := b.Request(ctx, mt.ZdoStartupFromApp, mt.Args{"StartDelay": uint16(100)}); err != nil {
			return err
		}
	default:
		net := d.NetworkInfo()
		if _, err := b.RequestStatus(ctx, mt.AppCnfBdbSetChannel, mt.Args{
			"IsPrimary": true, "Channel": net.ChannelMask,
		}); err != nil {
			return err
		}
		if _, err := b.RequestStatus(ctx, mt.AppCnfBdbSetChannel, mt.Args{
			"IsPrimary": false, "Channel": uint32(0),
		}); err != nil {
			return err
		}
		commissioning := mt.BDBCommissioningNwkFormation
		if !forming {
			commissioning = mt.BDBCommissioningNwkSteering
		}
		if _, err := b.RequestStatus(ctx, mt.AppCnfBdbStartCommissioning, mt.Args{
			"CommissioningMode": commissioning,
		}); err != nil {
			return err
		}
	}

	deadline := time.After(startupTimeout)
	for {
		select {
		case ind, ok := <-states.C():
			if !ok {
				return bus.ErrDisconnected
			}
			state := mt.DeviceState(ind.Args.Uint8("State"))
			d.log.Debug().Stringer("state", state).Msg("Device state change")
			if state == mt.DeviceZBCoord {
				return nil
			}
		case <-deadline:
			return fmt.Errorf("%w: coordinator start", bus.ErrTimeout)
		case <-ctx.Done():
			return fmt.Errorf("%w: coordinator start", bus.ErrCancelled)
		}
	}
}

// restore verifies device NVRAM against the backup and rewrites it when
// it differs, then brings the network up without re-randomising.
func (d *Driver) restore(ctx context.Context, b *bus.Bus, nv *nvram.Manager, v Version, doc *backup.Document) error {
	snap, err := doc.Snapshot(v.Flavour)
	if err != nil {
		return err
	}
	// Images carrying extended-layout tables only restore onto firmware
	// that has the extended NV store.
	if v.Flavour == nvram.ZStack12 && len(snap.Extended) > 0 {
		return &backup.IncompatibleChipError{
			Backup: nvram.ZStack3x.String(),
			Device: v.Flavour.String(),
		}
	}

	d.mu.Lock()
	d.setStateLocked(StateRestoring)
	d.mu.Unlock()

	matches, err := d.nvramMatches(ctx, nv, snap)
	if err != nil {
		return err
	}
	if !matches {
		d.log.Info().Msg("Device NVRAM differs from backup, rewriting")
		if err := nv.Restore(ctx, snap); err != nil {
			return err
		}
	}

	net, err := networkFromDocument(doc)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.network = net
	d.mu.Unlock()

	return d.startCoordinator(ctx, b, v, true)
}

// nvramMatches compares the items a backup carries with what the device
// holds right now.
func (d *Driver) nvramMatches(ctx context.Context, nv *nvram.Manager, snap *nvram.Snapshot) (bool, error) {
	for id, want := range snap.Legacy {
		got, err := nv.ReadLegacy(ctx, id)
		if err != nil {
			if nvram.IsMissing(err) {
				return false, nil
			}
			return false, err
		}
		if !bytes.Equal(got, want) {
			return false, nil
		}
	}
	for key, want := range snap.Extended {
		got, err := nv.ReadExt(ctx, key)
		if err != nil {
			if nvram.IsMissing(err) {
				return false, nil
			}
			return false, err
		}
		if !bytes.Equal(got, want) {
			return false, nil
		}
	}
	return true, nil
}

func networkFromDocument(doc *backup.Document) (NetworkInfo, error) {
	extPan, err := backup.ParseIEEE(doc.Network.ExtendedPanID)
	if err != nil {
		return NetworkInfo{}, err
	}
	key, err := backup.ParseKey(doc.Network.NetworkKey)
	if err != nil {
		return NetworkInfo{}, err
	}
	net := NetworkInfo{
		ExtendedPanID: extPan,
		PanID:         doc.Network.PanID,
		Channel:       doc.Network.Channel,
		ChannelMask:   doc.Network.ChannelMask,
		NetworkKey:    key,
		KeySequence:   doc.Network.KeySequence,
		NwkUpdateID:   doc.Network.NwkUpdateID,
	}
	if doc.Network.TCLinkKey != "" {
		tclk, err := backup.ParseKey(doc.Network.TCLinkKey)
		if err != nil {
			return NetworkInfo{}, err
		}
		net.TCLinkKey = tclk
	}
	if net.ChannelMask == 0 {
		net.ChannelMask = 1 << net.Channel
	}
	return net, nil
}

// join steers onto an existing network.
func (d *Driver) join(ctx context.Context, b *bus.Bus, nv *nvram.Manager, v Version, cfg JoinConfig) error {
	mask := cfg.ChannelMask
	if mask == 0 {
		mask = 0x07FFF800 // all 2.4 GHz channels
	}
	if err := nv.WriteLegacy(ctx, nvram.NVChanList, le32(mask)); err != nil {
		return err
	}

	d.mu.Lock()
	d.setStateLocked(StateJoining)
	d.mu.Unlock()

	return d.startCoordinator(ctx, b, v, false)
}

// finishStartup registers endpoints, marks the device configured, and
// fills in the runtime network identity.
func (d *Driver) finishStartup(ctx context.Context, b *bus.Bus, nv *nvram.Manager, v Version) error {
	for _, ep := range defaultEndpoints {
		if err := registerEndpoint(ctx, b, ep); err != nil {
			return err
		}
	}

	if err := nv.WriteLegacy(ctx, nvram.HasConfiguredItem(v.Flavour), []byte{nvram.HasConfiguredMagic}); err != nil {
		return err
	}

	info, err := b.Request(ctx, mt.UtilGetDeviceInfo, nil)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.network.IEEE = info.Uint64("IEEEAddr")
	d.network.NwkAddr = info.Uint16("NwkAddr")
	d.mu.Unlock()

	d.rebuildDeviceTable(ctx, b, info)
	return nil
}

// rebuildDeviceTable seeds the in-memory table from the coordinator's
// association list, resolving IEEE addresses best-effort.
func (d *Driver) rebuildDeviceTable(_ context.Context, b *bus.Bus, info mt.Args) {
	for _, assoc := range info.List("AssocDevices") {
		nwk := assoc.Uint16("Addr")
		go func(nwk uint16) {
			// Best-effort, bounded by the bus ARSP timeout; runs past
			// the caller's start deadline on purpose.
			cb, err := b.RequestCallback(context.Background(), mt.ZdoIeeeAddrReq, mt.Args{
				"ShortAddr":  nwk,
				"ReqType":    uint8(0),
				"StartIndex": uint8(0),
			}, bus.MatchFields(mt.ZdoIeeeAddrRsp, mt.Args{"NwkAddr": nwk}))
			if err != nil {
				d.log.Debug().Err(err).Uint16("nwk", nwk).Msg("IEEE lookup failed during table rebuild")
				return
			}
			if cb.Status() == mt.StatusSuccess {
				d.upsertDevice(cb.Uint64("IEEEAddr"), cb.Uint16("NwkAddr"))
			}
		}(nwk)
	}
}

// Default application endpoints, mirroring what common host stacks
// register: one Home Automation endpoint plus the Green Power endpoint.
var defaultEndpoints = []Endpoint{
	{
		Endpoint:       1,
		Profile:        0x0104, // Home Automation
		Device:         0x0005,
		Version:        0,
		InputClusters:  []uint16{},
		OutputClusters: []uint16{},
	},
	{
		Endpoint:       242,
		Profile:        0xA1E0, // Green Power
		Device:         0x0061,
		Version:        0,
		InputClusters:  []uint16{},
		OutputClusters: []uint16{0x0021},
	},
}

func registerEndpoint(ctx context.Context, b *bus.Bus, ep Endpoint) error {
	_, err := b.RequestStatus(ctx, mt.AfRegister, mt.Args{
		"Endpoint":       ep.Endpoint,
		"ProfileId":      ep.Profile,
		"DeviceId":       ep.Device,
		"DeviceVersion":  ep.Version,
		"LatencyReq":     uint8(mt.LatencyNone),
		"InputClusters":  clusterArgs(ep.InputClusters),
		"OutputClusters": clusterArgs(ep.OutputClusters),
	})
	// Re-registering an endpoint after a warm start is not an error.
	var cse *bus.CommandStatusError
	if errors.As(err, &cse) && cse.Status == mt.StatusZApsDuplicateEntry {
		return nil
	}
	return err
}

func clusterArgs(ids []uint16) []mt.Args {
	out := make([]mt.Args, len(ids))
	for i, id := range ids {
		out[i] = mt.Args{"ClusterId": id}
	}
	return out
}

func le16(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

func le32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func le64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func randUint64() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}
