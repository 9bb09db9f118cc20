package znp

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/urmzd/znp/pkg/backup"
	"github.com/urmzd/znp/pkg/mt"
	"github.com/urmzd/znp/pkg/nvram"
)

// Backup snapshots the device into a portable backup document. Legal in
// any connected state; the NVRAM lease keeps concurrent writers out for
// the duration.
func (d *Driver) Backup(ctx context.Context) (*backup.Document, error) {
	b, err := d.busHandle()
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	version := d.version
	nv := d.nv
	d.mu.Unlock()

	if version == (Version{}) {
		v, err := d.probe(ctx, b)
		if err != nil {
			return nil, err
		}
		version = v
		d.mu.Lock()
		d.version = v
		d.mu.Unlock()
	}

	snap, err := nv.Backup(ctx, version.Flavour)
	if err != nil {
		return nil, err
	}

	doc := backup.New("znptool", time.Now())
	doc.SetSnapshot(snap)
	doc.Network = d.networkSection(snap)

	d.mu.Lock()
	for _, dev := range d.devices {
		doc.Network.Children = append(doc.Network.Children, backup.Child{
			IEEE: backup.IEEEString(dev.IEEE),
			Nwk:  dev.Nwk,
		})
	}
	d.mu.Unlock()

	return doc, nil
}

// networkSection derives the logical network description from the raw
// snapshot so the document stays a pure function of device state.
func (d *Driver) networkSection(snap *nvram.Snapshot) backup.Network {
	net := backup.Network{Children: []backup.Child{}}

	if v, ok := snap.Legacy[nvram.NVPanID]; ok && len(v) >= 2 {
		net.PanID = binary.LittleEndian.Uint16(v)
	}
	if v, ok := snap.Legacy[nvram.NVExtendedPanID]; ok && len(v) >= 8 {
		net.ExtendedPanID = backup.IEEEString(binary.LittleEndian.Uint64(v))
	}
	if v, ok := snap.Legacy[nvram.NVChanList]; ok && len(v) >= 4 {
		net.ChannelMask = binary.LittleEndian.Uint32(v)
		net.Channel = firstChannel(net.ChannelMask)
	}
	// NWK_ACTIVE_KEY_INFO is key sequence followed by the key itself.
	if v, ok := snap.Legacy[nvram.NVNwkActiveKeyInfo]; ok && len(v) >= 17 {
		net.KeySequence = v[0]
		net.NetworkKey = backup.KeyString(v[1:17])
	} else if v, ok := snap.Legacy[nvram.NVPreCfgKey]; ok && len(v) >= 16 {
		net.NetworkKey = backup.KeyString(v[:16])
	}

	d.mu.Lock()
	if net.NetworkKey == "" && len(d.network.NetworkKey) == 16 {
		net.NetworkKey = backup.KeyString(d.network.NetworkKey)
	}
	if len(d.network.TCLinkKey) == 16 {
		net.TCLinkKey = backup.KeyString(d.network.TCLinkKey)
	}
	net.NwkUpdateID = d.network.NwkUpdateID
	d.mu.Unlock()

	return net
}

func firstChannel(mask uint32) uint8 {
	for ch := uint8(11); ch <= 26; ch++ {
		if mask&(1<<ch) != 0 {
			return ch
		}
	}
	return 0
}

// FactoryReset wipes every catalogued NV item and reboots the device.
func (d *Driver) FactoryReset(ctx context.Context) error {
	b, err := d.busHandle()
	if err != nil {
		return err
	}

	d.mu.Lock()
	version := d.version
	nv := d.nv
	d.mu.Unlock()

	if version == (Version{}) {
		v, err := d.probe(ctx, b)
		if err != nil {
			return err
		}
		version = v
	}

	if err := nv.ResetDevice(ctx, version.Flavour, nvram.ResetFactory); err != nil {
		return err
	}

	d.mu.Lock()
	d.devices = map[uint64]*Device{}
	d.network = NetworkInfo{}
	d.mu.Unlock()
	return nil
}

// Ping checks basic liveness of the coprocessor.
func (d *Driver) Ping(ctx context.Context) error {
	b, err := d.busHandle()
	if err != nil {
		return err
	}
	_, err = b.Request(ctx, mt.SysPing, nil)
	return err
}
