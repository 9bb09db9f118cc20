package znp_test

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/znp/pkg/backup"
	"github.com/urmzd/znp/pkg/mt"
	"github.com/urmzd/znp/pkg/nvram"
	"github.com/urmzd/znp/pkg/znp"
	"github.com/urmzd/znp/pkg/znptest"
)

const testIEEE = uint64(0x00124B0001020304)

// installCoordinator scripts a healthy Z-Stack 3.x coordinator on the
// simulator.
func installCoordinator(sim *znptest.Simulator, store *znptest.NVStore) {
	store.Install(sim)

	sim.Reply(mt.SysVersion, mt.Args{
		"TransportRev": uint8(2),
		"Product":      uint8(1),
		"MajorRel":     uint8(3),
		"MinorRel":     uint8(30),
		"MaintRel":     uint8(0),
		"Extra":        binary.LittleEndian.AppendUint32(nil, 20220219),
	})
	sim.Reply(mt.AppCnfBdbSetChannel, mt.Args{"Status": uint8(0)})
	sim.Handle(mt.AppCnfBdbStartCommissioning, func(_ mt.Frame, _ mt.Args) []mt.Frame {
		return []mt.Frame{
			znptest.SRSP(mt.AppCnfBdbStartCommissioning, mt.Args{"Status": uint8(0)}),
			znptest.AREQ(mt.ZdoStateChangeInd, mt.Args{"State": uint8(mt.DeviceZBCoord)}),
		}
	})
	sim.Reply(mt.AfRegister, mt.Args{"Status": uint8(0)})
	sim.Reply(mt.UtilLedControl, mt.Args{"Status": uint8(0)})
	sim.Reply(mt.UtilGetDeviceInfo, mt.Args{
		"Status":       uint8(0),
		"IEEEAddr":     testIEEE,
		"NwkAddr":      uint16(0),
		"DeviceType":   uint8(7),
		"DeviceState":  uint8(mt.DeviceZBCoord),
		"AssocDevices": []mt.Args{},
	})
	sim.Reply(mt.ZdoMgmtPermitJoinReq, mt.Args{"Status": uint8(0)})
}

func newTestDriver(t *testing.T) (*znp.Driver, *znptest.Simulator, *znptest.NVStore) {
	t.Helper()
	sim := znptest.New()
	store := znptest.NewNVStore()
	installCoordinator(sim, store)

	d, err := znp.OpenWithTransport(znp.Config{
		SREQTimeout: time.Second,
		ARSPTimeout: 2 * time.Second,
	}, sim.Transport())
	require.NoError(t, err)
	t.Cleanup(func() {
		d.Close()
		sim.Close()
	})
	return d, sim, store
}

func startFormed(t *testing.T, d *znp.Driver) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, d.Start(ctx, znp.Form(znp.FormConfig{Channel: 11})))
	require.Equal(t, znp.StateRunning, d.State())
}

func TestColdStartAndForm(t *testing.T) {
	d, _, store := newTestDriver(t)
	startFormed(t, d)

	net := d.NetworkInfo()
	assert.Equal(t, uint8(11), net.Channel)
	assert.Equal(t, uint32(1<<11), net.ChannelMask)
	assert.NotZero(t, net.PanID)
	assert.NotZero(t, net.ExtendedPanID)
	assert.Len(t, net.NetworkKey, 16)
	assert.Equal(t, testIEEE, net.IEEE)

	assert.Equal(t, []byte{0x00, 0x08, 0x00, 0x00}, store.Get(uint16(nvram.NVChanList)))
	assert.Equal(t, []byte{0x00}, store.Get(uint16(nvram.NVLogicalType)))
	assert.Equal(t, []byte{nvram.HasConfiguredMagic}, store.Get(uint16(nvram.NVHasConfiguredZStack3)))

	version := d.Version()
	assert.Equal(t, nvram.ZStack3x, version.Flavour)
}

func TestStartTwiceIsStateError(t *testing.T) {
	d, _, _ := newTestDriver(t)
	startFormed(t, d)

	err := d.Start(context.Background(), znp.Form(znp.FormConfig{}))
	var serr *znp.StateError
	require.ErrorAs(t, err, &serr)
}

func TestBackupContainsNetwork(t *testing.T) {
	d, _, _ := newTestDriver(t)
	startFormed(t, d)

	doc, err := d.Backup(context.Background())
	require.NoError(t, err)

	net := d.NetworkInfo()
	assert.Equal(t, net.PanID, doc.Network.PanID)
	assert.Equal(t, uint8(11), doc.Network.Channel)
	assert.NotEmpty(t, doc.Network.NetworkKey)

	raw, err := doc.Marshal()
	require.NoError(t, err)
	_, err = backup.Unmarshal(raw)
	require.NoError(t, err)
}

func TestRestoreFromBackup(t *testing.T) {
	d, _, store := newTestDriver(t)
	startFormed(t, d)
	net := d.NetworkInfo()

	doc, err := d.Backup(context.Background())
	require.NoError(t, err)
	require.NoError(t, d.FactoryReset(context.Background()))
	assert.Nil(t, store.Get(uint16(nvram.NVPanID)))
	d.Close()

	// A fresh driver on the same (now wiped) device restores the image.
	sim2 := znptest.New()
	store2 := znptest.NewNVStore()
	installCoordinator(sim2, store2)
	d2, err := znp.OpenWithTransport(znp.Config{
		SREQTimeout: time.Second,
		ARSPTimeout: 2 * time.Second,
	}, sim2.Transport())
	require.NoError(t, err)
	defer func() {
		d2.Close()
		sim2.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, d2.Start(ctx, znp.Restore(doc)))
	require.Equal(t, znp.StateRunning, d2.State())

	restored := d2.NetworkInfo()
	assert.Equal(t, net.PanID, restored.PanID)
	assert.Equal(t, net.Channel, restored.Channel)
	assert.Equal(t, net.NetworkKey, restored.NetworkKey)

	// The fresh device's NVRAM now carries the backed-up image.
	assert.Equal(t, binary.LittleEndian.AppendUint16(nil, net.PanID), store2.Get(uint16(nvram.NVPanID)))
	assert.Equal(t, binary.LittleEndian.AppendUint64(nil, net.ExtendedPanID), store2.Get(uint16(nvram.NVExtendedPanID)))
}

func TestPermitJoin(t *testing.T) {
	d, sim, _ := newTestDriver(t)
	startFormed(t, d)

	require.NoError(t, d.PermitJoin(context.Background(), 60*time.Second, nil))

	sent := sim.SentTo(mt.ZdoMgmtPermitJoinReq)
	require.Len(t, sent, 1)
	args, err := mt.DecodeFields(mt.ZdoMgmtPermitJoinReq.Req, sent[0].Data)
	require.NoError(t, err)
	assert.Equal(t, uint8(60), args.Uint8("Duration"))
	assert.Equal(t, mt.BroadcastRoutersOnly, args.Uint16("DstAddr"))

	remaining := d.PermitJoinRemaining()
	assert.InDelta(t, 60, remaining.Seconds(), 1.0)
}

func TestRequestDataConfirmMatching(t *testing.T) {
	d, sim, _ := newTestDriver(t)
	startFormed(t, d)

	// Hold confirms until both requests are in flight, then answer in
	// reverse order.
	var mu sync.Mutex
	var pending []uint8
	sim.Handle(mt.AfDataRequest, func(_ mt.Frame, args mt.Args) []mt.Frame {
		mu.Lock()
		pending = append(pending, args.Uint8("TransId"))
		ready := len(pending) == 2
		ids := append([]uint8(nil), pending...)
		mu.Unlock()

		out := []mt.Frame{znptest.SRSP(mt.AfDataRequest, mt.Args{"Status": uint8(0)})}
		if ready {
			for i := len(ids) - 1; i >= 0; i-- {
				out = append(out, znptest.AREQ(mt.AfDataConfirm, mt.Args{
					"Status": uint8(0), "Endpoint": uint8(1), "TransId": ids[i],
				}))
			}
		}
		return out
	})

	var wg sync.WaitGroup
	confirms := make([]*znp.DataConfirm, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			confirms[i], errs[i] = d.RequestData(context.Background(), znp.DataRequest{
				Dst:         znp.Unicast(0x1234),
				DstEndpoint: 1,
				SrcEndpoint: 1,
				Cluster:     0x0006,
				Payload:     []byte{byte(i)},
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, confirms[0].TransID, confirms[1].TransID, "transaction ids must be distinct")
	assert.Equal(t, mt.StatusSuccess, confirms[0].Status)
	assert.Equal(t, mt.StatusSuccess, confirms[1].Status)
}

func TestRequestDataUsesExtForLargePayload(t *testing.T) {
	d, sim, _ := newTestDriver(t)
	startFormed(t, d)

	sim.Handle(mt.AfDataRequestExt, func(_ mt.Frame, args mt.Args) []mt.Frame {
		return []mt.Frame{
			znptest.SRSP(mt.AfDataRequestExt, mt.Args{"Status": uint8(0)}),
			znptest.AREQ(mt.AfDataConfirm, mt.Args{
				"Status": uint8(0), "Endpoint": uint8(1), "TransId": args.Uint8("TransId"),
			}),
		}
	})

	big := make([]byte, 300)
	_, err := d.RequestData(context.Background(), znp.DataRequest{
		Dst:         znp.Unicast(0x1234),
		DstEndpoint: 1,
		SrcEndpoint: 1,
		Cluster:     0x0006,
		Payload:     big,
	})
	require.NoError(t, err)
	assert.Len(t, sim.SentTo(mt.AfDataRequestExt), 1)
	assert.Empty(t, sim.SentTo(mt.AfDataRequest))
}

func TestIncomingMessageIndication(t *testing.T) {
	d, sim, _ := newTestDriver(t)
	startFormed(t, d)

	sim.InjectAREQ(mt.AfIncomingMsg, mt.Args{
		"GroupId":        uint16(0),
		"ClusterId":      uint16(0x0402),
		"SrcAddr":        uint16(0xABCD),
		"SrcEndpoint":    uint8(1),
		"DstEndpoint":    uint8(1),
		"WasBroadcast":   false,
		"LQI":            uint8(180),
		"SecurityUse":    false,
		"Timestamp":      uint32(12345),
		"TransSeqNumber": uint8(7),
		"Data":           []byte{0x18, 0x07, 0x0A},
	})

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-d.Indications():
			msg, ok := ev.(znp.IncomingMessage)
			if !ok {
				continue // state changes etc.
			}
			assert.Equal(t, uint16(0xABCD), msg.Src)
			assert.Equal(t, uint16(0x0402), msg.Cluster)
			assert.Equal(t, uint8(180), msg.LQI)
			assert.Equal(t, []byte{0x18, 0x07, 0x0A}, msg.Payload)
			return
		case <-deadline:
			t.Fatal("incoming message never surfaced")
		}
	}
}

func TestDeviceAnnounceUpdatesTable(t *testing.T) {
	d, sim, _ := newTestDriver(t)
	startFormed(t, d)

	const devIEEE = uint64(0x00158D0001020304)
	sim.InjectAREQ(mt.ZdoEndDeviceAnnceInd, mt.Args{
		"SrcAddr":      uint16(0x529C),
		"NwkAddr":      uint16(0x529C),
		"IEEEAddr":     devIEEE,
		"Capabilities": uint8(0x84),
	})

	require.Eventually(t, func() bool {
		for _, dev := range d.Devices() {
			if dev.IEEE == devIEEE && dev.Nwk == 0x529C {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)

	// And a leave removes it again.
	sim.InjectAREQ(mt.ZdoLeaveInd, mt.Args{
		"SrcAddr": uint16(0x529C),
		"ExtAddr": devIEEE,
		"Request": false,
		"Remove":  false,
		"Rejoin":  false,
	})
	require.Eventually(t, func() bool {
		return len(d.Devices()) == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestZdoActiveEndpoints(t *testing.T) {
	d, sim, _ := newTestDriver(t)
	startFormed(t, d)

	sim.Handle(mt.ZdoActiveEpReq, func(_ mt.Frame, args mt.Args) []mt.Frame {
		return []mt.Frame{
			znptest.SRSP(mt.ZdoActiveEpReq, mt.Args{"Status": uint8(0)}),
			znptest.AREQ(mt.ZdoActiveEpRsp, mt.Args{
				"SrcAddr":   args.Uint16("DstAddr"),
				"Status":    uint8(0),
				"NwkAddr":   args.Uint16("NwkAddrOfInterest"),
				"ActiveEps": []byte{1, 2, 242},
			}),
		}
	})

	eps, err := d.ActiveEndpoints(context.Background(), 0x529C)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 242}, eps)
}

func TestRestoreRefusesIncompatibleChip(t *testing.T) {
	sim := znptest.New()
	store := znptest.NewNVStore()
	installCoordinator(sim, store)
	// A 1.2-era firmware answers the probe instead.
	sim.Reply(mt.SysVersion, mt.Args{
		"TransportRev": uint8(2),
		"Product":      uint8(0),
		"MajorRel":     uint8(2),
		"MinorRel":     uint8(6),
		"MaintRel":     uint8(3),
		"Extra":        []byte{},
	})

	d, err := znp.OpenWithTransport(znp.Config{
		SREQTimeout: time.Second,
		ARSPTimeout: 2 * time.Second,
	}, sim.Transport())
	require.NoError(t, err)
	defer func() {
		d.Close()
		sim.Close()
	}()

	doc := backup.New("test", time.Now())
	doc.Network = backup.Network{
		PanID:         0x1A62,
		ExtendedPanID: "dd:dd:dd:dd:dd:dd:dd:dd",
		Channel:       15,
		NetworkKey:    "0123456789abcdef0123456789abcdef",
		Children:      []backup.Child{},
	}
	doc.NVRAM.Extended["01:0004:0000"] = "aabbcc"

	err = d.Start(context.Background(), znp.Restore(doc))
	var incompatible *backup.IncompatibleChipError
	require.ErrorAs(t, err, &incompatible)
}

func TestRequestDataRequiresRunning(t *testing.T) {
	d, _, _ := newTestDriver(t)

	_, err := d.RequestData(context.Background(), znp.DataRequest{
		Dst: znp.Unicast(1), Payload: []byte{1},
	})
	require.ErrorIs(t, err, znp.ErrNotRunning)
}
