package znp

import (
	"context"
	"fmt"

	"github.com/urmzd/znp/pkg/bus"
	"github.com/urmzd/znp/pkg/mt"
)

// zdoRequest is the common SREQ + matched AREQ response shape every ZDO
// interaction follows: the SRSP only acknowledges, the payload arrives as
// an indication correlated by source address.
func (d *Driver) zdoRequest(ctx context.Context, cmd *mt.Command, args mt.Args, match bus.Matcher) (mt.Args, error) {
	b, err := d.requireRunning()
	if err != nil {
		return nil, err
	}
	cb, err := b.RequestCallback(ctx, cmd, args, match)
	if err != nil {
		return nil, err
	}
	if st := cb.Status(); st != mt.StatusSuccess {
		return cb, &bus.CommandStatusError{Command: match.Command, Status: st}
	}
	return cb, nil
}

// NwkAddress resolves a device's network address from its IEEE address.
func (d *Driver) NwkAddress(ctx context.Context, ieee uint64) (uint16, error) {
	cb, err := d.zdoRequest(ctx, mt.ZdoNwkAddrReq, mt.Args{
		"IEEEAddr":   ieee,
		"ReqType":    uint8(0),
		"StartIndex": uint8(0),
	}, bus.MatchFields(mt.ZdoNwkAddrRsp, mt.Args{"IEEEAddr": ieee}))
	if err != nil {
		return 0, err
	}
	return cb.Uint16("NwkAddr"), nil
}

// IEEEAddress resolves a device's IEEE address from its network address.
func (d *Driver) IEEEAddress(ctx context.Context, nwk uint16) (uint64, error) {
	cb, err := d.zdoRequest(ctx, mt.ZdoIeeeAddrReq, mt.Args{
		"ShortAddr":  nwk,
		"ReqType":    uint8(0),
		"StartIndex": uint8(0),
	}, bus.MatchFields(mt.ZdoIeeeAddrRsp, mt.Args{"NwkAddr": nwk}))
	if err != nil {
		return 0, err
	}
	return cb.Uint64("IEEEAddr"), nil
}

// ActiveEndpoints lists a device's application endpoints.
func (d *Driver) ActiveEndpoints(ctx context.Context, nwk uint16) ([]uint8, error) {
	cb, err := d.zdoRequest(ctx, mt.ZdoActiveEpReq, mt.Args{
		"DstAddr":           nwk,
		"NwkAddrOfInterest": nwk,
	}, bus.MatchFields(mt.ZdoActiveEpRsp, mt.Args{"NwkAddr": nwk}))
	if err != nil {
		return nil, err
	}
	return cb.Bytes("ActiveEps"), nil
}

// NodeDescriptor fetches a device's node descriptor.
func (d *Driver) NodeDescriptor(ctx context.Context, nwk uint16) (*NodeDescriptor, error) {
	cb, err := d.zdoRequest(ctx, mt.ZdoNodeDescReq, mt.Args{
		"DstAddr":           nwk,
		"NwkAddrOfInterest": nwk,
	}, bus.MatchFields(mt.ZdoNodeDescRsp, mt.Args{"NwkAddr": nwk}))
	if err != nil {
		return nil, err
	}
	return &NodeDescriptor{
		LogicalType:        cb.Uint8("LogicalTypeFlags") & 0x07,
		ManufacturerCode:   cb.Uint16("ManufacturerCode"),
		MaxBufferSize:      cb.Uint8("MaxBufferSize"),
		MaxInTransferSize:  cb.Uint16("MaxInTransferSize"),
		ServerMask:         cb.Uint16("ServerMask"),
		MaxOutTransferSize: cb.Uint16("MaxOutTransferSize"),
	}, nil
}

// SimpleDescriptor fetches the descriptor for one endpoint.
func (d *Driver) SimpleDescriptor(ctx context.Context, nwk uint16, endpoint uint8) (*SimpleDescriptor, error) {
	cb, err := d.zdoRequest(ctx, mt.ZdoSimpleDescReq, mt.Args{
		"DstAddr":           nwk,
		"NwkAddrOfInterest": nwk,
		"Endpoint":          endpoint,
	}, bus.MatchFields(mt.ZdoSimpleDescRsp, mt.Args{"NwkAddr": nwk, "Endpoint": endpoint}))
	if err != nil {
		return nil, err
	}
	return &SimpleDescriptor{
		Endpoint:       cb.Uint8("Endpoint"),
		Profile:        cb.Uint16("ProfileId"),
		Device:         cb.Uint16("DeviceId"),
		Version:        cb.Uint8("DeviceVersion"),
		InputClusters:  clusterIDs(cb.List("InClusters")),
		OutputClusters: clusterIDs(cb.List("OutClusters")),
	}, nil
}

// Neighbors walks the full MGMT_LQI table of a device.
func (d *Driver) Neighbors(ctx context.Context, nwk uint16) ([]Neighbor, error) {
	var out []Neighbor
	start := uint8(0)
	for {
		cb, err := d.zdoRequest(ctx, mt.ZdoMgmtLqiReq, mt.Args{
			"DstAddr":    nwk,
			"StartIndex": start,
		}, bus.MatchFields(mt.ZdoMgmtLqiRsp, mt.Args{"SrcAddr": nwk}))
		if err != nil {
			return nil, err
		}
		entries := cb.List("Neighbors")
		for _, e := range entries {
			packed := e.Uint8("PackedFlags")
			out = append(out, Neighbor{
				ExtendedPanID: e.Uint64("ExtendedPanId"),
				IEEE:          e.Uint64("ExtAddr"),
				Nwk:           e.Uint16("NwkAddr"),
				DeviceType:    packed & 0x03,
				RxOnWhenIdle:  (packed>>2)&0x03 == 1,
				Relationship:  (packed >> 4) & 0x07,
				PermitJoining: e.Uint8("PermitJoining"),
				Depth:         e.Uint8("Depth"),
				LQI:           e.Uint8("LQI"),
			})
		}
		total := int(cb.Uint8("NeighborTableEntries"))
		start += uint8(len(entries))
		if len(out) >= total || len(entries) == 0 {
			return out, nil
		}
	}
}

// RoutingTable walks the full MGMT_RTG table of a device.
func (d *Driver) RoutingTable(ctx context.Context, nwk uint16) ([]Route, error) {
	var out []Route
	start := uint8(0)
	for {
		cb, err := d.zdoRequest(ctx, mt.ZdoMgmtRtgReq, mt.Args{
			"DstAddr":    nwk,
			"StartIndex": start,
		}, bus.MatchFields(mt.ZdoMgmtRtgRsp, mt.Args{"SrcAddr": nwk}))
		if err != nil {
			return nil, err
		}
		entries := cb.List("Routes")
		for _, e := range entries {
			out = append(out, Route{
				Dst:     e.Uint16("DstAddr"),
				Status:  e.Uint8("RouteStatus") & 0x07,
				NextHop: e.Uint16("NextHop"),
			})
		}
		total := int(cb.Uint8("RoutingTableEntries"))
		start += uint8(len(entries))
		if len(out) >= total || len(entries) == 0 {
			return out, nil
		}
	}
}

// Bind creates a binding on the source device.
func (d *Driver) Bind(ctx context.Context, dst uint16, srcIEEE uint64, srcEP uint8, cluster uint16, dstIEEE uint64, dstEP uint8) error {
	_, err := d.zdoRequest(ctx, mt.ZdoBindReq, mt.Args{
		"DstAddr":     dst,
		"SrcAddress":  srcIEEE,
		"SrcEndpoint": srcEP,
		"ClusterId":   cluster,
		"DstAddrMode": uint8(mt.Addr64Bit),
		"DstAddress":  dstIEEE,
		"DstEndpoint": dstEP,
	}, bus.MatchFields(mt.ZdoBindRsp, mt.Args{"SrcAddr": dst}))
	return err
}

// Unbind removes a binding from the source device.
func (d *Driver) Unbind(ctx context.Context, dst uint16, srcIEEE uint64, srcEP uint8, cluster uint16, dstIEEE uint64, dstEP uint8) error {
	_, err := d.zdoRequest(ctx, mt.ZdoUnbindReq, mt.Args{
		"DstAddr":     dst,
		"SrcAddress":  srcIEEE,
		"SrcEndpoint": srcEP,
		"ClusterId":   cluster,
		"DstAddrMode": uint8(mt.Addr64Bit),
		"DstAddress":  dstIEEE,
		"DstEndpoint": dstEP,
	}, bus.MatchFields(mt.ZdoUnbindRsp, mt.Args{"SrcAddr": dst}))
	return err
}

// RemoveDevice asks a device to leave the network.
func (d *Driver) RemoveDevice(ctx context.Context, nwk uint16, ieee uint64, rejoin bool) error {
	flags := uint8(0)
	if rejoin {
		flags |= 0x01
	}
	_, err := d.zdoRequest(ctx, mt.ZdoMgmtLeaveReq, mt.Args{
		"DstAddr":              nwk,
		"DeviceAddr":           ieee,
		"RemoveChildrenRejoin": flags,
	}, bus.MatchFields(mt.ZdoMgmtLeaveRsp, mt.Args{"SrcAddr": nwk}))
	if err != nil {
		return err
	}
	d.mu.Lock()
	delete(d.devices, ieee)
	d.mu.Unlock()
	return nil
}

// EnergyScan requests a MGMT_NWK_UPDATE energy scan on the coordinator
// itself. It returns once the request is acknowledged; the per-channel
// energy readings are not collected or returned.
func (d *Driver) EnergyScan(ctx context.Context, mask uint32, duration, count uint8) error {
	b, err := d.requireRunning()
	if err != nil {
		return err
	}
	if mask == 0 {
		mask = 0x07FFF800
	}
	_, err = b.RequestStatus(ctx, mt.ZdoMgmtNwkUpdateReq, mt.Args{
		"DstAddr":        d.NetworkInfo().NwkAddr,
		"DstAddrMode":    uint8(mt.Addr16Bit),
		"ChannelMask":    mask,
		"ScanDuration":   duration,
		"ScanCount":      count,
		"NwkManagerAddr": d.NetworkInfo().NwkAddr,
	})
	if err != nil {
		return fmt.Errorf("energy scan: %w", err)
	}
	return nil
}

func clusterIDs(items []mt.Args) []uint16 {
	out := make([]uint16, len(items))
	for i, item := range items {
		out[i] = item.Uint16("ClusterId")
	}
	return out
}
