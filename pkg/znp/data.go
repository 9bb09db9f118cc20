package znp

import (
	"context"
	"fmt"

	"github.com/urmzd/znp/pkg/bus"
	"github.com/urmzd/znp/pkg/mt"
)

// Destination addresses an outgoing data request.
type Destination struct {
	Mode  mt.AddrMode
	Nwk   uint16 // Addr16Bit, AddrBroadcast
	IEEE  uint64 // Addr64Bit
	Group uint16 // AddrGroup
}

// Unicast addresses a single device by network address.
func Unicast(nwk uint16) Destination {
	return Destination{Mode: mt.Addr16Bit, Nwk: nwk}
}

// UnicastIEEE addresses a single device by IEEE address.
func UnicastIEEE(ieee uint64) Destination {
	return Destination{Mode: mt.Addr64Bit, IEEE: ieee}
}

// Group addresses a multicast group.
func Group(id uint16) Destination {
	return Destination{Mode: mt.AddrGroup, Group: id}
}

// Broadcast addresses one of the well-known broadcast addresses.
func Broadcast(nwk uint16) Destination {
	return Destination{Mode: mt.AddrBroadcast, Nwk: nwk}
}

// DataRequest is one outgoing application frame.
type DataRequest struct {
	Dst         Destination
	DstEndpoint uint8
	SrcEndpoint uint8
	Cluster     uint16
	Payload     []byte

	// Options are the AF option bits; zero sends
	// OptAckRequest|OptDiscoverRoute.
	Options uint8

	// Radius caps the hop count; 0 uses the stack default.
	Radius uint8
}

// AF option bits.
const (
	OptAckRequest     = 0x10
	OptDiscoverRoute  = 0x20
	OptSkipRouting    = 0x80
	DefaultDataRadius = 30
)

// extPayloadThreshold is where DATA_REQUEST runs out of frame space and
// DATA_REQUEST_EXT takes over.
const extPayloadThreshold = 230

// DataConfirm is the result of a data request.
type DataConfirm struct {
	Status  mt.Status
	TransID uint8
}

// RequestData sends an application frame and waits for the matching
// AF.DATA_CONFIRM. Concurrency is bounded by MaxConcurrentRequests;
// excess callers block on the semaphore.
func (d *Driver) RequestData(ctx context.Context, req DataRequest) (*DataConfirm, error) {
	b, err := d.requireRunning()
	if err != nil {
		return nil, err
	}

	select {
	case d.dataSem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("znp: data request: %w", bus.ErrCancelled)
	}
	defer func() { <-d.dataSem }()

	transID, err := d.allocTransID()
	if err != nil {
		return nil, err
	}
	defer d.releaseTransID(transID)

	options := req.Options
	if options == 0 {
		options = OptAckRequest | OptDiscoverRoute
	}
	radius := req.Radius
	if radius == 0 {
		radius = DefaultDataRadius
	}

	cmd, args := buildDataRequest(req, transID, options, radius)

	cb, err := b.RequestCallback(ctx, cmd, args,
		bus.MatchFields(mt.AfDataConfirm, mt.Args{"TransId": transID}))
	if err != nil {
		return nil, err
	}

	confirm := &DataConfirm{
		Status:  mt.Status(cb.Uint8("Status")),
		TransID: transID,
	}
	if confirm.Status != mt.StatusSuccess {
		return confirm, &bus.CommandStatusError{Command: mt.AfDataConfirm, Status: confirm.Status}
	}
	return confirm, nil
}

// buildDataRequest picks the narrow or extended AF request. The extended
// form carries 64-bit destinations, inter-PAN frames, and payloads the
// narrow form cannot fit.
func buildDataRequest(req DataRequest, transID uint8, options, radius uint8) (*mt.Command, mt.Args) {
	useExt := len(req.Payload) > extPayloadThreshold ||
		req.Dst.Mode == mt.Addr64Bit ||
		req.Dst.Mode == mt.AddrGroup

	if !useExt {
		return mt.AfDataRequest, mt.Args{
			"DstAddr":     req.Dst.Nwk,
			"DstEndpoint": req.DstEndpoint,
			"SrcEndpoint": req.SrcEndpoint,
			"ClusterId":   req.Cluster,
			"TransId":     transID,
			"Options":     options,
			"Radius":      radius,
			"Data":        req.Payload,
		}
	}

	var dstAddr uint64
	switch req.Dst.Mode {
	case mt.Addr64Bit:
		dstAddr = req.Dst.IEEE
	case mt.AddrGroup:
		dstAddr = uint64(req.Dst.Group)
	default:
		dstAddr = uint64(req.Dst.Nwk)
	}
	return mt.AfDataRequestExt, mt.Args{
		"DstAddrMode": uint8(req.Dst.Mode),
		"DstAddr":     dstAddr,
		"DstEndpoint": req.DstEndpoint,
		"DstPanId":    uint16(0), // same PAN; inter-PAN goes through INTER_PAN_CTL
		"SrcEndpoint": req.SrcEndpoint,
		"ClusterId":   req.Cluster,
		"TransId":     transID,
		"Options":     options,
		"Radius":      radius,
		"Data":        req.Payload,
	}
}

// allocTransID hands out the next free transaction id. Ids are a u8
// nonce, monotonically increasing with wraparound; ids still in flight
// are skipped.
func (d *Driver) allocTransID() (uint8, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := 0; i < 256; i++ {
		d.nextTransID++ // id 0 is skipped on natural wrap
		if d.nextTransID == 0 {
			d.nextTransID = 1
		}
		id := d.nextTransID
		if !d.transInUse[id] {
			d.transInUse[id] = true
			return id, nil
		}
	}
	return 0, fmt.Errorf("znp: all transaction ids in flight")
}

func (d *Driver) releaseTransID(id uint8) {
	d.mu.Lock()
	delete(d.transInUse, id)
	d.mu.Unlock()
}
