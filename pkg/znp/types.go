package znp

import (
	"fmt"
	"time"

	"github.com/urmzd/znp/pkg/nvram"
)

// State is the coordinator lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateProbing
	StateConfiguring
	StateForming
	StateRestoring
	StateJoining
	StateRunning
	StateStopping
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateProbing:
		return "probing"
	case StateConfiguring:
		return "configuring"
	case StateForming:
		return "forming"
	case StateRestoring:
		return "restoring"
	case StateJoining:
		return "joining"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Version is the firmware identity reported by SYS.VERSION.
type Version struct {
	TransportRev uint8
	Product      uint8
	MajorRel     uint8
	MinorRel     uint8
	MaintRel     uint8
	CodeRevision uint32
	Flavour      nvram.Flavour
}

func (v Version) String() string {
	return fmt.Sprintf("%s %d.%d.%d (rev %d)", v.Flavour, v.MajorRel, v.MinorRel, v.MaintRel, v.CodeRevision)
}

// NetworkInfo is the formed network's identity and key material.
type NetworkInfo struct {
	ExtendedPanID uint64
	PanID         uint16
	Channel       uint8
	ChannelMask   uint32
	NetworkKey    []byte
	KeySequence   uint8
	TCLinkKey     []byte
	NwkUpdateID   uint8
	IEEE          uint64
	NwkAddr       uint16
}

// Relationship of a device to the coordinator, from the association table.
type Relationship uint8

const (
	RelationParent Relationship = iota
	RelationChildRx
	RelationChildRxIdle
	RelationSibling
	RelationNone
	RelationOther
)

// Device is one entry of the in-memory device table. The table is owned
// by the driver and seeded at start-up from the coordinator's
// associated-device list (UTIL.GET_DEVICE_INFO); it is not read from
// NVRAM. Reads get snapshots.
type Device struct {
	IEEE         uint64
	Nwk          uint16
	LQI          uint8
	Relationship Relationship
	RxOnWhenIdle bool
	LastSeen     time.Time
}

// Event is anything emitted on the driver's indication stream.
type Event interface {
	event()
}

// IncomingMessage is an application frame received via AF.
type IncomingMessage struct {
	Src            uint16
	SrcEndpoint    uint8
	DstEndpoint    uint8
	Cluster        uint16
	GroupID        uint16
	WasBroadcast   bool
	LQI            uint8
	SecurityUse    bool
	Timestamp      uint32
	TransSeqNumber uint8
	Payload        []byte
}

func (IncomingMessage) event() {}

// DeviceJoined announces a device joining the network.
type DeviceJoined struct {
	Device Device
}

func (DeviceJoined) event() {}

// DeviceAnnounced is a ZDO end-device announce.
type DeviceAnnounced struct {
	Device       Device
	Capabilities uint8
}

func (DeviceAnnounced) event() {}

// DeviceLeft announces a device leaving the network.
type DeviceLeft struct {
	IEEE uint64
	Nwk  uint16
}

func (DeviceLeft) event() {}

// StateChanged reports a lifecycle transition.
type StateChanged struct {
	State State
}

func (StateChanged) event() {}

// PermitJoinChanged reports the authoritative permit-join window.
type PermitJoinChanged struct {
	Remaining time.Duration
}

func (PermitJoinChanged) event() {}

// SourceRoute is a ZDO source-route indication.
type SourceRoute struct {
	Dst    uint16
	Relays []uint16
}

func (SourceRoute) event() {}

// RawIndication carries frames the catalogue does not know, surfaced
// opaquely.
type RawIndication struct {
	Subsystem uint8
	ID        uint8
	Payload   []byte
}

func (RawIndication) event() {}

// Endpoint describes one application endpoint registered with AF.
type Endpoint struct {
	Endpoint       uint8
	Profile        uint16
	Device         uint16
	Version        uint8
	InputClusters  []uint16
	OutputClusters []uint16
}

// Neighbor is one MGMT_LQI table entry.
type Neighbor struct {
	ExtendedPanID uint64
	IEEE          uint64
	Nwk           uint16
	DeviceType    uint8
	RxOnWhenIdle  bool
	Relationship  uint8
	PermitJoining uint8
	Depth         uint8
	LQI           uint8
}

// Route is one MGMT_RTG table entry.
type Route struct {
	Dst     uint16
	Status  uint8
	NextHop uint16
}

// NodeDescriptor is the ZDO node descriptor.
type NodeDescriptor struct {
	LogicalType        uint8
	ManufacturerCode   uint16
	MaxBufferSize      uint8
	MaxInTransferSize  uint16
	ServerMask         uint16
	MaxOutTransferSize uint16
}

// SimpleDescriptor is the ZDO simple descriptor for one endpoint.
type SimpleDescriptor struct {
	Endpoint       uint8
	Profile        uint16
	Device         uint16
	Version        uint8
	InputClusters  []uint16
	OutputClusters []uint16
}
