package znptest

import (
	"sync"

	"github.com/urmzd/znp/pkg/mt"
)

// NVStore emulates the firmware's OSAL NV storage, both layouts, backed
// by in-memory maps. Install wires its handlers into a simulator.
type NVStore struct {
	mu     sync.Mutex
	Legacy map[uint16][]byte
	Ext    map[ExtKey][]byte

	// Resets counts RESET_REQ frames handled.
	Resets int
}

// ExtKey addresses one extended item in the store.
type ExtKey struct {
	SysID  uint8
	ItemID uint16
	SubID  uint16
}

// NewNVStore returns an empty store.
func NewNVStore() *NVStore {
	return &NVStore{
		Legacy: map[uint16][]byte{},
		Ext:    map[ExtKey][]byte{},
	}
}

// Set seeds a legacy item.
func (n *NVStore) Set(id uint16, value []byte) {
	n.mu.Lock()
	n.Legacy[id] = append([]byte(nil), value...)
	n.mu.Unlock()
}

// Get returns a copy of a legacy item, nil when absent.
func (n *NVStore) Get(id uint16) []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	v, ok := n.Legacy[id]
	if !ok {
		return nil
	}
	return append([]byte(nil), v...)
}

// SetExt seeds an extended item.
func (n *NVStore) SetExt(key ExtKey, value []byte) {
	n.mu.Lock()
	n.Ext[key] = append([]byte(nil), value...)
	n.mu.Unlock()
}

const nvChunk = 240

// Install registers the OSAL NV and reset handlers on the simulator.
func (n *NVStore) Install(sim *Simulator) {
	sim.Handle(mt.SysOsalNvLength, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		length := len(n.Legacy[args.Uint16("Id")])
		n.mu.Unlock()
		return []mt.Frame{SRSP(mt.SysOsalNvLength, mt.Args{"ItemLen": uint16(length)})}
	})

	sim.Handle(mt.SysOsalNvReadExt, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		defer n.mu.Unlock()
		item, ok := n.Legacy[args.Uint16("Id")]
		off := int(args.Uint16("Offset"))
		if !ok || off > len(item) {
			return []mt.Frame{SRSP(mt.SysOsalNvReadExt, mt.Args{
				"Status": uint8(mt.StatusInvalidParameter), "Value": []byte{},
			})}
		}
		end := off + nvChunk
		if end > len(item) {
			end = len(item)
		}
		return []mt.Frame{SRSP(mt.SysOsalNvReadExt, mt.Args{
			"Status": uint8(0), "Value": append([]byte(nil), item[off:end]...),
		})}
	})

	sim.Handle(mt.SysOsalNvItemInit, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		defer n.mu.Unlock()
		id := args.Uint16("Id")
		length := int(args.Uint16("ItemLen"))
		if item, ok := n.Legacy[id]; ok && len(item) == length {
			return []mt.Frame{SRSP(mt.SysOsalNvItemInit, mt.Args{"Status": uint8(0)})}
		}
		item := make([]byte, length)
		copy(item, args.Bytes("Value"))
		n.Legacy[id] = item
		return []mt.Frame{SRSP(mt.SysOsalNvItemInit, mt.Args{"Status": uint8(mt.StatusItemCreated)})}
	})

	sim.Handle(mt.SysOsalNvWriteExt, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		defer n.mu.Unlock()
		id := args.Uint16("Id")
		item, ok := n.Legacy[id]
		value := args.Bytes("Value")
		off := int(args.Uint16("Offset"))
		if !ok || off+len(value) > len(item) {
			return []mt.Frame{SRSP(mt.SysOsalNvWriteExt, mt.Args{"Status": uint8(mt.StatusItemNotCreated)})}
		}
		copy(item[off:], value)
		return []mt.Frame{SRSP(mt.SysOsalNvWriteExt, mt.Args{"Status": uint8(0)})}
	})

	sim.Handle(mt.SysOsalNvDelete, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		delete(n.Legacy, args.Uint16("Id"))
		n.mu.Unlock()
		return []mt.Frame{SRSP(mt.SysOsalNvDelete, mt.Args{"Status": uint8(0)})}
	})

	sim.Handle(mt.SysNvLength, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		length := len(n.Ext[extKeyFromArgs(args)])
		n.mu.Unlock()
		return []mt.Frame{SRSP(mt.SysNvLength, mt.Args{"Length": uint32(length)})}
	})

	sim.Handle(mt.SysNvCreate, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		key := extKeyFromArgs(args)
		if _, ok := n.Ext[key]; !ok {
			n.Ext[key] = make([]byte, int(args.Uint32("Length")))
		}
		n.mu.Unlock()
		return []mt.Frame{SRSP(mt.SysNvCreate, mt.Args{"Status": uint8(mt.StatusItemCreated)})}
	})

	sim.Handle(mt.SysNvRead, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		defer n.mu.Unlock()
		item, ok := n.Ext[extKeyFromArgs(args)]
		off := int(args.Uint16("Offset"))
		if !ok || off > len(item) {
			return []mt.Frame{SRSP(mt.SysNvRead, mt.Args{
				"Status": uint8(mt.StatusInvalidParameter), "Value": []byte{},
			})}
		}
		end := off + int(args.Uint8("Length"))
		if end > len(item) {
			end = len(item)
		}
		return []mt.Frame{SRSP(mt.SysNvRead, mt.Args{
			"Status": uint8(0), "Value": append([]byte(nil), item[off:end]...),
		})}
	})

	sim.Handle(mt.SysNvWrite, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		defer n.mu.Unlock()
		key := extKeyFromArgs(args)
		item, ok := n.Ext[key]
		value := args.Bytes("Value")
		off := int(args.Uint16("Offset"))
		if !ok || off+len(value) > len(item) {
			return []mt.Frame{SRSP(mt.SysNvWrite, mt.Args{"Status": uint8(mt.StatusItemNotCreated)})}
		}
		copy(item[off:], value)
		return []mt.Frame{SRSP(mt.SysNvWrite, mt.Args{"Status": uint8(0)})}
	})

	sim.Handle(mt.SysNvDelete, func(_ mt.Frame, args mt.Args) []mt.Frame {
		n.mu.Lock()
		delete(n.Ext, extKeyFromArgs(args))
		n.mu.Unlock()
		return []mt.Frame{SRSP(mt.SysNvDelete, mt.Args{"Status": uint8(0)})}
	})

	sim.Handle(mt.SysResetReq, func(mt.Frame, mt.Args) []mt.Frame {
		n.mu.Lock()
		n.Resets++
		n.mu.Unlock()
		return []mt.Frame{AREQ(mt.SysResetInd, mt.Args{
			"Reason":       uint8(1),
			"TransportRev": uint8(2),
			"Product":      uint8(1),
			"MajorRel":     uint8(2),
			"MinorRel":     uint8(7),
			"HwRev":        uint8(1),
		})}
	})
}

func extKeyFromArgs(args mt.Args) ExtKey {
	return ExtKey{
		SysID:  args.Uint8("SysId"),
		ItemID: args.Uint16("ItemId"),
		SubID:  args.Uint16("SubId"),
	}
}
