package nvram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/urmzd/znp/pkg/bus"
	"github.com/urmzd/znp/pkg/mt"
)

// writeChunk bounds one NV read/write transfer so the MT payload stays
// under the frame limit alongside the command header.
const writeChunk = 240

// Manager drives the OSAL NV commands over the bus. Multi-step
// operations (backup, restore, reset) hold an exclusive lease so
// concurrent writers cannot corrupt catalogue iteration.
type Manager struct {
	bus *bus.Bus
	log zerolog.Logger
	mu  sync.Mutex
}

// New returns a manager over the given bus.
func New(b *bus.Bus, log zerolog.Logger) *Manager {
	return &Manager{bus: b, log: log}
}

// LengthLegacy returns the item's size in bytes, 0 when it is absent.
func (m *Manager) LengthLegacy(ctx context.Context, id NVID) (int, error) {
	rsp, err := m.bus.Request(ctx, mt.SysOsalNvLength, mt.Args{"Id": uint16(id)})
	if err != nil {
		return 0, err
	}
	return int(rsp.Uint16("ItemLen")), nil
}

// ReadLegacy reads the whole item, chunking as needed.
func (m *Manager) ReadLegacy(ctx context.Context, id NVID) ([]byte, error) {
	length, err := m.LengthLegacy(ctx, id)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, &MissingError{Item: fmt.Sprintf("0x%04X", uint16(id))}
	}

	out := make([]byte, 0, length)
	for len(out) < length {
		rsp, err := m.bus.RequestStatus(ctx, mt.SysOsalNvReadExt, mt.Args{
			"Id":     uint16(id),
			"Offset": uint16(len(out)),
		})
		if err != nil {
			return nil, fmt.Errorf("read NV 0x%04X at %d: %w", uint16(id), len(out), err)
		}
		chunk := rsp.Bytes("Value")
		if len(chunk) == 0 {
			return nil, fmt.Errorf("read NV 0x%04X: empty chunk at offset %d", uint16(id), len(out))
		}
		out = append(out, chunk...)
	}
	return out[:length], nil
}

// WriteLegacy writes the item, creating or re-sizing it first when
// needed. Writing identical bytes twice leaves the item unchanged.
func (m *Manager) WriteLegacy(ctx context.Context, id NVID, value []byte) error {
	length, err := m.LengthLegacy(ctx, id)
	if err != nil {
		return err
	}

	if length != len(value) {
		if length != 0 {
			if err := m.DeleteLegacy(ctx, id); err != nil {
				return err
			}
		}
		rsp, err := m.bus.Request(ctx, mt.SysOsalNvItemInit, mt.Args{
			"Id":      uint16(id),
			"ItemLen": uint16(len(value)),
			"Value":   first(value, writeChunk),
		})
		if err != nil {
			return fmt.Errorf("init NV 0x%04X: %w", uint16(id), err)
		}
		// SUCCESS means it already existed; NV_ITEM_CREATED is the
		// fresh-item answer. Anything else is a failure.
		if st := rsp.Status(); st != mt.StatusSuccess && st != mt.StatusItemCreated {
			return &bus.CommandStatusError{Command: mt.SysOsalNvItemInit, Status: st}
		}
	}

	for off := 0; off < len(value); off += writeChunk {
		end := off + writeChunk
		if end > len(value) {
			end = len(value)
		}
		_, err := m.bus.RequestStatus(ctx, mt.SysOsalNvWriteExt, mt.Args{
			"Id":     uint16(id),
			"Offset": uint16(off),
			"Value":  value[off:end],
		})
		if err != nil {
			return fmt.Errorf("write NV 0x%04X at %d: %w", uint16(id), off, err)
		}
	}
	return nil
}

// DeleteLegacy removes the item. Deleting an absent item is not an error.
func (m *Manager) DeleteLegacy(ctx context.Context, id NVID) error {
	length, err := m.LengthLegacy(ctx, id)
	if err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	_, err = m.bus.RequestStatus(ctx, mt.SysOsalNvDelete, mt.Args{
		"Id":      uint16(id),
		"ItemLen": uint16(length),
	})
	if err != nil {
		return fmt.Errorf("delete NV 0x%04X: %w", uint16(id), err)
	}
	return nil
}

// LengthExt returns an extended item's size, 0 when absent.
func (m *Manager) LengthExt(ctx context.Context, key ExtKey) (int, error) {
	rsp, err := m.bus.Request(ctx, mt.SysNvLength, mt.Args{
		"SysId":  uint8(key.SysID),
		"ItemId": uint16(key.ItemID),
		"SubId":  key.SubID,
	})
	if err != nil {
		return 0, err
	}
	return int(rsp.Uint32("Length")), nil
}

// ReadExt reads a whole extended item, chunking as needed.
func (m *Manager) ReadExt(ctx context.Context, key ExtKey) ([]byte, error) {
	length, err := m.LengthExt(ctx, key)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, &MissingError{Item: key.String()}
	}

	out := make([]byte, 0, length)
	for len(out) < length {
		chunk := length - len(out)
		if chunk > writeChunk {
			chunk = writeChunk
		}
		rsp, err := m.bus.RequestStatus(ctx, mt.SysNvRead, mt.Args{
			"SysId":  uint8(key.SysID),
			"ItemId": uint16(key.ItemID),
			"SubId":  key.SubID,
			"Offset": uint16(len(out)),
			"Length": uint8(chunk),
		})
		if err != nil {
			return nil, fmt.Errorf("read NV %s at %d: %w", key, len(out), err)
		}
		data := rsp.Bytes("Value")
		if len(data) == 0 {
			return nil, fmt.Errorf("read NV %s: empty chunk at offset %d", key, len(out))
		}
		out = append(out, data...)
	}
	return out[:length], nil
}

// WriteExt writes a whole extended item, creating or re-sizing first.
func (m *Manager) WriteExt(ctx context.Context, key ExtKey, value []byte) error {
	length, err := m.LengthExt(ctx, key)
	if err != nil {
		return err
	}

	if length != len(value) {
		if length != 0 {
			if err := m.DeleteExt(ctx, key); err != nil {
				return err
			}
		}
		rsp, err := m.bus.Request(ctx, mt.SysNvCreate, mt.Args{
			"SysId":  uint8(key.SysID),
			"ItemId": uint16(key.ItemID),
			"SubId":  key.SubID,
			"Length": uint32(len(value)),
		})
		if err != nil {
			return fmt.Errorf("create NV %s: %w", key, err)
		}
		if st := rsp.Status(); st != mt.StatusSuccess && st != mt.StatusItemCreated {
			return &bus.CommandStatusError{Command: mt.SysNvCreate, Status: st}
		}
	}

	for off := 0; off < len(value); off += writeChunk {
		end := off + writeChunk
		if end > len(value) {
			end = len(value)
		}
		_, err := m.bus.RequestStatus(ctx, mt.SysNvWrite, mt.Args{
			"SysId":  uint8(key.SysID),
			"ItemId": uint16(key.ItemID),
			"SubId":  key.SubID,
			"Offset": uint16(off),
			"Value":  value[off:end],
		})
		if err != nil {
			return fmt.Errorf("write NV %s at %d: %w", key, off, err)
		}
	}
	return nil
}

// DeleteExt removes an extended item. Absent items are not an error.
func (m *Manager) DeleteExt(ctx context.Context, key ExtKey) error {
	length, err := m.LengthExt(ctx, key)
	if err != nil {
		return err
	}
	if length == 0 {
		return nil
	}
	_, err = m.bus.RequestStatus(ctx, mt.SysNvDelete, mt.Args{
		"SysId":  uint8(key.SysID),
		"ItemId": uint16(key.ItemID),
		"SubId":  key.SubID,
	})
	if err != nil {
		return fmt.Errorf("delete NV %s: %w", key, err)
	}
	return nil
}

// Reset soft-resets the coprocessor and waits for its RESET_IND. The
// listener is registered before the reset goes out so the indication
// cannot slip past.
func (m *Manager) Reset(ctx context.Context) error {
	sub := m.bus.Subscribe(bus.MatchCommand(mt.SysResetInd))
	defer sub.Close()

	if err := m.bus.Send(ctx, mt.SysResetReq, mt.Args{"Type": uint8(1)}); err != nil {
		return err
	}

	select {
	case got, ok := <-sub.C():
		if !ok {
			return bus.ErrDisconnected
		}
		m.log.Info().
			Uint8("reason", got.Args.Uint8("Reason")).
			Uint8("major", got.Args.Uint8("MajorRel")).
			Msg("Device reset complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for reset indication: %w", bus.ErrCancelled)
	}
}

// first returns at most n leading bytes of p.
func first(p []byte, n int) []byte {
	if len(p) < n {
		return p
	}
	return p[:n]
}

// IsMissing reports whether err is an absent-item error.
func IsMissing(err error) bool {
	var me *MissingError
	return errors.As(err, &me)
}

// verify reads an item back and compares, used by Restore.
func (m *Manager) verifyLegacy(ctx context.Context, id NVID, want []byte) error {
	got, err := m.ReadLegacy(ctx, id)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return &MismatchError{Item: fmt.Sprintf("0x%04X", uint16(id))}
	}
	return nil
}

func (m *Manager) verifyExt(ctx context.Context, key ExtKey, want []byte) error {
	got, err := m.ReadExt(ctx, key)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return &MismatchError{Item: key.String()}
	}
	return nil
}
