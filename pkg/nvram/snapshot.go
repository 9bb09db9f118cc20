package nvram

import (
	"context"
	"fmt"
)

// Snapshot is an exhaustive image of the catalogued NV items. Items the
// device does not have are simply absent from the maps.
type Snapshot struct {
	Flavour  Flavour
	Legacy   map[NVID][]byte
	Extended map[ExtKey][]byte
}

// ResetDepth selects how much state a device reset clears.
type ResetDepth int

const (
	// ResetNetwork clears only the network-forming items.
	ResetNetwork ResetDepth = iota
	// ResetFactory clears every catalogued item and reinitialises.
	ResetFactory
)

// Startup option bits written to NVStartupOption before a reset.
const (
	startupClearState  = 0x02
	startupClearConfig = 0x01
)

// Backup reads every catalogued item for the flavour. The manager's
// exclusive lease is held for the whole iteration, so the snapshot is a
// pure function of device state at completion.
func (m *Manager) Backup(ctx context.Context, f Flavour) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := &Snapshot{
		Flavour:  f,
		Legacy:   map[NVID][]byte{},
		Extended: map[ExtKey][]byte{},
	}

	for _, id := range LegacyBackupItems(f) {
		value, err := m.ReadLegacy(ctx, id)
		if err != nil {
			if IsMissing(err) {
				continue
			}
			return nil, fmt.Errorf("backup item 0x%04X: %w", uint16(id), err)
		}
		snap.Legacy[id] = value
	}

	for _, item := range ExtendedBackupTables(f) {
		for sub := 0; sub <= 0xFF; sub++ {
			key := ExtKey{SysID: SysZStack, ItemID: item, SubID: uint16(sub)}
			value, err := m.ReadExt(ctx, key)
			if err != nil {
				if IsMissing(err) {
					break
				}
				return nil, fmt.Errorf("backup item %s: %w", key, err)
			}
			snap.Extended[key] = value
		}
	}

	m.log.Info().
		Int("legacy", len(snap.Legacy)).
		Int("extended", len(snap.Extended)).
		Stringer("flavour", f).
		Msg("NVRAM backup complete")

	return snap, nil
}

// Restore resets the device, writes every snapshot item, and verifies
// each by reading it back. A diff fails with a MismatchError.
func (m *Manager) Restore(ctx context.Context, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.resetLocked(ctx, snap.Flavour, ResetNetwork); err != nil {
		return fmt.Errorf("pre-restore reset: %w", err)
	}

	for id, value := range snap.Legacy {
		if err := m.WriteLegacy(ctx, id, value); err != nil {
			return fmt.Errorf("restore item 0x%04X: %w", uint16(id), err)
		}
		if err := m.verifyLegacy(ctx, id, value); err != nil {
			return err
		}
	}

	for key, value := range snap.Extended {
		if err := m.WriteExt(ctx, key, value); err != nil {
			return fmt.Errorf("restore item %s: %w", key, err)
		}
		if err := m.verifyExt(ctx, key, value); err != nil {
			return err
		}
	}

	m.log.Info().
		Int("legacy", len(snap.Legacy)).
		Int("extended", len(snap.Extended)).
		Msg("NVRAM restore complete")

	return nil
}

// ResetDevice clears state at the requested depth and reboots the
// coprocessor.
func (m *Manager) ResetDevice(ctx context.Context, f Flavour, depth ResetDepth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resetLocked(ctx, f, depth)
}

func (m *Manager) resetLocked(ctx context.Context, f Flavour, depth ResetDepth) error {
	items := NetworkResetItems(f)
	startup := byte(startupClearState)
	if depth == ResetFactory {
		items = LegacyBackupItems(f)
		startup = startupClearState | startupClearConfig
	}

	for _, id := range items {
		if err := m.DeleteLegacy(ctx, id); err != nil {
			return fmt.Errorf("clear item 0x%04X: %w", uint16(id), err)
		}
	}

	if depth == ResetFactory {
		for _, item := range ExtendedBackupTables(f) {
			for sub := 0; sub <= 0xFF; sub++ {
				key := ExtKey{SysID: SysZStack, ItemID: item, SubID: uint16(sub)}
				length, err := m.LengthExt(ctx, key)
				if err != nil {
					return err
				}
				if length == 0 {
					break
				}
				if err := m.DeleteExt(ctx, key); err != nil {
					return err
				}
			}
		}
	}

	// The startup option tells the firmware to rebuild its state on the
	// way back up.
	if err := m.WriteLegacy(ctx, NVStartupOption, []byte{startup}); err != nil {
		return err
	}

	return m.Reset(ctx)
}
