package nvram_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/znp/pkg/bus"
	"github.com/urmzd/znp/pkg/nvram"
	"github.com/urmzd/znp/pkg/znptest"
)

func newTestManager(t *testing.T) (*nvram.Manager, *znptest.NVStore) {
	t.Helper()
	sim := znptest.New()
	store := znptest.NewNVStore()
	store.Install(sim)

	b := bus.New(sim.Transport(), bus.Config{
		SREQTimeout: time.Second,
		ARSPTimeout: time.Second,
	}, zerolog.Nop())
	t.Cleanup(func() {
		b.Close()
		sim.Close()
	})
	return nvram.New(b, zerolog.Nop()), store
}

func TestLegacyWriteReadRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	value := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, m.WriteLegacy(ctx, nvram.NVPanID, value))

	got, err := m.ReadLegacy(ctx, nvram.NVPanID)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestLegacyLargeItemChunks(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	value := bytes.Repeat([]byte{0x42}, 700)
	for i := range value {
		value[i] = byte(i)
	}
	require.NoError(t, m.WriteLegacy(ctx, nvram.NVNib, value))

	got, err := m.ReadLegacy(ctx, nvram.NVNib)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestReadMissingItem(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.ReadLegacy(context.Background(), nvram.NVNwkKey)
	assert.True(t, nvram.IsMissing(err), "want MissingError, got %v", err)
}

// Writing the same bytes twice must be idempotent: same stored length,
// same contents, no delete/recreate cycle needed.
func TestIdempotentWrite(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	value := []byte{1, 2, 3, 4, 5}
	require.NoError(t, m.WriteLegacy(ctx, nvram.NVChanList, value))
	require.NoError(t, m.WriteLegacy(ctx, nvram.NVChanList, value))

	length, err := m.LengthLegacy(ctx, nvram.NVChanList)
	require.NoError(t, err)
	assert.Equal(t, len(value), length)
	assert.Equal(t, value, store.Get(uint16(nvram.NVChanList)))
}

func TestWriteResizesItem(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.WriteLegacy(ctx, nvram.NVChanList, []byte{1, 2, 3, 4}))
	require.NoError(t, m.WriteLegacy(ctx, nvram.NVChanList, []byte{9, 9}))

	got, err := m.ReadLegacy(ctx, nvram.NVChanList)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, got)
}

func TestExtendedWriteReadRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	key := nvram.ExtKey{SysID: nvram.SysZStack, ItemID: nvram.ExTclkTable, SubID: 0}
	value := bytes.Repeat([]byte{0xA5}, 300)
	require.NoError(t, m.WriteExt(ctx, key, value))

	got, err := m.ReadExt(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestBackupRecordsMissingAsAbsent(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	store.Set(uint16(nvram.NVPanID), []byte{0x34, 0x12})
	store.Set(uint16(nvram.NVChanList), []byte{0x00, 0x08, 0x00, 0x00})

	snap, err := m.Backup(ctx, nvram.ZStack30)
	require.NoError(t, err)

	assert.Equal(t, []byte{0x34, 0x12}, snap.Legacy[nvram.NVPanID])
	_, hasKey := snap.Legacy[nvram.NVNwkKey]
	assert.False(t, hasKey, "absent item must not appear in the snapshot")
}

func TestRestoreBackupIdentity(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	store.Set(uint16(nvram.NVPanID), []byte{0x34, 0x12})
	store.Set(uint16(nvram.NVNwkKey), bytes.Repeat([]byte{0x0B}, 16))
	store.Set(uint16(nvram.NVExtendedPanID), []byte{1, 2, 3, 4, 5, 6, 7, 8})

	snap, err := m.Backup(ctx, nvram.ZStack30)
	require.NoError(t, err)

	// Wipe the device, then restore.
	require.NoError(t, m.ResetDevice(ctx, nvram.ZStack30, nvram.ResetFactory))
	require.NoError(t, m.Restore(ctx, snap))

	again, err := m.Backup(ctx, nvram.ZStack30)
	require.NoError(t, err)
	assert.Equal(t, snap.Legacy, again.Legacy)
}

func TestFactoryResetEmptiesCatalogue(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	store.Set(uint16(nvram.NVPanID), []byte{0x34, 0x12})
	store.Set(uint16(nvram.NVNwkKey), bytes.Repeat([]byte{0x0B}, 16))

	require.NoError(t, m.ResetDevice(ctx, nvram.ZStack30, nvram.ResetFactory))

	snap, err := m.Backup(ctx, nvram.ZStack30)
	require.NoError(t, err)
	assert.Empty(t, snap.Legacy, "catalogue must be empty after a factory reset")
	assert.Equal(t, 1, store.Resets)
}

func TestNetworkResetPreservesNonNetworkItems(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	store.Set(uint16(nvram.NVLogicalType), []byte{0x00})
	store.Set(uint16(nvram.NVPanID), []byte{0x34, 0x12})

	require.NoError(t, m.ResetDevice(ctx, nvram.ZStack30, nvram.ResetNetwork))

	assert.NotNil(t, store.Get(uint16(nvram.NVLogicalType)), "non-network item must survive")
	assert.Nil(t, store.Get(uint16(nvram.NVPanID)), "network item must be cleared")
}
