package backup

import (
	"bytes"
	"testing"
	"time"

	"github.com/urmzd/znp/pkg/nvram"
)

func sampleDocument() *Document {
	d := New("test", time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	d.Network = Network{
		PanID:         0x1A62,
		ExtendedPanID: "dd:dd:dd:dd:dd:dd:dd:dd",
		Channel:       15,
		ChannelMask:   1 << 15,
		NwkUpdateID:   0,
		NetworkKey:    "0123456789abcdef0123456789abcdef",
		TCLinkKey:     "5a6967426565416c6c69616e63653039",
		KeySequence:   0,
		Children: []Child{
			{IEEE: "00:12:4b:00:01:02:03:04", Nwk: 0x529C},
		},
	}
	d.NVRAM.Legacy = map[string]string{
		"0x0083": "621a",
		"0x0084": "00800000",
	}
	d.NVRAM.Extended = map[string]string{
		"01:0004:0000": "aabbcc",
	}
	return d
}

func TestDocumentRoundTrip(t *testing.T) {
	d := sampleDocument()

	raw, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	back, err := Unmarshal(raw)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	raw2, err := back.Marshal()
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if !bytes.Equal(raw, raw2) {
		t.Error("document is not round-trip stable")
	}
}

func TestUnmarshalRejectsWrongFormat(t *testing.T) {
	d := sampleDocument()
	d.Metadata.Format = "something-else"
	raw, err := d.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Unmarshal(raw); err == nil {
		t.Fatal("expected schema error for wrong format")
	}
}

func TestUnmarshalRejectsBadNetworkKey(t *testing.T) {
	d := sampleDocument()
	d.Network.NetworkKey = "zz"
	raw, err := d.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Unmarshal(raw); err == nil {
		t.Fatal("expected schema error for malformed network key")
	}
}

func TestUnmarshalRejectsNonJSON(t *testing.T) {
	if _, err := Unmarshal([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestSnapshotConversion(t *testing.T) {
	d := sampleDocument()

	snap, err := d.Snapshot(nvram.ZStack3x)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if got := snap.Legacy[nvram.NVPanID]; !bytes.Equal(got, []byte{0x62, 0x1A}) {
		t.Errorf("PANID item = %x", got)
	}
	key := nvram.ExtKey{SysID: nvram.SysZStack, ItemID: nvram.ExTclkTable, SubID: 0}
	if got := snap.Extended[key]; !bytes.Equal(got, []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("extended item = %x", got)
	}

	// And back again.
	d2 := New("test", time.Now())
	d2.SetSnapshot(snap)
	if d2.NVRAM.Legacy["0x0083"] != "621a" {
		t.Errorf("legacy map = %v", d2.NVRAM.Legacy)
	}
	if d2.NVRAM.Extended["01:0004:0000"] != "aabbcc" {
		t.Errorf("extended map = %v", d2.NVRAM.Extended)
	}
}

func TestIEEEStringRoundTrip(t *testing.T) {
	const addr = uint64(0x00124B0001020304)
	s := IEEEString(addr)
	if s != "00:12:4b:00:01:02:03:04" {
		t.Fatalf("IEEEString = %q", s)
	}
	back, err := ParseIEEE(s)
	if err != nil {
		t.Fatal(err)
	}
	if back != addr {
		t.Fatalf("ParseIEEE = %016x", back)
	}
}

func TestParseKeyLength(t *testing.T) {
	if _, err := ParseKey("aabb"); err == nil {
		t.Fatal("expected error for short key")
	}
	key, err := ParseKey("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	if len(key) != 16 {
		t.Fatalf("key length = %d", len(key))
	}
}
