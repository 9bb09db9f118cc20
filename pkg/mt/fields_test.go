package mt

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		args   Args
		wire   []byte
	}{
		{
			"scalars",
			[]Field{
				{Name: "A", Type: U8},
				{Name: "B", Type: U16},
				{Name: "C", Type: U32},
				{Name: "D", Type: Bool8},
			},
			Args{"A": uint8(0x12), "B": uint16(0x3456), "C": uint32(0x789ABCDE), "D": true},
			[]byte{0x12, 0x56, 0x34, 0xDE, 0xBC, 0x9A, 0x78, 0x01},
		},
		{
			"ieee and nwk little-endian",
			[]Field{
				{Name: "IEEEAddr", Type: IEEE},
				{Name: "NwkAddr", Type: NWKAddr},
			},
			Args{"IEEEAddr": uint64(0x00124B0001020304), "NwkAddr": uint16(0xFFFC)},
			[]byte{0x04, 0x03, 0x02, 0x01, 0x00, 0x4B, 0x12, 0x00, 0xFC, 0xFF},
		},
		{
			"short bytes",
			[]Field{{Name: "Data", Type: ShortBytes}},
			Args{"Data": []byte{0xAA, 0xBB}},
			[]byte{0x02, 0xAA, 0xBB},
		},
		{
			"long bytes",
			[]Field{{Name: "Data", Type: LongBytes}},
			Args{"Data": []byte{0xAA}},
			[]byte{0x01, 0x00, 0xAA},
		},
		{
			"fixed bytes",
			[]Field{{Name: "Key", Type: FixedBytes, Size: 4}},
			Args{"Key": []byte{1, 2, 3, 4}},
			[]byte{1, 2, 3, 4},
		},
		{
			"signed tx power",
			[]Field{{Name: "TXPower", Type: I8}},
			Args{"TXPower": int8(-22)},
			[]byte{0xEA},
		},
		{
			"struct list",
			[]Field{{Name: "Clusters", Type: StructList, Struct: []Field{{Name: "ClusterId", Type: U16}}}},
			Args{"Clusters": []Args{{"ClusterId": uint16(0x0006)}, {"ClusterId": uint16(0x0008)}}},
			[]byte{0x02, 0x06, 0x00, 0x08, 0x00},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wire, err := EncodeFields(tc.fields, tc.args)
			if err != nil {
				t.Fatalf("EncodeFields: %v", err)
			}
			if !bytes.Equal(wire, tc.wire) {
				t.Fatalf("wire = %x, want %x", wire, tc.wire)
			}

			back, err := DecodeFields(tc.fields, wire)
			if err != nil {
				t.Fatalf("DecodeFields: %v", err)
			}
			reencoded, err := EncodeFields(tc.fields, back)
			if err != nil {
				t.Fatalf("re-encode: %v", err)
			}
			if !bytes.Equal(reencoded, tc.wire) {
				t.Errorf("round trip = %x, want %x", reencoded, tc.wire)
			}
		})
	}
}

func TestEncodeFieldsMissingValue(t *testing.T) {
	_, err := EncodeFields([]Field{{Name: "Status", Type: U8}}, Args{})
	if err == nil {
		t.Fatal("expected error for missing field value")
	}
}

func TestEncodeFieldsWrongType(t *testing.T) {
	_, err := EncodeFields([]Field{{Name: "Status", Type: U8}}, Args{"Status": "not a byte"})
	if err == nil {
		t.Fatal("expected error for mistyped field value")
	}
}

func TestDecodeFieldsTruncated(t *testing.T) {
	fields := []Field{{Name: "NwkAddr", Type: NWKAddr}, {Name: "Status", Type: U8}}
	if _, err := DecodeFields(fields, []byte{0x34}); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

// Newer firmware appends fields the catalogue may not declare; trailing
// bytes must not fail the decode.
func TestDecodeFieldsIgnoresTrailing(t *testing.T) {
	fields := []Field{{Name: "Status", Type: U8}}
	args, err := DecodeFields(fields, []byte{0x00, 0xDE, 0xAD})
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}
	if args.Uint8("Status") != 0 {
		t.Errorf("Status = %d, want 0", args.Uint8("Status"))
	}
}

func TestCommandFrameEncodesPayload(t *testing.T) {
	f, err := AfDataRequest.Frame(Args{
		"DstAddr":     uint16(0x1234),
		"DstEndpoint": uint8(1),
		"SrcEndpoint": uint8(1),
		"ClusterId":   uint16(0x0006),
		"TransId":     uint8(0x42),
		"Options":     uint8(0),
		"Radius":      uint8(30),
		"Data":        []byte{0x01, 0x02},
	})
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if f.Subsystem != AF || f.Type != SREQ || f.ID != 0x01 {
		t.Errorf("frame header = %v", f)
	}
	want := []byte{0x34, 0x12, 1, 1, 0x06, 0x00, 0x42, 0, 30, 2, 0x01, 0x02}
	if !bytes.Equal(f.Data, want) {
		t.Errorf("payload = %x, want %x", f.Data, want)
	}
}

func TestLookupResolvesSRSPToSREQ(t *testing.T) {
	cmd := Lookup(SYS, SRSP, 0x01)
	if cmd != SysPing {
		t.Fatalf("Lookup(SYS, SRSP, 0x01) = %v, want SYS.PING", cmd)
	}
}

func TestDecodeFrameUnknownCommand(t *testing.T) {
	cmd, args, err := DecodeFrame(Frame{Subsystem: DEBUG, Type: AREQ, ID: 0x77})
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if cmd != nil || args != nil {
		t.Errorf("unknown frame should decode to nil command, got %v %v", cmd, args)
	}
}
