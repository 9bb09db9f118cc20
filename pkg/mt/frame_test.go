package mt

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"empty payload", Frame{Subsystem: SYS, Type: SREQ, ID: 0x01}},
		{"ping response", Frame{Subsystem: SYS, Type: SRSP, ID: 0x01, Data: []byte{0x79, 0x07}}},
		{"areq indication", Frame{Subsystem: ZDO, Type: AREQ, ID: 0xC0, Data: []byte{0x09}}},
		{"max payload", Frame{Subsystem: AF, Type: SREQ, ID: 0x01, Data: bytes.Repeat([]byte{0xA5}, MaxPayload)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wire, err := tc.frame.Encode()
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}

			d := NewDecoder()
			frames := d.Push(wire)
			if len(frames) != 1 {
				t.Fatalf("got %d frames, want 1", len(frames))
			}
			got := frames[0]
			if got.Subsystem != tc.frame.Subsystem || got.Type != tc.frame.Type || got.ID != tc.frame.ID {
				t.Errorf("header = %v, want %v", got, tc.frame)
			}
			if !bytes.Equal(got.Data, tc.frame.Data) {
				t.Errorf("data = %x, want %x", got.Data, tc.frame.Data)
			}
		})
	}
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	f := Frame{Subsystem: AF, Type: SREQ, ID: 0x01, Data: make([]byte, MaxPayload+1)}
	if _, err := f.Encode(); err == nil {
		t.Fatal("expected error for oversized payload")
	}
}

// Feeding the stream one byte at a time must produce exactly the same
// frames as feeding it in one chunk.
func TestByteAtATimeEquivalence(t *testing.T) {
	var stream []byte
	want := []Frame{
		{Subsystem: SYS, Type: SRSP, ID: 0x02, Data: []byte{2, 1, 2, 7, 1}},
		{Subsystem: AF, Type: AREQ, ID: 0x81, Data: bytes.Repeat([]byte{0x11}, 30)},
		{Subsystem: ZDO, Type: AREQ, ID: 0xC1, Data: []byte{0x34, 0x12, 0x34, 0x12, 1, 2, 3, 4, 5, 6, 7, 8, 0x8E}},
	}
	stream = append(stream, 0x00, 0x13) // leading garbage
	for _, f := range want {
		wire, err := f.Encode()
		if err != nil {
			t.Fatal(err)
		}
		stream = append(stream, wire...)
		stream = append(stream, 0xAB) // inter-frame noise
	}

	all := NewDecoder().Push(stream)

	single := NewDecoder()
	var oneAtATime []Frame
	for _, b := range stream {
		oneAtATime = append(oneAtATime, single.Push([]byte{b})...)
	}

	if len(all) != len(want) || len(oneAtATime) != len(want) {
		t.Fatalf("got %d and %d frames, want %d", len(all), len(oneAtATime), len(want))
	}
	for i := range want {
		if !bytes.Equal(all[i].Data, oneAtATime[i].Data) || all[i].ID != oneAtATime[i].ID {
			t.Errorf("frame %d differs between feeding modes", i)
		}
	}
}

// Corrupting any single byte after SOF must never yield a frame with
// wrong contents: either the frame is dropped or it decodes identically.
func TestSingleByteCorruption(t *testing.T) {
	orig := Frame{Subsystem: ZDO, Type: AREQ, ID: 0xC1, Data: []byte{0x01, 0x02, 0x03, 0x04, 0x05}}
	wire, err := orig.Encode()
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(wire); i++ {
		for _, flip := range []byte{0x01, 0x80, 0xFF} {
			mutated := bytes.Clone(wire)
			mutated[i] ^= flip

			frames := NewDecoder().Push(mutated)
			for _, f := range frames {
				same := f.Subsystem == orig.Subsystem && f.Type == orig.Type &&
					f.ID == orig.ID && bytes.Equal(f.Data, orig.Data)
				if !same {
					t.Fatalf("corrupting byte %d (flip %02x) produced a different frame: %v", i, flip, f)
				}
			}
		}
	}
}

func TestBadFCSIsDroppedAndCounted(t *testing.T) {
	good1, _ := Frame{Subsystem: SYS, Type: SRSP, ID: 0x01, Data: []byte{0x79, 0x07}}.Encode()
	good2, _ := Frame{Subsystem: ZDO, Type: AREQ, ID: 0xC0, Data: []byte{0x09}}.Encode()

	bad := bytes.Clone(good1)
	bad[len(bad)-1] ^= 0xFF

	d := NewDecoder()
	var stream []byte
	stream = append(stream, good1...)
	stream = append(stream, bad...)
	stream = append(stream, good2...)

	frames := d.Push(stream)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].ID != 0x01 || frames[1].ID != 0xC0 {
		t.Errorf("wrong frames survived: %v", frames)
	}
	if got := d.Stats().BadFCS; got != 1 {
		t.Errorf("BadFCS = %d, want 1", got)
	}
}

func TestOversizedLengthResyncs(t *testing.T) {
	good, _ := Frame{Subsystem: SYS, Type: SRSP, ID: 0x01, Data: []byte{0x79, 0x07}}.Encode()

	d := NewDecoder()
	stream := []byte{SOF, 0xFB} // LEN 251 > max
	stream = append(stream, good...)

	frames := d.Push(stream)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if got := d.Stats().BadLength; got != 1 {
		t.Errorf("BadLength = %d, want 1", got)
	}
}

func TestDecoderResyncsOnGarbage(t *testing.T) {
	good, _ := Frame{Subsystem: UTIL, Type: SRSP, ID: 0x09, Data: []byte{0x10, 0x00, 0x00, 0x00}}.Encode()

	stream := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00}
	stream = append(stream, good...)

	frames := NewDecoder().Push(stream)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Subsystem != UTIL {
		t.Errorf("subsystem = %v, want UTIL", frames[0].Subsystem)
	}
}
