package mt

import (
	"encoding/hex"
	"fmt"
)

const (
	// SOF is the start-of-frame delimiter.
	SOF = 0xFE

	// MaxPayload is the largest DATA length the wire format allows.
	MaxPayload = 250

	headerLen = 3 // LEN + CMD0 + CMD1
)

// Frame is a single MT frame, without SOF and FCS.
type Frame struct {
	Subsystem Subsystem
	Type      FrameType
	ID        uint8
	Data      []byte
}

// Cmd0 packs the frame type and subsystem into the first command byte.
func (f Frame) Cmd0() byte {
	return byte(f.Type)<<5 | byte(f.Subsystem)&0x1F
}

func (f Frame) String() string {
	return fmt.Sprintf("%s %s[0x%02X] %s", f.Type, f.Subsystem, f.ID, hex.EncodeToString(f.Data))
}

// Encode serialises the frame as SOF | LEN | CMD0 | CMD1 | DATA | FCS.
func (f Frame) Encode() ([]byte, error) {
	if len(f.Data) > MaxPayload {
		return nil, fmt.Errorf("mt: payload %d bytes exceeds %d", len(f.Data), MaxPayload)
	}
	buf := make([]byte, 0, len(f.Data)+5)
	buf = append(buf, SOF, byte(len(f.Data)), f.Cmd0(), f.ID)
	buf = append(buf, f.Data...)
	buf = append(buf, fcs(buf[1:]))
	return buf, nil
}

// fcs XORs every byte from LEN through the last DATA byte.
func fcs(b []byte) byte {
	var x byte
	for _, c := range b {
		x ^= c
	}
	return x
}

type decodeState int

const (
	seekSOF decodeState = iota
	readLen
	readHdr1
	readHdr2
	readData
	readFCS
)

// DecoderStats counts frames the decoder had to throw away.
type DecoderStats struct {
	BadFCS    uint64
	BadLength uint64
	Frames    uint64
}

// Decoder is a streaming MT frame parser. Feed it arbitrary byte chunks;
// it resynchronises on garbage and yields only frames with a valid FCS.
// All state is per-stream, so byte-at-a-time and all-at-once feeding
// produce identical frame sequences.
type Decoder struct {
	state  decodeState
	length int
	cmd0   byte
	cmd1   byte
	data   []byte
	stats  DecoderStats
}

// NewDecoder returns a decoder in the SEEK_SOF state.
func NewDecoder() *Decoder {
	return &Decoder{state: seekSOF}
}

// Stats returns a copy of the running counters.
func (d *Decoder) Stats() DecoderStats {
	return d.stats
}

// Push consumes a chunk of stream bytes and returns the frames completed
// by it, in wire order.
func (d *Decoder) Push(p []byte) []Frame {
	var frames []Frame
	for _, b := range p {
		if f := d.feed(b); f != nil {
			frames = append(frames, *f)
		}
	}
	return frames
}

func (d *Decoder) feed(b byte) *Frame {
	switch d.state {
	case seekSOF:
		if b == SOF {
			d.state = readLen
		}
	case readLen:
		if int(b) > MaxPayload {
			d.stats.BadLength++
			d.state = seekSOF
			return nil
		}
		d.length = int(b)
		d.data = d.data[:0]
		d.state = readHdr1
	case readHdr1:
		d.cmd0 = b
		d.state = readHdr2
	case readHdr2:
		d.cmd1 = b
		if d.length == 0 {
			d.state = readFCS
		} else {
			d.state = readData
		}
	case readData:
		d.data = append(d.data, b)
		if len(d.data) == d.length {
			d.state = readFCS
		}
	case readFCS:
		d.state = seekSOF
		want := byte(d.length) ^ d.cmd0 ^ d.cmd1
		for _, c := range d.data {
			want ^= c
		}
		if b != want {
			d.stats.BadFCS++
			return nil
		}
		d.stats.Frames++
		data := make([]byte, len(d.data))
		copy(data, d.data)
		return &Frame{
			Subsystem: Subsystem(d.cmd0 & 0x1F),
			Type:      FrameType(d.cmd0 >> 5),
			ID:        d.cmd1,
			Data:      data,
		}
	}
	return nil
}
