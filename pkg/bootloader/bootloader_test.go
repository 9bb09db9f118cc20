package bootloader

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/urmzd/znp/pkg/mt"
)

func testImage(t *testing.T, blocks int) []byte {
	t.Helper()
	body := make([]byte, blocks*BlockSize-4)
	for i := range body {
		body[i] = byte(i * 7)
	}
	return StampFirmware(body)
}

func TestValidateFirmware(t *testing.T) {
	img := testImage(t, 8)
	if err := ValidateFirmware(img); err != nil {
		t.Fatalf("valid image rejected: %v", err)
	}

	corrupt := bytes.Clone(img)
	corrupt[200] ^= 0xFF
	err := ValidateFirmware(corrupt)
	if _, ok := err.(*CRCError); !ok {
		t.Fatalf("want CRCError for corrupted image, got %v", err)
	}

	// Mismatched embedded CRC alone must also refuse.
	tampered := bytes.Clone(img)
	binary.LittleEndian.PutUint32(tampered[embeddedCRCOffset:], 0xDEADBEEF)
	if _, ok := ValidateFirmware(tampered).(*CRCError); !ok {
		t.Fatal("want CRCError for tampered embedded CRC")
	}

	if err := ValidateFirmware(make([]byte, 16)); err == nil {
		t.Fatal("want error for truncated image")
	}
}

// fakeBootloader emulates the device side of the flash protocol over an
// in-memory pipe.
type fakeBootloader struct {
	mu    sync.Mutex
	flash []byte
}

func (f *fakeBootloader) serve(t *testing.T, r io.Reader, w io.Writer) {
	dec := mt.NewDecoder()
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, fr := range dec.Push(buf[:n]) {
				f.handle(t, fr, w)
			}
		}
		if err != nil {
			return
		}
	}
}

func (f *fakeBootloader) handle(t *testing.T, fr mt.Frame, w io.Writer) {
	reply := func(id uint8, data []byte) {
		out := mt.Frame{Subsystem: mt.UBL, Type: mt.AREQ, ID: id | rspMask, Data: data}
		wire, err := out.Encode()
		if err != nil {
			t.Errorf("encode reply: %v", err)
			return
		}
		_, _ = w.Write(wire)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch fr.ID {
	case cmdHandshakeReq:
		reply(cmdHandshakeReq, []byte{statusSuccess})
	case cmdWriteReq:
		block := binary.LittleEndian.Uint16(fr.Data)
		addr := int(block) * flashWordSize
		if need := addr + BlockSize; len(f.flash) < need {
			f.flash = append(f.flash, make([]byte, need-len(f.flash))...)
		}
		copy(f.flash[addr:], fr.Data[2:2+BlockSize])
		rsp := make([]byte, 3)
		rsp[0] = statusSuccess
		binary.LittleEndian.PutUint16(rsp[1:], block)
		reply(cmdWriteReq, rsp)
	case cmdReadReq:
		block := binary.LittleEndian.Uint16(fr.Data)
		addr := int(block) * flashWordSize
		rsp := make([]byte, 3+BlockSize)
		rsp[0] = statusSuccess
		binary.LittleEndian.PutUint16(rsp[1:], block)
		copy(rsp[3:], f.flash[addr:addr+BlockSize])
		reply(cmdReadReq, rsp)
	case cmdEnableReq:
		reply(cmdEnableReq, []byte{statusSuccess})
	}
}

func TestWriteThenReadFirmware(t *testing.T) {
	hostR, devW := io.Pipe()
	devR, hostW := io.Pipe()
	defer hostW.Close()
	defer devW.Close()

	fake := &fakeBootloader{}
	go fake.serve(t, devR, devW)

	c := New(struct {
		io.Reader
		io.Writer
	}{hostR, hostW}, zerolog.Nop())

	ctx := context.Background()
	if err := c.Handshake(ctx); err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	img := testImage(t, 8)
	var wrote int
	if err := c.WriteFirmware(ctx, img, func(done, total int) { wrote = done }); err != nil {
		t.Fatalf("WriteFirmware: %v", err)
	}
	if wrote != len(img) {
		t.Errorf("progress reported %d, want %d", wrote, len(img))
	}

	back, err := c.ReadFirmware(ctx, len(img), nil)
	if err != nil {
		t.Fatalf("ReadFirmware: %v", err)
	}
	if !bytes.Equal(back, img) {
		t.Error("read back image differs from written image")
	}
}

func TestWriteRefusesBadCRC(t *testing.T) {
	c := New(struct {
		io.Reader
		io.Writer
	}{bytes.NewReader(nil), io.Discard}, zerolog.Nop())

	img := testImage(t, 8)
	img[100] ^= 0x01
	err := c.WriteFirmware(context.Background(), img, nil)
	if _, ok := err.(*CRCError); !ok {
		t.Fatalf("want CRCError, got %v", err)
	}
}
