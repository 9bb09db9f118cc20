// Package bootloader speaks the CC2531 serial flash bootloader, a small
// protocol distinct from MT that shares only its outer framing. It reads
// and writes flash address ranges and verifies images by CRC32 before
// letting the firmware boot.
package bootloader

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/urmzd/znp/pkg/mt"
)

// Bootloader command ids. Responses set the high bit.
const (
	cmdWriteReq     = 0x01
	cmdReadReq      = 0x02
	cmdEnableReq    = 0x03
	cmdHandshakeReq = 0x04
	rspMask         = 0x80
)

// Bootloader status codes.
const (
	statusSuccess       = 0x00
	statusFailure       = 0x01
	statusInvalidCRC    = 0x02
	statusOutOfSequence = 0x05
)

const (
	// BlockSize is the flash transfer unit.
	BlockSize = 64

	// flashWordSize converts between byte and flash-word addresses.
	flashWordSize = 4

	// embeddedCRCOffset is where the image stores its own CRC32.
	embeddedCRCOffset = 0x90

	replyTimeout = 5 * time.Second
)

// CRCError reports an image whose checksums disagree.
type CRCError struct {
	Embedded uint32
	Trailing uint32
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("bootloader: embedded CRC 0x%08X does not match trailing checksum 0x%08X", e.Embedded, e.Trailing)
}

// SequenceError reports a reply for the wrong block.
type SequenceError struct {
	Want, Got uint16
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("bootloader: device answered block %d while writing block %d", e.Got, e.Want)
}

// imageCRC is the CRC32 of the image body (everything before the
// trailing word) with the embedded CRC field zeroed out.
func imageCRC(image []byte) uint32 {
	body := make([]byte, len(image)-4)
	copy(body, image[:len(image)-4])
	for i := 0; i < 4; i++ {
		body[embeddedCRCOffset+i] = 0
	}
	return crc32.ChecksumIEEE(body)
}

// ValidateFirmware checks an image's trailing checksum and the CRC32
// embedded in its header. Both must equal the body CRC; a disagreement
// refuses the flash.
func ValidateFirmware(image []byte) error {
	if len(image) < embeddedCRCOffset+8 {
		return fmt.Errorf("bootloader: image too short (%d bytes)", len(image))
	}
	sum := imageCRC(image)
	trailing := binary.LittleEndian.Uint32(image[len(image)-4:])
	embedded := binary.LittleEndian.Uint32(image[embeddedCRCOffset:])
	if embedded != sum || trailing != sum {
		return &CRCError{Embedded: embedded, Trailing: trailing}
	}
	return nil
}

// StampFirmware appends the trailing word and installs both checksums on
// an image body. Used by tests and by tooling that assembles images.
func StampFirmware(body []byte) []byte {
	out := make([]byte, len(body)+4)
	copy(out, body)
	sum := imageCRC(out)
	binary.LittleEndian.PutUint32(out[embeddedCRCOffset:], sum)
	binary.LittleEndian.PutUint32(out[len(body):], sum)
	return out
}

// Client drives the bootloader over an open serial stream.
type Client struct {
	tr  io.ReadWriter
	dec *mt.Decoder
	log zerolog.Logger
}

// New wraps a transport already connected to a device in bootloader mode.
func New(tr io.ReadWriter, log zerolog.Logger) *Client {
	return &Client{tr: tr, dec: mt.NewDecoder(), log: log}
}

// Handshake probes the bootloader until it answers or the context ends.
func (c *Client) Handshake(ctx context.Context) error {
	for {
		rsp, err := c.roundTrip(ctx, cmdHandshakeReq, nil)
		if err == nil && len(rsp) >= 1 && rsp[0] == statusSuccess {
			c.log.Info().Msg("Bootloader handshake complete")
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("bootloader: handshake: %w", ctx.Err())
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// ReadFirmware reads size bytes of flash starting at byte address 0.
func (c *Client) ReadFirmware(ctx context.Context, size int, progress func(done, total int)) ([]byte, error) {
	out := make([]byte, 0, size)
	for addr := 0; addr < size; addr += BlockSize {
		req := make([]byte, 2)
		binary.LittleEndian.PutUint16(req, uint16(addr/flashWordSize))
		rsp, err := c.roundTrip(ctx, cmdReadReq, req)
		if err != nil {
			return nil, err
		}
		if len(rsp) < 3+BlockSize {
			return nil, fmt.Errorf("bootloader: short read reply at 0x%06X", addr)
		}
		if rsp[0] != statusSuccess {
			return nil, fmt.Errorf("bootloader: read at 0x%06X failed with status 0x%02X", addr, rsp[0])
		}
		out = append(out, rsp[3:3+BlockSize]...)
		if progress != nil {
			progress(len(out), size)
		}
	}
	return out[:size], nil
}

// WriteFirmware validates the image, writes it block by block, and asks
// the bootloader to verify and enable it.
func (c *Client) WriteFirmware(ctx context.Context, image []byte, progress func(done, total int)) error {
	if err := ValidateFirmware(image); err != nil {
		return err
	}
	if len(image)%BlockSize != 0 {
		return fmt.Errorf("bootloader: image length %d is not a multiple of %d", len(image), BlockSize)
	}

	for addr := 0; addr < len(image); addr += BlockSize {
		block := uint16(addr / flashWordSize)
		req := make([]byte, 2+BlockSize)
		binary.LittleEndian.PutUint16(req, block)
		copy(req[2:], image[addr:addr+BlockSize])

		rsp, err := c.roundTrip(ctx, cmdWriteReq, req)
		if err != nil {
			return err
		}
		if len(rsp) < 1 || rsp[0] != statusSuccess {
			return fmt.Errorf("bootloader: write at 0x%06X failed with status 0x%02X", addr, rsp[0])
		}
		if len(rsp) >= 3 {
			if got := binary.LittleEndian.Uint16(rsp[1:3]); got != block {
				return &SequenceError{Want: block, Got: got}
			}
		}
		if progress != nil {
			progress(addr+BlockSize, len(image))
		}
	}

	// Enable runs the bootloader's own CRC pass over what was written.
	rsp, err := c.roundTrip(ctx, cmdEnableReq, nil)
	if err != nil {
		return err
	}
	if len(rsp) < 1 || rsp[0] != statusSuccess {
		return fmt.Errorf("bootloader: enable failed with status 0x%02X", rsp[0])
	}

	c.log.Info().Int("bytes", len(image)).Msg("Firmware written and verified")
	return nil
}

// roundTrip sends one request frame and reads the matching reply.
func (c *Client) roundTrip(ctx context.Context, cmd uint8, payload []byte) ([]byte, error) {
	frame := mt.Frame{Subsystem: mt.UBL, Type: mt.AREQ, ID: cmd, Data: payload}
	wire, err := frame.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := c.tr.Write(wire); err != nil {
		return nil, fmt.Errorf("bootloader: write: %w", err)
	}

	deadline := time.Now().Add(replyTimeout)
	buf := make([]byte, 128)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("bootloader: timed out waiting for reply to 0x%02X", cmd)
		}
		n, err := c.tr.Read(buf)
		if n > 0 {
			for _, f := range c.dec.Push(buf[:n]) {
				if f.Subsystem == mt.UBL && f.ID == cmd|rspMask {
					return f.Data, nil
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("bootloader: read: %w", err)
		}
	}
}
