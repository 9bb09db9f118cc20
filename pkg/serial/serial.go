// Package serial owns the UART connection to the ZNP coprocessor. It
// presents the radio as an opaque byte stream with the pin control needed
// to keep CC2531-class dongles out of their serial bootloader.
package serial

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

// PinState is one step of an RTS or DTR toggle sequence applied on open.
type PinState bool

const (
	PinLow  PinState = false
	PinHigh PinState = true
)

// Config describes how to open the port.
type Config struct {
	// Port is the device path, e.g. /dev/ttyUSB0.
	Port string

	// BaudRate defaults to 115200. The link is always 8N1.
	BaudRate int

	// SkipBootloader applies the RTS/DTR pin dance that keeps the
	// CC2531 bootloader from hijacking the link on open.
	SkipBootloader bool

	// RTSPinStates and DTRPinStates override the default skip sequences.
	RTSPinStates []PinState
	DTRPinStates []PinState

	// PinStepDelay is the pause between pin sequence steps.
	PinStepDelay time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaudRate == 0 {
		out.BaudRate = 115200
	}
	if out.RTSPinStates == nil {
		out.RTSPinStates = []PinState{PinLow, PinHigh, PinLow}
	}
	if out.DTRPinStates == nil {
		out.DTRPinStates = []PinState{PinLow, PinLow, PinLow}
	}
	if out.PinStepDelay == 0 {
		out.PinStepDelay = 100 * time.Millisecond
	}
	return out
}

// Port wraps the serial connection to the ZNP dongle. Reads are owned by a
// single reader; writes are serialised so frames hit the wire atomically.
type Port struct {
	port serial.Port
	mu   sync.Mutex
	log  zerolog.Logger
}

// Open opens the serial port 8N1 and applies the bootloader-skip pin
// sequences when configured.
func Open(cfg Config, log zerolog.Logger) (*Port, error) {
	c := cfg.withDefaults()

	mode := &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(c.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", c.Port, err)
	}

	p := &Port{port: port, log: log}

	if c.SkipBootloader {
		if err := p.applyPinSequences(c); err != nil {
			_ = port.Close()
			return nil, err
		}
	}

	log.Info().Str("port", c.Port).Int("baud", c.BaudRate).Msg("Serial port opened")

	return p, nil
}

// applyPinSequences toggles RTS and DTR in lockstep. Both sequences must
// be the same length; steps are spaced by PinStepDelay.
func (p *Port) applyPinSequences(c Config) error {
	if len(c.RTSPinStates) != len(c.DTRPinStates) {
		return fmt.Errorf("serial: RTS sequence has %d steps, DTR has %d", len(c.RTSPinStates), len(c.DTRPinStates))
	}
	for i := range c.RTSPinStates {
		if err := p.port.SetRTS(bool(c.RTSPinStates[i])); err != nil {
			return fmt.Errorf("set RTS: %w", err)
		}
		if err := p.port.SetDTR(bool(c.DTRPinStates[i])); err != nil {
			return fmt.Errorf("set DTR: %w", err)
		}
		time.Sleep(c.PinStepDelay)
	}
	p.log.Debug().Int("steps", len(c.RTSPinStates)).Msg("Bootloader skip pin sequence applied")
	return nil
}

// Write sends raw bytes to the serial port.
func (p *Port) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port.Write(data)
}

// Read reads raw bytes from the serial port.
func (p *Port) Read(buf []byte) (int, error) {
	return p.port.Read(buf)
}

// Close closes the serial port.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port.Close()
}

var _ io.ReadWriteCloser = (*Port)(nil)
