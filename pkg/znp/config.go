package znp

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/urmzd/znp/pkg/serial"
)

// LEDMode controls the dongle's status LED via UTIL.LED_CONTROL.
type LEDMode uint8

const (
	LEDOff    LEDMode = 0
	LEDOn     LEDMode = 1
	LEDBlink  LEDMode = 2
	LEDFlash  LEDMode = 3
	LEDToggle LEDMode = 4
)

// TX power bounds accepted by SYS.SET_TX_POWER; individual chips support
// a subset and clamp internally.
const (
	MinTXPower = -22
	MaxTXPower = 19
)

// Config holds everything needed to open and run a coordinator.
type Config struct {
	// Port is the serial device path.
	Port string

	// BaudRate defaults to 115200.
	BaudRate int

	// TXPower, when non-nil, is written during configuration. Must be
	// within [MinTXPower, MaxTXPower].
	TXPower *int

	// LEDMode is applied to LED 3 during configuration.
	LEDMode LEDMode

	// DisableBootloaderSkip turns off the RTS/DTR pin dance that is
	// otherwise applied on open.
	DisableBootloaderSkip bool

	// ConnectRTSPinStates and ConnectDTRPinStates override the default
	// bootloader-skip pin sequences.
	ConnectRTSPinStates []serial.PinState
	ConnectDTRPinStates []serial.PinState

	// SREQTimeout bounds synchronous requests. Default 15 s.
	SREQTimeout time.Duration

	// ARSPTimeout bounds async callback waits. Default 30 s.
	ARSPTimeout time.Duration

	// AutoReconnectRetryDelay spaces reconnect attempts after a
	// transport loss. Zero disables automatic reconnection.
	AutoReconnectRetryDelay time.Duration

	// MaxConcurrentRequests bounds in-flight data requests. Zero uses
	// autoConcurrentRequests (16) whatever the coprocessor.
	MaxConcurrentRequests int

	// WatchdogInterval spaces the bus keepalive pings. Zero disables.
	WatchdogInterval time.Duration

	// Logger receives structured logs. Defaults to a disabled logger.
	Logger *zerolog.Logger
}

// autoConcurrentRequests matches the transmit buffer depth of the
// CC2531/CC26x2 coprocessors.
const autoConcurrentRequests = 16

func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = 115200
	}
	if c.SREQTimeout == 0 {
		c.SREQTimeout = 15 * time.Second
	}
	if c.ARSPTimeout == 0 {
		c.ARSPTimeout = 30 * time.Second
	}
	if c.MaxConcurrentRequests == 0 {
		c.MaxConcurrentRequests = autoConcurrentRequests
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c
}

func (c Config) serialConfig() serial.Config {
	return serial.Config{
		Port:           c.Port,
		BaudRate:       c.BaudRate,
		SkipBootloader: !c.DisableBootloaderSkip,
		RTSPinStates:   c.ConnectRTSPinStates,
		DTRPinStates:   c.ConnectDTRPinStates,
	}
}
