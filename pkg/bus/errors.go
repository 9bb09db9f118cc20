package bus

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/urmzd/znp/pkg/mt"
)

var (
	// ErrTimeout indicates a request deadline expired before a reply.
	ErrTimeout = errors.New("bus: request timed out")

	// ErrCancelled indicates the caller abandoned the request.
	ErrCancelled = errors.New("bus: request cancelled")

	// ErrDisconnected indicates the transport failed and the bus is
	// terminally down. A supervisor may reconnect by building a new bus.
	ErrDisconnected = errors.New("bus: disconnected")
)

// ProtocolError reports a firmware reply that violates the MT protocol,
// such as an SRSP that does not match the outstanding request or a payload
// that fails to decode. The bus logs these, surfaces them to the waiter,
// and keeps running.
type ProtocolError struct {
	Reason string
	Frame  mt.Frame
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("bus: protocol error: %s (frame %s %s[0x%02X] %s)",
		e.Reason, e.Frame.Type, e.Frame.Subsystem, e.Frame.ID, hex.EncodeToString(e.Frame.Data))
}

// CommandStatusError reports a firmware-returned non-success status for a
// catalogued command. The raw status is preserved for the caller.
type CommandStatusError struct {
	Command *mt.Command
	Status  mt.Status
}

func (e *CommandStatusError) Error() string {
	return fmt.Sprintf("%s: command failed: %s", e.Command.Name, e.Status)
}

// AsStatus extracts the firmware status from an error chain, if present.
func AsStatus(err error) (mt.Status, bool) {
	var cse *CommandStatusError
	if errors.As(err, &cse) {
		return cse.Status, true
	}
	return 0, false
}
