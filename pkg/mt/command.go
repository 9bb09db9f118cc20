package mt

import "fmt"

// Command describes one catalogued MT command: how to serialise its
// request and how to parse its response or indication payload. The
// catalogue is pure data; adding a command is a table entry, never logic.
type Command struct {
	Subsystem Subsystem
	Type      FrameType // SREQ for synchronous commands, AREQ for async requests and indications
	ID        uint8
	Name      string

	// Req is the request payload layout. For device-originated AREQ
	// indications it is the indication payload layout.
	Req []Field

	// Rsp is the SRSP payload layout; nil for AREQ commands.
	Rsp []Field

	// Callback names the AREQ indication that completes this request,
	// when the protocol pairs them (AF.DATA_REQUEST -> AF.DATA_CONFIRM,
	// ZDO.ACTIVE_EP_REQ -> ZDO.ACTIVE_EP_RSP).
	Callback *Command
}

func (c *Command) String() string {
	return c.Name
}

// Frame serialises args into an outgoing frame for this command.
func (c *Command) Frame(args Args) (Frame, error) {
	data, err := EncodeFields(c.Req, args)
	if err != nil {
		return Frame{}, fmt.Errorf("%s: %w", c.Name, err)
	}
	if len(data) > MaxPayload {
		return Frame{}, fmt.Errorf("%s: payload %d bytes exceeds %d", c.Name, len(data), MaxPayload)
	}
	return Frame{Subsystem: c.Subsystem, Type: c.Type, ID: c.ID, Data: data}, nil
}

type cmdKey struct {
	sub Subsystem
	typ FrameType
	id  uint8
}

var registry = map[cmdKey]*Command{}

func register(cmds ...*Command) {
	for _, c := range cmds {
		key := cmdKey{c.Subsystem, c.Type, c.ID}
		if _, dup := registry[key]; dup {
			panic(fmt.Sprintf("mt: duplicate command %s %s 0x%02X", c.Subsystem, c.Type, c.ID))
		}
		registry[key] = c
	}
}

// Lookup finds the catalogued command for a (subsystem, type, id) triple.
// SRSP frames resolve to their SREQ command. Returns nil for unknown
// commands; callers surface those as opaque frames.
func Lookup(sub Subsystem, typ FrameType, id uint8) *Command {
	if typ == SRSP {
		typ = SREQ
	}
	return registry[cmdKey{sub, typ, id}]
}

// DecodeFrame parses an incoming frame's payload against the catalogue.
// The command is nil when the frame is unknown; args is nil in that case.
func DecodeFrame(f Frame) (*Command, Args, error) {
	cmd := Lookup(f.Subsystem, f.Type, f.ID)
	if cmd == nil {
		return nil, nil, nil
	}
	layout := cmd.Req
	if f.Type == SRSP {
		layout = cmd.Rsp
	}
	args, err := DecodeFields(layout, f.Data)
	if err != nil {
		return cmd, nil, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return cmd, args, nil
}
