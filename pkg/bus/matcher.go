package bus

import (
	"bytes"

	"github.com/urmzd/znp/pkg/mt"
)

// Indication is an incoming AREQ frame as delivered to waiters and
// subscribers. Command and Args are nil for frames the catalogue does not
// know; the raw frame is always present.
type Indication struct {
	Command *mt.Command
	Args    mt.Args
	Frame   mt.Frame
}

// Matcher selects indications. A zero Matcher matches every AREQ,
// including unknown frames. A Matcher with a Command matches only that
// command, further constrained by any Fields values; field constraints
// require a decodable (catalogued) frame.
type Matcher struct {
	Command *mt.Command
	Fields  mt.Args
}

// MatchCommand matches every indication of the given command.
func MatchCommand(cmd *mt.Command) Matcher {
	return Matcher{Command: cmd}
}

// MatchFields matches indications of the command whose named fields carry
// exactly the given values.
func MatchFields(cmd *mt.Command, fields mt.Args) Matcher {
	return Matcher{Command: cmd, Fields: fields}
}

func (m Matcher) matches(ind Indication) bool {
	if m.Command == nil {
		return len(m.Fields) == 0 || m.fieldsMatch(ind.Args)
	}
	if ind.Command != m.Command {
		return false
	}
	return m.fieldsMatch(ind.Args)
}

func (m Matcher) fieldsMatch(args mt.Args) bool {
	if len(m.Fields) == 0 {
		return true
	}
	if args == nil {
		return false
	}
	for name, want := range m.Fields {
		got, ok := args[name]
		if !ok || !valueEqual(got, want) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	return a == b
}
