// Package znptest provides an in-memory simulated ZNP coprocessor for
// driving the bus and driver layers in tests. The simulator sits on the
// far end of a duplex pipe, decodes MT frames, and answers through
// registered handlers; tests never touch real hardware.
package znptest

import (
	"io"
	"sync"

	"github.com/urmzd/znp/pkg/mt"
)

// Handler produces the frames the simulator emits in response to one
// decoded request frame. Returning nil answers nothing (a silent device).
type Handler func(req mt.Frame, args mt.Args) []mt.Frame

// Simulator is a scriptable ZNP on the device end of an in-memory pipe.
type Simulator struct {
	hostRead  *io.PipeReader // host reads responses from here
	hostWrite *io.PipeWriter // host writes requests to here
	devRead   *io.PipeReader
	devWrite  *io.PipeWriter

	mu       sync.Mutex
	handlers map[key]Handler
	sent     []mt.Frame // requests the host sent, in order

	closeOnce sync.Once
}

type key struct {
	sub mt.Subsystem
	typ mt.FrameType
	id  uint8
}

// New starts a simulator and returns it. The host side transport is
// obtained from Transport().
func New() *Simulator {
	hr, dw := io.Pipe()
	dr, hw := io.Pipe()
	s := &Simulator{
		hostRead:  hr,
		hostWrite: hw,
		devRead:   dr,
		devWrite:  dw,
		handlers:  map[key]Handler{},
	}
	go s.run()
	return s
}

// transport is the host-side duplex endpoint.
type transport struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (t *transport) Read(p []byte) (int, error)  { return t.r.Read(p) }
func (t *transport) Write(p []byte) (int, error) { return t.w.Write(p) }
func (t *transport) Close() error {
	_ = t.r.Close()
	return t.w.Close()
}

// Transport returns the host-side byte stream to hand to the bus.
func (s *Simulator) Transport() io.ReadWriteCloser {
	return &transport{r: s.hostRead, w: s.hostWrite}
}

// Handle registers the handler for a command's request frames.
func (s *Simulator) Handle(cmd *mt.Command, h Handler) {
	s.mu.Lock()
	s.handlers[key{cmd.Subsystem, cmd.Type, cmd.ID}] = h
	s.mu.Unlock()
}

// Reply registers a fixed SRSP for an SREQ command.
func (s *Simulator) Reply(cmd *mt.Command, rsp mt.Args) {
	s.Handle(cmd, func(mt.Frame, mt.Args) []mt.Frame {
		return []mt.Frame{SRSP(cmd, rsp)}
	})
}

// Silent registers a handler that swallows the request without answering.
func (s *Simulator) Silent(cmd *mt.Command) {
	s.Handle(cmd, func(mt.Frame, mt.Args) []mt.Frame { return nil })
}

// Sent returns a copy of every request frame the host has sent so far.
func (s *Simulator) Sent() []mt.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mt.Frame, len(s.sent))
	copy(out, s.sent)
	return out
}

// SentTo returns the request frames sent for one command.
func (s *Simulator) SentTo(cmd *mt.Command) []mt.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []mt.Frame
	for _, f := range s.sent {
		if f.Subsystem == cmd.Subsystem && f.Type == cmd.Type && f.ID == cmd.ID {
			out = append(out, f)
		}
	}
	return out
}

// Inject pushes an unsolicited frame to the host, bypassing handlers.
func (s *Simulator) Inject(f mt.Frame) {
	wire, err := f.Encode()
	if err != nil {
		panic("znptest: " + err.Error())
	}
	_, _ = s.devWrite.Write(wire)
}

// InjectAREQ encodes and pushes an unsolicited indication.
func (s *Simulator) InjectAREQ(cmd *mt.Command, args mt.Args) {
	f, err := cmd.Frame(args)
	if err != nil {
		panic("znptest: " + err.Error())
	}
	s.Inject(f)
}

// InjectRaw writes raw bytes to the host, for corrupt-stream tests.
func (s *Simulator) InjectRaw(p []byte) {
	_, _ = s.devWrite.Write(p)
}

// Close tears down both pipe halves.
func (s *Simulator) Close() {
	s.closeOnce.Do(func() {
		_ = s.devRead.Close()
		_ = s.devWrite.Close()
	})
}

func (s *Simulator) run() {
	dec := mt.NewDecoder()
	buf := make([]byte, 256)
	for {
		n, err := s.devRead.Read(buf)
		if n > 0 {
			for _, f := range dec.Push(buf[:n]) {
				s.handleFrame(f)
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Simulator) handleFrame(f mt.Frame) {
	var args mt.Args
	if cmd := mt.Lookup(f.Subsystem, f.Type, f.ID); cmd != nil {
		args, _ = mt.DecodeFields(cmd.Req, f.Data)
	}

	s.mu.Lock()
	s.sent = append(s.sent, f)
	h := s.handlers[key{f.Subsystem, f.Type, f.ID}]
	s.mu.Unlock()

	if h == nil {
		return
	}
	for _, rsp := range h(f, args) {
		s.Inject(rsp)
	}
}

// SRSP builds the synchronous response frame for a command.
func SRSP(cmd *mt.Command, args mt.Args) mt.Frame {
	data, err := mt.EncodeFields(cmd.Rsp, args)
	if err != nil {
		panic("znptest: " + err.Error())
	}
	return mt.Frame{Subsystem: cmd.Subsystem, Type: mt.SRSP, ID: cmd.ID, Data: data}
}

// AREQ builds an indication frame for a command.
func AREQ(cmd *mt.Command, args mt.Args) mt.Frame {
	f, err := cmd.Frame(args)
	if err != nil {
		panic("znptest: " + err.Error())
	}
	return f
}
