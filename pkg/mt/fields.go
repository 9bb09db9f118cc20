package mt

import (
	"encoding/binary"
	"fmt"
)

// FieldType enumerates the primitive wire types command payloads are built
// from. All multi-byte integers are little-endian.
type FieldType uint8

const (
	U8 FieldType = iota
	U16
	U32
	U64
	I8
	I16
	I32
	Bool8
	IEEE        // 64-bit IEEE address, little-endian
	NWKAddr     // 16-bit network address, little-endian
	ChannelMask // 32-bit channel bitmap
	ShortBytes  // u8 length prefix + bytes
	LongBytes   // u16 length prefix + bytes
	FixedBytes  // exactly Field.Size bytes
	RestBytes   // everything to the end of the payload
	StructList  // u8 count prefix + repeated Field.Struct layouts
)

// Field is one typed entry in a command's payload layout.
type Field struct {
	Name   string
	Type   FieldType
	Size   int     // FixedBytes only
	Struct []Field // StructList element layout
}

// Args carries field values keyed by field name. Integer values use the
// exact Go type the field declares (uint8 for U8, and so on); byte fields
// use []byte, struct lists use []Args.
type Args map[string]any

// Uint8 returns the named field as a uint8, or 0 if absent.
func (a Args) Uint8(name string) uint8 {
	v, _ := a[name].(uint8)
	return v
}

// Uint16 returns the named field as a uint16, or 0 if absent.
func (a Args) Uint16(name string) uint16 {
	v, _ := a[name].(uint16)
	return v
}

// Uint32 returns the named field as a uint32, or 0 if absent.
func (a Args) Uint32(name string) uint32 {
	v, _ := a[name].(uint32)
	return v
}

// Uint64 returns the named field as a uint64, or 0 if absent.
func (a Args) Uint64(name string) uint64 {
	v, _ := a[name].(uint64)
	return v
}

// Bytes returns the named field as a byte slice, or nil if absent.
func (a Args) Bytes(name string) []byte {
	v, _ := a[name].([]byte)
	return v
}

// Bool returns the named field as a bool, or false if absent.
func (a Args) Bool(name string) bool {
	v, _ := a[name].(bool)
	return v
}

// List returns the named struct-list field, or nil if absent.
func (a Args) List(name string) []Args {
	v, _ := a[name].([]Args)
	return v
}

// Status returns the conventional "Status" field.
func (a Args) Status() Status {
	return Status(a.Uint8("Status"))
}

// FieldError reports a payload that could not be encoded or decoded
// against its declared layout.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("mt: field %q: %s", e.Field, e.Reason)
}

// EncodeFields serialises args against the layout, in declaration order.
func EncodeFields(fields []Field, args Args) ([]byte, error) {
	buf := make([]byte, 0, 32)
	return appendFields(buf, fields, args)
}

func appendFields(buf []byte, fields []Field, args Args) ([]byte, error) {
	for _, f := range fields {
		v, ok := args[f.Name]
		if !ok {
			return nil, &FieldError{f.Name, "missing value"}
		}
		var err error
		buf, err = appendValue(buf, f, v)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func appendValue(buf []byte, f Field, v any) ([]byte, error) {
	switch f.Type {
	case U8:
		n, ok := v.(uint8)
		if !ok {
			return nil, typeErr(f, v)
		}
		return append(buf, n), nil
	case I8:
		n, ok := v.(int8)
		if !ok {
			return nil, typeErr(f, v)
		}
		return append(buf, byte(n)), nil
	case U16, NWKAddr:
		n, ok := v.(uint16)
		if !ok {
			return nil, typeErr(f, v)
		}
		return binary.LittleEndian.AppendUint16(buf, n), nil
	case I16:
		n, ok := v.(int16)
		if !ok {
			return nil, typeErr(f, v)
		}
		return binary.LittleEndian.AppendUint16(buf, uint16(n)), nil
	case U32, ChannelMask:
		n, ok := v.(uint32)
		if !ok {
			return nil, typeErr(f, v)
		}
		return binary.LittleEndian.AppendUint32(buf, n), nil
	case I32:
		n, ok := v.(int32)
		if !ok {
			return nil, typeErr(f, v)
		}
		return binary.LittleEndian.AppendUint32(buf, uint32(n)), nil
	case U64, IEEE:
		n, ok := v.(uint64)
		if !ok {
			return nil, typeErr(f, v)
		}
		return binary.LittleEndian.AppendUint64(buf, n), nil
	case Bool8:
		b, ok := v.(bool)
		if !ok {
			return nil, typeErr(f, v)
		}
		if b {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case ShortBytes:
		p, ok := v.([]byte)
		if !ok {
			return nil, typeErr(f, v)
		}
		if len(p) > 0xFF {
			return nil, &FieldError{f.Name, fmt.Sprintf("%d bytes exceeds u8 length prefix", len(p))}
		}
		buf = append(buf, byte(len(p)))
		return append(buf, p...), nil
	case LongBytes:
		p, ok := v.([]byte)
		if !ok {
			return nil, typeErr(f, v)
		}
		if len(p) > 0xFFFF {
			return nil, &FieldError{f.Name, "too long for u16 length prefix"}
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p)))
		return append(buf, p...), nil
	case FixedBytes:
		p, ok := v.([]byte)
		if !ok {
			return nil, typeErr(f, v)
		}
		if len(p) != f.Size {
			return nil, &FieldError{f.Name, fmt.Sprintf("want %d bytes, got %d", f.Size, len(p))}
		}
		return append(buf, p...), nil
	case RestBytes:
		p, ok := v.([]byte)
		if !ok {
			return nil, typeErr(f, v)
		}
		return append(buf, p...), nil
	case StructList:
		items, ok := v.([]Args)
		if !ok {
			return nil, typeErr(f, v)
		}
		if len(items) > 0xFF {
			return nil, &FieldError{f.Name, "too many entries for u8 count"}
		}
		buf = append(buf, byte(len(items)))
		for _, item := range items {
			var err error
			buf, err = appendFields(buf, f.Struct, item)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil
	}
	return nil, &FieldError{f.Name, fmt.Sprintf("unknown field type %d", f.Type)}
}

func typeErr(f Field, v any) error {
	return &FieldError{f.Name, fmt.Sprintf("unexpected value type %T", v)}
}

// DecodeFields parses a payload against the layout. Truncated payloads are
// an error; trailing bytes beyond the declared layout are ignored, as newer
// firmware appends fields older catalogues do not know.
func DecodeFields(fields []Field, data []byte) (Args, error) {
	args := make(Args, len(fields))
	_, err := decodeInto(args, fields, data)
	if err != nil {
		return nil, err
	}
	return args, nil
}

func decodeInto(args Args, fields []Field, data []byte) (int, error) {
	off := 0
	for _, f := range fields {
		n, v, err := decodeValue(f, data[off:])
		if err != nil {
			return off, err
		}
		args[f.Name] = v
		off += n
	}
	return off, nil
}

func decodeValue(f Field, data []byte) (int, any, error) {
	need := func(n int) error {
		if len(data) < n {
			return &FieldError{f.Name, fmt.Sprintf("truncated: need %d bytes, have %d", n, len(data))}
		}
		return nil
	}
	switch f.Type {
	case U8:
		if err := need(1); err != nil {
			return 0, nil, err
		}
		return 1, data[0], nil
	case I8:
		if err := need(1); err != nil {
			return 0, nil, err
		}
		return 1, int8(data[0]), nil
	case U16, NWKAddr:
		if err := need(2); err != nil {
			return 0, nil, err
		}
		return 2, binary.LittleEndian.Uint16(data), nil
	case I16:
		if err := need(2); err != nil {
			return 0, nil, err
		}
		return 2, int16(binary.LittleEndian.Uint16(data)), nil
	case U32, ChannelMask:
		if err := need(4); err != nil {
			return 0, nil, err
		}
		return 4, binary.LittleEndian.Uint32(data), nil
	case I32:
		if err := need(4); err != nil {
			return 0, nil, err
		}
		return 4, int32(binary.LittleEndian.Uint32(data)), nil
	case U64, IEEE:
		if err := need(8); err != nil {
			return 0, nil, err
		}
		return 8, binary.LittleEndian.Uint64(data), nil
	case Bool8:
		if err := need(1); err != nil {
			return 0, nil, err
		}
		return 1, data[0] != 0, nil
	case ShortBytes:
		if err := need(1); err != nil {
			return 0, nil, err
		}
		n := int(data[0])
		if err := need(1 + n); err != nil {
			return 0, nil, err
		}
		p := make([]byte, n)
		copy(p, data[1:1+n])
		return 1 + n, p, nil
	case LongBytes:
		if err := need(2); err != nil {
			return 0, nil, err
		}
		n := int(binary.LittleEndian.Uint16(data))
		if err := need(2 + n); err != nil {
			return 0, nil, err
		}
		p := make([]byte, n)
		copy(p, data[2:2+n])
		return 2 + n, p, nil
	case FixedBytes:
		if err := need(f.Size); err != nil {
			return 0, nil, err
		}
		p := make([]byte, f.Size)
		copy(p, data)
		return f.Size, p, nil
	case RestBytes:
		p := make([]byte, len(data))
		copy(p, data)
		return len(data), p, nil
	case StructList:
		if err := need(1); err != nil {
			return 0, nil, err
		}
		count := int(data[0])
		off := 1
		items := make([]Args, 0, count)
		for i := 0; i < count; i++ {
			item := make(Args, len(f.Struct))
			n, err := decodeInto(item, f.Struct, data[off:])
			if err != nil {
				return off, nil, err
			}
			items = append(items, item)
			off += n
		}
		return off, items, nil
	}
	return 0, nil, &FieldError{f.Name, fmt.Sprintf("unknown field type %d", f.Type)}
}
