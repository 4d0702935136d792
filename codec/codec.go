/*
Package codec provides the protobuf wire encoding used by all persisted
models and messages.

Models describe their fields with explicit field numbers, the same way a
.proto file would, so that the binary form stays compatible with protobuf
clients:

	func (a *Account) Marshal() ([]byte, error) {
		return codec.NewEncoder().
			Bytes(1, a.Owner).
			String(2, a.Ticker).
			Uint64(3, a.Amount).
			Result()
	}

Zero values are not written, as in proto3.
*/
package codec

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/pact/errors"
)

// Encoder writes protobuf fields into a buffer.
type Encoder struct {
	buf *proto.Buffer
	err error
}

// NewEncoder returns an encoder with an empty buffer.
func NewEncoder() *Encoder {
	return &Encoder{buf: proto.NewBuffer(nil)}
}

func (e *Encoder) key(field int, wire int) {
	if e.err != nil {
		return
	}
	e.err = e.buf.EncodeVarint(uint64(field)<<3 | uint64(wire))
}

// Bytes writes a length delimited field.
func (e *Encoder) Bytes(field int, b []byte) *Encoder {
	if len(b) == 0 {
		return e
	}
	e.key(field, proto.WireBytes)
	if e.err == nil {
		e.err = e.buf.EncodeRawBytes(b)
	}
	return e
}

// String writes a length delimited field.
func (e *Encoder) String(field int, s string) *Encoder {
	if s == "" {
		return e
	}
	e.key(field, proto.WireBytes)
	if e.err == nil {
		e.err = e.buf.EncodeStringBytes(s)
	}
	return e
}

// Uint64 writes a varint field.
func (e *Encoder) Uint64(field int, n uint64) *Encoder {
	if n == 0 {
		return e
	}
	e.key(field, proto.WireVarint)
	if e.err == nil {
		e.err = e.buf.EncodeVarint(n)
	}
	return e
}

// Bool writes a varint field.
func (e *Encoder) Bool(field int, b bool) *Encoder {
	if !b {
		return e
	}
	return e.Uint64(field, 1)
}

// Message writes a nested message as a length delimited field. A nil
// message is not written.
func (e *Encoder) Message(field int, m interface{ Marshal() ([]byte, error) }) *Encoder {
	if e.err != nil || m == nil {
		return e
	}
	raw, err := m.Marshal()
	if err != nil {
		e.err = err
		return e
	}
	e.key(field, proto.WireBytes)
	if e.err == nil {
		e.err = e.buf.EncodeRawBytes(raw)
	}
	return e
}

// Result returns the serialized fields or the first error.
func (e *Encoder) Result() ([]byte, error) {
	if e.err != nil {
		return nil, errors.Wrap(errors.ErrInput, e.err.Error())
	}
	return e.buf.Bytes(), nil
}

// Decoder reads protobuf fields one by one.
type Decoder struct {
	data  []byte
	field int
	wire  int
	err   error
}

// NewDecoder returns a decoder reading given serialized message.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Next moves to the next field. It returns false when all data was consumed
// or when decoding failed.
func (d *Decoder) Next() bool {
	if d.err != nil || len(d.data) == 0 {
		return false
	}
	k, n := proto.DecodeVarint(d.data)
	if n == 0 {
		d.fail("malformed field key")
		return false
	}
	d.data = d.data[n:]
	d.field = int(k >> 3)
	d.wire = int(k & 7)
	if d.field <= 0 {
		d.fail("illegal field number")
		return false
	}
	return true
}

// Field returns the number of the current field.
func (d *Decoder) Field() int {
	return d.field
}

// Err returns the first decoding failure.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) fail(msg string) {
	if d.err == nil {
		d.err = errors.Wrapf(errors.ErrInput, "field %d: %s", d.field, msg)
	}
}

func (d *Decoder) varint() uint64 {
	if d.wire != proto.WireVarint {
		d.fail("varint expected")
		return 0
	}
	v, n := proto.DecodeVarint(d.data)
	if n == 0 {
		d.fail("malformed varint")
		return 0
	}
	d.data = d.data[n:]
	return v
}

func (d *Decoder) raw() []byte {
	if d.wire != proto.WireBytes {
		d.fail("length delimited value expected")
		return nil
	}
	l, n := proto.DecodeVarint(d.data)
	if n == 0 || uint64(len(d.data)-n) < l {
		d.fail("truncated value")
		return nil
	}
	v := d.data[n : n+int(l)]
	d.data = d.data[n+int(l):]
	return v
}

// Bytes returns a copy of the current length delimited field.
func (d *Decoder) Bytes() []byte {
	v := d.raw()
	if v == nil {
		return nil
	}
	cpy := make([]byte, len(v))
	copy(cpy, v)
	return cpy
}

// String returns the current length delimited field as a string.
func (d *Decoder) String() string {
	return string(d.raw())
}

// Uint64 returns the current varint field.
func (d *Decoder) Uint64() uint64 {
	return d.varint()
}

// Bool returns the current varint field as a boolean.
func (d *Decoder) Bool() bool {
	return d.varint() != 0
}

// Message decodes the current length delimited field into given message.
func (d *Decoder) Message(m interface{ Unmarshal([]byte) error }) {
	v := d.raw()
	if d.err != nil {
		return
	}
	if err := m.Unmarshal(v); err != nil {
		d.err = errors.Wrapf(err, "field %d", d.field)
	}
}

// Skip ignores the current field. Unknown fields are skipped for forward
// compatibility.
func (d *Decoder) Skip() {
	switch d.wire {
	case proto.WireVarint:
		d.varint()
	case proto.WireBytes:
		d.raw()
	case proto.WireFixed64:
		d.fixed(8)
	case proto.WireFixed32:
		d.fixed(4)
	default:
		d.fail("unsupported wire type")
	}
}

func (d *Decoder) fixed(size int) {
	if len(d.data) < size {
		d.fail("truncated value")
		return
	}
	d.data = d.data[size:]
}
