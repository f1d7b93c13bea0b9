package wire

import (
	"encoding/binary"
)

// fieldReader walks a decoded payload field by field, matching the
// big-endian integer / length-prefixed string-and-blob layout used by every
// message type. Every accessor reports BadField on a short read instead of
// panicking, so a truncated message degrades to a normal protocol error.
type fieldReader struct {
	buf []byte
	pos int
	err *Error
}

func newFieldReader(buf []byte) *fieldReader {
	return &fieldReader{buf: buf}
}

func (r *fieldReader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = newError(BadField, format, args...)
	}
}

func (r *fieldReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > len(r.buf) {
		r.fail("truncated field at offset %d, need %d more bytes", r.pos, n)
		return false
	}
	return true
}

func (r *fieldReader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *fieldReader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *fieldReader) i16() int16 { return int16(r.u16()) }

func (r *fieldReader) u32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *fieldReader) i32() int32 { return int32(r.u32()) }

func (r *fieldReader) bool8() bool { return r.u8() != 0 }

// bytes reads a 4-byte-length-prefixed blob.
func (r *fieldReader) bytes() []byte {
	n := r.u32()
	if r.err != nil {
		return nil
	}
	if !r.need(int(n)) {
		return nil
	}
	v := make([]byte, n)
	copy(v, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	return v
}

// str reads a 4-byte-length-prefixed UTF-8 string.
func (r *fieldReader) str() string {
	return string(r.bytes())
}

func (r *fieldReader) done() error {
	if r.err != nil {
		return r.err
	}
	return nil
}

// fieldWriter is the symmetric encoder. Writes never fail; the buffer grows
// as needed.
type fieldWriter struct {
	buf []byte
}

func (w *fieldWriter) u8(v uint8) { w.buf = append(w.buf, v) }

func (w *fieldWriter) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *fieldWriter) i16(v int16) { w.u16(uint16(v)) }

func (w *fieldWriter) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *fieldWriter) i32(v int32) { w.u32(uint32(v)) }

func (w *fieldWriter) bool8(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *fieldWriter) bytes(v []byte) {
	w.u32(uint32(len(v)))
	w.buf = append(w.buf, v...)
}

func (w *fieldWriter) str(v string) { w.bytes([]byte(v)) }
