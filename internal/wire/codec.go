package wire

import (
	"encoding/binary"
	"io"
)

// MaxMessageSize bounds the length prefix; a frame claiming a larger payload
// is rejected before any payload buffer is allocated.
const MaxMessageSize = 4 * 1024 * 1024

// ReadMessage reads exactly one framed message from r, blocking as needed
// across partial TCP reads. A length of zero, a length exceeding
// MaxMessageSize, or a payload too short to hold a 4-byte tag is a fatal
// BadFrame error; everything else that fails to parse is BadTag or
// BadField. ReadMessage never leaves r mid-frame on
// success — callers that see io.EOF on the length prefix should treat the
// stream as cleanly closed, not as a protocol error.
func ReadMessage(r io.Reader) (Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, newError(BadFrame, "zero-length message")
	}
	if n > MaxMessageSize {
		return nil, newError(BadFrame, "message length %d exceeds max %d", n, MaxMessageSize)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	return decodePayload(payload)
}

// WriteMessage encodes m and writes the framed message in a single Write
// call, so a write either lands in full or not at all.
func WriteMessage(w io.Writer, m Message) error {
	payload, err := encodePayload(m)
	if err != nil {
		return err
	}

	frame := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[4:], payload)

	_, err = w.Write(frame)
	return err
}

// decodePayload dispatches on the payload's leading bytes: the literal
// "Synergy" greeting has no 4-byte tag of its own, so it is checked first.
func decodePayload(payload []byte) (Message, error) {
	if len(payload) >= len(helloMagic) && string(payload[:len(helloMagic)]) == helloMagic {
		return decodeHello(payload)
	}

	if len(payload) < 4 {
		return nil, newError(BadFrame, "payload too short for a tag: %d bytes", len(payload))
	}
	tag := Tag(payload[:4])
	body := payload[4:]

	switch tag {
	case TagAck:
		return Ack{}, nil
	case TagKeepAlive:
		return KeepAlive{}, nil
	case TagResetOptions:
		return ResetOptions{}, nil
	case TagSetOptions:
		return decodeSetOptions(body)
	case TagEnter:
		return decodeEnter(body)
	case TagLeave:
		return Leave{}, nil
	case TagGrabClip:
		return decodeGrabClipboard(body)
	case TagClose:
		return Close{}, nil
	case TagNoOp:
		return NoOp{}, nil
	case TagKeyDown:
		return decodeKeyDown(body)
	case TagKeyRepeat:
		return decodeKeyRepeat(body)
	case TagKeyUp:
		return decodeKeyUp(body)
	case TagMouseDown:
		return decodeMouseDown(body)
	case TagMouseUp:
		return decodeMouseUp(body)
	case TagMouseMove:
		return decodeMouseMove(body)
	case TagMouseMoveRel:
		return decodeMouseMoveRel(body)
	case TagMouseWheel:
		return decodeMouseWheel(body)
	case TagClipData:
		return decodeClipboardData(body)
	case TagScreensaver:
		return decodeScreensaver(body)
	case TagInfoRequest:
		return InfoRequest{}, nil
	case TagInfo:
		return decodeInfo(body)
	default:
		return nil, newError(BadTag, "unrecognized tag %q", string(tag))
	}
}

func encodePayload(m Message) ([]byte, error) {
	switch v := m.(type) {
	case Hello:
		return encodeHello(v), nil
	case Ack:
		return tagOnly(TagAck), nil
	case KeepAlive:
		return tagOnly(TagKeepAlive), nil
	case ResetOptions:
		return tagOnly(TagResetOptions), nil
	case SetOptions:
		return encodeSetOptions(v), nil
	case Enter:
		return encodeEnter(v), nil
	case Leave:
		return tagOnly(TagLeave), nil
	case GrabClipboard:
		return encodeGrabClipboard(v), nil
	case Close:
		return tagOnly(TagClose), nil
	case NoOp:
		return tagOnly(TagNoOp), nil
	case KeyDown:
		return encodeKeyDown(v), nil
	case KeyRepeat:
		return encodeKeyRepeat(v), nil
	case KeyUp:
		return encodeKeyUp(v), nil
	case MouseDown:
		return encodeMouseDown(v), nil
	case MouseUp:
		return encodeMouseUp(v), nil
	case MouseMove:
		return encodeMouseMove(v), nil
	case MouseMoveRel:
		return encodeMouseMoveRel(v), nil
	case MouseWheel:
		return encodeMouseWheel(v), nil
	case ClipboardData:
		return encodeClipboardData(v), nil
	case Screensaver:
		return encodeScreensaver(v), nil
	case InfoRequest:
		return tagOnly(TagInfoRequest), nil
	case Info:
		return encodeInfo(v), nil
	default:
		return nil, newError(BadTag, "unknown message type %T", m)
	}
}

func tagOnly(tag Tag) []byte { return []byte(tag) }

// ---------------------------------------------------------------------------
// Hello
// ---------------------------------------------------------------------------

func decodeHello(payload []byte) (Message, error) {
	r := newFieldReader(payload[len(helloMagic):])
	major := r.u16()
	minor := r.u16()
	if err := r.done(); err != nil {
		return nil, err
	}
	return Hello{Major: major, Minor: minor}, nil
}

func encodeHello(h Hello) []byte {
	w := fieldWriter{buf: []byte(helloMagic)}
	w.u16(h.Major)
	w.u16(h.Minor)
	return w.buf
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

func decodeSetOptions(body []byte) (Message, error) {
	r := newFieldReader(body)
	count := r.u32()
	opts := make([]Option, 0, count)
	for i := uint32(0); i < count && r.err == nil; i++ {
		key := r.str()
		val := r.u32()
		opts = append(opts, Option{Key: key, Value: val})
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return SetOptions{Options: opts}, nil
}

func encodeSetOptions(m SetOptions) []byte {
	w := fieldWriter{buf: tagOnly(TagSetOptions)}
	w.u32(uint32(len(m.Options)))
	for _, o := range m.Options {
		w.str(o.Key)
		w.u32(o.Value)
	}
	return w.buf
}

// ---------------------------------------------------------------------------
// Enter / leave / grab / close
// ---------------------------------------------------------------------------

func decodeEnter(body []byte) (Message, error) {
	r := newFieldReader(body)
	e := Enter{
		X:              r.i16(),
		Y:              r.i16(),
		SeqNum:         r.u32(),
		Mask:           ModifierMask(r.u16()),
		ForScreensaver: r.bool8(),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return e, nil
}

func encodeEnter(e Enter) []byte {
	w := fieldWriter{buf: tagOnly(TagEnter)}
	w.i16(e.X)
	w.i16(e.Y)
	w.u32(e.SeqNum)
	w.u16(uint16(e.Mask))
	w.bool8(e.ForScreensaver)
	return w.buf
}

func decodeGrabClipboard(body []byte) (Message, error) {
	r := newFieldReader(body)
	g := GrabClipboard{ID: ClipboardID(r.u8()), SeqNum: r.u32()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return g, nil
}

func encodeGrabClipboard(g GrabClipboard) []byte {
	w := fieldWriter{buf: tagOnly(TagGrabClip)}
	w.u8(uint8(g.ID))
	w.u32(g.SeqNum)
	return w.buf
}

// ---------------------------------------------------------------------------
// Key events
// ---------------------------------------------------------------------------

func decodeKeyDown(body []byte) (Message, error) {
	r := newFieldReader(body)
	k := KeyDown{KeyID: r.i32(), Mask: ModifierMask(r.u16()), Button: r.u16()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return k, nil
}

func encodeKeyDown(k KeyDown) []byte {
	w := fieldWriter{buf: tagOnly(TagKeyDown)}
	w.i32(k.KeyID)
	w.u16(uint16(k.Mask))
	w.u16(k.Button)
	return w.buf
}

func decodeKeyRepeat(body []byte) (Message, error) {
	r := newFieldReader(body)
	k := KeyRepeat{KeyID: r.i32(), Mask: ModifierMask(r.u16()), Count: r.u16(), Button: r.u16()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return k, nil
}

func encodeKeyRepeat(k KeyRepeat) []byte {
	w := fieldWriter{buf: tagOnly(TagKeyRepeat)}
	w.i32(k.KeyID)
	w.u16(uint16(k.Mask))
	w.u16(k.Count)
	w.u16(k.Button)
	return w.buf
}

func decodeKeyUp(body []byte) (Message, error) {
	r := newFieldReader(body)
	k := KeyUp{KeyID: r.i32(), Mask: ModifierMask(r.u16()), Button: r.u16()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return k, nil
}

func encodeKeyUp(k KeyUp) []byte {
	w := fieldWriter{buf: tagOnly(TagKeyUp)}
	w.i32(k.KeyID)
	w.u16(uint16(k.Mask))
	w.u16(k.Button)
	return w.buf
}

// ---------------------------------------------------------------------------
// Mouse events
// ---------------------------------------------------------------------------

func decodeMouseDown(body []byte) (Message, error) {
	r := newFieldReader(body)
	m := MouseDown{Button: r.u8()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeMouseDown(m MouseDown) []byte {
	w := fieldWriter{buf: tagOnly(TagMouseDown)}
	w.u8(m.Button)
	return w.buf
}

func decodeMouseUp(body []byte) (Message, error) {
	r := newFieldReader(body)
	m := MouseUp{Button: r.u8()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeMouseUp(m MouseUp) []byte {
	w := fieldWriter{buf: tagOnly(TagMouseUp)}
	w.u8(m.Button)
	return w.buf
}

func decodeMouseMove(body []byte) (Message, error) {
	r := newFieldReader(body)
	m := MouseMove{X: r.i32(), Y: r.i32()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeMouseMove(m MouseMove) []byte {
	w := fieldWriter{buf: tagOnly(TagMouseMove)}
	w.i32(m.X)
	w.i32(m.Y)
	return w.buf
}

func decodeMouseMoveRel(body []byte) (Message, error) {
	r := newFieldReader(body)
	m := MouseMoveRel{DX: r.i32(), DY: r.i32()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeMouseMoveRel(m MouseMoveRel) []byte {
	w := fieldWriter{buf: tagOnly(TagMouseMoveRel)}
	w.i32(m.DX)
	w.i32(m.DY)
	return w.buf
}

func decodeMouseWheel(body []byte) (Message, error) {
	r := newFieldReader(body)
	m := MouseWheel{DX: r.i16(), DY: r.i16()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeMouseWheel(m MouseWheel) []byte {
	w := fieldWriter{buf: tagOnly(TagMouseWheel)}
	w.i16(m.DX)
	w.i16(m.DY)
	return w.buf
}

// ---------------------------------------------------------------------------
// Clipboard
// ---------------------------------------------------------------------------

func decodeClipboardData(body []byte) (Message, error) {
	r := newFieldReader(body)
	c := ClipboardData{ID: ClipboardID(r.u8()), SeqNum: r.u32(), Kind: ChunkKind(r.u8())}
	switch c.Kind {
	case ChunkStart:
		c.Size = r.u32()
	case ChunkData:
		c.Payload = r.bytes()
	case ChunkEnd:
		// no additional fields
	default:
		if r.err == nil {
			r.fail("unknown clipboard chunk kind %d", c.Kind)
		}
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return c, nil
}

func encodeClipboardData(c ClipboardData) []byte {
	w := fieldWriter{buf: tagOnly(TagClipData)}
	w.u8(uint8(c.ID))
	w.u32(c.SeqNum)
	w.u8(uint8(c.Kind))
	switch c.Kind {
	case ChunkStart:
		w.u32(c.Size)
	case ChunkData:
		w.bytes(c.Payload)
	case ChunkEnd:
	}
	return w.buf
}

// ---------------------------------------------------------------------------
// Screensaver / info
// ---------------------------------------------------------------------------

func decodeScreensaver(body []byte) (Message, error) {
	r := newFieldReader(body)
	s := Screensaver{Active: r.bool8()}
	if err := r.done(); err != nil {
		return nil, err
	}
	return s, nil
}

func encodeScreensaver(s Screensaver) []byte {
	w := fieldWriter{buf: tagOnly(TagScreensaver)}
	w.bool8(s.Active)
	return w.buf
}

func decodeInfo(body []byte) (Message, error) {
	r := newFieldReader(body)
	i := Info{
		X:             r.i16(),
		Y:             r.i16(),
		W:             r.i16(),
		H:             r.i16(),
		WarpZoneSize:  r.i16(),
		CursorCenterX: r.i16(),
		CursorCenterY: r.i16(),
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return i, nil
}

func encodeInfo(i Info) []byte {
	w := fieldWriter{buf: tagOnly(TagInfo)}
	w.i16(i.X)
	w.i16(i.Y)
	w.i16(i.W)
	w.i16(i.H)
	w.i16(i.WarpZoneSize)
	w.i16(i.CursorCenterX)
	w.i16(i.CursorCenterY)
	return w.buf
}
