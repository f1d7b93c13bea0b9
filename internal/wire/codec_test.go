package wire

import (
	"bytes"
	"io"
	"testing"
)

// TestEncodeDecodeRoundTrip verifies that encoding and decoding are inverse
// operations for every message type the client role needs.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
	}{
		{"Hello", Hello{Major: 1, Minor: 6}},
		{"Ack", Ack{}},
		{"KeepAlive", KeepAlive{}},
		{"ResetOptions", ResetOptions{}},
		{"SetOptions", SetOptions{Options: []Option{{Key: "HBRT", Value: 5000}, {Key: "SSYN", Value: 1}}}},
		{"Enter", Enter{X: 100, Y: 200, SeqNum: 7, Mask: ModShift, ForScreensaver: false}},
		{"Leave", Leave{}},
		{"GrabClipboard", GrabClipboard{ID: ClipboardClipboard, SeqNum: 3}},
		{"Close", Close{}},
		{"NoOp", NoOp{}},
		{"KeyDown", KeyDown{KeyID: 0x0041, Mask: ModShift, Button: 0x1E}},
		{"KeyRepeat", KeyRepeat{KeyID: 0x0061, Mask: 0, Count: 3, Button: 0x1E}},
		{"KeyUp", KeyUp{KeyID: 0x0041, Mask: ModShift, Button: 0x1E}},
		{"MouseDown", MouseDown{Button: 1}},
		{"MouseUp", MouseUp{Button: 1}},
		{"MouseMove", MouseMove{X: 10, Y: -20}},
		{"MouseMoveRel", MouseMoveRel{DX: 1, DY: -1}},
		{"MouseWheel", MouseWheel{DX: 0, DY: 120}},
		{"ClipboardDataStart", ClipboardData{ID: ClipboardClipboard, SeqNum: 1, Kind: ChunkStart, Size: 5000}},
		{"ClipboardDataChunk", ClipboardData{ID: ClipboardClipboard, SeqNum: 1, Kind: ChunkData, Payload: []byte("hello world")}},
		{"ClipboardDataEnd", ClipboardData{ID: ClipboardClipboard, SeqNum: 1, Kind: ChunkEnd}},
		{"Screensaver", Screensaver{Active: true}},
		{"InfoRequest", InfoRequest{}},
		{"Info", Info{X: 0, Y: 0, W: 1920, H: 1080, WarpZoneSize: 4, CursorCenterX: 960, CursorCenterY: 540}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteMessage(&buf, tc.msg); err != nil {
				t.Fatalf("WriteMessage: %v", err)
			}

			got, err := ReadMessage(&buf)
			if err != nil {
				t.Fatalf("ReadMessage: %v", err)
			}

			if got.Tag() != tc.msg.Tag() {
				t.Fatalf("tag mismatch: got %q want %q", got.Tag(), tc.msg.Tag())
			}
			if !messagesEqual(t, tc.msg, got) {
				t.Errorf("roundtrip mismatch: got %#v want %#v", got, tc.msg)
			}
		})
	}
}

func messagesEqual(t *testing.T, want, got Message) bool {
	t.Helper()
	switch w := want.(type) {
	case ClipboardData:
		g, ok := got.(ClipboardData)
		return ok && w.ID == g.ID && w.SeqNum == g.SeqNum && w.Kind == g.Kind &&
			w.Size == g.Size && bytes.Equal(w.Payload, g.Payload)
	case SetOptions:
		g, ok := got.(SetOptions)
		if !ok || len(w.Options) != len(g.Options) {
			return false
		}
		for i, opt := range w.Options {
			if opt != g.Options[i] {
				return false
			}
		}
		return true
	default:
		return want == got
	}
}

// TestFramingAcrossSplitReads verifies that a stream built from several
// concatenated encoded messages decodes to exactly that sequence regardless
// of how the underlying reader chooses to split its Read calls.
func TestFramingAcrossSplitReads(t *testing.T) {
	var buf bytes.Buffer
	msgs := []Message{
		Hello{Major: 1, Minor: 6},
		KeyDown{KeyID: 0x0041, Mask: ModShift, Button: 1},
		NoOp{},
		Close{},
	}
	for _, m := range msgs {
		if err := WriteMessage(&buf, m); err != nil {
			t.Fatalf("WriteMessage: %v", err)
		}
	}

	// Split the encoded stream into 1-byte reads to exercise ReadFull's
	// restart-across-partial-buffers behavior.
	r := &oneByteReader{data: buf.Bytes()}

	for i, want := range msgs {
		got, err := ReadMessage(r)
		if err != nil {
			t.Fatalf("message %d: ReadMessage: %v", i, err)
		}
		if got.Tag() != want.Tag() {
			t.Fatalf("message %d: tag mismatch: got %q want %q", i, got.Tag(), want.Tag())
		}
	}

	if _, err := ReadMessage(r); err != io.EOF {
		t.Fatalf("expected EOF after last message, got %v", err)
	}
}

// oneByteReader returns at most one byte per Read call, forcing every
// multi-byte read in the codec to go through multiple underlying reads.
type oneByteReader struct {
	data []byte
	pos  int
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	p[0] = r.data[r.pos]
	r.pos++
	return 1, nil
}

// TestDecodeLengthOverflow verifies that a length exceeding MaxMessageSize
// is rejected as BadFrame before any payload buffer is allocated.
func TestDecodeLengthOverflow(t *testing.T) {
	var lenBuf [4]byte
	lenBuf[0] = 0xFF // length = 0xFFxxxxxx, far beyond MaxMessageSize
	r := bytes.NewReader(lenBuf[:])

	_, err := ReadMessage(r)
	if err == nil {
		t.Fatal("expected error for oversized length")
	}
	protoErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if protoErr.Kind != BadFrame {
		t.Errorf("expected BadFrame, got %v", protoErr.Kind)
	}
}

// TestDecodeZeroLength verifies that a zero-length frame is rejected.
func TestDecodeZeroLength(t *testing.T) {
	r := bytes.NewReader([]byte{0, 0, 0, 0})
	_, err := ReadMessage(r)
	if err == nil {
		t.Fatal("expected error for zero-length frame")
	}
}

// TestDecodeUnknownTag verifies that an unrecognized 4-byte tag is reported
// as BadTag.
func TestDecodeUnknownTag(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("ZZZZ")
	var lenBuf [4]byte
	lenBuf[3] = byte(len(payload))
	buf.Write(lenBuf[:])
	buf.Write(payload)

	_, err := ReadMessage(&buf)
	protoErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if protoErr.Kind != BadTag {
		t.Errorf("expected BadTag, got %v", protoErr.Kind)
	}
}

// TestDecodeTruncatedField verifies that a message whose declared tag is
// valid but whose body is too short for its fields is reported as BadField.
func TestDecodeTruncatedField(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte(TagKeyDown) // tag only, no KeyID/Mask/Button fields
	var lenBuf [4]byte
	lenBuf[3] = byte(len(payload))
	buf.Write(lenBuf[:])
	buf.Write(payload)

	_, err := ReadMessage(&buf)
	protoErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if protoErr.Kind != BadField {
		t.Errorf("expected BadField, got %v", protoErr.Kind)
	}
}
