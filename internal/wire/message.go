package wire

// Message is the tagged union of every Synergy protocol message the client
// role needs to send or receive. Each concrete type below implements it.
type Message interface {
	Tag() Tag
}

// Hello is the version greeting exchanged by both sides immediately after
// the TCP connection is accepted. On the wire it is the literal bytes
// "Synergy" followed by two big-endian u16 version numbers — it has no
// 4-byte tag of its own, which is why the codec special-cases it (see
// decodeHello/encodeHello in codec.go).
type Hello struct {
	Major uint16
	Minor uint16
}

func (Hello) Tag() Tag { return TagHello }

// Ack acknowledges the client's Hello reply (CIAK, no fields).
type Ack struct{}

func (Ack) Tag() Tag { return TagAck }

// KeepAlive is a heartbeat in either direction (CALV, no fields).
type KeepAlive struct{}

func (KeepAlive) Tag() Tag { return TagKeepAlive }

// ResetOptions asks the client to restore default options (CROP, no fields).
type ResetOptions struct{}

func (ResetOptions) Tag() Tag { return TagResetOptions }

// SetOptions carries the server's option dictionary (COPT) as an ordered
// list of key/value u32 pairs, matching the reference wire layout.
type SetOptions struct {
	Options []Option
}

func (SetOptions) Tag() Tag { return TagSetOptions }

// Option is one key/value pair inside a COPT message. Keys are 4-byte ASCII
// tags of their own (e.g. "HBRT" for heartbeat); unknown keys are decoded
// but ignored by the client state machine.
type Option struct {
	Key   string
	Value uint32
}

// Enter notifies the client it has become the active input sink (CINN).
type Enter struct {
	X, Y           int16
	SeqNum         uint32
	Mask           ModifierMask
	ForScreensaver bool
}

func (Enter) Tag() Tag { return TagEnter }

// Leave notifies the client it is no longer the active input sink (COUT,
// no fields).
type Leave struct{}

func (Leave) Tag() Tag { return TagLeave }

// GrabClipboard notifies the client that a clipboard slot has been grabbed,
// in either direction (CCLP).
type GrabClipboard struct {
	ID     ClipboardID
	SeqNum uint32
}

func (GrabClipboard) Tag() Tag { return TagGrabClip }

// Close tells the peer the connection is ending cleanly (CBYE, no fields).
type Close struct{}

func (Close) Tag() Tag { return TagClose }

// NoOp is the client's heartbeat reply when it has nothing else to report
// (CNOP, no fields).
type NoOp struct{}

func (NoOp) Tag() Tag { return TagNoOp }

// KeyDown/KeyRepeat/KeyUp are the three key-event messages (DKDN/DKRP/DKUP).
// Repeat carries an additional auto-repeat count.
type KeyDown struct {
	KeyID  int32
	Mask   ModifierMask
	Button uint16
}

func (KeyDown) Tag() Tag { return TagKeyDown }

type KeyRepeat struct {
	KeyID  int32
	Mask   ModifierMask
	Count  uint16
	Button uint16
}

func (KeyRepeat) Tag() Tag { return TagKeyRepeat }

type KeyUp struct {
	KeyID  int32
	Mask   ModifierMask
	Button uint16
}

func (KeyUp) Tag() Tag { return TagKeyUp }

// MouseDown/MouseUp carry the pressed button (DMDN/DMUP).
type MouseDown struct {
	Button uint8
}

func (MouseDown) Tag() Tag { return TagMouseDown }

type MouseUp struct {
	Button uint8
}

func (MouseUp) Tag() Tag { return TagMouseUp }

// MouseMove is an absolute move (DMMV); MouseMoveRel is relative (DMRM).
type MouseMove struct {
	X, Y int32
}

func (MouseMove) Tag() Tag { return TagMouseMove }

type MouseMoveRel struct {
	DX, DY int32
}

func (MouseMoveRel) Tag() Tag { return TagMouseMoveRel }

// MouseWheel carries wheel deltas on both axes (DMWM).
type MouseWheel struct {
	DX, DY int16
}

func (MouseWheel) Tag() Tag { return TagMouseWheel }

// ClipboardData is one chunk of a clipboard update (DCLP). For ChunkStart,
// Size holds the total assembled payload size and Payload is empty; for
// ChunkData, Payload holds that chunk's bytes; for ChunkEnd both are empty.
type ClipboardData struct {
	ID      ClipboardID
	SeqNum  uint32
	Kind    ChunkKind
	Size    uint32
	Payload []byte
}

func (ClipboardData) Tag() Tag { return TagClipData }

// Screensaver reports the server's screensaver on/off transition (DSOP).
type Screensaver struct {
	Active bool
}

func (Screensaver) Tag() Tag { return TagScreensaver }

// InfoRequest asks the client to send its current ScreenInfo (QINF, no
// fields).
type InfoRequest struct{}

func (InfoRequest) Tag() Tag { return TagInfoRequest }

// Info is the client's screen-geometry report (DINF).
type Info struct {
	X, Y          int16
	W, H          int16
	WarpZoneSize  int16
	CursorCenterX int16
	CursorCenterY int16
}

func (Info) Tag() Tag { return TagInfo }
