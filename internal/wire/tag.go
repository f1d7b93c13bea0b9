// Package wire implements the Synergy framed message codec: a length-prefixed
// stream of tagged messages exchanged between a client and its server.
package wire

// Tag identifies a message's wire layout. Tags are literal 4-byte ASCII
// sequences, matching the reference protocol exactly.
type Tag string

// Message tags. Most travel server -> client; DINF travels client -> server,
// and CALV, CNOP, CBYE, CCLP and DCLP may travel in either direction.
const (
	TagHello        Tag = "Syne" // greeting; full literal is "Synergy" + version, see Hello
	TagAck          Tag = "CIAK"
	TagKeepAlive    Tag = "CALV"
	TagResetOptions Tag = "CROP"
	TagSetOptions   Tag = "COPT"
	TagEnter        Tag = "CINN"
	TagLeave        Tag = "COUT"
	TagGrabClip     Tag = "CCLP"
	TagClose        Tag = "CBYE"
	TagNoOp         Tag = "CNOP"
	TagKeyDown      Tag = "DKDN"
	TagKeyRepeat    Tag = "DKRP"
	TagKeyUp        Tag = "DKUP"
	TagMouseDown    Tag = "DMDN"
	TagMouseUp      Tag = "DMUP"
	TagMouseMove    Tag = "DMMV"
	TagMouseMoveRel Tag = "DMRM"
	TagMouseWheel   Tag = "DMWM"
	TagClipData     Tag = "DCLP"
	TagScreensaver  Tag = "DSOP"
	TagInfoRequest  Tag = "QINF"
	TagInfo         Tag = "DINF"
)

// helloMagic is the literal greeting prefix on the wire: "Synergy" followed
// by the two big-endian u16 version numbers. It is not itself a 4-byte tag; the
// codec special-cases it (see decodeHello).
const helloMagic = "Synergy"

// Modifier bits, a subset of which a KeyMap entry's requiredModifierMask may
// use.
type ModifierMask uint16

const (
	ModShift ModifierMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
	ModSuper
	ModAltGr
	ModCapsLock
	ModNumLock
	ModScrollLock
)

// ClipboardID identifies which of the two clipboard slots a message refers
// to.
type ClipboardID uint8

const (
	ClipboardPrimary   ClipboardID = 0
	ClipboardClipboard ClipboardID = 1
)

// ChunkKind identifies the role of a DCLP payload in the START/DATA/END
// framing.
type ChunkKind uint8

const (
	ChunkStart ChunkKind = 1
	ChunkData  ChunkKind = 2
	ChunkEnd   ChunkKind = 3
)

// FormatID identifies a MIME-like clipboard format within an assembled
// clipboard payload.
type FormatID uint8

const (
	FormatText   FormatID = 0
	FormatHTML   FormatID = 1
	FormatBitmap FormatID = 2
)
