package client

import (
	"fmt"

	"github.com/synergy-core/synergyc/internal/wire"
)

// clipboardSlot accumulates the chunked DCLP sequence for one clipboard ID
// into a complete payload. A ChunkStart resets any in-progress assembly;
// ChunkEnd with a size mismatch is reported rather than silently accepted,
// since a truncated clipboard is worse than a dropped one.
type clipboardSlot struct {
	assembling bool
	seqNum     uint32
	wantSize   uint32
	buf        []byte
}

func (s *clipboardSlot) feed(msg wire.ClipboardData) ([]byte, error) {
	switch msg.Kind {
	case wire.ChunkStart:
		s.assembling = true
		s.seqNum = msg.SeqNum
		s.wantSize = msg.Size
		s.buf = make([]byte, 0, msg.Size)
		return nil, nil

	case wire.ChunkData:
		if !s.assembling {
			return nil, fmt.Errorf("clipboard chunk data with no preceding start (id=%d)", msg.ID)
		}
		s.buf = append(s.buf, msg.Payload...)
		return nil, nil

	case wire.ChunkEnd:
		if !s.assembling {
			return nil, fmt.Errorf("clipboard chunk end with no preceding start (id=%d)", msg.ID)
		}
		s.assembling = false
		got := s.buf
		s.buf = nil
		if uint32(len(got)) != s.wantSize {
			return got, fmt.Errorf("clipboard assembly size mismatch: got %d bytes, want %d", len(got), s.wantSize)
		}
		return got, nil

	default:
		return nil, fmt.Errorf("unknown clipboard chunk kind %d", msg.Kind)
	}
}

// chunkClipboard splits a raw clipboard payload into the START/DATA*/END
// sequence used to send a clipboard update to the peer. maxChunk bounds
// each DATA message's payload size.
func chunkClipboard(id wire.ClipboardID, seqNum uint32, data []byte, maxChunk int) []wire.ClipboardData {
	msgs := []wire.ClipboardData{{
		ID:     id,
		SeqNum: seqNum,
		Kind:   wire.ChunkStart,
		Size:   uint32(len(data)),
	}}

	for off := 0; off < len(data); off += maxChunk {
		end := off + maxChunk
		if end > len(data) {
			end = len(data)
		}
		msgs = append(msgs, wire.ClipboardData{
			ID:      id,
			SeqNum:  seqNum,
			Kind:    wire.ChunkData,
			Payload: data[off:end],
		})
	}

	msgs = append(msgs, wire.ClipboardData{ID: id, SeqNum: seqNum, Kind: wire.ChunkEnd})
	return msgs
}

// defaultClipboardChunkSize matches the codec's per-message ceiling with
// generous headroom for framing overhead.
const defaultClipboardChunkSize = 512 * 1024
