package socket

import (
	"bufio"
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"

	"github.com/graybat-go/graybat/errs"
	"github.com/graybat-go/graybat/transport"
)

// msgType is the 8-bit frame tag of spec.md §6's socket wire format.
// VADDR_REQUEST/VADDR_LOOKUP/CONTEXT_INIT/CONTEXT_REQUEST/CONFIRM/SPLIT are
// reserved for control-plane use (sub-context negotiation); PEER carries
// user data-plane payloads. DESTRUCT/RETRY/ACK are reserved for connection
// lifecycle management.
type msgType uint8

const (
	msgVaddrRequest msgType = iota
	msgVaddrLookup
	msgDestruct
	msgRetry
	msgAck
	msgContextInit
	msgContextRequest
	msgPeer
	msgConfirm
	msgSplit
)

// frame is one wire message: [MsgType, srcVAddr, dstVAddr, contextID, tag,
// payload].
type frame struct {
	typ     msgType
	src     transport.VAddr
	dst     transport.VAddr
	ctx     transport.ContextID
	tag     int32
	payload []byte
}

// maxPayload is the socket transport's maxBufferSize default (spec.md §6
// "Configuration").
const maxPayload = 100_000_000

func writeFrame(w *bufio.Writer, f frame) error {
	var header [1 + 4 + 4 + 8 + 4 + 4]byte
	header[0] = byte(f.typ)
	binary.BigEndian.PutUint32(header[1:5], uint32(f.src))
	binary.BigEndian.PutUint32(header[5:9], uint32(f.dst))
	binary.BigEndian.PutUint64(header[9:17], uint64(f.ctx))
	binary.BigEndian.PutUint32(header[17:21], uint32(f.tag))
	binary.BigEndian.PutUint32(header[21:25], uint32(len(f.payload)))
	if _, err := w.Write(header[:]); err != nil {
		return xerrors.Errorf("socket: writing frame header: %w", errWrap(err))
	}
	if len(f.payload) > 0 {
		if _, err := w.Write(f.payload); err != nil {
			return xerrors.Errorf("socket: writing frame payload: %w", errWrap(err))
		}
	}
	return w.Flush()
}

func readFrame(r *bufio.Reader) (frame, error) {
	var header [1 + 4 + 4 + 8 + 4 + 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return frame{}, xerrors.Errorf("socket: reading frame header: %w", errWrap(err))
	}

	payloadLen := binary.BigEndian.Uint32(header[21:25])
	if payloadLen > maxPayload {
		return frame{}, xerrors.Errorf("socket: frame payload %d exceeds max %d: %w", payloadLen, maxPayload, errs.ProtocolError)
	}

	f := frame{
		typ: msgType(header[0]),
		src: transport.VAddr(binary.BigEndian.Uint32(header[1:5])),
		dst: transport.VAddr(binary.BigEndian.Uint32(header[5:9])),
		ctx: transport.ContextID(binary.BigEndian.Uint64(header[9:17])),
		tag: int32(binary.BigEndian.Uint32(header[17:21])),
	}
	if payloadLen > 0 {
		f.payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, f.payload); err != nil {
			return frame{}, xerrors.Errorf("socket: reading frame payload: %w", errWrap(err))
		}
	}
	return f, nil
}

func errWrap(err error) error {
	return xerrors.Errorf("%s: %w", err.Error(), errs.TransportError)
}
