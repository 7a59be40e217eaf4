package signaling

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

// codecName is negotiated as the gRPC content-subtype ("application/grpc+gob")
// by every signaling client via grpc.CallContentSubtype(codecName).
const codecName = "gob"

// gobCodec carries signalingpb messages over gRPC using encoding/gob rather
// than generated protobuf marshaling, since no .proto source ships with the
// example pack this service is grounded on (see the signalingpb package doc).
type gobCodec struct{}

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(gobCodec{})
}
