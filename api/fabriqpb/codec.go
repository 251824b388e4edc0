// Package fabriqpb defines fabriq's gRPC service contracts. In place of
// protoc-generated message types and descriptors, wire messages are
// plain Go structs carried over a JSON codec registered through grpc's
// encoding.RegisterCodec extension point, and ServiceDesc/client stubs
// are hand-authored in the same mechanical shape protoc-gen-go-grpc
// would emit. The entity CRUD surface is generic across every model
// type, generalizing storage.Repository's pattern to transport.
package fabriqpb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype negotiated for every fabriq RPC.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements encoding.Codec by delegating to encoding/json,
// the wire format this module uses in place of protobuf binary framing.
type jsonCodec struct{}

func (jsonCodec) Name() string { return CodecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
