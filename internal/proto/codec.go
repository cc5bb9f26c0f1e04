// Package proto holds the wire contract between the companion client and the
// backend: message types, gRPC service descriptors and client stubs. Messages
// are plain Go structs carried by a JSON codec registered with grpc-go under
// the "json" content subtype.
//
// JSON is the wire format of this service, not a stand-in for protobuf.
// There are no .proto files, and clients generated with protoc cannot talk
// to the server. A client must be built on this package or send
// application/grpc+json requests with the same field names.
package proto

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content subtype of every call in this package.
const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
