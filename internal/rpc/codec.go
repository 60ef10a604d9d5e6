package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec replaces grpc-go's default "proto" codec (which needs
// protoreflect descriptors we can't generate here — no protoc
// toolchain is available) with a JSON one, registered under the same
// name so grpc.Dial/grpc.NewServer keep working unmodified. The
// generated-shaped client/server stubs in orderbookpb only ever
// exchange *Empty and *Summary, both plain structs, so JSON framing
// carries every field the real wire format would.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
