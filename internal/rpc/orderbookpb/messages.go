// Package orderbookpb holds the OrderbookAggregator service's message
// and client/server types, hand-written in the shape protoc-gen-go and
// protoc-gen-go-grpc would produce from:
//
//	service OrderbookAggregator {
//	  rpc BookSummary(Empty) returns (stream Summary);
//	}
//	message Empty {}
//	message Level {
//	  string exchange = 1;
//	  double price = 2;
//	  double amount = 3;
//	}
//	message Summary {
//	  double spread = 1;
//	  repeated Level bids = 2;
//	  repeated Level asks = 3;
//	}
//
// No protoc toolchain is available in this environment, so these
// structs carry protobuf-shaped field tags and are marshalled by the
// JSON-backed codec in internal/rpc (registered under the "proto"
// name) instead of generated protoreflect descriptors. The RPC
// contract — method name, streaming direction, message fields — is
// exactly as specified.
package orderbookpb

// Empty is the BookSummary request message; it carries no fields.
type Empty struct{}

// Level is a single (venue, price, amount) tuple on one side of a book.
type Level struct {
	Exchange string  `json:"exchange" protobuf:"bytes,1,opt,name=exchange,proto3"`
	Price    float64 `json:"price" protobuf:"fixed64,2,opt,name=price,proto3"`
	Amount   float64 `json:"amount" protobuf:"fixed64,3,opt,name=amount,proto3"`
}

// Summary is one published CombinedBook snapshot.
type Summary struct {
	Spread float64  `json:"spread" protobuf:"fixed64,1,opt,name=spread,proto3"`
	Bids   []*Level `json:"bids" protobuf:"bytes,2,rep,name=bids,proto3"`
	Asks   []*Level `json:"asks" protobuf:"bytes,3,rep,name=asks,proto3"`
}
