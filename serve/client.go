package serve

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/zero-day-ai/advreg/advancement"
)

// Client calls advreg.v1.Lookup. Errors carry gRPC status codes; a missing
// key is codes.NotFound.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Get looks up key literally.
func (c *Client) Get(ctx context.Context, key string, opts ...grpc.CallOption) (*advancement.Record, error) {
	return c.single(ctx, MethodGet, key, opts)
}

// GetNamespaced looks up key after stripping the server's namespace prefix.
func (c *Client) GetNamespaced(ctx context.Context, key string, opts ...grpc.CallOption) (*advancement.Record, error) {
	return c.single(ctx, MethodGetNamespaced, key, opts)
}

// Children returns the direct children of key.
func (c *Client) Children(ctx context.Context, key string, opts ...grpc.CallOption) ([]*advancement.Record, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(MethodChildren), keyRequest(key), out, opts...); err != nil {
		return nil, err
	}

	values := out.GetFields()[fieldRecords].GetListValue().GetValues()
	records := make([]*advancement.Record, 0, len(values))
	for _, v := range values {
		rec, err := decodeRecord(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) single(ctx context.Context, method, key string, opts []grpc.CallOption) (*advancement.Record, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), keyRequest(key), out, opts...); err != nil {
		return nil, err
	}
	return decodeRecord(out.GetFields()[fieldRecord].GetStructValue())
}
