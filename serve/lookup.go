package serve

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/zero-day-ai/advreg/advancement"
)

// LookupServiceName is the fully qualified gRPC service name.
const LookupServiceName = "advreg.v1.Lookup"

// Lookup method names.
const (
	MethodGet           = "Get"
	MethodGetNamespaced = "GetNamespaced"
	MethodChildren      = "Children"
)

// LookupServer is the server API for advreg.v1.Lookup.
type LookupServer interface {
	Get(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetNamespaced(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Children(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterLookupServer registers srv on s.
func RegisterLookupServer(s grpc.ServiceRegistrar, srv LookupServer) {
	s.RegisterService(&lookupServiceDesc, srv)
}

var lookupServiceDesc = grpc.ServiceDesc{
	ServiceName: LookupServiceName,
	HandlerType: (*LookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodGet, Handler: unaryHandler(MethodGet, LookupServer.Get)},
		{MethodName: MethodGetNamespaced, Handler: unaryHandler(MethodGetNamespaced, LookupServer.GetNamespaced)},
		{MethodName: MethodChildren, Handler: unaryHandler(MethodChildren, LookupServer.Children)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "advreg/v1/lookup.proto",
}

func fullMethod(method string) string {
	return "/" + LookupServiceName + "/" + method
}

type lookupCall func(LookupServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call lookupCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LookupServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LookupServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// lookupService answers lookups from the provider's current snapshot.
type lookupService struct {
	provider Provider
	logger   *slog.Logger
	lookups  metric.Int64Counter
}

func newLookupService(provider Provider, logger *slog.Logger, meter metric.Meter) (*lookupService, error) {
	svc := &lookupService{provider: provider, logger: logger}
	if meter != nil {
		counter, err := meter.Int64Counter(
			"advreg.lookup.count",
			metric.WithDescription("Number of lookup requests served"),
			metric.WithUnit("1"),
		)
		if err != nil {
			return nil, fmt.Errorf("create lookup counter: %w", err)
		}
		svc.lookups = counter
	}
	return svc, nil
}

func (s *lookupService) Get(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.single(ctx, MethodGet, req, (*advancement.Registry).Get)
}

func (s *lookupService) GetNamespaced(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.single(ctx, MethodGetNamespaced, req, (*advancement.Registry).GetNamespaced)
}

func (s *lookupService) Children(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	key, reg, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	parent, ok := reg.Resolve(key)
	s.record(ctx, MethodChildren, ok)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "advancement %q not found", key)
	}

	children := reg.Children(parent.ID)
	values := make([]*structpb.Value, 0, len(children))
	for _, child := range children {
		v, err := recordValue(child)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		values = append(values, v)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldRecords: structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}, nil
}

func (s *lookupService) single(ctx context.Context, method string, req *structpb.Struct,
	find func(*advancement.Registry, string) (*advancement.Record, bool)) (*structpb.Struct, error) {
	key, reg, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	rec, ok := find(reg, key)
	s.record(ctx, method, ok)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "advancement %q not found", key)
	}

	v, err := recordValue(rec)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{fieldRecord: v}}, nil
}

func (s *lookupService) prepare(req *structpb.Struct) (string, *advancement.Registry, error) {
	key := req.GetFields()[fieldKey].GetStringValue()
	if key == "" {
		return "", nil, status.Error(codes.InvalidArgument, "key is required")
	}
	reg := s.provider.Registry()
	if reg == nil {
		return "", nil, status.Error(codes.Unavailable, "registry is not loaded")
	}
	return key, reg, nil
}

func (s *lookupService) record(ctx context.Context, method string, hit bool) {
	s.logger.DebugContext(ctx, "lookup", "method", method, "hit", hit)
	if s.lookups != nil {
		s.lookups.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", method),
			attribute.Bool("hit", hit),
		))
	}
}
