package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "networth.v1.ForecastService"

// Full method names of the ForecastService RPCs
const (
	EstimateGrowthRateMethod = "/" + ServiceName + "/EstimateGrowthRate"
	BuildForecastMethod      = "/" + ServiceName + "/BuildForecast"
	GetPortfolioValueMethod  = "/" + ServiceName + "/GetPortfolioValue"
	ComputeBondValueMethod   = "/" + ServiceName + "/ComputeBondValue"
)

// ForecastServiceServer is the server API of networth.v1.ForecastService.
// Requests and responses are google.protobuf.Struct documents.
type ForecastServiceServer interface {
	EstimateGrowthRate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BuildForecast(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPortfolioValue(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ComputeBondValue(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ForecastServiceDesc describes networth.v1.ForecastService for grpc.Server.RegisterService
var ForecastServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ForecastServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "EstimateGrowthRate",
			Handler: unaryHandler(EstimateGrowthRateMethod, func(srv ForecastServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.EstimateGrowthRate(ctx, req)
			}),
		},
		{
			MethodName: "BuildForecast",
			Handler: unaryHandler(BuildForecastMethod, func(srv ForecastServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.BuildForecast(ctx, req)
			}),
		},
		{
			MethodName: "GetPortfolioValue",
			Handler: unaryHandler(GetPortfolioValueMethod, func(srv ForecastServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.GetPortfolioValue(ctx, req)
			}),
		},
		{
			MethodName: "ComputeBondValue",
			Handler: unaryHandler(ComputeBondValueMethod, func(srv ForecastServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.ComputeBondValue(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "networth/v1/forecast.proto",
}

// RegisterForecastServiceServer registers srv on s
func RegisterForecastServiceServer(s grpc.ServiceRegistrar, srv ForecastServiceServer) {
	s.RegisterService(&ForecastServiceDesc, srv)
}

type unaryMethod func(srv ForecastServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// unaryHandler decodes the request Struct and runs call through the server interceptor chain
func unaryHandler(fullMethod string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ForecastServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ForecastServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ForecastServiceClient calls networth.v1.ForecastService over a client connection
type ForecastServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewForecastServiceClient creates a new ForecastServiceClient
func NewForecastServiceClient(cc grpc.ClientConnInterface) *ForecastServiceClient {
	return &ForecastServiceClient{cc: cc}
}

// Call invokes one of the full method names with a request document
func (c *ForecastServiceClient) Call(ctx context.Context, fullMethod string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
