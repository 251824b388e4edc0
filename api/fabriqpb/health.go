package fabriqpb

import (
	"context"

	"google.golang.org/grpc"
)

// HealthServiceName is the registry name for the Health RPC.
const HealthServiceName = "fabriq.HealthService"

// HealthServer is the server-side contract for the trivial liveness
// check alongside the HTTP /health endpoint.
type HealthServer interface {
	Health(ctx context.Context) (HealthResponse, error)
}

type (
	HealthRequest  struct{}
	HealthResponse struct{ Ok bool }
)

func healthHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HealthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	impl := srv.(HealthServer)
	exec := func(ctx context.Context, req any) (any, error) {
		resp, err := impl.Health(ctx)
		if err != nil {
			return nil, err
		}
		return &resp, nil
	}
	if interceptor == nil {
		return exec(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HealthServiceName + "/Health"}
	return interceptor(ctx, in, info, exec)
}

// HealthServiceDesc is the hand-authored ServiceDesc for the Health RPC.
var HealthServiceDesc = &grpc.ServiceDesc{
	ServiceName: HealthServiceName,
	HandlerType: (*HealthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Health", Handler: healthHandler},
	},
	Metadata: HealthServiceName,
}

// HealthClient is the client stub for the Health RPC.
type HealthClient struct {
	cc *grpc.ClientConn
}

// NewHealthClient wraps cc.
func NewHealthClient(cc *grpc.ClientConn) *HealthClient {
	return &HealthClient{cc: cc}
}

func (c *HealthClient) Health(ctx context.Context, opts ...grpc.CallOption) (bool, error) {
	out := new(HealthResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+HealthServiceName+"/Health", &HealthRequest{}, out, opts...); err != nil {
		return false, err
	}
	return out.Ok, nil
}
