package fabriqpb

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

// EntityServer is the server-side contract every single-model CRUD
// service satisfies. internal/service's per-entity services already
// have this method set, so rpcapi's wrappers pass them straight through
// as the HandlerType implementation. Upsert and Delete take and return
// an operation id so a caller-supplied id threads through to every
// event the write produces, and a freshly minted one comes back when
// the caller didn't supply one.
type EntityServer[M any] interface {
	Upsert(ctx context.Context, m M, operationID string) (string, error)
	Delete(ctx context.Context, id string, operationID string) (string, error)
	GetByID(ctx context.Context, id string) (*M, error)
	List(ctx context.Context) ([]M, error)
}

// Wire messages, one generic shape reused by every entity's descriptor.
type UpsertRequest[M any] struct {
	Model       M
	OperationID string
}

type UpsertResponse[M any] struct {
	Model       M
	OperationID string
}

type DeleteRequest struct {
	ID          string
	OperationID string
}

type (
	DeleteResponse     struct{ OperationID string }
	GetRequest         struct{ ID string }
	GetResponse[M any] struct{ Model *M }
	ListRequest        struct{}
	ListResponse[M any] struct {
		Models []M
	}
)

func entityUpsertHandler[M any](fullService string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(UpsertRequest[M])
		if err := dec(in); err != nil {
			return nil, err
		}
		impl := srv.(EntityServer[M])
		exec := func(ctx context.Context, req any) (any, error) {
			r := req.(*UpsertRequest[M])
			opID, err := impl.Upsert(ctx, r.Model, r.OperationID)
			if err != nil {
				return nil, err
			}
			return &UpsertResponse[M]{Model: r.Model, OperationID: opID}, nil
		}
		if interceptor == nil {
			return exec(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullService + "/Upsert"}
		return interceptor(ctx, in, info, exec)
	}
}

func entityDeleteHandler[M any](fullService string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(DeleteRequest)
		if err := dec(in); err != nil {
			return nil, err
		}
		impl := srv.(EntityServer[M])
		exec := func(ctx context.Context, req any) (any, error) {
			r := req.(*DeleteRequest)
			opID, err := impl.Delete(ctx, r.ID, r.OperationID)
			if err != nil {
				return nil, err
			}
			return &DeleteResponse{OperationID: opID}, nil
		}
		if interceptor == nil {
			return exec(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullService + "/Delete"}
		return interceptor(ctx, in, info, exec)
	}
}

func entityGetHandler[M any](fullService string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(GetRequest)
		if err := dec(in); err != nil {
			return nil, err
		}
		impl := srv.(EntityServer[M])
		exec := func(ctx context.Context, req any) (any, error) {
			r := req.(*GetRequest)
			m, err := impl.GetByID(ctx, r.ID)
			if err != nil {
				return nil, err
			}
			return &GetResponse[M]{Model: m}, nil
		}
		if interceptor == nil {
			return exec(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullService + "/Get"}
		return interceptor(ctx, in, info, exec)
	}
}

func entityListHandler[M any](fullService string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(ListRequest)
		if err := dec(in); err != nil {
			return nil, err
		}
		impl := srv.(EntityServer[M])
		exec := func(ctx context.Context, req any) (any, error) {
			models, err := impl.List(ctx)
			if err != nil {
				return nil, err
			}
			return &ListResponse[M]{Models: models}, nil
		}
		if interceptor == nil {
			return exec(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullService + "/List"}
		return interceptor(ctx, in, info, exec)
	}
}

// NewEntityServiceDesc builds the ServiceDesc for a single-model CRUD
// service named serviceName (e.g. "fabriq.TemplateService").
func NewEntityServiceDesc[M any](serviceName string) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*EntityServer[M])(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Upsert", Handler: entityUpsertHandler[M](serviceName)},
			{MethodName: "Delete", Handler: entityDeleteHandler[M](serviceName)},
			{MethodName: "Get", Handler: entityGetHandler[M](serviceName)},
			{MethodName: "List", Handler: entityListHandler[M](serviceName)},
		},
		Metadata: serviceName,
	}
}

// EntityClient is the client stub for a single-model CRUD service.
type EntityClient[M any] struct {
	cc          *grpc.ClientConn
	serviceName string
}

// NewEntityClient wraps cc for calls against serviceName.
func NewEntityClient[M any](cc *grpc.ClientConn, serviceName string) *EntityClient[M] {
	return &EntityClient[M]{cc: cc, serviceName: serviceName}
}

func (c *EntityClient[M]) method(name string) string {
	return fmt.Sprintf("/%s/%s", c.serviceName, name)
}

func (c *EntityClient[M]) callOpts(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

// Upsert writes m under operationID (a fresh id is minted server-side
// when operationID is empty) and returns the model together with the
// operation id the write was recorded under.
func (c *EntityClient[M]) Upsert(ctx context.Context, m M, operationID string, opts ...grpc.CallOption) (M, string, error) {
	out := new(UpsertResponse[M])
	err := c.cc.Invoke(ctx, c.method("Upsert"), &UpsertRequest[M]{Model: m, OperationID: operationID}, out, c.callOpts(opts)...)
	if err != nil {
		var zero M
		return zero, "", err
	}
	return out.Model, out.OperationID, nil
}

func (c *EntityClient[M]) Delete(ctx context.Context, id string, operationID string, opts ...grpc.CallOption) (string, error) {
	out := new(DeleteResponse)
	if err := c.cc.Invoke(ctx, c.method("Delete"), &DeleteRequest{ID: id, OperationID: operationID}, out, c.callOpts(opts)...); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

func (c *EntityClient[M]) Get(ctx context.Context, id string, opts ...grpc.CallOption) (*M, error) {
	out := new(GetResponse[M])
	if err := c.cc.Invoke(ctx, c.method("Get"), &GetRequest{ID: id}, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out.Model, nil
}

func (c *EntityClient[M]) List(ctx context.Context, opts ...grpc.CallOption) ([]M, error) {
	out := new(ListResponse[M])
	if err := c.cc.Invoke(ctx, c.method("List"), &ListRequest{}, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out.Models, nil
}
