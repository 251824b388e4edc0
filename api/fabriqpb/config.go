package fabriqpb

import (
	"context"

	"google.golang.org/grpc"

	"github.com/cuemby/fabriq/internal/model"
)

// ConfigServiceName is the registry name for Config RPCs.
const ConfigServiceName = "fabriq.ConfigService"

// ConfigServer is Config's server-side contract. Config's Upsert takes
// an explicit owner kind/id pair rather than a bare model, so it cannot
// share EntityServer's generic shape the way the other six entities do.
// Query is Config's fifth endpoint: it resolves the effective key/value
// set for a template, workload, or deployment scope rather than
// operating on a single Config record.
type ConfigServer interface {
	Upsert(ctx context.Context, req UpsertConfigRequest) (*model.Config, string, error)
	Delete(ctx context.Context, id string, operationID string) (string, error)
	GetByID(ctx context.Context, id string) (*model.Config, error)
	List(ctx context.Context) ([]model.Config, error)
	Query(ctx context.Context, req ConfigQueryRequest) (ConfigQueryResponse, error)
}

// UpsertConfigRequest carries a Config write's owner reference alongside
// its key/value payload.
type UpsertConfigRequest struct {
	OwnerKind   string
	OwnerID     string
	Key         string
	Value       string
	ValueType   model.ConfigValueType
	OperationID string
}

type (
	UpsertConfigResponse struct {
		Config      model.Config
		OperationID string
	}
	ConfigDeleteRequest struct {
		ID          string
		OperationID string
	}
	ConfigDeleteResponse struct{ OperationID string }
	ConfigGetRequest     struct{ ID string }
	ConfigGetResponse    struct{ Config *model.Config }
	ConfigListRequest    struct{}
	ConfigListResponse   struct{ Configs []model.Config }
)

// ConfigQueryRequest names the scope to resolve effective configuration
// for: ModelName is one of "template", "workload", "deployment" and
// ModelID is that scope's id.
type ConfigQueryRequest struct {
	ModelName string
	ModelID   string
}

// ConfigQueryResponse carries the resolved effective key/value set as
// plain strings; value type and provenance are resolver-internal detail
// not exposed on the wire.
type ConfigQueryResponse struct {
	Values map[string]string
}

func configUpsertHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpsertConfigRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	impl := srv.(ConfigServer)
	exec := func(ctx context.Context, req any) (any, error) {
		r := req.(*UpsertConfigRequest)
		cfg, opID, err := impl.Upsert(ctx, *r)
		if err != nil {
			return nil, err
		}
		return &UpsertConfigResponse{Config: *cfg, OperationID: opID}, nil
	}
	if interceptor == nil {
		return exec(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConfigServiceName + "/Upsert"}
	return interceptor(ctx, in, info, exec)
}

func configDeleteHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ConfigDeleteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	impl := srv.(ConfigServer)
	exec := func(ctx context.Context, req any) (any, error) {
		r := req.(*ConfigDeleteRequest)
		opID, err := impl.Delete(ctx, r.ID, r.OperationID)
		if err != nil {
			return nil, err
		}
		return &ConfigDeleteResponse{OperationID: opID}, nil
	}
	if interceptor == nil {
		return exec(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConfigServiceName + "/Delete"}
	return interceptor(ctx, in, info, exec)
}

func configGetHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ConfigGetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	impl := srv.(ConfigServer)
	exec := func(ctx context.Context, req any) (any, error) {
		r := req.(*ConfigGetRequest)
		cfg, err := impl.GetByID(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		return &ConfigGetResponse{Config: cfg}, nil
	}
	if interceptor == nil {
		return exec(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConfigServiceName + "/Get"}
	return interceptor(ctx, in, info, exec)
}

func configListHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ConfigListRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	impl := srv.(ConfigServer)
	exec := func(ctx context.Context, req any) (any, error) {
		configs, err := impl.List(ctx)
		if err != nil {
			return nil, err
		}
		return &ConfigListResponse{Configs: configs}, nil
	}
	if interceptor == nil {
		return exec(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConfigServiceName + "/List"}
	return interceptor(ctx, in, info, exec)
}

func configQueryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ConfigQueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	impl := srv.(ConfigServer)
	exec := func(ctx context.Context, req any) (any, error) {
		r := req.(*ConfigQueryRequest)
		resp, err := impl.Query(ctx, *r)
		if err != nil {
			return nil, err
		}
		return &resp, nil
	}
	if interceptor == nil {
		return exec(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ConfigServiceName + "/Query"}
	return interceptor(ctx, in, info, exec)
}

// ConfigServiceDesc is the hand-authored ServiceDesc for Config RPCs.
var ConfigServiceDesc = &grpc.ServiceDesc{
	ServiceName: ConfigServiceName,
	HandlerType: (*ConfigServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Upsert", Handler: configUpsertHandler},
		{MethodName: "Delete", Handler: configDeleteHandler},
		{MethodName: "Get", Handler: configGetHandler},
		{MethodName: "List", Handler: configListHandler},
		{MethodName: "Query", Handler: configQueryHandler},
	},
	Metadata: ConfigServiceName,
}

// ConfigClient is the client stub for Config RPCs.
type ConfigClient struct {
	cc *grpc.ClientConn
}

// NewConfigClient wraps cc.
func NewConfigClient(cc *grpc.ClientConn) *ConfigClient {
	return &ConfigClient{cc: cc}
}

func (c *ConfigClient) callOpts(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *ConfigClient) Upsert(ctx context.Context, req UpsertConfigRequest, opts ...grpc.CallOption) (*model.Config, string, error) {
	out := new(UpsertConfigResponse)
	if err := c.cc.Invoke(ctx, "/"+ConfigServiceName+"/Upsert", &req, out, c.callOpts(opts)...); err != nil {
		return nil, "", err
	}
	return &out.Config, out.OperationID, nil
}

func (c *ConfigClient) Delete(ctx context.Context, id string, operationID string, opts ...grpc.CallOption) (string, error) {
	out := new(ConfigDeleteResponse)
	if err := c.cc.Invoke(ctx, "/"+ConfigServiceName+"/Delete", &ConfigDeleteRequest{ID: id, OperationID: operationID}, out, c.callOpts(opts)...); err != nil {
		return "", err
	}
	return out.OperationID, nil
}

// Query resolves the effective configuration for (modelName, modelID),
// one of the "template", "workload", or "deployment" scope kinds.
func (c *ConfigClient) Query(ctx context.Context, modelName, modelID string, opts ...grpc.CallOption) (map[string]string, error) {
	out := new(ConfigQueryResponse)
	req := &ConfigQueryRequest{ModelName: modelName, ModelID: modelID}
	if err := c.cc.Invoke(ctx, "/"+ConfigServiceName+"/Query", req, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out.Values, nil
}

func (c *ConfigClient) Get(ctx context.Context, id string, opts ...grpc.CallOption) (*model.Config, error) {
	out := new(ConfigGetResponse)
	if err := c.cc.Invoke(ctx, "/"+ConfigServiceName+"/Get", &ConfigGetRequest{ID: id}, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out.Config, nil
}

func (c *ConfigClient) List(ctx context.Context, opts ...grpc.CallOption) ([]model.Config, error) {
	out := new(ConfigListResponse)
	if err := c.cc.Invoke(ctx, "/"+ConfigServiceName+"/List", &ConfigListRequest{}, out, c.callOpts(opts)...); err != nil {
		return nil, err
	}
	return out.Configs, nil
}
