package rpcapi

import (
	"fmt"
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/cuemby/fabriq/api/fabriqpb"
	"github.com/cuemby/fabriq/internal/acl"
	"github.com/cuemby/fabriq/internal/service"
	"github.com/cuemby/fabriq/internal/storage"
)

// Server hosts fabriqd's gRPC API: the six generic entity services (five
// registered straight off internal/service, Assignment wrapped read-only),
// plus the bespoke Config service.
type Server struct {
	grpc *grpc.Server
}

// NewServer builds the gRPC server, chaining auth, status-mapping and
// metrics interceptors in that order and registering every entity's
// ServiceDesc against services.
func NewServer(store *storage.Store, services *service.Services, oracle acl.Oracle) *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(AuthInterceptor, StatusInterceptor, MetricsInterceptor),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)

	srv.RegisterService(fabriqpb.TemplateServiceDesc, services.Templates)
	srv.RegisterService(fabriqpb.WorkloadServiceDesc, services.Workloads)
	srv.RegisterService(fabriqpb.TargetServiceDesc, services.Targets)
	srv.RegisterService(fabriqpb.HostServiceDesc, services.Hosts)
	srv.RegisterService(fabriqpb.DeploymentServiceDesc, services.Deployments)
	srv.RegisterService(fabriqpb.AssignmentServiceDesc, NewAssignmentServer(services.Assignments))
	srv.RegisterService(fabriqpb.ConfigServiceDesc, NewConfigServer(store, services, oracle))
	srv.RegisterService(fabriqpb.HealthServiceDesc, NewHealthServer())

	return &Server{grpc: srv}
}

// Serve listens on addr and blocks serving RPCs until the listener or the
// server itself stops.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpcapi: listen on %s: %w", addr, err)
	}
	return s.grpc.Serve(lis)
}

// Stop gracefully drains in-flight RPCs before returning.
func (s *Server) Stop() {
	s.grpc.GracefulStop()
}
