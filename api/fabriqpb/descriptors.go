package fabriqpb

import (
	"google.golang.org/grpc"

	"github.com/cuemby/fabriq/internal/model"
)

// Service names, one per entity, matching the gRPC registry fabriqd
// publishes and the CLI's client dials.
const (
	TemplateServiceName   = "fabriq.TemplateService"
	WorkloadServiceName   = "fabriq.WorkloadService"
	TargetServiceName     = "fabriq.TargetService"
	HostServiceName       = "fabriq.HostService"
	DeploymentServiceName = "fabriq.DeploymentService"
	AssignmentServiceName = "fabriq.AssignmentService"
)

// TemplateServiceDesc is the ServiceDesc for Template CRUD.
var TemplateServiceDesc = NewEntityServiceDesc[model.Template](TemplateServiceName)

// WorkloadServiceDesc is the ServiceDesc for Workload CRUD.
var WorkloadServiceDesc = NewEntityServiceDesc[model.Workload](WorkloadServiceName)

// TargetServiceDesc is the ServiceDesc for Target CRUD.
var TargetServiceDesc = NewEntityServiceDesc[model.Target](TargetServiceName)

// HostServiceDesc is the ServiceDesc for Host CRUD.
var HostServiceDesc = NewEntityServiceDesc[model.Host](HostServiceName)

// DeploymentServiceDesc is the ServiceDesc for Deployment CRUD.
var DeploymentServiceDesc = NewEntityServiceDesc[model.Deployment](DeploymentServiceName)

// AssignmentServiceDesc is the ServiceDesc for read-only Assignment
// access; the reconciler is the only writer, so RPC clients only ever
// Get/List assignments, but the generic descriptor still registers
// Upsert/Delete to keep HandlerType satisfied. rpcapi's Assignment
// wrapper rejects both with PermissionDenied.
var AssignmentServiceDesc = NewEntityServiceDesc[model.Assignment](AssignmentServiceName)

// NewTemplateClient dials a TemplateClient stub over cc.
func NewTemplateClient(cc *grpc.ClientConn) *EntityClient[model.Template] {
	return NewEntityClient[model.Template](cc, TemplateServiceName)
}

// NewWorkloadClient dials a WorkloadClient stub over cc.
func NewWorkloadClient(cc *grpc.ClientConn) *EntityClient[model.Workload] {
	return NewEntityClient[model.Workload](cc, WorkloadServiceName)
}

// NewTargetClient dials a TargetClient stub over cc.
func NewTargetClient(cc *grpc.ClientConn) *EntityClient[model.Target] {
	return NewEntityClient[model.Target](cc, TargetServiceName)
}

// NewHostClient dials a HostClient stub over cc.
func NewHostClient(cc *grpc.ClientConn) *EntityClient[model.Host] {
	return NewEntityClient[model.Host](cc, HostServiceName)
}

// NewDeploymentClient dials a DeploymentClient stub over cc.
func NewDeploymentClient(cc *grpc.ClientConn) *EntityClient[model.Deployment] {
	return NewEntityClient[model.Deployment](cc, DeploymentServiceName)
}

// NewAssignmentClient dials an AssignmentClient stub over cc.
func NewAssignmentClient(cc *grpc.ClientConn) *EntityClient[model.Assignment] {
	return NewEntityClient[model.Assignment](cc, AssignmentServiceName)
}
