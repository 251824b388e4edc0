// Package rpcapi wires internal/service onto the gRPC transport defined
// in api/fabriqpb: an auth interceptor extracts the caller's bearer
// token, per-entity server wrappers satisfy fabriqpb's server contracts
// (the six CRUD entities pass straight through since internal/service's
// method sets already match), and errs.Error kinds map onto grpc status
// codes.
package rpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/cuemby/fabriq/internal/errs"
)

type tokenKey struct{}

// TokenFromContext returns the bearer token AuthInterceptor attached to
// ctx, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	tok, ok := ctx.Value(tokenKey{}).(string)
	return tok, ok
}

// AuthInterceptor extracts the "authorization" metadata header: a
// missing header is Unauthenticated, more than one value is a malformed
// request. The raw header value is carried as-is; individual services
// that need it to check team membership pull it back out with
// TokenFromContext.
func AuthInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil, statusFromErr(errs.Unauthenticated("missing authorization header"))
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, statusFromErr(errs.Unauthenticated("missing authorization header"))
	}
	if len(values) > 1 {
		return nil, statusFromErr(errs.Validation("authorization header malformed"))
	}
	ctx = context.WithValue(ctx, tokenKey{}, values[0])
	return handler(ctx, req)
}

// StatusInterceptor maps the errs.Error kind returned by a handler onto
// a grpc status code, so callers above AuthInterceptor in the chain see
// ordinary grpc errors rather than fabriq's internal error type.
func StatusInterceptor(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err == nil {
		return resp, nil
	}
	return nil, statusFromErr(err)
}

func statusFromErr(err error) error {
	fe, ok := err.(*errs.Error)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	var code codes.Code
	switch fe.Kind {
	case errs.KindValidation:
		code = codes.InvalidArgument
	case errs.KindNotFound:
		code = codes.NotFound
	case errs.KindUnauthenticated:
		code = codes.Unauthenticated
	case errs.KindPermissionDenied:
		code = codes.PermissionDenied
	case errs.KindConflict:
		code = codes.AlreadyExists
	case errs.KindTransient:
		code = codes.Internal
	default:
		code = codes.Internal
	}
	return status.Error(code, fe.Error())
}
