package rpcapi

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/cuemby/fabriq/internal/errs"
)

func echoHandler(ctx context.Context, req any) (any, error) {
	return ctx, nil
}

func TestAuthInterceptor_RejectsMissingMetadata(t *testing.T) {
	_, err := AuthInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, echoHandler)
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuthInterceptor_RejectsMissingAuthorizationHeader(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.MD{})
	_, err := AuthInterceptor(ctx, nil, &grpc.UnaryServerInfo{}, echoHandler)
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuthInterceptor_RejectsMultipleAuthorizationValues(t *testing.T) {
	md := metadata.Pairs("authorization", "token-a", "authorization", "token-b")
	ctx := metadata.NewIncomingContext(context.Background(), md)
	_, err := AuthInterceptor(ctx, nil, &grpc.UnaryServerInfo{}, echoHandler)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAuthInterceptor_AttachesTokenForHandler(t *testing.T) {
	md := metadata.Pairs("authorization", "token-a")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	resp, err := AuthInterceptor(ctx, nil, &grpc.UnaryServerInfo{}, echoHandler)
	require.NoError(t, err)

	handlerCtx := resp.(context.Context)
	tok, ok := TokenFromContext(handlerCtx)
	require.True(t, ok)
	assert.Equal(t, "token-a", tok)
}

func TestStatusInterceptor_PassesThroughSuccess(t *testing.T) {
	resp, err := StatusInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestStatusInterceptor_MapsErrsKindsToGRPCCodes(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
	}{
		{errs.Validation("bad"), codes.InvalidArgument},
		{errs.NotFound("missing"), codes.NotFound},
		{errs.Unauthenticated("no token"), codes.Unauthenticated},
		{errs.PermissionDenied("denied"), codes.PermissionDenied},
		{errs.Conflict("dup"), codes.AlreadyExists},
		{errs.Transient(fmt.Errorf("io"), "fail"), codes.Internal},
		{errs.FatalEvent("fatal"), codes.Internal},
		{fmt.Errorf("plain"), codes.Internal},
	}
	for _, tc := range cases {
		_, err := StatusInterceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
			return nil, tc.err
		})
		require.Error(t, err)
		assert.Equal(t, tc.code, status.Code(err), tc.err.Error())
	}
}
