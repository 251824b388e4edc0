// Command fabriq is the operator CLI for the fabriq control plane: it
// talks to fabriqd's gRPC entity API over a saved profile or explicit
// flags.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/cuemby/fabriq/internal/cliprofile"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fabriq",
	Short: "fabriq control plane CLI",
	Long: `fabriq manages templates, workloads, targets, hosts, deployments
and their generated assignments against a running fabriqd.`,
}

func init() {
	rootCmd.PersistentFlags().String("endpoint", "", "fabriqd gRPC endpoint (overrides the saved profile)")
	rootCmd.PersistentFlags().String("token", "", "bearer token (overrides the saved profile)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(workloadCmd)
	rootCmd.AddCommand(targetCmd)
	rootCmd.AddCommand(hostCmd)
	rootCmd.AddCommand(deploymentCmd)
	rootCmd.AddCommand(assignmentCmd)
	rootCmd.AddCommand(configCmd)
}

// connect resolves the effective endpoint/token from flags and the
// saved profile, dials fabriqd, and returns a connection whose unary
// calls all carry the resolved token as the "authorization" header.
func connect(cmd *cobra.Command) (*grpc.ClientConn, error) {
	prof, err := cliprofile.Load()
	if err != nil {
		return nil, err
	}

	endpoint, _ := cmd.Flags().GetString("endpoint")
	if endpoint == "" {
		endpoint = prof.Endpoint
	}
	if endpoint == "" {
		return nil, fmt.Errorf("no endpoint configured: run 'fabriq login' or pass --endpoint")
	}

	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = prof.Token
	}

	return grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(tokenInterceptor(token)),
	)
}

func tokenInterceptor(token string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", token)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save a fabriqd endpoint and bearer token for future commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint, _ := cmd.Flags().GetString("endpoint")
		token, _ := cmd.Flags().GetString("token")
		if endpoint == "" {
			return fmt.Errorf("--endpoint is required")
		}
		if err := cliprofile.Save(cliprofile.Profile{Endpoint: endpoint, Token: token}); err != nil {
			return err
		}
		fmt.Printf("Saved profile for %s\n", endpoint)
		return nil
	},
}
