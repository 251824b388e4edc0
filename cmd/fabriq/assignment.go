package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/fabriq/api/fabriqpb"
)

// assignmentCmd is read-only: assignments are derived by the reconciler
// from deployments and targets, never written directly.
var assignmentCmd = &cobra.Command{
	Use:   "assignment",
	Short: "Inspect reconciler-managed assignments",
}

func init() {
	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get an assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			m, err := fabriqpb.NewAssignmentClient(cc).Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", *m)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			ms, err := fabriqpb.NewAssignmentClient(cc).List(context.Background())
			if err != nil {
				return err
			}
			for _, m := range ms {
				fmt.Printf("%+v\n", m)
			}
			return nil
		},
	}

	assignmentCmd.AddCommand(getCmd, listCmd)
}
