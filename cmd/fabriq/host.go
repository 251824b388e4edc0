package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/fabriq/api/fabriqpb"
	"github.com/cuemby/fabriq/internal/model"
)

var hostCmd = &cobra.Command{
	Use:   "host",
	Short: "Manage hosts",
}

func init() {
	createCmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Create or update a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			labels, _ := cmd.Flags().GetStringSlice("label")
			m, opID, err := fabriqpb.NewHostClient(cc).Upsert(context.Background(), model.Host{
				ID:     args[0],
				Labels: labels,
			}, "")
			if err != nil {
				return err
			}
			fmt.Printf("host %s saved (operation %s)\n", m.ID, opID)
			return nil
		},
	}
	createCmd.Flags().StringSlice("label", nil, "label carried by this host (repeatable)")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			m, err := fabriqpb.NewHostClient(cc).Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", *m)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			ms, err := fabriqpb.NewHostClient(cc).List(context.Background())
			if err != nil {
				return err
			}
			for _, m := range ms {
				fmt.Printf("%+v\n", m)
			}
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			opID, err := fabriqpb.NewHostClient(cc).Delete(context.Background(), args[0], "")
			if err != nil {
				return err
			}
			fmt.Printf("host %s deleted (operation %s)\n", args[0], opID)
			return nil
		},
	}

	hostCmd.AddCommand(createCmd, getCmd, listCmd, deleteCmd)
}
