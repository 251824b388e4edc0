package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/fabriq/api/fabriqpb"
	"github.com/cuemby/fabriq/internal/model"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage targets",
}

func init() {
	createCmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Create or update a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			labels, _ := cmd.Flags().GetStringSlice("label")
			m, opID, err := fabriqpb.NewTargetClient(cc).Upsert(context.Background(), model.Target{
				ID:     args[0],
				Labels: labels,
			}, "")
			if err != nil {
				return err
			}
			fmt.Printf("target %s saved (operation %s)\n", m.ID, opID)
			return nil
		},
	}
	createCmd.Flags().StringSlice("label", nil, "label to select hosts by (repeatable)")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			m, err := fabriqpb.NewTargetClient(cc).Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", *m)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			ms, err := fabriqpb.NewTargetClient(cc).List(context.Background())
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
		Short: "Delete a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			opID, err := fabriqpb.NewTargetClient(cc).Delete(context.Background(), args[0], "")
			if err != nil {
				return err
			}
			fmt.Printf("target %s deleted (operation %s)\n", args[0], opID)
			return nil
		},
	}

	targetCmd.AddCommand(createCmd, getCmd, listCmd, deleteCmd)
}
