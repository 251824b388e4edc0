package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/fabriq/api/fabriqpb"
	"github.com/cuemby/fabriq/internal/model"
)

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Manage workloads",
}

func init() {
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or update a workload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()

			teamID, _ := cmd.Flags().GetString("team")
			templateID, _ := cmd.Flags().GetString("template")
			if teamID == "" {
				return fmt.Errorf("--team is required")
			}

			m, opID, err := fabriqpb.NewWorkloadClient(cc).Upsert(context.Background(), model.Workload{
				ID:         model.MakeWorkloadID(teamID, args[0]),
				Name:       args[0],
				TeamID:     teamID,
				TemplateID: templateID,
			}, "")
			if err != nil {
				return err
			}
			fmt.Printf("workload %s saved (operation %s)\n", m.ID, opID)
			return nil
		},
	}
	createCmd.Flags().String("team", "", "owning team id (org:team)")
	createCmd.Flags().String("template", "", "default template id")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a workload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			m, err := fabriqpb.NewWorkloadClient(cc).Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", *m)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List workloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			ms, err := fabriqpb.NewWorkloadClient(cc).List(context.Background())
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
		Short: "Delete a workload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			opID, err := fabriqpb.NewWorkloadClient(cc).Delete(context.Background(), args[0], "")
			if err != nil {
				return err
			}
			fmt.Printf("workload %s deleted (operation %s)\n", args[0], opID)
			return nil
		},
	}

	workloadCmd.AddCommand(createCmd, getCmd, listCmd, deleteCmd)
}
