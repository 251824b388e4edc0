package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cuemby/fabriq/api/fabriqpb"
	"github.com/cuemby/fabriq/internal/model"
)

// parseHostCount accepts either a non-negative integer or the literal
// "all", which maps onto model.MaxHostCount, the wire sentinel for
// "every host the target matches".
func parseHostCount(raw string) (int32, error) {
	if raw == "all" {
		return model.MaxHostCount, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("--hosts: %q is neither a non-negative number nor \"all\"", raw)
	}
	return int32(n), nil
}

var deploymentCmd = &cobra.Command{
	Use:   "deployment",
	Short: "Manage deployments",
}

func init() {
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create or update a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()

			workloadID, _ := cmd.Flags().GetString("workload")
			targetID, _ := cmd.Flags().GetString("target")
			templateID, _ := cmd.Flags().GetString("template")
			hostsFlag, _ := cmd.Flags().GetString("hosts")
			if workloadID == "" || targetID == "" {
				return fmt.Errorf("--workload and --target are required")
			}
			hostCount, err := parseHostCount(hostsFlag)
			if err != nil {
				return err
			}

			m := model.Deployment{
				Name:       args[0],
				WorkloadID: workloadID,
				TargetID:   targetID,
				HostCount:  hostCount,
			}
			if templateID != "" {
				m.TemplateID = &templateID
			}

			d, opID, err := fabriqpb.NewDeploymentClient(cc).Upsert(context.Background(), m, "")
			if err != nil {
				return err
			}
			fmt.Printf("deployment %s saved (operation %s)\n", d.ID, opID)
			return nil
		},
	}
	createCmd.Flags().String("workload", "", "owning workload id")
	createCmd.Flags().String("target", "", "target id to deploy onto")
	createCmd.Flags().String("template", "", "template override (defaults to the workload's)")
	createCmd.Flags().String("hosts", "1", "number of hosts to assign, or \"all\" for every matching host")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			m, err := fabriqpb.NewDeploymentClient(cc).Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", *m)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List deployments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			ms, err := fabriqpb.NewDeploymentClient(cc).List(context.Background())
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
		Short: "Delete a deployment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			opID, err := fabriqpb.NewDeploymentClient(cc).Delete(context.Background(), args[0], "")
			if err != nil {
				return err
			}
			fmt.Printf("deployment %s deleted (operation %s)\n", args[0], opID)
			return nil
		},
	}

	deploymentCmd.AddCommand(createCmd, getCmd, listCmd, deleteCmd)
}
