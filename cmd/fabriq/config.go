package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/fabriq/api/fabriqpb"
	"github.com/cuemby/fabriq/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage hierarchical config overrides",
}

func init() {
	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config override on a template, workload, or deployment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()

			ownerKind, _ := cmd.Flags().GetString("owner-kind")
			ownerID, _ := cmd.Flags().GetString("owner-id")
			keyValue, _ := cmd.Flags().GetBool("key-value")
			if ownerKind == "" || ownerID == "" {
				return fmt.Errorf("--owner-kind and --owner-id are required")
			}

			valueType := model.ConfigValueString
			if keyValue {
				valueType = model.ConfigValueKeyValue
			}

			cfg, opID, err := fabriqpb.NewConfigClient(cc).Upsert(context.Background(), fabriqpb.UpsertConfigRequest{
				OwnerKind: ownerKind,
				OwnerID:   ownerID,
				Key:       args[0],
				Value:     args[1],
				ValueType: valueType,
			})
			if err != nil {
				return err
			}
			fmt.Printf("config %s saved (operation %s)\n", cfg.ID, opID)
			return nil
		},
	}
	setCmd.Flags().String("owner-kind", "", "template, workload, or deployment")
	setCmd.Flags().String("owner-id", "", "id of the owning template, workload, or deployment")
	setCmd.Flags().Bool("key-value", false, "store value as a semicolon-separated key=value set")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a config entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			m, err := fabriqpb.NewConfigClient(cc).Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", *m)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List config entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			ms, err := fabriqpb.NewConfigClient(cc).List(context.Background())
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
		Short: "Delete a config entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			opID, err := fabriqpb.NewConfigClient(cc).Delete(context.Background(), args[0], "")
			if err != nil {
				return err
			}
			fmt.Printf("config %s deleted (operation %s)\n", args[0], opID)
			return nil
		},
	}

	queryCmd := &cobra.Command{
		Use:   "query <scope-kind> <scope-id>",
		Short: "Resolve the effective config for a template, workload, or deployment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			values, err := fabriqpb.NewConfigClient(cc).Query(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			for k, v := range values {
				fmt.Printf("%s=%s\n", k, v)
			}
			return nil
		},
	}

	configCmd.AddCommand(setCmd, getCmd, listCmd, deleteCmd, queryCmd)
}
