package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/fabriq/api/fabriqpb"
	"github.com/cuemby/fabriq/internal/model"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage templates",
}

func init() {
	createCmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Create or update a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()

			repository, _ := cmd.Flags().GetString("repository")
			gitRef, _ := cmd.Flags().GetString("git-ref")
			tmplPath, _ := cmd.Flags().GetString("path")

			client := fabriqpb.NewTemplateClient(cc)
			m, opID, err := client.Upsert(context.Background(), model.Template{
				ID:         args[0],
				Repository: repository,
				GitRef:     gitRef,
				Path:       tmplPath,
			}, "")
			if err != nil {
				return err
			}
			fmt.Printf("template %s saved (operation %s)\n", m.ID, opID)
			return nil
		},
	}
	createCmd.Flags().String("repository", "", "git repository URL")
	createCmd.Flags().String("git-ref", "main", "git ref to render from")
	createCmd.Flags().String("path", "", "path inside the repository containing manifests")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			m, err := fabriqpb.NewTemplateClient(cc).Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%+v\n", *m)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			ms, err := fabriqpb.NewTemplateClient(cc).List(context.Background())
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
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := connect(cmd)
			if err != nil {
				return err
			}
			defer cc.Close()
			opID, err := fabriqpb.NewTemplateClient(cc).Delete(context.Background(), args[0], "")
			if err != nil {
				return err
			}
			fmt.Printf("template %s deleted (operation %s)\n", args[0], opID)
			return nil
		},
	}

	templateCmd.AddCommand(createCmd, getCmd, listCmd, deleteCmd)
}
