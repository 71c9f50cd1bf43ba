package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/service"
)

func newUpdateCmd(g *globalOptions) *cobra.Command {
	var (
		token string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "update [bin-name...]",
		Short: "Update installed binaries",
		Long: `Update installed binaries to the newest release matching the version
they were installed with. With no names every installed binary is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			client, err := a.client(token)
			if err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}
			deps, err := a.deps(client, reg)
			if err != nil {
				return err
			}

			summary, err := service.NewUpdateService(deps).Execute(cmd.Context(), service.UpdateRequest{
				Names: args,
				Force: force,
			})
			if err == nil && len(summary.Results) == 0 {
				fmt.Fprintln(g.stdout, "nothing installed")
				return nil
			}
			return finish(g, summary, err)
		},
	}
	cmd.Flags().StringVarP(&token, "token", "t", "", "GitHub token (default $GITREL_TOKEN or $GITHUB_TOKEN)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "reinstall even when up to date")
	return cmd
}
