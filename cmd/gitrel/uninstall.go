package main

import (
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/service"
)

func newUninstallCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall <bin-name>...",
		Aliases: []string{"remove", "rm"},
		Short:   "Remove installed binaries",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}

			svc := service.NewUninstallService(reg, newReporter(g), a.log)
			summary, err := svc.Execute(cmd.Context(), service.UninstallRequest{Names: args})
			return finish(g, summary, err)
		},
	}
}
