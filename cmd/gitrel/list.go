package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/service"
)

func newListCmd(g *globalOptions) *cobra.Command {
	var wide bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List installed binaries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}

			pkgs, err := service.NewListService(reg).Execute(cmd.Context())
			if err != nil {
				return err
			}
			printPackages(g.stdout, pkgs, wide)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&wide, "wide", "w", false, "also show install path, asset and publish date")
	return cmd
}

// printPackages renders pkgs as a table. Binaries whose file is gone are
// flagged in the Bin column.
func printPackages(w io.Writer, pkgs []service.ListedPackage, wide bool) {
	if len(pkgs) == 0 {
		fmt.Fprintln(w, "No packages installed.")
		return
	}

	st := newStyles(w)
	headers := []string{"Bin", "Requested", "Installed", "Repository"}
	if wide {
		headers = append(headers, "Path", "Asset", "Published")
	}

	rows := make([][]string, 0, len(pkgs))
	for _, p := range pkgs {
		bin := p.BinName
		if p.Missing {
			bin += " (missing)"
		}
		row := []string{bin, p.Requested, p.Tag, p.FullName()}
		if wide {
			row = append(row, p.Path, p.Asset, formatDate(p.PublishedAt))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.faint).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(w, t.Render())
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}
