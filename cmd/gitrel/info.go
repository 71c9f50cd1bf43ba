package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/service"
)

var infoFormats = []string{"text", "yaml", "json"}

func newInfoCmd(g *globalOptions) *cobra.Command {
	var (
		token  string
		output string
		filter asset.Filter
	)
	cmd := &cobra.Command{
		Use:   "info <[owner/]repo[@version]>",
		Short: "Show a release and the asset that would be installed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(output) {
				return fmt.Errorf("unknown output format %q (expected text, yaml or json)", output)
			}
			a, err := setup(cmd, g)
			if err != nil {
				return err
			}
			client, err := a.client(token)
			if err != nil {
				return err
			}
			if err := filter.Validate(true); err != nil {
				return fmt.Errorf("asset filter: %w", err)
			}

			svc := service.NewInfoService(a.resolver(client), a.selector())
			result, err := svc.Execute(cmd.Context(), service.InfoRequest{Spec: args[0], Filter: filter})
			if err != nil {
				return err
			}
			return printInfo(g.stdout, result, output)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&token, "token", "t", "", "GitHub token (default $GITREL_TOKEN or $GITHUB_TOKEN)")
	f.StringVarP(&output, "output", "o", "text", "output format: text, yaml or json")
	cmd.MarkFlagsMutuallyExclusive(addFilterFlags(f, "asset", "release asset", &filter)...)
	return cmd
}

func validFormat(format string) bool {
	for _, f := range infoFormats {
		if f == format {
			return true
		}
	}
	return false
}

func printInfo(w io.Writer, r *service.InfoResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	st := newStyles(w)
	rel := r.Release
	fmt.Fprintf(w, "%s %s\n", st.header.Render(r.Repo.String()), rel.TagName)
	if rel.Name != "" && rel.Name != rel.TagName {
		fmt.Fprintf(w, "  name:      %s\n", rel.Name)
	}
	fmt.Fprintf(w, "  published: %s\n", rel.PublishedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "  requested: %s (%s)\n", r.Request, r.Kind)
	if rel.Prerelease {
		fmt.Fprintln(w, "  prerelease")
	}
	if r.Selected != nil {
		fmt.Fprintf(w, "  selected:  %s\n", st.ok.Render(r.Selected.Name))
	} else {
		fmt.Fprintf(w, "  selected:  %s\n", st.fail.Render(r.SelectError))
	}

	if len(rel.Assets) == 0 {
		fmt.Fprintln(w, "\nThe release has no assets.")
		return nil
	}

	rows := make([][]string, 0, len(rel.Assets))
	for _, a := range rel.Assets {
		rows = append(rows, []string{a.Name, asset.FormatSize(a.Size), strconv.FormatInt(a.DownloadCount, 10)})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.faint).
		Headers("Asset", "Size", "Downloads").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header.Padding(0, 1)
			case r.Selected != nil && row >= 0 && row < len(rel.Assets) && rel.Assets[row].ID == r.Selected.ID:
				return st.ok.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})
	fmt.Fprintln(w)
	fmt.Fprintln(w, t.Render())
	return nil
}
