package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/ZebulonRouseFrantzich/gitrel/internal/asset"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/binary"
	"github.com/ZebulonRouseFrantzich/gitrel/internal/service"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// styles renders for one writer, so colour is dropped when it is not a
// terminal.
type styles struct {
	ok     lipgloss.Style
	fail   lipgloss.Style
	faint  lipgloss.Style
	header lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		faint:  r.NewStyle().Faint(true),
		header: r.NewStyle().Bold(true),
	}
}

// reporter prints one line per finished package. Progress lines for
// packages being started only go to an interactive stderr.
type reporter struct {
	out    io.Writer
	status io.Writer
	styles styles
}

func newReporter(g *globalOptions) *reporter {
	r := &reporter{out: g.stdout, styles: newStyles(g.stdout)}
	if g.interactive {
		r.status = g.stderr
	}
	return r
}

func (r *reporter) Begin(action, name string) {
	if r.status == nil {
		return
	}
	fmt.Fprintf(r.status, "%s %s...\n", action, name)
}

func (r *reporter) End(res service.PackageResult) {
	if !res.OK() {
		fmt.Fprintf(r.out, "%s %s: %v\n", r.styles.fail.Render("✗"), res.Name, res.Err)
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", r.styles.ok.Render("✓"), describeResult(res))
}

func describeResult(res service.PackageResult) string {
	var b strings.Builder
	b.WriteString(res.Name)
	if res.Tag != "" {
		b.WriteString(" " + res.Tag)
	}
	b.WriteString(" " + res.Status.String())

	switch res.Status {
	case service.StatusInstalled, service.StatusUpdated:
		fmt.Fprintf(&b, " to %s", res.Path)
		details := []string{}
		if res.Asset != "" {
			details = append(details, res.Asset)
		}
		if res.Size > 0 {
			details = append(details, asset.FormatSize(res.Size))
		}
		if res.Verified != binary.VerificationNone {
			details = append(details, "verified "+res.Verified.String())
		}
		if len(details) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
		}
	case service.StatusUninstalled:
		if res.Path != "" {
			fmt.Fprintf(&b, " (%s)", res.Path)
		}
	}
	return b.String()
}

var summaryOrder = []service.Status{
	service.StatusInstalled,
	service.StatusUpdated,
	service.StatusUpToDate,
	service.StatusUninstalled,
	service.StatusFailed,
}

// printSummary prints the per-status totals of a batch.
func printSummary(w io.Writer, s *service.Summary) {
	var parts []string
	for _, status := range summaryOrder {
		if n := s.Count(status); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	fmt.Fprintf(w, "%d packages: %s\n", len(s.Results), strings.Join(parts, ", "))
}

// bar ends its line on Finish so the next report starts clean.
type bar struct {
	*progressbar.ProgressBar
	w io.Writer
}

func (b bar) Finish() error {
	err := b.ProgressBar.Finish()
	fmt.Fprintln(b.w)
	return err
}

// progressFor returns nil, disabling progress, unless stderr is a
// terminal and --no-progress is unset.
func progressFor(g *globalOptions) binary.ProgressFunc {
	if g.noProgress || !g.interactive {
		return nil
	}
	w := g.stderr
	return func(total int64, description string) binary.Progress {
		b := progressbar.NewOptions(int(total),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(65*time.Millisecond),
		)
		return bar{ProgressBar: b, w: w}
	}
}
