package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/ui/output"
)

// Renderer writes reports to a writer, either styled or as JSON.
type Renderer struct {
	w     io.Writer
	json  bool
	style styles
}

// New returns a Renderer for w. The color profile follows output.ColorProfile.
func New(w io.Writer, asJSON bool) *Renderer {
	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(output.ColorProfile(w))
	return &Renderer{w: w, json: asJSON, style: newStyles(lr)}
}

// JSON reports whether the renderer prints JSON.
func (r *Renderer) JSON() bool {
	return r.json
}

func (r *Renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *Renderer) title(s string) {
	r.printf("%s\n", r.style.title.Render(s))
}

func (r *Renderer) row(label, value string) {
	r.printf("  %s %s\n", r.style.label.Render(label), value)
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// Versions prints a titled list of versions.
func (r *Renderer) Versions(title string, versions []string) error {
	if r.json {
		return r.writeJSON(map[string][]string{"versions": versions})
	}
	r.title(title)
	if len(versions) == 0 {
		r.printf("  %s\n", r.style.muted.Render("none"))
	}
	for _, v := range versions {
		r.printf("  %s %s\n", r.style.ok.Render(Dot), v)
	}
	return nil
}

// Mirror prints a mirror report.
func (r *Renderer) Mirror(report *domain.MirrorReport) error {
	if r.json {
		return r.writeJSON(report)
	}
	for _, v := range report.SortedVersions() {
		vm := report.Versions[v]
		icon := r.style.ok.Render(Check)
		if len(vm.Failed) > 0 {
			icon = r.style.fail.Render(Cross)
		}
		r.printf("%s %s\n", icon, r.style.title.Render(v))
		r.row("downloaded", fmt.Sprint(len(vm.Downloaded)))
		r.row("skipped", fmt.Sprint(len(vm.Skipped)))
		r.row("failed", fmt.Sprint(len(vm.Failed)))
		for _, f := range vm.Failed {
			r.printf("    %s %s %s\n", r.style.fail.Render(Cross), f.Path, r.style.muted.Render(f.Reason))
		}
	}
	d, s, f := report.Totals()
	r.printf("%s\n", r.style.muted.Render(fmt.Sprintf(
		"%d downloaded, %d skipped, %d failed (success %s, cache hits %s)",
		d, s, f, percent(report.SuccessRate()), percent(report.CacheHitRate()))))
	return nil
}

// Sync prints a sync result.
func (r *Renderer) Sync(res *domain.SyncResult) error {
	if r.json {
		return r.writeJSON(res)
	}
	r.title("Sync")
	r.row("added", joinOrNone(res.Added))
	r.row("removed", joinOrNone(res.Removed))
	r.row("unchanged", joinOrNone(res.Unchanged))
	if len(res.Unavailable) > 0 {
		r.row("unavailable", r.style.warn.Render(strings.Join(res.Unavailable, ", ")))
	}
	for v, files := range res.Orphans {
		r.row("orphans", fmt.Sprintf("%s: %d removed", v, len(files)))
	}
	if res.Mirror != nil {
		return r.Mirror(res.Mirror)
	}
	return nil
}

// Analysis prints an analysis report.
func (r *Renderer) Analysis(report *domain.AnalysisReport) error {
	if r.json {
		return r.writeJSON(report)
	}
	for _, v := range report.SortedVersions() {
		a := report.Versions[v]
		switch {
		case a.Error != "":
			r.printf("%s %s %s\n", r.style.fail.Render(Cross), r.style.title.Render(v), r.style.fail.Render(a.Error))
			continue
		case a.IsComplete:
			r.printf("%s %s\n", r.style.ok.Render(Check), r.style.title.Render(v))
		default:
			r.printf("%s %s\n", r.style.warn.Render(Warning), r.style.title.Render(v))
		}
		r.row("present", fmt.Sprintf("%d/%d", len(a.Present), a.ExpectedCount()))
		r.row("missing", fmt.Sprint(len(a.Missing)))
		r.row("orphaned", fmt.Sprint(len(a.Orphaned)))
		for _, p := range a.Missing {
			r.printf("    %s %s\n", r.style.fail.Render(Minus), p)
		}
		for _, p := range a.Orphaned {
			r.printf("    %s %s\n", r.style.warn.Render(Plus), p)
		}
	}
	return nil
}

// Comparison prints a version comparison.
func (r *Renderer) Comparison(c *domain.VersionComparison) error {
	if r.json {
		return r.writeJSON(c)
	}
	r.title(fmt.Sprintf("%s %s %s", c.From, Tilde, c.To))
	for _, p := range c.Added {
		r.printf("  %s %s\n", r.style.ok.Render(Plus), p)
	}
	for _, p := range c.Removed {
		r.printf("  %s %s\n", r.style.fail.Render(Minus), p)
	}
	for _, m := range c.Modified {
		stats := fmt.Sprintf("%d -> %d bytes", m.From.Size, m.To.Size)
		if m.LinesAdded > 0 || m.LinesRemoved > 0 {
			stats += fmt.Sprintf(", +%d -%d lines", m.LinesAdded, m.LinesRemoved)
		}
		r.printf("  %s %s %s\n", r.style.warn.Render(Tilde), m.Path, r.style.muted.Render(stats))
	}
	for _, f := range c.Failed {
		r.printf("  %s %s %s\n", r.style.fail.Render(Cross), f.Path, r.style.muted.Render(f.Reason))
	}
	r.printf("%s\n", r.style.muted.Render(fmt.Sprintf("%d added, %d removed, %d modified, %d unchanged",
		len(c.Added), len(c.Removed), len(c.Modified), c.Unchanged)))
	return nil
}

// Verify prints a verification result.
func (r *Renderer) Verify(res *domain.VerifyResult) error {
	if r.json {
		return r.writeJSON(res)
	}
	if res.Valid {
		r.printf("%s %s\n", r.style.ok.Render(Check), "lockfile versions are available upstream")
	} else {
		r.printf("%s %s\n", r.style.fail.Render(Cross), "lockfile tracks versions missing upstream")
	}
	r.row("missing", joinOrNone(res.MissingVersions))
	r.row("untracked", joinOrNone(res.ExtraVersions))
	return nil
}

// Files prints one path per line.
func (r *Renderer) Files(files []string) error {
	if r.json {
		return r.writeJSON(files)
	}
	for _, f := range files {
		r.printf("%s\n", f)
	}
	return nil
}

// Tree prints a file tree with indentation.
func (r *Renderer) Tree(nodes []domain.FileNode) error {
	if r.json {
		return r.writeJSON(nodes)
	}
	r.tree(nodes, 0)
	return nil
}

func (r *Renderer) tree(nodes []domain.FileNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.Type == domain.NodeDirectory {
			r.printf("%s%s\n", indent, r.style.title.Render(n.Name+"/"))
			r.tree(n.Children, depth+1)
			continue
		}
		r.printf("%s%s\n", indent, n.Name)
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
