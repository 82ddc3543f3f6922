package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ppiankov/findmindisc/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// Renderer writes recommendations as JSON, Markdown or a terminal summary
type Renderer struct {
	includeFlight bool // Add trajectory points to Markdown reports
}

// NewRenderer creates a renderer
func NewRenderer(includeFlight bool) *Renderer {
	return &Renderer{includeFlight: includeFlight}
}

// JSON returns the indented JSON form of rec
func (r *Renderer) JSON(rec *model.Recommendation) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}

// RenderJSON writes rec as JSON to path
func (r *Renderer) RenderJSON(rec *model.Recommendation, path string) error {
	data, err := r.JSON(rec)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes rec as a Markdown report to path
func (r *Renderer) RenderMarkdown(rec *model.Recommendation, path string) error {
	return writeFile(path, []byte(r.Markdown(rec)))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Markdown renders a report of one turn
func (r *Renderer) Markdown(rec *model.Recommendation) string {
	var b strings.Builder
	w := func(format string, args ...any) { fmt.Fprintf(&b, format, args...) }

	w("# FindMinDisc: %s\n\n", rec.Query)
	w("_Turn %s", rec.TurnID)
	if rec.Provider != "" {
		w(" · %s", rec.Provider)
		if rec.Model != "" {
			w("/%s", rec.Model)
		}
	}
	if rec.Cached {
		w(" · cached")
	}
	if !rec.CreatedAt.IsZero() {
		w(" · %s", rec.CreatedAt.Format("2006-01-02 15:04 MST"))
	}
	w("_\n\n")

	w("## Answer\n\n%s\n\n", strings.TrimSpace(rec.Answer))

	w("## Recommended discs\n\n")
	if len(rec.Discs) == 0 {
		w("No disc survived the catalog checks.\n\n")
	} else {
		w("| Disc | Manufacturer | Flight | Category | Stability | Slow | Normal | Fast |\n")
		w("|---|---|---|---|---|---|---|---|\n")
		for _, d := range rec.Discs {
			w("| %s | %s | %s | %s | %s |", d.Disc.Name, d.Disc.Manufacturer, d.Disc.FlightNumbers(), d.Category, d.Stability)
			for _, arm := range model.ArmSpeeds {
				w(" %s |", distanceOf(d, arm))
			}
			w("\n")
		}
		w("\n")
	}

	if len(rec.Corrections) > 0 {
		w("## Corrections\n\n| Disc | Field | LLM said | Catalog |\n|---|---|---|---|\n")
		for _, c := range rec.Corrections {
			w("| %s | %s | %s | %s |\n", c.Disc, c.Field, c.Original, c.Corrected)
		}
		w("\n")
	}

	if len(rec.Rejected) > 0 {
		w("## Removed by constraints\n\n")
		for _, rj := range rec.Rejected {
			w("- **%s**: %s\n", rj.Name, rejectionText(rj))
		}
		w("\n")
	}

	if len(rec.Unresolved) > 0 {
		w("## Not in the catalog\n\n")
		for _, name := range rec.Unresolved {
			w("- %s\n", name)
		}
		w("\n")
	}

	if len(rec.Signals) > 0 {
		w("## Signals\n\n")
		for _, s := range rec.Signals {
			w("- `%s` (%s): %s\n", s.Type, s.Severity, s.Description)
		}
		w("\n")
	}

	if r.includeFlight {
		for _, d := range rec.Discs {
			for _, f := range d.Flights {
				w("### %s, %s arm\n\n| Distance (m) | Lateral (m) | Phase |\n|---|---|---|\n", d.Disc.Name, f.Arm)
				for _, pt := range f.Points {
					w("| %s | %s | %s |\n", model.FormatNumber(pt.Distance), model.FormatNumber(pt.Lateral), pt.Phase)
				}
				w("\n")
			}
		}
	}

	return b.String()
}

func distanceOf(d model.RecommendedDisc, arm model.ArmSpeed) string {
	for _, f := range d.Flights {
		if f.Arm == arm {
			return fmt.Sprintf("%.0fm", f.Stats.MaxDistanceM)
		}
	}
	return "-"
}

func rejectionText(rj model.Rejection) string {
	if rj.Detail != "" {
		return rj.Detail
	}
	return rj.Reason
}

// RenderSummary prints a human-readable summary of one turn
func (r *Renderer) RenderSummary(out io.Writer, rec *model.Recommendation) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "  %s\n", rec.Query)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.TrimSpace(rec.Answer))
	fmt.Fprintln(out)

	if len(rec.Discs) > 0 {
		fmt.Fprintln(out, "Discs:")
		for _, d := range rec.Discs {
			fmt.Fprintf(out, "  ✓ %-14s %-16s %-12s %s, %s", d.Disc.Name, d.Disc.Manufacturer, d.Disc.FlightNumbers(), d.Category, d.Stability)
			if len(d.Flights) > 0 {
				fmt.Fprintf(out, "  (%s / %s / %s)", distanceOf(d, model.ArmSlow), distanceOf(d, model.ArmNormal), distanceOf(d, model.ArmFast))
			}
			fmt.Fprintln(out)
		}
	}
	for _, rj := range rec.Rejected {
		fmt.Fprintf(out, "  ✗ %-14s %s\n", rj.Name, rejectionText(rj))
	}
	for _, name := range rec.Unresolved {
		fmt.Fprintf(out, "  ? %-14s not in catalog\n", name)
	}

	if len(rec.Corrections) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Corrections (%d):\n", len(rec.Corrections))
		for _, c := range rec.Corrections {
			fmt.Fprintf(out, "  • %s %s: %s → %s\n", c.Disc, c.Field, c.Original, c.Corrected)
		}
	}

	if len(rec.Signals) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Signals:")
		for _, s := range rec.Signals {
			fmt.Fprintf(out, "  [%s] %s\n", s.Severity, s.Description)
		}
	}
	fmt.Fprintln(out)
}

// RenderReport writes the JSON and Markdown reports that have a path and
// prints the summary to out when it is not nil
func (r *Renderer) RenderReport(rec *model.Recommendation, jsonPath, mdPath string, out io.Writer) error {
	if jsonPath != "" {
		if err := r.RenderJSON(rec, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if mdPath != "" {
		if err := r.RenderMarkdown(rec, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	if out != nil {
		r.RenderSummary(out, rec)
	}
	return nil
}
