package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/findmindisc/internal/flight"
	"github.com/ppiankov/findmindisc/internal/model"
)

var (
	asJSON        bool
	simArm        string
	simThrow      int
	describeLang  string
	discsCategory string
	discsSpeed    string
)

var correctCmd = &cobra.Command{
	Use:   "correct [file]",
	Short: "Correct flight numbers and manufacturers in an answer",
	Long: `Correct reads an LLM answer from a file or stdin and rewrites flight numbers
and manufacturer names that disagree with the catalog. No LLM is called.

Example:
  findmindisc correct answer.md
  pbpaste | findmindisc correct --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := offlinePipeline(cmd.Context())
		if err != nil {
			return err
		}
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		text, err := readText(cmd, path)
		if err != nil {
			return err
		}

		res := p.Correct(text)
		if asJSON {
			return printJSON(cmd.OutOrStdout(), res)
		}
		fmt.Fprint(cmd.OutOrStdout(), res.Text)
		if len(res.Corrections) > 0 {
			fmt.Fprintf(os.Stderr, "\nCorrections (%d):\n", len(res.Corrections))
			for _, c := range res.Corrections {
				fmt.Fprintf(os.Stderr, "  • %s %s: %s → %s\n", c.Disc, c.Field, c.Original, c.Corrected)
			}
		}
		for _, s := range res.Skipped {
			fmt.Fprintf(os.Stderr, "  ? %s: %q left as is (%s)\n", s.Disc, s.Text, s.Reason)
		}
		return nil
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <disc>",
	Short: "Simulate the flight of a catalog disc",
	Long: `Simulate prints the flight path summary of a disc for slow, normal and fast
arms, or the full trajectory of one arm with --arm.

Example:
  findmindisc simulate Buzzz
  findmindisc simulate "Innova Destroyer" --throw-distance 85
  findmindisc simulate Volt --arm fast --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := offlinePipeline(cmd.Context())
		if err != nil {
			return err
		}
		name := joinArgs(args)
		out := cmd.OutOrStdout()

		if simArm != "" {
			arm, err := model.ParseArmSpeed(simArm)
			if err != nil {
				return err
			}
			f, err := p.Simulate(name, arm)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(out, f)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DISTANCE\tLATERAL\tPHASE")
			for _, pt := range f.Points {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", model.FormatNumber(pt.Distance), model.FormatNumber(pt.Lateral), pt.Phase)
			}
			return tw.Flush()
		}

		d, err := p.SimulateAll(name, simThrow)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(out, d)
		}
		req := flight.RequiredArmSpeed(d.Disc.Speed)
		fmt.Fprintf(out, "%s (%s) %s, %s, %s\n", d.Disc.Name, d.Disc.Manufacturer, d.Disc.FlightNumbers(), d.Category, d.Stability)
		fmt.Fprintf(out, "Arm needed: %dm minimum, %dm recommended\n\n", req.MinDistanceM, req.RecommendedDistanceM)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ARM\tDISTANCE\tMAX TURN\tLANDING\tFADE")
		for _, f := range d.Flights {
			fmt.Fprintf(tw, "%s\t%.0fm\t%.1fm\t%.1fm\t%.1fm\n", f.Arm, f.Stats.MaxDistanceM, f.Stats.MaxTurnM, f.Stats.FinalLateral, f.Stats.FadeAmountM)
		}
		return tw.Flush()
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <disc>...",
	Short: "Describe discs straight from the catalog",
	Example: `  findmindisc describe Volt Buzzz
  findmindisc describe Destroyer --lang en`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cfg, err := offlinePipeline(cmd.Context())
		if err != nil {
			return err
		}
		lang := describeLang
		if lang == "" {
			lang = cfg.LLM.Language
		}

		desc := p.Describe(args, lang)
		if asJSON {
			return printJSON(cmd.OutOrStdout(), desc)
		}
		for _, name := range desc.Unresolved {
			fmt.Fprintf(os.Stderr, "? %s: not in the catalog\n", name)
		}
		if desc.Text == "" {
			return fmt.Errorf("no known disc among %s", strings.Join(args, ", "))
		}
		fmt.Fprintln(cmd.OutOrStdout(), desc.Text)
		return nil
	},
}

var intentCmd = &cobra.Command{
	Use:   "intent <query>",
	Short: "Show the constraints extracted from a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := offlinePipeline(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), p.Intent(joinArgs(args)))
	},
}

var discsCmd = &cobra.Command{
	Use:   "discs",
	Short: "List catalog discs",
	Example: `  findmindisc discs --category midrange
  findmindisc discs --speed 7-9`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := offlinePipeline(cmd.Context())
		if err != nil {
			return err
		}
		c := p.Catalog()

		discs := c.All()
		switch {
		case discsSpeed != "":
			low, high, err := parseSpeedRange(discsSpeed)
			if err != nil {
				return err
			}
			discs = c.InSpeedRange(low, high)
		case discsCategory != "":
			cat, err := parseCategory(discsCategory)
			if err != nil {
				return err
			}
			discs = c.InCategory(cat)
		}

		if asJSON {
			return printJSON(cmd.OutOrStdout(), discs)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tMANUFACTURER\tFLIGHT\tCATEGORY\tSTABILITY")
		for _, d := range discs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Name, d.Manufacturer, d.FlightNumbers(), c.Category(d), d.Stability())
		}
		return tw.Flush()
	},
}

// parseSpeedRange parses "7-9" or a single speed
func parseSpeedRange(s string) (float64, float64, error) {
	lowText, highText, found := strings.Cut(s, "-")
	low, err := strconv.ParseFloat(strings.TrimSpace(lowText), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid speed range %q", s)
	}
	if !found {
		return low, low, nil
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(highText), 64)
	if err != nil || high < low {
		return 0, 0, fmt.Errorf("invalid speed range %q", s)
	}
	return low, high, nil
}

// parseCategory accepts "midrange", "fairway", "Fairway Driver" or "distance_driver"
func parseCategory(s string) (model.Category, error) {
	key := strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s)))
	for _, cat := range model.Categories {
		name := strings.ToLower(string(cat))
		if key == name || key == strings.Fields(name)[0] {
			return cat, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (supported: putter, midrange, fairway, distance)", s)
}

func init() {
	for _, cmd := range []*cobra.Command{correctCmd, simulateCmd, describeCmd, discsCmd} {
		cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(intentCmd)

	simulateCmd.Flags().StringVar(&simArm, "arm", "", "print the trajectory for one arm speed (slow, normal, fast)")
	simulateCmd.Flags().IntVar(&simThrow, "throw-distance", 0, "your throwing distance in meters, adds a personal flight")
	describeCmd.Flags().StringVar(&describeLang, "lang", "", "description language (da, en)")
	discsCmd.Flags().StringVar(&discsCategory, "category", "", "putter, midrange, fairway or distance")
	discsCmd.Flags().StringVar(&discsSpeed, "speed", "", "speed or speed range, e.g. 7-9")
}
