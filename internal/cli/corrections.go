package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/findmindisc/internal/cache"
	"github.com/ppiankov/findmindisc/internal/store"
)

var (
	recentDisc  string
	recentLimit int
)

var correctionsCmd = &cobra.Command{
	Use:   "corrections",
	Short: "Inspect the correction log",
	Long: `The correction log records every value the pipeline rewrote. It is written
only when corrections.enabled is true in the config.`,
}

var correctionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how often each disc field was corrected",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		ctx := cmd.Context()
		turns, err := st.TurnCount(ctx)
		if err != nil {
			return fmt.Errorf("count turns: %w", err)
		}
		stats, err := st.Stats(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), map[string]any{"turns": turns, "fields": stats})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Turns recorded: %d\n\n", turns)
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DISC\tFIELD\tCORRECTIONS")
		for _, s := range stats {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Disc, s.Field, s.Count)
		}
		return tw.Flush()
	},
}

var correctionsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the newest corrections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		recent, err := st.Recent(cmd.Context(), recentDisc, recentLimit)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), recent)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tTURN\tDISC\tFIELD\tLLM SAID\tCATALOG")
		for _, c := range recent {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				c.CreatedAt.Local().Format("2006-01-02 15:04"), c.TurnID, c.Disc, c.Field, c.Original, c.Corrected)
		}
		return tw.Flush()
	},
}

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	path, err := cache.ExpandHome(cfg.Corrections.DBPath)
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

func init() {
	rootCmd.AddCommand(correctionsCmd)
	correctionsCmd.AddCommand(correctionsStatsCmd, correctionsRecentCmd)

	correctionsCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON")
	correctionsRecentCmd.Flags().StringVar(&recentDisc, "disc", "", "only corrections of this disc")
	correctionsRecentCmd.Flags().IntVar(&recentLimit, "limit", 20, "maximum number of corrections")
}
