package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/brief-engine/internal/compose"
	"github.com/pdiddy/brief-engine/internal/generate"
	"github.com/pdiddy/brief-engine/internal/trends"
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Generate one intelligence report and print it to stdout",
	Long: `Brief runs the full report pipeline once: it fetches recent trends for
the given domain and role, composes a prompt, and pipes it through the
local text-generation engine. Use --weekly for the condensed digest shape
instead of the detailed report.`,
	RunE: runBrief,
}

func init() {
	briefCmd.Flags().String("domain", "", "professional domain, e.g. Marketing")
	briefCmd.Flags().String("role", "", "role within the domain, e.g. \"Data Analyst\"")
	briefCmd.Flags().Bool("weekly", false, "compose the condensed weekly digest instead of the full report")
	briefCmd.Flags().Int("count", 0, "number of trend articles to include (default 5)")

	rootCmd.AddCommand(briefCmd)
}

func runBrief(cmd *cobra.Command, args []string) error {
	domain, _ := cmd.Flags().GetString("domain")
	role, _ := cmd.Flags().GetString("role")
	if domain == "" || role == "" {
		return fmt.Errorf("provide both --domain and --role")
	}
	weekly, _ := cmd.Flags().GetBool("weekly")
	count, _ := cmd.Flags().GetInt("count")

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	provider, err := trends.NewProvider(cfg.Trends)
	if err != nil {
		return err
	}
	fetcher := trends.New(provider)
	gen := generate.New(cfg.Generator)

	mode := compose.OnDemand
	if weekly {
		mode = compose.Weekly
	}

	ctx := cmd.Context()
	trendText := fetcher.Insights(ctx, domain, role, count)
	prompt := compose.Compose(domain, role, trendText, mode)

	res := gen.Generate(ctx, prompt)
	report := res.Report()
	if report == "" {
		return fmt.Errorf("the generation engine exited without producing a report")
	}

	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}
