package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/financehub/financehub/cmd/financehubctl/cli"
	"github.com/financehub/financehub/internal/app"
	"github.com/financehub/financehub/internal/platform/cache"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and trigger background jobs",
}

var jobsTriggerCmd = &cobra.Command{
	Use:   "trigger <name> [closure-id]",
	Short: "Enqueue a job now",
	Long:  "Enqueue a job now. Known jobs: " + strings.Join(cli.Triggerable(), ", ") + ".",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		helper, err := openJobsCLI()
		if err != nil {
			return err
		}
		defer helper.Close()
		arg := ""
		if len(args) > 1 {
			arg = args[1]
		}
		msg, err := helper.Trigger(cmd.Context(), args[0], arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var jobsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show queue counters and scheduled tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		helper, err := openJobsCLI()
		if err != nil {
			return err
		}
		defer helper.Close()
		stats, err := helper.InspectQueue(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "QUEUE\tPENDING\tACTIVE\tSCHEDULED\tRETRY\tARCHIVED\tPROCESSED\tFAILED")
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n", stats.Queue, stats.Pending, stats.Active,
			stats.Scheduled, stats.Retry, stats.Archived, stats.Processed, stats.Failed)
		if err := w.Flush(); err != nil {
			return err
		}
		scheduled, err := helper.ListScheduled(cmd.Context(), 10)
		if err != nil {
			return err
		}
		for _, t := range scheduled {
			fmt.Fprintf(cmd.OutOrStdout(), "scheduled %s %s at %s\n", t.Type, t.ID, t.NextProcessAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func openJobsCLI() (*cli.JobsCLI, error) {
	app.LoadDotEnv(nil)
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	opts := cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	return cli.NewJobsCLI(opts.AsynqOpts(), cfg.IdempotencyRetention), nil
}

func init() {
	jobsCmd.AddCommand(jobsTriggerCmd, jobsStatsCmd)
	rootCmd.AddCommand(jobsCmd)
}
