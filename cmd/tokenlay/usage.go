package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/tokenlay/tokenlay-go/internal/services/database"
	"github.com/tokenlay/tokenlay-go/internal/services/usage"

	"github.com/spf13/cobra"
)

var recentLimit int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize the usage ledger named in the config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Usage == nil {
			return errors.New("no usage ledger configured")
		}

		db, err := database.New(*cfg.Usage)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := usage.NewService(db.DB)
		summary, err := svc.Summarize(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ledger: %s\n", db.DriverName())
		fmt.Fprintf(out, "calls: %d  cost: %.6f  tokens: %d (in %d, out %d)  blocked: %d\n",
			summary.Calls, summary.Cost, summary.TokensTotal, summary.TokensInput, summary.TokensOutput, summary.Blocked)

		if recentLimit <= 0 {
			return nil
		}

		records, err := svc.ListRecent(cmd.Context(), recentLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REQUEST\tPROVIDER\tMODEL\tACTION\tCOST\tTOKENS\tLATENCY")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.6f\t%d\t%dms\n",
				r.RequestID, r.Provider, r.Model, r.RuleAction, r.Cost, r.TokensTotal, r.LatencyMs)
		}
		return w.Flush()
	},
}

func init() {
	usageCmd.Flags().IntVarP(&recentLimit, "recent", "n", 10, "number of recent calls to list (0 to skip)")
	rootCmd.AddCommand(usageCmd)
}
