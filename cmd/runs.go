package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent reconciliation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Store == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "run persistence is disabled (store.path is empty)")
			return nil
		}

		runs, err := env.Store.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CREATED\tSTATUS\tINPUT\tTRANSCRIPT\tQUESTIONS\tANSWERED\tRATE")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.1f%%\n",
				run.CreatedAt.Local().Format("2006-01-02 15:04"),
				run.Status,
				run.InputFile,
				run.TranscriptFile,
				run.Stats.TotalQuestions,
				run.Stats.FinalAnswerStatusCount,
				run.Stats.AnswerRate,
			)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
