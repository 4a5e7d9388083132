package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/streamqa/reconcile/internal/runner"
)

var runOutputDir string

var runCmd = &cobra.Command{
	Use:   "run <questions.csv|xlsx> <transcript.txt>",
	Short: "Reconcile one question sheet against one archive transcript",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		inputPath, transcriptPath := args[0], args[1]

		inputData, err := os.ReadFile(inputPath)
		if err != nil {
			return eris.Wrapf(err, "read %s", inputPath)
		}
		transcriptData, err := os.ReadFile(transcriptPath)
		if err != nil {
			return eris.Wrapf(err, "read %s", transcriptPath)
		}

		outcome, err := env.Runner.Run(ctx, runner.Request{
			InputName:      filepath.Base(inputPath),
			InputData:      inputData,
			TranscriptName: filepath.Base(transcriptPath),
			TranscriptData: transcriptData,
		}, func(ev runner.Event) {
			zap.L().Info("progress",
				zap.Int("percent", ev.Progress),
				zap.String("stage", string(ev.Stage)),
				zap.String("message", ev.Message),
			)
		})
		if err != nil {
			return err
		}

		outputPath := filepath.Join(runOutputDir, outcome.OutputFilename)
		if err := os.WriteFile(outputPath, outcome.Artifact, 0o644); err != nil {
			return eris.Wrapf(err, "write %s", outputPath)
		}

		for _, w := range outcome.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
		}
		for _, j := range outcome.Judgments {
			fmt.Fprintf(cmd.OutOrStdout(), "matched: [%s] %s — %s\n", j.Time, j.Question, j.Reason.ArchiveReason)
		}

		stats := outcome.Stats
		fmt.Fprintf(cmd.OutOrStdout(),
			"wrote %s: %d questions, %d answered live, %d answered in archive, %d skipped, answer rate %.1f%%\n",
			outputPath, stats.TotalQuestions, stats.LiveJudgmentCount, stats.ArchiveJudgmentCount,
			stats.SkipCount, stats.AnswerRate,
		)

		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", ".", "directory for the reconciled workbook")
	rootCmd.AddCommand(runCmd)
}
