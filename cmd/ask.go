package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fraudsight/fraudsight/internal/agent"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question from the command line",
	Long: `Runs the full answer pipeline for a single question and streams the
answer to stdout. Progress steps go to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("quiet", false, "suppress progress steps")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, cleanup, err := buildAgent(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	var outcome *agent.Outcome
	for ev := range a.Process(ctx, args[0], nil) {
		switch ev.Kind {
		case agent.EventStep:
			if !quiet {
				line := ev.Label
				if ev.Detail != "" {
					line += " (" + ev.Detail + ")"
				}
				fmt.Fprintln(os.Stderr, line)
			}
		case agent.EventFragment:
			fmt.Print(ev.Fragment)
		case agent.EventOutcome:
			outcome = ev.Outcome
		}
	}
	fmt.Println()

	if outcome == nil {
		return fmt.Errorf("no answer produced")
	}

	if !quiet {
		fmt.Fprintln(os.Stderr)
		if outcome.Score != nil {
			fmt.Fprintf(os.Stderr, "Quality: %d/5 (%s, %d attempt(s))\n",
				outcome.Score.Score, outcome.Confidence, outcome.Attempts)
		}
		if len(outcome.Sources) > 0 {
			fmt.Fprintf(os.Stderr, "Sources:\n  %s\n", strings.Join(outcome.Sources, "\n  "))
		}
	}

	return nil
}
