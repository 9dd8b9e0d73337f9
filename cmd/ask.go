package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"budgetpilot/internal/ai"
	"budgetpilot/internal/ai/reply"
)

var askRaw bool

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send a single prompt to the configured generation backend",
	Long: `Send one prompt through the configured generation backend, with the same
credential escalation and retry policy the server uses, and print the reply.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "print the generated text without structured reply parsing")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generator, err := ai.NewGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	text, err := generator.Generate(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askRaw {
		fmt.Fprintln(out, text)
		return nil
	}

	parsed := reply.Parse(text)
	fmt.Fprintln(out, parsed.DisplayText)
	for i, opt := range parsed.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
	return nil
}
