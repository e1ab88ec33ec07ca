package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/stockcrawl/internal/app"
	"github.com/law-makers/stockcrawl/internal/config"
	"github.com/law-makers/stockcrawl/internal/ui"
)

// NewRootCmd builds the stockcrawl command. Console output of the run goes to console.
func NewRootCmd(console io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stockcrawl",
		Short: "Crawl the Taiwan stock market volume ranking",
		Long: `Stockcrawl fetches the Yahoo Finance Taiwan volume ranking page, extracts every
listed stock and writes the full ranking and the top-N view as JSON.

Each execution appends one line to the execution log. Failures are logged,
never signalled through the exit status.`,
		Example: `  # Single execution
  stockcrawl

  # Test mode: 3 executions, 5 seconds apart
  stockcrawl --test

  # Top 20 with CSV and XLSX exports
  stockcrawl --top 20 --export csv,xlsx --output-dir data`,
		Version:      "0.1.0",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
	}

	config.RegisterFlags(cmd)
	cmd.SetOut(console)
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpFunc(customHelpFunc)

	// Build the application lazily so -h/--version never touch the filesystem
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			cmd.SetOut(io.Discard)
		}
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		out := console
		if cfg.LogLevel == "error" {
			out = io.Discard
		}
		cmd.SetOut(out)
		a, err := app.New(cmd.Context(), cfg, out)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		a := GetAppFromCmd(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}
		if len(args) > 0 {
			log.Debug().Strs("args", args).Msg("Ignoring positional arguments")
		}
		a.Runner.Run(cmd.Context())
		return nil
	}

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a := GetAppFromCmd(cmd); a != nil {
			_ = a.Close(context.Background())
		}
	}

	return cmd
}

// Execute runs the root command with os.Args. Outcomes are reported through
// logs and the execution log only; it never exits the process.
func Execute(ctx context.Context) {
	run(ctx, os.Args[1:], os.Stdout)
}

// run executes one invocation; the closing line follows the run's console
// writer, so quiet mode silences it too
func run(ctx context.Context, args []string, console io.Writer) {
	cmd := NewRootCmd(console)
	cmd.SetArgs(normalizeArgs(args))
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("stockcrawl failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\n程式執行結束")
}

// normalizeArgs lowercases the test-mode switch so --TEST and -T are accepted
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		switch {
		case strings.EqualFold(arg, "--test"):
			out[i] = "--test"
		case strings.EqualFold(arg, "-t"):
			out[i] = "-t"
		default:
			out[i] = arg
		}
	}
	return out
}

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\n%s\n", ui.Bold(strings.ToUpper(cmd.Name())))
	fmt.Fprintf(w, "%s\n", cmd.Short)
	if cmd.Long != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Long)
	}

	fmt.Fprintf(w, "\n%s\n  %s\n", ui.Bold("Usage"), cmd.UseLine())

	if cmd.HasExample() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Examples"))
		for _, line := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "":
				continue
			case strings.HasPrefix(trimmed, "#"):
				fmt.Fprintf(w, "  %s\n", ui.Info(trimmed))
			default:
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+trimmed))
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n%s\n", ui.Bold("Flags"), cmd.Flags().FlagUsages())
}
