package config

import "github.com/spf13/cobra"

// RegisterFlags registers the crawler flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	flags := cmd.PersistentFlags()
	flags.BoolP("test", "t", false, "Test mode: 3 executions, 5 seconds apart")
	flags.String("config", "", "Path to YAML configuration file (optional)")
	flags.String("url", DefaultURL, "Ranking page URL")
	flags.Int("top", DefaultTopN, "Number of records in the top-N file")
	flags.String("output-dir", DefaultOutputDir, "Directory for JSON, exports, log and debug files")
	flags.String("mode", DefaultMode, "Fetch engine: static, browser, or auto")
	flags.StringSlice("export", nil, "Extra export formats: csv, markdown, xlsx")
	flags.Int("executions", DefaultExecutions, "Number of executions (overrides test mode)")
	flags.Duration("interval", DefaultInterval, "Interval between execution starts (overrides test mode)")
	flags.String("timeout", DefaultHTTPTimeout.String(), "Set hard timeout for requests")
	flags.String("user-agent", "", "Custom user agent string")
	flags.StringSlice("proxy", nil, "HTTP/SOCKS5 proxy, repeat to rotate (e.g., http://localhost:8080)")
	flags.StringArrayP("header", "H", []string{}, "Custom headers (e.g., -H \"Cookie: a=b\")")
	flags.Int("retries", DefaultRetries, "Retry failed fetches with exponential backoff")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.BoolP("quiet", "q", false, "Suppress all output except errors")
	flags.Bool("json", false, "Output logs in JSON format")
}
