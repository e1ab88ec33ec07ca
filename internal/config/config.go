package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/law-makers/stockcrawl/internal/utils/headers"
	urlutil "github.com/law-makers/stockcrawl/internal/utils/url"
	"github.com/law-makers/stockcrawl/pkg/models"
)

// Config holds application configuration values. Each field can be set in
// the YAML file, through STOCKCRAWL_<FIELD_NAME> (e.g. STOCKCRAWL_TOP_N) or by
// the matching flag.
type Config struct {
	// Target
	URL  string `yaml:"url" split_words:"true"`
	TopN int    `yaml:"top_n" split_words:"true"`

	// Output
	OutputDir  string   `yaml:"output_dir" split_words:"true"`
	FullFile   string   `yaml:"full_file" split_words:"true"`
	TopFile    string   `yaml:"top_file" split_words:"true"`
	LogFile    string   `yaml:"log_file" split_words:"true"`
	DebugFile  string   `yaml:"debug_file" split_words:"true"`
	DebugLimit int      `yaml:"debug_limit" split_words:"true"`
	Exports    []string `yaml:"exports" split_words:"true"`

	// Schedule
	TestMode   bool          `yaml:"test_mode" split_words:"true"`
	Executions int           `yaml:"executions" split_words:"true"`
	Interval   time.Duration `yaml:"interval" split_words:"true"`

	// Logging
	LogLevel string `yaml:"log_level" split_words:"true"`
	JSONLog  bool   `yaml:"json_log" split_words:"true"`

	// HTTP
	Mode        models.FetchMode  `yaml:"mode" split_words:"true"`
	HTTPTimeout time.Duration     `yaml:"timeout" split_words:"true"`
	UserAgent   string            `yaml:"user_agent" split_words:"true"`
	Referer     string            `yaml:"referer" split_words:"true"`
	Headers     map[string]string `yaml:"headers" split_words:"true"`
	Proxies     []string          `yaml:"proxies" split_words:"true"`

	// Retry and rate limiting
	Retries        int           `yaml:"retries" split_words:"true"`
	RetryBackoff   time.Duration `yaml:"retry_backoff" split_words:"true"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" split_words:"true"`
	RateLimitBurst int           `yaml:"rate_limit_burst" split_words:"true"`

	// Browser
	BrowserHeadless bool          `yaml:"browser_headless" split_words:"true"`
	BrowserSettle   time.Duration `yaml:"browser_settle" split_words:"true"`
	ChromePath      string        `yaml:"chrome_path" split_words:"true"`

	// ConfigFile is the YAML file the values were read from, if any
	ConfigFile string `yaml:"-" ignored:"true"`
}

// Defaults returns a Config holding the built-in defaults
func Defaults() *Config {
	return &Config{
		URL:             DefaultURL,
		TopN:            DefaultTopN,
		OutputDir:       DefaultOutputDir,
		FullFile:        DefaultFullFile,
		LogFile:         DefaultLogFile,
		DebugFile:       DefaultDebugFile,
		DebugLimit:      DefaultDebugLimit,
		Executions:      unset,
		Interval:        unset,
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		Mode:            models.FetchMode(DefaultMode),
		HTTPTimeout:     DefaultHTTPTimeout,
		UserAgent:       DefaultUserAgent,
		Headers:         map[string]string{},
		Retries:         DefaultRetries,
		RetryBackoff:    DefaultRetryBackoff,
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
		BrowserHeadless: DefaultBrowserHeadless,
		BrowserSettle:   DefaultBrowserSettle,
	}
}

// Load builds a Config by combining defaults, an optional YAML file,
// environment variables and CLI flags, in that order.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	path := os.Getenv(EnvPrefix + "_CONFIG")
	if cmd != nil && isSet(cmd.Flags(), "config") {
		path, _ = cmd.Flags().GetString("config")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cmd != nil {
		if err := applyFlags(cmd, cfg); err != nil {
			return nil, err
		}
	}

	cfg.finalize()

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.ConfigFile = path
	log.Debug().Str("path", path).Msg("Config file loaded")
	return nil
}

// finalize resolves values that depend on other settings
func (c *Config) finalize() {
	if c.Executions == unset {
		c.Executions = DefaultExecutions
		if c.TestMode {
			c.Executions = TestExecutions
		}
	}
	if c.Interval == unset {
		c.Interval = DefaultInterval
		if c.TestMode {
			c.Interval = TestInterval
		}
	}
	if c.Referer == "" {
		c.Referer = urlutil.Origin(c.URL)
	}
	if c.TopFile == "" {
		c.TopFile = fmt.Sprintf("stock_top%d_volume.json", c.TopN)
	}
	for i, e := range c.Exports {
		c.Exports[i] = strings.ToLower(strings.TrimSpace(e))
	}
	c.Mode = models.FetchMode(strings.ToLower(string(c.Mode)))
}

// RequestHeaders returns the headers sent with every page request
func (c *Config) RequestHeaders() map[string]string {
	h := map[string]string{
		"User-Agent":      c.UserAgent,
		"Accept":          DefaultAccept,
		"Accept-Language": DefaultAcceptLang,
	}
	if c.Referer != "" {
		h["Referer"] = c.Referer
	}
	for k, v := range c.Headers {
		h[k] = v
	}
	return h
}

// Path joins name onto the output directory
func (c *Config) Path(name string) string {
	return filepath.Join(c.OutputDir, name)
}

// Wants reports whether the export format was requested
func (c *Config) Wants(format string) bool {
	for _, e := range c.Exports {
		if e == format {
			return true
		}
	}
	return false
}

func applyFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		return isSet(flags, name)
	}

	if changed("test") {
		cfg.TestMode, _ = flags.GetBool("test")
	}
	if changed("url") {
		cfg.URL, _ = flags.GetString("url")
	}
	if changed("top") {
		cfg.TopN, _ = flags.GetInt("top")
	}
	if changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if changed("mode") {
		mode, _ := flags.GetString("mode")
		cfg.Mode = models.FetchMode(mode)
	}
	if changed("export") {
		cfg.Exports, _ = flags.GetStringSlice("export")
	}
	if changed("executions") {
		cfg.Executions, _ = flags.GetInt("executions")
	}
	if changed("interval") {
		cfg.Interval, _ = flags.GetDuration("interval")
	}
	if changed("timeout") {
		s, _ := flags.GetString("timeout")
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", s, err)
		}
		cfg.HTTPTimeout = d
	}
	if changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if changed("proxy") {
		cfg.Proxies, _ = flags.GetStringSlice("proxy")
	}
	if changed("header") {
		raw, _ := flags.GetStringArray("header")
		parsed, rejected := headers.ParseHeaders(raw)
		for _, r := range rejected {
			log.Warn().Str("header", r).Msg("Ignoring malformed header, expected \"Key: Value\"")
		}
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		for k, v := range parsed {
			cfg.Headers[k] = v
		}
	}
	if changed("retries") {
		cfg.Retries, _ = flags.GetInt("retries")
	}
	if changed("json") {
		cfg.JSONLog, _ = flags.GetBool("json")
	}
	if v, _ := flags.GetBool("quiet"); v {
		cfg.LogLevel = "error"
	}
	if v, _ := flags.GetBool("verbose"); v {
		cfg.LogLevel = "debug"
	}
	return nil
}

// isSet reports whether the flag was given on the command line
func isSet(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}
