package config

import "time"

// Default constants for application configuration
const (
	DefaultURL        = "https://tw.stock.yahoo.com/rank/volume?exchange=TAI"
	DefaultTopN       = 10
	DefaultOutputDir  = "."
	DefaultFullFile   = "stock_volume_ranking.json"
	DefaultLogFile    = "stock_crawler_log.txt"
	DefaultDebugFile  = "stock_page_debug.html"
	DefaultDebugLimit = 100000
	DefaultMode       = "static"

	DefaultExecutions = 1
	DefaultInterval   = 0 * time.Second
	TestExecutions    = 3
	TestInterval      = 5 * time.Second

	DefaultLogLevel    = "info"
	DefaultJSONLog     = false
	DefaultHTTPTimeout = 30 * time.Second
	DefaultUserAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36"
	DefaultAccept      = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"
	DefaultAcceptLang  = "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7"

	DefaultRetries        = 0
	DefaultRetryBackoff   = 1 * time.Second
	DefaultRateLimitRPS   = 1.0
	DefaultRateLimitBurst = 1

	DefaultBrowserHeadless = true
	DefaultBrowserSettle   = 2 * time.Second

	// EnvPrefix is prepended to every environment variable, e.g. STOCKCRAWL_TOP_N
	EnvPrefix = "STOCKCRAWL"

	// unset marks Executions/Interval not chosen by any layer
	unset = -1
)
