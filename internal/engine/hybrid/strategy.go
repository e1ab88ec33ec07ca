package hybrid

// Strategy is the engine chosen after inspecting the static markup
type Strategy int

const (
	// StrategyStatic keeps the page returned by the HTTP fetch
	StrategyStatic Strategy = iota

	// StrategyBrowser refetches the page through the browser
	StrategyBrowser
)

// String returns the string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyStatic:
		return "Static"
	case StrategyBrowser:
		return "Browser"
	default:
		return "Unknown"
	}
}

// DetermineStrategy decides whether the static markup is good enough.
// A page without ranking rows but with scripts is assumed to render its
// list client-side.
func DetermineStrategy(html string) Strategy {
	if HasRankingRows(html) {
		return StrategyStatic
	}
	if CountScripts(html) == 0 {
		return StrategyStatic
	}
	return StrategyBrowser
}
