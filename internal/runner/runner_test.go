package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/stockcrawl/internal/config"
	"github.com/law-makers/stockcrawl/internal/engine"
	"github.com/law-makers/stockcrawl/internal/engine/static"
	"github.com/law-makers/stockcrawl/internal/statuslog"
	"github.com/law-makers/stockcrawl/pkg/models"
)

var fixedNow = time.Date(2025, 3, 14, 1, 30, 0, 0, time.UTC)

func row(rank int, name, symbol string) string {
	var b strings.Builder
	b.WriteString(`<li class="List(n)"><div class="Pos(r) Ov(h)">`)
	b.WriteString(`<div class="D(f) Start(0) H(100%) Ai(c)">`)
	fmt.Fprintf(&b, `<div class="W(40px) Fz(14px)"><span>%d</span></div>`, rank)
	fmt.Fprintf(&b, `<div class="D(f) Ai(c)"><div class="Lh(20px) Fw(600) Fz(16px) Ell">%s</div>`, name)
	fmt.Fprintf(&b, `<div class="D(f) Ai(c)"><span class="Fz(14px) C(#979ba7) Ell">%s.TW</span></div></div>`, symbol)
	b.WriteString(`</div><div class="D(f) Ai(c) Flx(a)">`)
	for _, c := range []string{"580.00", "▲5.00", "▲0.87%", "585.00", "575.00", "10.00", "45,123", "26.18"} {
		fmt.Fprintf(&b, `<div class="Fxg(1) Fxs(1) Ta(end)"><span>%s</span></div>`, c)
	}
	b.WriteString(`</div></div></li>`)
	return b.String()
}

func rankingPage(rows ...string) string {
	return `<html><body><div class="table-body-wrapper"><ul>` + strings.Join(rows, "") + `</ul></div></body></html>`
}

type stubFetcher struct {
	html string
	err  error
}

func (s *stubFetcher) Name() string { return "stub" }

func (s *stubFetcher) Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return &models.Page{URL: opts.URL, StatusCode: 200, HTML: s.html}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.OutputDir = t.TempDir()
	cfg.TopN = 2
	cfg.TopFile = "stock_top2_volume.json"
	cfg.Executions = 1
	cfg.Interval = 0
	return cfg
}

func newRunner(cfg *config.Config, f engine.Fetcher) (*Runner, *bytes.Buffer) {
	var out bytes.Buffer
	status := statuslog.New(cfg.Path(cfg.LogFile)).WithClock(func() time.Time { return fixedNow })
	r := New(cfg, f, status, &out)
	r.now = func() time.Time { return fixedNow }
	return r, &out
}

func readLog(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	data, err := os.ReadFile(cfg.Path(cfg.LogFile))
	if err != nil {
		t.Fatalf("failed to read execution log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestExecute_WritesSortedReports(t *testing.T) {
	cfg := testConfig(t)
	html := rankingPage(row(3, "長榮", "2603"), row(1, "台積電", "2330"), row(2, "鴻海", "2317"))
	r, out := newRunner(cfg, &stubFetcher{html: html})

	exec := r.Execute(context.Background(), 1)
	if exec.Err != nil {
		t.Fatalf("Execute failed: %v", exec.Err)
	}

	var full models.RankingReport
	data, err := os.ReadFile(cfg.Path(cfg.FullFile))
	if err != nil {
		t.Fatalf("full report missing: %v", err)
	}
	if err := json.Unmarshal(data, &full); err != nil {
		t.Fatalf("full report is not JSON: %v", err)
	}
	if full.Source != FullSource {
		t.Errorf("Expected source %q, got %q", FullSource, full.Source)
	}
	if full.LastUpdated != "2025-03-14 09:30:00" {
		t.Errorf("Expected UTC+8 timestamp, got %s", full.LastUpdated)
	}
	if full.ExecutionCount != 1 {
		t.Errorf("Expected execution count 1, got %d", full.ExecutionCount)
	}
	if len(full.RankingData) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(full.RankingData))
	}
	for i, rec := range full.RankingData {
		if rec.Rank != i+1 {
			t.Errorf("Expected rank %d at %d, got %d", i+1, i, rec.Rank)
		}
	}
	if full.RankingData[0].Symbol != "2330" || full.RankingData[0].Change != "5.00" {
		t.Errorf("Unexpected first record: %+v", full.RankingData[0])
	}
	if !strings.Contains(string(data), "台積電") {
		t.Error("Expected CJK text to be written unescaped")
	}

	var top models.TopReport
	data, err = os.ReadFile(cfg.Path(cfg.TopFile))
	if err != nil {
		t.Fatalf("top report missing: %v", err)
	}
	if err := json.Unmarshal(data, &top); err != nil {
		t.Fatalf("top report is not JSON: %v", err)
	}
	if top.Source != "Finance Taiwan (Top 2 Volume Ranking)" {
		t.Errorf("Unexpected top source %q", top.Source)
	}
	if len(top.Data) != 2 || top.Data[1].Symbol != "2317" {
		t.Errorf("Unexpected top data: %+v", top.Data)
	}

	lines := readLog(t, cfg)
	if len(lines) != 1 || lines[0] != "[O] [2025-03-14 09:30:00] 完成爬取台灣股市前 2 大交易量資料。" {
		t.Errorf("Unexpected log lines: %q", lines)
	}

	if !strings.Contains(out.String(), "1. 台積電 (2330)") {
		t.Errorf("Expected preview in console output, got %q", out.String())
	}
}

func TestExecute_NoRowsWritesDebugDump(t *testing.T) {
	cfg := testConfig(t)
	html := `<html><body><p>系統維護中</p></body></html>`
	r, _ := newRunner(cfg, &stubFetcher{html: html})

	exec := r.Execute(context.Background(), 1)
	if !errors.Is(exec.Err, ErrEmpty) {
		t.Fatalf("Expected ErrEmpty, got %v", exec.Err)
	}

	dump, err := os.ReadFile(cfg.Path(cfg.DebugFile))
	if err != nil {
		t.Fatalf("debug dump missing: %v", err)
	}
	if string(dump) != html {
		t.Errorf("Expected dump of the page, got %q", dump)
	}
	if exists(cfg.Path(cfg.FullFile)) || exists(cfg.Path(cfg.TopFile)) {
		t.Error("Expected no JSON output")
	}

	lines := readLog(t, cfg)
	if lines[0] != "[X] [2025-03-14 09:30:00] 爬取失敗，Error: 解析結果為空，本次爬蟲終止" {
		t.Errorf("Unexpected log line: %q", lines[0])
	}
}

func TestExecute_AllRowsSkippedHasNoDump(t *testing.T) {
	cfg := testConfig(t)
	html := rankingPage(`<li class="List(n)"><div>no panel</div></li>`)
	r, _ := newRunner(cfg, &stubFetcher{html: html})

	exec := r.Execute(context.Background(), 1)
	if !errors.Is(exec.Err, ErrEmpty) {
		t.Fatalf("Expected ErrEmpty, got %v", exec.Err)
	}
	if exists(cfg.Path(cfg.DebugFile)) {
		t.Error("Expected no debug dump when rows were found")
	}
}

func TestExecute_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.URL = server.URL
	fetcher := static.New(&http.Client{Timeout: 5 * time.Second}, nil, nil, static.Config{Headers: cfg.RequestHeaders()})
	r, _ := newRunner(cfg, fetcher)

	exec := r.Execute(context.Background(), 1)
	if !errors.Is(exec.Err, ErrFetch) {
		t.Fatalf("Expected ErrFetch, got %v", exec.Err)
	}
	if exists(cfg.Path(cfg.FullFile)) || exists(cfg.Path(cfg.DebugFile)) {
		t.Error("Expected nothing but the log to be written")
	}

	lines := readLog(t, cfg)
	if !strings.HasPrefix(lines[0], "[X] [2025-03-14 09:30:00] 爬取失敗，Error: 無法取得 HTML 內容，本次爬蟲終止: ") {
		t.Errorf("Unexpected log line: %q", lines[0])
	}
	if !strings.Contains(lines[0], "503") {
		t.Errorf("Expected status code in log line, got %q", lines[0])
	}
}

func TestExecute_EndToEndOverHTTP(t *testing.T) {
	var referer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(rankingPage(row(1, "台積電", "2330"), row(2, "鴻海", "2317"))))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.URL = server.URL + "/rank/volume?exchange=TAI"
	cfg.Referer = server.URL + "/"
	fetcher := static.New(&http.Client{Timeout: 5 * time.Second}, nil, nil, static.Config{Headers: cfg.RequestHeaders()})
	r, _ := newRunner(cfg, fetcher)

	if exec := r.Execute(context.Background(), 1); exec.Err != nil {
		t.Fatalf("Execute failed: %v", exec.Err)
	}
	if referer != server.URL+"/" {
		t.Errorf("Expected Referer %s/, got %q", server.URL, referer)
	}
	if !exists(cfg.Path(cfg.TopFile)) {
		t.Error("Expected top file to be written")
	}
}

func TestPersist_PartialFailure(t *testing.T) {
	cfg := testConfig(t)
	// a directory where the full report should go makes that write fail
	if err := os.Mkdir(cfg.Path(cfg.FullFile), 0755); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	html := rankingPage(row(1, "台積電", "2330"))
	r, out := newRunner(cfg, &stubFetcher{html: html})

	exec := r.Execute(context.Background(), 1)
	if !errors.Is(exec.Err, ErrPersist) {
		t.Fatalf("Expected ErrPersist, got %v", exec.Err)
	}
	if !exists(cfg.Path(cfg.TopFile)) {
		t.Error("Expected top file to be written despite full report failure")
	}

	lines := readLog(t, cfg)
	if !strings.HasPrefix(lines[0], "[X] [2025-03-14 09:30:00] 爬取失敗，Error: 儲存完整排名資料時發生錯誤: ") {
		t.Errorf("Unexpected log line: %q", lines[0])
	}
	if !strings.Contains(out.String(), "1. 台積電 (2330)") {
		t.Errorf("Expected preview despite failed write, got %q", out.String())
	}
}

func TestPersist_Exports(t *testing.T) {
	cfg := testConfig(t)
	cfg.Exports = []string{"csv", "markdown", "xlsx"}
	html := rankingPage(row(1, "台積電", "2330"), row(2, "鴻海", "2317"))
	r, _ := newRunner(cfg, &stubFetcher{html: html})

	if exec := r.Execute(context.Background(), 1); exec.Err != nil {
		t.Fatalf("Execute failed: %v", exec.Err)
	}
	for _, name := range []string{"stock_volume_ranking.csv", "stock_volume_ranking.md", "stock_volume_ranking.xlsx"} {
		if !exists(filepath.Join(cfg.OutputDir, name)) {
			t.Errorf("Expected export %s", name)
		}
	}
}

func TestRun_MultipleExecutions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Executions = 3
	html := rankingPage(row(1, "台積電", "2330"))
	r, out := newRunner(cfg, &stubFetcher{html: html})

	s := r.Run(context.Background())
	if s.Completed != 3 || s.Succeeded != 3 || s.Interrupted {
		t.Errorf("Unexpected summary: %+v", s)
	}
	if got := len(readLog(t, cfg)); got != 3 {
		t.Errorf("Expected 3 log lines, got %d", got)
	}

	var top models.TopReport
	data, _ := os.ReadFile(cfg.Path(cfg.TopFile))
	if err := json.Unmarshal(data, &top); err != nil {
		t.Fatalf("top report is not JSON: %v", err)
	}
	if top.ExecutionCount != 3 {
		t.Errorf("Expected last execution to win, got %d", top.ExecutionCount)
	}
	if !strings.Contains(out.String(), "完成 3/3 次爬蟲任務") {
		t.Errorf("Expected final summary, got %q", out.String())
	}
}

func TestRun_FailuresKeepGoing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Executions = 2
	cfg.Interval = 20 * time.Millisecond
	r, _ := newRunner(cfg, &stubFetcher{err: errors.New("connection refused")})

	start := time.Now()
	s := r.Run(context.Background())
	if s.Completed != 2 || s.Succeeded != 0 {
		t.Errorf("Unexpected summary: %+v", s)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Expected a full interval wait after a failure, got %s", elapsed)
	}
	if got := len(readLog(t, cfg)); got != 2 {
		t.Errorf("Expected 2 log lines, got %d", got)
	}
}

func TestRun_Interrupted(t *testing.T) {
	cfg := testConfig(t)
	cfg.Executions = 3
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, out := newRunner(cfg, &stubFetcher{html: rankingPage(row(1, "台積電", "2330"))})

	s := r.Run(ctx)
	if !s.Interrupted || s.Completed != 0 {
		t.Errorf("Unexpected summary: %+v", s)
	}

	lines := readLog(t, cfg)
	if len(lines) != 1 || lines[0] != "[X] [2025-03-14 09:30:00] 爬取失敗，Error: 使用者中斷程式執行" {
		t.Errorf("Unexpected log lines: %q", lines)
	}
	if !strings.Contains(out.String(), "使用者中斷程式執行") {
		t.Errorf("Expected interruption notice, got %q", out.String())
	}
}

func TestRun_InterruptedDuringWait(t *testing.T) {
	cfg := testConfig(t)
	cfg.Executions = 2
	cfg.Interval = time.Minute
	ctx, cancel := context.WithCancel(context.Background())

	r, _ := newRunner(cfg, &stubFetcher{html: rankingPage(row(1, "台積電", "2330"))})
	time.AfterFunc(50*time.Millisecond, cancel)

	s := r.Run(ctx)
	if !s.Interrupted || s.Completed != 1 {
		t.Errorf("Unexpected summary: %+v", s)
	}

	lines := readLog(t, cfg)
	if len(lines) != 2 || !strings.HasSuffix(lines[1], "使用者中斷程式執行") {
		t.Errorf("Unexpected log lines: %q", lines)
	}
}
