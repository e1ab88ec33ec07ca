// Package runner drives crawl executions: fetch, parse, rank, persist and
// record the outcome in the execution log.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/stockcrawl/internal/config"
	"github.com/law-makers/stockcrawl/internal/engine"
	"github.com/law-makers/stockcrawl/internal/extract"
	"github.com/law-makers/stockcrawl/internal/ranking"
	"github.com/law-makers/stockcrawl/internal/reqctx"
	"github.com/law-makers/stockcrawl/internal/statuslog"
	"github.com/law-makers/stockcrawl/internal/utils/output"
	"github.com/law-makers/stockcrawl/internal/utils/twtime"
	"github.com/law-makers/stockcrawl/pkg/models"
)

// Source labels written into the JSON documents
const (
	FullSource   = "Finance Taiwan (Parsed from HTML)"
	topSourceFmt = "Finance Taiwan (Top %d Volume Ranking)"
)

var (
	// ErrFetch marks an execution that could not retrieve the page
	ErrFetch = errors.New("無法取得 HTML 內容，本次爬蟲終止")
	// ErrEmpty marks an execution whose page yielded no records
	ErrEmpty = errors.New("解析結果為空，本次爬蟲終止")
	// ErrPersist marks an execution whose output could not be fully written
	ErrPersist = errors.New("failed to save results")
	// ErrInterrupted marks an execution aborted by the user
	ErrInterrupted = errors.New("使用者中斷程式執行")
)

// Runner executes crawls against one fetcher and one configuration
type Runner struct {
	cfg     *config.Config
	fetcher engine.Fetcher
	status  *statuslog.Log
	out     io.Writer
	now     func() time.Time
}

// New creates a Runner. Console output goes to out; pass io.Discard to silence it.
func New(cfg *config.Config, fetcher engine.Fetcher, status *statuslog.Log, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		status:  status,
		out:     out,
		now:     time.Now,
	}
}

// Execution is the result of one crawl
type Execution struct {
	Number  int
	Records []models.StockRecord
	Top     []models.TopNView
	Elapsed time.Duration
	Err     error
}

// Execute performs one full execution and records it in the execution log.
// The returned Execution carries the error, if any.
func (r *Runner) Execute(ctx context.Context, number int) Execution {
	ctx = reqctx.WithRun(ctx, number)
	logger := reqctx.Logger(ctx, log.Logger)
	start := time.Now()

	exec := Execution{Number: number}

	records, err := r.CrawlOnce(ctx)
	if err == nil {
		exec.Records, exec.Top = ranking.RankAndTruncate(records, r.cfg.TopN)
		err = r.Persist(exec.Records, exec.Top, number)
	}
	exec.Elapsed = time.Since(start)

	if err != nil {
		exec.Err = reqctx.NewRunError(ctx, err)
		if !errors.Is(err, ErrInterrupted) {
			r.record(logger, false, err.Error())
		}
		logger.Warn().Err(err).Dur("elapsed", exec.Elapsed).Msg("Execution failed")
		return exec
	}

	r.record(logger, true, fmt.Sprintf("完成爬取台灣股市前 %d 大交易量資料。", r.cfg.TopN))
	logger.Info().
		Int("records", len(exec.Records)).
		Dur("elapsed", exec.Elapsed).
		Msg("Execution completed")
	return exec
}

// CrawlOnce fetches and parses the ranking page, returning records in
// document order. Structural failures leave a debug dump behind.
func (r *Runner) CrawlOnce(ctx context.Context) ([]models.StockRecord, error) {
	logger := reqctx.Logger(ctx, log.Logger)

	fmt.Fprintf(r.out, "\n[%s] 執行爬蟲...\n", twtime.Format(r.now()))
	fmt.Fprintf(r.out, "正在從 %s 抓取資料...\n", r.cfg.URL)

	page, err := r.fetcher.Fetch(ctx, models.RequestOptions{
		URL:     r.cfg.URL,
		Mode:    r.cfg.Mode,
		Timeout: r.cfg.HTTPTimeout,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrInterrupted
		}
		logger.Debug().Err(err).Str("engine", r.fetcher.Name()).Msg("Fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	fmt.Fprintf(r.out, "成功取得頁面！內容長度: %d 字元\n", len([]rune(page.HTML)))

	res, err := extract.ParseHTML(page.HTML)
	if err != nil {
		logger.Debug().Err(err).Msg("Parse failed")
		if errors.Is(err, extract.ErrNoRows) {
			r.dumpDebug(logger, page.HTML)
		}
		return nil, ErrEmpty
	}

	logger.Debug().
		Int("rows", res.RowsFound).
		Int("skipped", res.Skipped).
		Int("records", len(res.Records)).
		Msg("Page parsed")
	fmt.Fprintf(r.out, "找到 %d 筆股票資料\n", res.RowsFound)

	if len(res.Records) == 0 {
		return nil, ErrEmpty
	}
	return res.Records, nil
}

// Persist writes the full and top-N documents plus any requested exports.
// Every write is attempted; failures are joined with "; ".
func (r *Runner) Persist(records []models.StockRecord, top []models.TopNView, execution int) error {
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	updated := twtime.Format(r.now())
	full := models.RankingReport{
		Source:         FullSource,
		LastUpdated:    updated,
		ExecutionCount: execution,
		RankingData:    records,
	}
	topReport := models.TopReport{
		Source:         fmt.Sprintf(topSourceFmt, r.cfg.TopN),
		LastUpdated:    updated,
		ExecutionCount: execution,
		Data:           top,
	}

	var failures []string
	save := func(desc string, write func() error) {
		if err := write(); err != nil {
			log.Error().Err(err).Msg(desc)
			fmt.Fprintf(r.out, "❌ %s: %v\n", desc, err)
			failures = append(failures, fmt.Sprintf("%s: %v", desc, err))
		}
	}

	fullPath := r.cfg.Path(r.cfg.FullFile)
	save("儲存完整排名資料時發生錯誤", func() error {
		if err := output.SaveJSON(full, fullPath); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "✅ 成功解析 %d 筆資料，並已儲存至 '%s'\n", len(records), fullPath)
		return nil
	})
	r.preview(records)

	topPath := r.cfg.Path(r.cfg.TopFile)
	save(fmt.Sprintf("儲存前 %d 名資料時發生錯誤", r.cfg.TopN), func() error {
		if err := output.SaveJSON(topReport, topPath); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "\n✅ 已擷取成交量排行前 %d 名資料，並儲存至 '%s'\n", len(top), topPath)
		return nil
	})

	base := strings.TrimSuffix(r.cfg.FullFile, filepath.Ext(r.cfg.FullFile))
	if r.cfg.Wants("csv") {
		save("匯出 CSV 時發生錯誤", func() error {
			return output.SaveCSV(records, r.cfg.Path(base+".csv"))
		})
	}
	if r.cfg.Wants("markdown") {
		save("匯出 Markdown 時發生錯誤", func() error {
			return output.SaveMarkdown(full, r.cfg.Path(base+".md"))
		})
	}
	if r.cfg.Wants("xlsx") {
		save("匯出 XLSX 時發生錯誤", func() error {
			return output.SaveXLSX(full, r.cfg.Path(base+".xlsx"))
		})
	}

	r.topTable(top)

	if len(failures) > 0 {
		return fmt.Errorf("%w: %s", ErrPersist, strings.Join(failures, "; "))
	}
	return nil
}

func (r *Runner) dumpDebug(logger zerolog.Logger, html string) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		logger.Warn().Err(err).Msg("Failed to create output directory for debug dump")
		return
	}
	path := r.cfg.Path(r.cfg.DebugFile)
	if err := output.DumpDebug(html, r.cfg.DebugLimit, path); err != nil {
		logger.Warn().Err(err).Msg("Failed to save debug dump")
		fmt.Fprintf(r.out, "無法保存調試文件: %v\n", err)
		return
	}
	logger.Warn().Str("file", path).Msg("No ranking rows found, page saved for analysis")
	fmt.Fprintf(r.out, "已將部分頁面內容保存至 '%s' 以供分析\n", path)
}

// record writes the execution log line. A persist failure carries the
// joined messages only, without the sentinel prefix.
func (r *Runner) record(logger zerolog.Logger, ok bool, message string) {
	if r.status == nil {
		return
	}
	var err error
	if ok {
		err = r.status.Success(message)
	} else {
		err = r.status.Failure(strings.TrimPrefix(message, ErrPersist.Error()+": "))
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to record execution status")
		fmt.Fprintf(r.out, "無法寫入日誌文件: %v\n", err)
	}
}
