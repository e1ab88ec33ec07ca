package runner

import (
	"fmt"
	"strings"

	"github.com/law-makers/stockcrawl/internal/ui"
	"github.com/law-makers/stockcrawl/pkg/models"
)

const (
	previewSize  = 5
	topTableSize = 10
)

func (r *Runner) preview(records []models.StockRecord) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", ui.Bold("前 5 筆資料預覽:"))
	for i, rec := range records {
		if i == previewSize {
			break
		}
		fmt.Fprintf(r.out, "%d. %s (%s): 股價 %s, 成交量 %s\n", i+1, rec.Name, rec.Symbol, rec.Price, rec.Volume)
	}
}

func (r *Runner) topTable(top []models.TopNView) {
	fmt.Fprintf(r.out, "\n%s\n", ui.Bold(fmt.Sprintf("前 %d 名成交量排行資料:", r.cfg.TopN)))
	for i, v := range top {
		if i == topTableSize {
			break
		}
		fmt.Fprintf(r.out, "%s %s %s: 股價 %s, 成交量 %s\n",
			ui.Info(fmt.Sprintf("%d.", v.Rank)), v.Symbol, v.Name, v.Price, v.Volume)
	}
	if r.cfg.TopN > topTableSize {
		fmt.Fprintln(r.out, "... 更多資料請參考 JSON 檔案 ...")
	}
}

func (r *Runner) banner() {
	line := strings.Repeat("=", 60)
	fmt.Fprintf(r.out, "\n%s\n", line)
	fmt.Fprintf(r.out, "%s\n", ui.Bold(fmt.Sprintf("股市前 %d 大成交量爬蟲開始執行", r.cfg.TopN)))
	if r.cfg.TestMode {
		fmt.Fprintf(r.out, "【測試模式】將執行 %d 次爬蟲，間隔 %s\n", r.cfg.Executions, r.cfg.Interval)
	} else {
		fmt.Fprintf(r.out, "程式將執行 %d 次爬蟲，每次間隔 %s\n", r.cfg.Executions, r.cfg.Interval)
	}
	fmt.Fprintln(r.out, "可透過 Ctrl+C 終止程式")
	fmt.Fprintf(r.out, "%s\n\n", line)
}

func (r *Runner) summary(s Summary) {
	line := strings.Repeat("=", 60)
	if s.Interrupted {
		fmt.Fprintf(r.out, "\n\n%s\n", ui.Error("使用者中斷程式執行"))
		fmt.Fprintf(r.out, "已完成 %d/%d 次爬蟲\n", s.Completed, s.Planned)
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", line)
	fmt.Fprintf(r.out, "完成 %d/%d 次爬蟲任務 (%s)\n", s.Completed, s.Planned,
		ui.Success(fmt.Sprintf("%d 成功", s.Succeeded)))
	fmt.Fprintf(r.out, "總執行時間: %.1f 秒\n", s.Elapsed.Seconds())
	fmt.Fprintf(r.out, "最終結果已儲存於 %s 檔案\n", r.cfg.Path(r.cfg.TopFile))
	fmt.Fprintln(r.out, line)
}
