package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/law-makers/stockcrawl/pkg/models"
)

func sampleReport() models.RankingReport {
	return models.RankingReport{
		Source:         "Finance Taiwan (Parsed from HTML)",
		LastUpdated:    "2026-10-19 13:30:00",
		ExecutionCount: 2,
		RankingData: []models.StockRecord{
			{Rank: 1, Name: "台積電", Symbol: "2330", Price: "1,045", Change: "15.00", ChangePercent: "1.46%",
				High: "1,050", Low: "1,030", PriceDiff: "20.00", Volume: "52,013", Turnover: "54.21"},
			{Rank: 2, Name: "長榮<航>", Symbol: "2618", Price: "38.40", Change: "0.35", ChangePercent: "0.92%",
				High: "38.90", Low: "38.00", PriceDiff: "0.90", Volume: "48,120", Turnover: "1.85"},
		},
	}
}

func TestSaveJSON_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.json")

	require.NoError(t, SaveJSON(sampleReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"name": "台積電"`)
	assert.Contains(t, out, `"name": "長榮<航>"`)
	assert.Contains(t, out, "\n    \"source\"")

	keys := []string{`"source"`, `"last_updated_cst"`, `"execution_count"`, `"ranking_data"`,
		`"rank"`, `"name"`, `"symbol"`, `"price"`, `"change"`, `"change_percent"`,
		`"high"`, `"low"`, `"price_diff"`, `"volume_shrs"`, `"turnover_B_NTD"`}
	last := -1
	for _, k := range keys {
		idx := strings.Index(out, k)
		require.GreaterOrEqual(t, idx, 0, "missing key %s", k)
		assert.Greater(t, idx, last, "key %s out of order", k)
		last = idx
	}
}

func TestSaveJSON_TopReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "top.json")
	report := models.TopReport{
		Source: "Finance Taiwan (Top 10 Volume Ranking)",
		Data:   []models.TopNView{sampleReport().RankingData[0].View()},
	}

	require.NoError(t, SaveJSON(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"volume": "52,013"`)
	assert.Contains(t, string(data), `"data": [`)
	assert.NotContains(t, string(data), "turnover")
}

func TestSaveJSON_BadPath(t *testing.T) {
	err := SaveJSON(sampleReport(), filepath.Join(t.TempDir(), "missing", "x.json"))
	assert.Error(t, err)
}

func TestDumpDebug_Truncates(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short", "<html></html>", 100, "<html></html>"},
		{"ascii cut", "abcdef", 3, "abc"},
		{"multibyte cut", "台積電聯電", 2, "台積"},
		{"exact", "台積", 2, "台積"},
		{"zero", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".html")
			require.NoError(t, DumpDebug(tt.in, tt.limit, path))
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.csv")

	require.NoError(t, SaveCSV(sampleReport().RankingData, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "rank", strings.TrimPrefix(rows[0][0], "\ufeff"))
	assert.Equal(t, []string{"1", "台積電", "2330", "1,045", "15.00", "1.46%", "1,050", "1,030", "20.00", "52,013", "54.21"}, rows[1])
}

func TestSaveMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.md")

	require.NoError(t, SaveMarkdown(sampleReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "# Finance Taiwan (Parsed from HTML)")
	assert.Contains(t, out, "| rank |")
	assert.Contains(t, out, "台積電")
	assert.Contains(t, out, "2618")
}

func TestSaveXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.xlsx")

	require.NoError(t, SaveXLSX(sampleReport(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, recordHeader, rows[0])
	assert.Equal(t, "台積電", rows[1][1])
	assert.Equal(t, "2", rows[2][0])
}
