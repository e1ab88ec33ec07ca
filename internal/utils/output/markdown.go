package output

import (
	"fmt"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"

	"github.com/law-makers/stockcrawl/pkg/models"
)

// SaveMarkdown renders the report as an HTML table and converts it to a
// GitHub-flavored Markdown document at filepath
func SaveMarkdown(report models.RankingReport, filepath string) error {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	mdStr, err := converter.ConvertString(reportHTML(report))
	if err != nil {
		return fmt.Errorf("failed to convert report: %w", err)
	}
	return os.WriteFile(filepath, []byte(mdStr+"\n"), 0644)
}

func reportHTML(report models.RankingReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(report.Source))
	fmt.Fprintf(&b, "<p>last_updated_cst: %s, execution_count: %d</p>",
		html.EscapeString(report.LastUpdated), report.ExecutionCount)

	b.WriteString("<table><thead><tr>")
	for _, h := range recordHeader {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr></thead><tbody>")
	for _, r := range report.RankingData {
		b.WriteString("<tr>")
		for _, cell := range recordRow(r) {
			fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(cell))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	if len(report.RankingData) == 0 {
		b.WriteString("<p>no records</p>")
	}
	return b.String()
}
