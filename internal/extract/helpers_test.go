package extract

import (
	"fmt"
	"strings"
)

type fixtureRow struct {
	rank     string
	name     string
	symbol   string
	cells    []string
	noPanel  bool
	noRank   bool
	rankSpan bool
}

func wellFormedRow(rank int) fixtureRow {
	return fixtureRow{
		rank:     fmt.Sprint(rank),
		name:     fmt.Sprintf("股票%d", rank),
		symbol:   fmt.Sprintf("%d.TW", 2300+rank),
		rankSpan: true,
		cells: []string{
			"100.50", "▲1.50", "▲1.52%", "101.00", "99.00", "2.00",
			fmt.Sprintf("%d,000", 90-rank), "12.34",
		},
	}
}

func (r fixtureRow) html() string {
	var b strings.Builder
	b.WriteString(`<li class="List(n)"><div class="Pos(r) Ov(h) table-row">`)

	if !r.noPanel {
		b.WriteString(`<div class="D(f) Start(0) H(100%) Ai(c) Bgc(#fff)">`)
		if !r.noRank {
			if r.rankSpan {
				fmt.Fprintf(&b, `<div class="W(40px) Fz(14px)"><span>%s</span></div>`, r.rank)
			} else {
				fmt.Fprintf(&b, `<div class="W(40px) Fz(14px)">%s</div>`, r.rank)
			}
		}
		fmt.Fprintf(&b, `<div class="D(f) Ai(c)"><div class="Lh(20px) Fw(600) Fz(16px) Ell">%s</div>`, r.name)
		fmt.Fprintf(&b, `<div class="D(f) Ai(c)"><span class="Fz(14px) C(#979ba7) Ell">%s</span></div></div>`, r.symbol)
		b.WriteString(`</div>`)
	}

	b.WriteString(`<div class="D(f) Ai(c) Flx(a)">`)
	for _, c := range r.cells {
		fmt.Fprintf(&b, `<div class="Fxg(1) Fxs(1) Ta(end)"><span class="Jc(fe) Fw(600)">%s</span></div>`, c)
	}
	b.WriteString(`</div></div></li>`)
	return b.String()
}

func page(rows ...fixtureRow) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>成交量排行</title></head><body>`)
	b.WriteString(`<div id="main"><div class="table-body-wrapper"><ul class="M(0) P(0)">`)
	for _, r := range rows {
		b.WriteString(r.html())
	}
	b.WriteString(`</ul></div></div></body></html>`)
	return b.String()
}
