package report

import (
	"io"
	"strconv"
	"strings"

	"tricks_check/attribution"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	ErrNoTable    = errors.New("summary table not found")
	ErrNoTotals   = errors.New("totals row not found")
	ErrNoDuration = errors.New("fight duration not found")
	ErrApplied    = errors.New("corrections already applied")
)

const (
	classTable    = "summary-table"
	classTotals   = "totals"
	classTotal    = "report-amount-total"
	classPercent  = "report-amount-percent"
	classRate     = "main-per-second-amount"
	classDuration = "fight-duration"
	classPetBar   = "Pet-bg"

	petBarStyle = "border-left: 1px solid black; min-width: 2px; position: absolute; right: 0px; top: 0px; bottom: 0px; color: white; text-align: center; cursor: pointer"
)

// HTMLSource reads the damage-done summary table of a report page, and writes the
// corrected view back into the same document.
type HTMLSource struct {
	doc   *html.Node
	table *html.Node
	rows  []*html.Node

	applied bool
}

func ParseHTML(r io.Reader) (*HTMLSource, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	table := findFirst(doc, byClass("table", classTable))
	if table == nil {
		return nil, errors.WithStack(ErrNoTable)
	}

	return &HTMLSource{
		doc:   doc,
		table: table,
		rows:  findAll(table, isPlayerRow),
	}, nil
}

func isPlayerRow(n *html.Node) bool {
	return isElement(n, "tr") && (hasClass(n, "odd") || hasClass(n, "even"))
}

// Complete reports whether the table has finished loading: the totals row is rendered last.
func (s *HTMLSource) Complete() bool {
	return s.totalsRow() != nil
}

func (s *HTMLSource) totalsRow() *html.Node {
	return findFirst(s.table, byClass("tr", classTotals))
}

func (s *HTMLSource) Rows() ([]attribution.RawRow, error) {
	r := make([]attribution.RawRow, 0, len(s.rows))
	for _, tr := range s.rows {
		r = append(r, readRow(tr))
	}
	return r, nil
}

func (s *HTMLSource) GrandTotalText() (string, error) {
	totals := s.totalsRow()
	if totals == nil {
		return "", errors.WithStack(ErrNoTotals)
	}

	n := findFirst(totals, byClass("", classTotal))
	if n == nil {
		return "", errors.WithStack(ErrNoTotals)
	}
	return textOf(n), nil
}

func (s *HTMLSource) DurationText() (string, error) {
	n := findFirst(s.doc, byClass("span", classDuration))
	if n == nil {
		return "", errors.WithStack(ErrNoDuration)
	}
	return textOf(n), nil
}

func readRow(tr *html.Node) attribution.RawRow {
	var r attribution.RawRow

	for _, a := range findAll(tr, func(n *html.Node) bool { return isElement(n, "a") }) {
		r.Links = append(
			r.Links,
			attribution.Link{
				Text: textOf(a),
				Ref:  attr(a, "oncontextmenu"),
			},
		)
	}
	if len(r.Links) > 0 {
		r.Identity = r.Links[0].Text
	}

	r.ValueText = textOf(findFirst(tr, byClass("", classTotal)))
	r.PercentText = textOf(findFirst(tr, byClass("div", classPercent)))
	r.RateText = textOf(findFirst(tr, byClass("", classRate)))

	if bar := findBar(tr); bar != nil {
		r.BarWidth = styleValue(bar, "width")
	}

	return r
}

// findBar returns the class-colored damage bar, e.g. div.Rogue-bg.
func findBar(tr *html.Node) *html.Node {
	return findFirst(tr, func(n *html.Node) bool {
		if !isElement(n, "div") {
			return false
		}
		for _, c := range strings.Fields(attr(n, "class")) {
			if c != classPetBar && strings.HasSuffix(c, "-bg") {
				return true
			}
		}
		return false
	})
}

////////////////////////////////////////////////////////////////////////////////////////////////////

// Apply writes res back into the document: new texts and bar widths, a pet sub-bar on
// merged rows, donor rows removed and the remaining rows put in res order.
// A document is corrected at most once.
func (s *HTMLSource) Apply(res *attribution.Result) error {
	if s.applied {
		return errors.WithStack(ErrApplied)
	}
	if len(s.rows) == 0 {
		return nil
	}

	for _, row := range res.Rows {
		if row.Index < 0 || row.Index >= len(s.rows) {
			return errors.Errorf("row index %d out of range (%d rows)", row.Index, len(s.rows))
		}
	}
	for _, idx := range res.RemovedIndexes {
		if idx < 0 || idx >= len(s.rows) {
			return errors.Errorf("removed index %d out of range (%d rows)", idx, len(s.rows))
		}
	}
	s.applied = true

	for _, row := range res.Rows {
		tr := s.rows[row.Index]

		setText(findFirst(tr, byClass("", classTotal)), row.ValueText)
		setText(findFirst(tr, byClass("div", classPercent)), row.PercentText)
		setText(findFirst(tr, byClass("", classRate)), row.RateText)

		bar := findBar(tr)
		if bar == nil {
			continue
		}
		setStyle(bar, "width", row.BarWidthText)

		if row.SubShareText != "" {
			target := firstElementChild(bar)
			if target == nil {
				target = bar
			}
			target.AppendChild(petBar(row))
		}
	}

	last := s.rows[len(s.rows)-1]
	parent := last.Parent
	after := last.NextSibling

	for _, idx := range res.RemovedIndexes {
		if n := s.rows[idx]; n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	ordered := make([]*html.Node, 0, len(res.Rows))
	for i, row := range res.Rows {
		tr := s.rows[row.Index]
		if tr.Parent != nil {
			tr.Parent.RemoveChild(tr)
		}
		parent.InsertBefore(tr, after)

		if i%2 == 0 {
			replaceClass(tr, []string{"odd", "even"}, "odd")
		} else {
			replaceClass(tr, []string{"odd", "even"}, "even")
		}

		ordered = append(ordered, tr)
	}
	s.rows = ordered

	return nil
}

func petBar(row attribution.Corrected) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: "class", Val: classPetBar},
			{Key: "style", Val: petBarStyle + "; width: " + row.SubShareText},
		},
	}
	if row.SourceToken != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "data-source", Val: row.SourceToken})
	}
	if row.DrillDownURL != "" {
		n.Attr = append(
			n.Attr,
			html.Attribute{Key: "data-href", Val: row.DrillDownURL},
			html.Attribute{Key: "onclick", Val: "window.location.href=" + strconv.Quote(row.DrillDownURL)},
		)
	}
	return n
}

func (s *HTMLSource) Render(w io.Writer) error {
	return errors.WithStack(html.Render(w, s.doc))
}

// Snapshot copies the table into a Snapshot for the service.
func (s *HTMLSource) Snapshot(locale, reportURL string) (*attribution.Snapshot, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}
	total, err := s.GrandTotalText()
	if err != nil {
		return nil, err
	}
	duration, err := s.DurationText()
	if err != nil {
		return nil, err
	}

	return &attribution.Snapshot{
		Locale:     locale,
		ReportURL:  reportURL,
		GrandTotal: total,
		Duration:   duration,
		Entries:    rows,
	}, nil
}
