package attribution

import (
	"net/url"
	"strings"

	"tricks_check/numtext"
	"tricks_check/wcl"
)

// Corrected is a recomputed row with the texts to put back on the list.
type Corrected struct {
	ParticipantRow

	ValueText    string `json:"value_text"`
	PercentText  string `json:"percent_text"`
	RateText     string `json:"rate_text"`
	BarWidthText string `json:"bar_width_text"`
	SubShareText string `json:"sub_share_text,omitempty"`
	DrillDownURL string `json:"drill_down_url,omitempty"`

	Links []Link `json:"links,omitempty"`
}

type Result struct {
	Locale    string            `json:"locale"`
	ReportURL string            `json:"report_url,omitempty"`
	Constants SnapshotConstants `json:"constants"`

	Rows   []Corrected `json:"rows"`
	Donors []DonorRow  `json:"donors"`

	// rows of the source list that are gone from the corrected view
	RemovedIndexes []int `json:"removed_indexes"`

	Rerank   RerankStats `json:"rerank"`
	Warnings []Warning   `json:"warnings,omitempty"`
}

func render(raw []RawRow, rows []ParticipantRow, loc *wcl.Locale, reportURL string) []Corrected {
	r := make([]Corrected, len(rows))
	for i, row := range rows {
		c := Corrected{
			ParticipantRow: row,
			ValueText:      numtext.FormatCompactNumber(row.TotalValue, loc),
			PercentText:    numtext.FormatPercent(row.PercentOfTotal),
			RateText:       numtext.FormatRate(row.RatePerSecond),
			BarWidthText:   numtext.FormatPercent(row.RelativeBarWidth),
		}
		if row.Index >= 0 && row.Index < len(raw) {
			c.Links = raw[row.Index].Links
		}
		if row.SubShare != nil {
			c.SubShareText = numtext.FormatPercent(*row.SubShare)
			if reportURL != "" && row.SourceToken != "" {
				c.DrillDownURL = DrillDownURL(reportURL, row.SourceToken)
			}
		}
		r[i] = c
	}
	return r
}

// DrillDownURL points the report at one source. The log site keeps its view state in the
// fragment, so the parameter goes there when a fragment exists.
func DrillDownURL(reportURL string, token string) string {
	u, err := url.Parse(reportURL)
	if err != nil {
		return reportURL + "&source=" + url.QueryEscape(token)
	}

	if u.Fragment != "" {
		u.Fragment = strings.TrimSuffix(u.Fragment, "&") + "&source=" + token
		return u.String()
	}

	q := u.Query()
	q.Set("source", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Snapshot is the corrected list in source form. It has no donor rows left, so Fix
// merges nothing when run on it.
func (r *Result) Snapshot() *Snapshot {
	loc, err := wcl.Lookup(r.Locale)
	if err != nil {
		loc = wcl.Default()
	}

	s := &Snapshot{
		Locale:     r.Locale,
		ReportURL:  r.ReportURL,
		GrandTotal: numtext.FormatCompactNumber(r.Constants.GrandTotal, loc),
		Duration:   numtext.FormatDuration(r.Constants.DurationSeconds),
		Entries:    make([]RawRow, 0, len(r.Rows)),
	}

	for _, row := range r.Rows {
		raw := RawRow{
			Identity:    row.Identity,
			ValueText:   row.ValueText,
			PercentText: row.PercentText,
			RateText:    row.RateText,
			BarWidth:    row.BarWidthText,
			Links:       row.Links,
			PetBarWidth: row.SubShareText,
			SourceToken: row.SourceToken,
		}
		s.Entries = append(s.Entries, raw)
	}

	return s
}
