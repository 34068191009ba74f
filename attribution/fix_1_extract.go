package attribution

import (
	"regexp"
	"strings"

	"tricks_check/numtext"
	"tricks_check/wcl"

	"github.com/pkg/errors"
)

// DonorPredicate reports whether row is a redirected contribution. It returns the
// recipient's identity and the link that carried it.
type DonorPredicate func(row RawRow) (recipient string, link Link, ok bool)

var (
	reTricks       = regexp.MustCompile(`^.+ \((.+)\)$`)
	reFilterSource = regexp.MustCompile(`setFilterSource\('(\d+)`)
	reDigits       = regexp.MustCompile(`^\d+$`)
)

// TricksOfTheTrade matches rows carrying a "<ability> (<caster>)" link.
func TricksOfTheTrade(row RawRow) (string, Link, bool) {
	for _, link := range row.Links {
		m := reTricks.FindStringSubmatch(strings.TrimSpace(link.Text))
		if m != nil {
			return strings.TrimSpace(m[1]), link, true
		}
	}
	return "", Link{}, false
}

// SourceToken pulls the source id out of a link reference.
func SourceToken(ref string) string {
	if m := reFilterSource.FindStringSubmatch(ref); m != nil {
		return m[1]
	}

	ref = strings.TrimSpace(ref)
	if reDigits.MatchString(ref) {
		return ref
	}
	return ""
}

type Extraction struct {
	Donors     []DonorRow       `json:"donors"`
	Recipients []ParticipantRow `json:"recipients"`

	// indexes of every donor row, dropped ones included. these rows leave the view.
	DonorIndexes []int `json:"donor_indexes"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// Extract splits rows into donors and recipient candidates, keeping source order.
// A donor without a matching recipient, or with an unreadable value, is dropped with a
// warning. An unreadable recipient value fails the whole extraction.
func Extract(rows []RawRow, isDonor DonorPredicate, loc *wcl.Locale) (*Extraction, error) {
	opt := (&Options{Locale: loc, IsDonor: isDonor}).normalize()
	w := warnings{logger: opt.Logger}

	r, err := extract(rows, opt, &w)
	if err != nil {
		return nil, err
	}
	r.Warnings = w.list

	return r, nil
}

func extract(rows []RawRow, opt Options, w *warnings) (*Extraction, error) {
	r := &Extraction{
		Recipients: make([]ParticipantRow, 0, len(rows)),
	}

	candidates := make([]DonorRow, 0, 2)

	for i, row := range rows {
		recipient, link, ok := opt.IsDonor(row)
		if ok {
			r.DonorIndexes = append(r.DonorIndexes, i)

			v, err := numtext.ParseCompactNumber(row.ValueText, opt.Locale)
			if err != nil {
				w.add(WarningMalformedDonor, recipient, "donor row %d dropped: %v", i, err)
				continue
			}

			candidates = append(
				candidates,
				DonorRow{
					Index:             i,
					RecipientIdentity: recipient,
					Value:             v,
					SourceToken:       SourceToken(link.Ref),
				},
			)
			continue
		}

		identity := rowIdentity(row)

		v, err := numtext.ParseCompactNumber(row.ValueText, opt.Locale)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d (%s)", i, identity)
		}

		r.Recipients = append(
			r.Recipients,
			ParticipantRow{
				Index:      i,
				Identity:   identity,
				TotalValue: v,
			},
		)
	}

	known := make(map[string]struct{}, len(r.Recipients))
	for _, p := range r.Recipients {
		known[p.Identity] = struct{}{}
	}

	for _, d := range candidates {
		if _, ok := known[d.RecipientIdentity]; !ok {
			w.add(WarningUnmatchedDonor, d.RecipientIdentity, "no row for %q, %v dropped", d.RecipientIdentity, d.Value)
			continue
		}
		r.Donors = append(r.Donors, d)
	}

	return r, nil
}

func rowIdentity(row RawRow) string {
	if s := strings.TrimSpace(row.Identity); s != "" {
		return s
	}
	for _, link := range row.Links {
		if s := strings.TrimSpace(link.Text); s != "" {
			return s
		}
	}
	return ""
}
