package fixpool

import (
	"encoding/hex"
	"fmt"
	"hash"
	"hash/fnv"
	"net/url"
	"strings"

	"tricks_check/attribution"
	"tricks_check/wcl"

	"github.com/pkg/errors"
)

const (
	maxRows        = 200
	maxIdentityLen = 64
	maxTextLen     = 32
	maxLinks       = 8
)

var (
	ErrInvalidSnapshot  = errors.New("invalid snapshot")
	ErrAlreadyCorrected = errors.New("snapshot is already a corrected output")
)

func checkSnapshotValidation(s *attribution.Snapshot) bool {
	s.GrandTotal = strings.TrimSpace(s.GrandTotal)
	s.Duration = strings.TrimSpace(s.Duration)

	switch {
	case len(s.Entries) == 0:
	case len(s.Entries) > maxRows:
	case s.GrandTotal == "":
	case len(s.GrandTotal) > maxTextLen:
	case s.Duration == "":
	case len(s.Duration) > maxTextLen:
	default:
		for i := range s.Entries {
			if !checkRowValidation(&s.Entries[i]) {
				return false
			}
		}
		return true
	}

	return false
}

func checkRowValidation(r *attribution.RawRow) bool {
	r.Identity = strings.TrimSpace(r.Identity)
	r.ValueText = strings.TrimSpace(r.ValueText)

	switch {
	case r.Identity == "" && len(r.Links) == 0:
	case len(r.Identity) > maxIdentityLen:
	case r.ValueText == "":
	case len(r.ValueText) > maxTextLen:
	case len(r.Links) > maxLinks:
	default:
		return true
	}

	return false
}

// resolveLocale picks the snapshot locale: an explicit tag first, then the report host.
// The resolved code is written back so it takes part in the snapshot hash.
func resolveLocale(s *attribution.Snapshot, def *wcl.Locale) (*wcl.Locale, error) {
	var loc *wcl.Locale

	switch {
	case s.Locale != "":
		l, err := wcl.Resolve(s.Locale)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "locale %q", s.Locale)
		}
		loc = l

	case s.ReportURL != "":
		u, err := url.Parse(s.ReportURL)
		if err != nil || u.Host == "" {
			return nil, errors.Wrapf(ErrInvalidSnapshot, "report url %q", s.ReportURL)
		}
		l, err := wcl.Lookup(wcl.LocaleFromHost(u.Host))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		loc = l

	default:
		loc = def
	}

	s.Locale = loc.Code
	return loc, nil
}

func getSnapshotHash(s *attribution.Snapshot) hash.Hash {
	h := fnv.New128a()
	fmt.Fprint(
		h,
		strings.ToLower(s.Locale), "|||",
		s.ReportURL, "|||",
		s.GrandTotal, "|||",
		s.Duration, "|||",
	)
	for _, r := range s.Entries {
		fmt.Fprint(
			h,
			r.Identity, "||",
			r.ValueText, "||",
			r.PercentText, "||",
			r.RateText, "||",
			r.BarWidth, "||",
			r.PetBarWidth, "||",
			r.SourceToken, "||",
		)
		for _, l := range r.Links {
			fmt.Fprint(h, l.Text, "|", l.Ref, "|")
		}
		fmt.Fprint(h, "|||")
	}

	return h
}

// Token identifies a snapshot by content.
func Token(s *attribution.Snapshot) string {
	return hex.EncodeToString(getSnapshotHash(s).Sum(nil))
}
