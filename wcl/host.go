package wcl

import (
	"net"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

var reClassicHost = regexp.MustCompile(`^([a-z]+)\.classic\.`)

// LocaleFromHost picks the locale out of a "<code>.classic.warcraftlogs.com" host name.
// Anything else falls back to DefaultCode.
func LocaleFromHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSpace(host))

	m := reClassicHost.FindStringSubmatch(host)
	if m == nil || !IsKnown(m[1]) {
		return DefaultCode
	}
	return m[1]
}

// Resolve maps either a table code ("tw", "br") or a BCP 47 tag ("zh-TW", "pt-BR", "de-AT")
// to a table entry.
func Resolve(tag string) (*Locale, error) {
	if loc, err := Lookup(tag); err == nil {
		return loc, nil
	}

	t, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return nil, ErrUnknownLocale
	}
	return fromTag(t)
}

// ResolveAcceptLanguage returns the first Accept-Language entry the table knows,
// or the default locale.
func ResolveAcceptLanguage(header string) *Locale {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err == nil {
		for _, t := range tags {
			if loc, err := fromTag(t); err == nil {
				return loc
			}
		}
	}
	return Default()
}

func fromTag(t language.Tag) (*Locale, error) {
	base, _ := t.Base()
	region, _ := t.Region()

	code := base.String()
	switch code {
	case "zh":
		switch region.String() {
		case "TW", "HK", "MO":
			code = "tw"
		default:
			script, _ := t.Script()
			if script.String() == "Hant" {
				code = "tw"
			} else {
				code = "cn"
			}
		}
	case "pt":
		code = "br"
	}

	return Lookup(code)
}
