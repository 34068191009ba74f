package numtext

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"tricks_check/wcl"

	"github.com/dustin/go-humanize"
)

var (
	reDuration = regexp.MustCompile(`(\d+):(\d+)`)
	reDecimal  = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
)

// ParseCompactNumber reads texts such as "1.23m", "450k", "12,345" or "1.2Mio".
// The millions suffix is tested first, so "kk" wins over "k" for fr.
func ParseCompactNumber(text string, loc *wcl.Locale) (float64, error) {
	if loc == nil {
		loc = wcl.Default()
	}

	s := strings.TrimSpace(text)
	mul := 1.0

	switch {
	case strings.HasSuffix(s, loc.Millions):
		s = strings.TrimSuffix(s, loc.Millions)
		mul = 1000000
	case strings.HasSuffix(s, loc.Thousands):
		s = strings.TrimSuffix(s, loc.Thousands)
		mul = 1000
	}

	v, err := parseDecimal(s)
	if err != nil {
		return 0, formatError("number", text, err)
	}

	v *= mul
	if math.IsInf(v, 0) {
		return 0, formatError("number", text, ErrFormat)
	}
	return v, nil
}

// FormatCompactNumber renders v with 2 fraction digits from a million, 1 from a thousand
// and none below. The unit is picked after rounding, so 999960 is "1.00m".
// Billions stay in millions so the parser can read the text back.
func FormatCompactNumber(v float64, loc *wcl.Locale) string {
	if loc == nil {
		loc = wcl.Default()
	}

	switch {
	case math.Round(v/100) >= 10000:
		return strconv.FormatFloat(v/1000000, 'f', 2, 64) + loc.Millions
	case math.Round(v) >= 1000:
		return strconv.FormatFloat(v/1000, 'f', 1, 64) + loc.Thousands
	default:
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
}

// ParseDuration reads the first "minutes:seconds" in text.
func ParseDuration(text string) (float64, error) {
	m := reDuration.FindStringSubmatch(text)
	if m == nil {
		return 0, formatError("duration", text, nil)
	}

	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, formatError("duration", text, err)
	}
	seconds, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, formatError("duration", text, err)
	}

	return float64(minutes*60 + seconds), nil
}

func FormatDuration(seconds float64) string {
	s := int(math.Round(seconds))
	return strconv.Itoa(s/60) + ":" + leftPad2(s%60)
}

func ParsePercent(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	v, err := parseDecimal(s)
	if err != nil {
		return 0, formatError("percent", text, err)
	}
	return v, nil
}

// FormatPercent renders "25.00%".
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func ParseRate(text string) (float64, error) {
	v, err := parseDecimal(strings.TrimSpace(text))
	if err != nil {
		return 0, formatError("rate", text, err)
	}
	return v, nil
}

// FormatRate rounds to one fraction digit and groups thousands: "1,234.5", "200".
func FormatRate(v float64) string {
	return humanize.CommafWithDigits(math.Round(v*10)/10, 1)
}

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if !reDecimal.MatchString(s) {
		return 0, ErrFormat
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrFormat
	}
	return v, nil
}

func leftPad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}
