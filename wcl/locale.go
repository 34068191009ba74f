package wcl

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"hash/fnv"
	"io"
	"sort"
	"strings"

	"github.com/dimchansky/utfbom"
	"github.com/pkg/errors"
)

const DefaultCode = "en"

// Locale holds the compact-number suffixes the log site prints for one language.
type Locale struct {
	Code      string `json:"code"`
	Millions  string `json:"millions"`
	Thousands string `json:"thousands"`
}

//go:embed locales.csv
var localesCsv []byte

var (
	ErrUnknownLocale = errors.New("unknown locale")

	// code -> entry. aliases share the canonical pointer.
	localeMap   map[string]*Locale
	localeCodes []string

	// TableHash changes whenever locales.csv changes.
	TableHash string
)

func init() {
	var err error
	localeMap, err = loadTable(bytes.NewReader(localesCsv))
	if err != nil {
		panic(err)
	}

	localeCodes = make([]string, 0, len(localeMap))
	for code := range localeMap {
		localeCodes = append(localeCodes, code)
	}
	sort.Strings(localeCodes)

	h := fnv.New32a()
	h.Write(localesCsv)
	TableHash = fmt.Sprintf("%08x", h.Sum32())
}

func loadTable(r io.Reader) (map[string]*Locale, error) {
	sr, _ := utfbom.Skip(r)

	cr := csv.NewReader(sr)
	cr.FieldsPerRecord = 4

	m := make(map[string]*Locale)
	aliases := make(map[string]string)

	header := true
	for {
		d, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if header {
			header = false
			continue
		}

		code := strings.ToLower(strings.TrimSpace(d[0]))
		if code == "" {
			continue
		}
		if _, ok := m[code]; ok {
			return nil, errors.Errorf("duplicated locale %q", code)
		}

		if alias := strings.ToLower(strings.TrimSpace(d[3])); alias != "" {
			aliases[code] = alias
			continue
		}

		if d[1] == "" || d[2] == "" {
			return nil, errors.Errorf("locale %q: empty suffix", code)
		}
		m[code] = &Locale{
			Code:      code,
			Millions:  d[1],
			Thousands: d[2],
		}
	}

	for code, alias := range aliases {
		target, ok := m[alias]
		if !ok {
			return nil, errors.Errorf("locale %q: alias of unknown locale %q", code, alias)
		}
		m[code] = target
	}

	return m, nil
}

// Lookup returns the table entry for code. An empty code means DefaultCode.
func Lookup(code string) (*Locale, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCode
	}

	loc, ok := localeMap[code]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLocale, "%q", code)
	}
	return loc, nil
}

func Default() *Locale {
	return localeMap[DefaultCode]
}

// Codes lists every code in the table, aliases included.
func Codes() []string {
	r := make([]string, len(localeCodes))
	copy(r, localeCodes)
	return r
}

func IsKnown(code string) bool {
	idx := sort.SearchStrings(localeCodes, code)
	return idx < len(localeCodes) && localeCodes[idx] == code
}
