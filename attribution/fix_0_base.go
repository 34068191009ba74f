package attribution

import (
	"fmt"

	"tricks_check/wcl"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNoRows     = errors.New("snapshot has no rows")
	ErrGrandTotal = errors.New("invalid grand total")
	ErrDuration   = errors.New("invalid fight duration")
)

// Link is a cross-reference anchor inside a row.
type Link struct {
	Text string `json:"text"`
	Ref  string `json:"ref,omitempty"` // e.g. the anchor's oncontextmenu handler
}

// RawRow is one row of the ranked list as the renderer shows it.
type RawRow struct {
	Identity    string `json:"identity"`
	ValueText   string `json:"value"`
	PercentText string `json:"percent,omitempty"`
	RateText    string `json:"rate,omitempty"`
	BarWidth    string `json:"bar_width,omitempty"`
	Links       []Link `json:"links,omitempty"`

	PetBarWidth string `json:"pet_bar_width,omitempty"`
	SourceToken string `json:"source,omitempty"`
}

// RowSource yields one snapshot of the ranked list.
type RowSource interface {
	Rows() ([]RawRow, error)
	GrandTotalText() (string, error)
	DurationText() (string, error)
}

// Snapshot is an in-memory RowSource. It is also the wire format of the service.
type Snapshot struct {
	Locale     string   `json:"locale,omitempty"`
	ReportURL  string   `json:"report_url,omitempty"`
	GrandTotal string   `json:"grand_total"`
	Duration   string   `json:"duration"`
	Entries    []RawRow `json:"rows"`
}

func (s *Snapshot) Rows() ([]RawRow, error)        { return s.Entries, nil }
func (s *Snapshot) GrandTotalText() (string, error) { return s.GrandTotal, nil }
func (s *Snapshot) DurationText() (string, error)   { return s.Duration, nil }

type ParticipantRow struct {
	Index    int    `json:"index"` // position in the source list
	Identity string `json:"identity"`

	TotalValue       float64 `json:"total"`
	PercentOfTotal   float64 `json:"percent"`
	RatePerSecond    float64 `json:"rate"`
	RelativeBarWidth float64 `json:"bar_width"`

	// set only when a donor was merged in. reflects the latest donor.
	SubShare    *float64 `json:"sub_share,omitempty"`
	SourceToken string   `json:"source,omitempty"`
	Merged      int      `json:"merged,omitempty"`
}

type DonorRow struct {
	Index             int     `json:"index"`
	RecipientIdentity string  `json:"recipient"`
	Value             float64 `json:"value"`
	SourceToken       string  `json:"source,omitempty"`
}

type SnapshotConstants struct {
	GrandTotal      float64 `json:"grand_total"`
	DurationSeconds float64 `json:"duration"`
	TopValue        float64 `json:"top"`
}

////////////////////////////////////////////////////////////////////////////////////////////////////

type WarningKind string

const (
	WarningUnmatchedDonor  WarningKind = "unmatched_donor"
	WarningAmbiguousDonor  WarningKind = "ambiguous_donor"
	WarningMalformedDonor  WarningKind = "malformed_donor"
	WarningRepeatedMerge   WarningKind = "repeated_merge"
	WarningRerankCeiling   WarningKind = "rerank_ceiling"
	WarningNotFiniteMetric WarningKind = "not_finite_metric"
)

type Warning struct {
	Kind     WarningKind `json:"kind"`
	Identity string      `json:"identity,omitempty"`
	Message  string      `json:"message"`
}

func (w Warning) String() string {
	if w.Identity == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s (%s): %s", w.Kind, w.Identity, w.Message)
}

type warnings struct {
	list   []Warning
	logger *zap.Logger
}

func (w *warnings) add(kind WarningKind, identity string, format string, args ...interface{}) {
	warn := Warning{
		Kind:     kind,
		Identity: identity,
		Message:  fmt.Sprintf(format, args...),
	}
	w.list = append(w.list, warn)

	if w.logger != nil {
		w.logger.Warn(
			warn.Message,
			zap.String("kind", string(kind)),
			zap.String("identity", identity),
		)
	}
}

////////////////////////////////////////////////////////////////////////////////////////////////////

type Options struct {
	Locale  *wcl.Locale    // nil means wcl.Default()
	IsDonor DonorPredicate // nil means TricksOfTheTrade
	Logger  *zap.Logger    // nil means zap.NewNop()

	// ReportURL, when set, is used to build drill-down links for merged rows.
	ReportURL string
}

func (opt *Options) normalize() Options {
	r := Options{}
	if opt != nil {
		r = *opt
	}
	if r.Locale == nil {
		r.Locale = wcl.Default()
	}
	if r.IsDonor == nil {
		r.IsDonor = TricksOfTheTrade
	}
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	return r
}
