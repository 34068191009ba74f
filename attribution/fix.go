package attribution

import (
	"math"

	"tricks_check/numtext"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SnapshotError is a failure of a snapshot-wide input. Every metric depends on it, so
// the whole pass stops.
type SnapshotError struct {
	Field error // ErrGrandTotal, ErrDuration
	Text  string
	Err   error
}

func (e *SnapshotError) Error() string {
	return e.Field.Error() + " " + `"` + e.Text + `": ` + e.Err.Error()
}

func (e *SnapshotError) Is(target error) bool {
	return target == e.Field
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// Fix runs extraction, merge and re-rank over one snapshot. It must run once per
// snapshot: the caller guards against re-entry.
func Fix(src RowSource, opt *Options) (*Result, error) {
	o := opt.normalize()
	w := &warnings{logger: o.Logger}

	rows, err := src.Rows()
	if err != nil {
		return nil, errors.Wrap(err, "rows")
	}
	if len(rows) == 0 {
		return nil, errors.WithStack(ErrNoRows)
	}

	c, err := readConstants(src, o)
	if err != nil {
		return nil, err
	}

	o.Logger.Debug(
		"fix snapshot",
		zap.String("locale", o.Locale.Code),
		zap.Int("rows", len(rows)),
		zap.Float64("grand_total", c.GrandTotal),
		zap.Float64("duration", c.DurationSeconds),
	)

	// 1. 분리
	ext, err := extract(rows, o, w)
	if err != nil {
		return nil, err
	}

	// 2. 합치기
	merged, c := merge(ext.Recipients, ext.Donors, c, w)

	// 3. 재정렬
	sorted, stats := rerank(merged, maxRerankPasses, w)

	checkNaN(sorted, c, w)

	r := &Result{
		Locale:         o.Locale.Code,
		ReportURL:      o.ReportURL,
		Constants:      c,
		Rows:           render(rows, sorted, o.Locale, o.ReportURL),
		Donors:         ext.Donors,
		RemovedIndexes: ext.DonorIndexes,
		Rerank:         stats,
		Warnings:       w.list,
	}
	if r.Donors == nil {
		r.Donors = []DonorRow{}
	}
	if r.RemovedIndexes == nil {
		r.RemovedIndexes = []int{}
	}

	o.Logger.Info(
		"snapshot fixed",
		zap.Int("recipients", len(r.Rows)),
		zap.Int("donors", len(r.Donors)),
		zap.Int("removed", len(r.RemovedIndexes)),
		zap.Int("passes", stats.Passes),
		zap.Int("swaps", stats.Swaps),
		zap.Int("warnings", len(r.Warnings)),
	)

	return r, nil
}

func readConstants(src RowSource, o Options) (c SnapshotConstants, err error) {
	text, err := src.GrandTotalText()
	if err != nil {
		return c, errors.WithStack(&SnapshotError{Field: ErrGrandTotal, Err: err})
	}
	c.GrandTotal, err = numtext.ParseCompactNumber(text, o.Locale)
	if err != nil {
		return c, errors.WithStack(&SnapshotError{Field: ErrGrandTotal, Text: text, Err: err})
	}
	if c.GrandTotal <= 0 {
		return c, errors.WithStack(&SnapshotError{Field: ErrGrandTotal, Text: text, Err: errors.New("must be positive")})
	}
	if math.IsInf(c.GrandTotal, 0) || math.IsNaN(c.GrandTotal) {
		return c, errors.WithStack(&SnapshotError{Field: ErrGrandTotal, Text: text, Err: errors.New("must be finite")})
	}

	text, err = src.DurationText()
	if err != nil {
		return c, errors.WithStack(&SnapshotError{Field: ErrDuration, Err: err})
	}
	c.DurationSeconds, err = numtext.ParseDuration(text)
	if err != nil {
		return c, errors.WithStack(&SnapshotError{Field: ErrDuration, Text: text, Err: err})
	}
	if c.DurationSeconds <= 0 {
		return c, errors.WithStack(&SnapshotError{Field: ErrDuration, Text: text, Err: errors.New("must be positive")})
	}

	return c, nil
}
