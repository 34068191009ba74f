package attribution

import (
	"fmt"
	"math"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

// NaN 이나 Inf 가 나오면 0 으로 바꾸고 한 번만 보고한다.
func checkNaN(rows []ParticipantRow, c SnapshotConstants, w *warnings) {
	var msgOnce sync.Once
	check := func(row *ParticipantRow, name string, v *float64) {
		if !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			return
		}

		w.add(WarningNotFiniteMetric, row.Identity, "%s was %v", name, *v)
		*v = 0

		msgOnce.Do(func() {
			err := errors.Errorf(
				"not finite metric: %s (%s)\nConstants: %+v",
				row.Identity, name,
				c,
			)

			fmt.Printf("%+v\n", errors.WithStack(err))
			sentry.CaptureException(err)
		})
	}

	for i := range rows {
		row := &rows[i]
		check(row, "total", &row.TotalValue)
		check(row, "percent", &row.PercentOfTotal)
		check(row, "rate", &row.RatePerSecond)
		check(row, "bar_width", &row.RelativeBarWidth)
		if row.SubShare != nil {
			check(row, "sub_share", row.SubShare)
		}
	}
}
