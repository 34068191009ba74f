package attribution

const maxRerankPasses = 100

type RerankStats struct {
	Passes    int  `json:"passes"`
	Swaps     int  `json:"swaps"`
	Converged bool `json:"converged"`
}

// Rerank orders rows by RatePerSecond, highest first, with adjacent swaps only.
// Equal rates never swap, so their input order survives. The input is expected to be
// nearly sorted: only merged rows move.
func Rerank(rows []ParticipantRow) ([]ParticipantRow, RerankStats, []Warning) {
	var w warnings
	r, stats := rerank(rows, maxRerankPasses, &w)
	return r, stats, w.list
}

func rerank(rows []ParticipantRow, maxPasses int, w *warnings) ([]ParticipantRow, RerankStats) {
	r := make([]ParticipantRow, len(rows))
	copy(r, rows)

	var stats RerankStats
	for stats.Passes < maxPasses {
		stats.Passes++

		swaps := 0
		for i := 0; i+1 < len(r); i++ {
			if r[i].RatePerSecond < r[i+1].RatePerSecond {
				r[i], r[i+1] = r[i+1], r[i]
				swaps++
			}
		}
		stats.Swaps += swaps

		if swaps == 0 {
			stats.Converged = true
			break
		}
	}

	if !stats.Converged {
		w.add(WarningRerankCeiling, "", "not sorted after %d passes, %d rows", stats.Passes, len(r))
	}

	return r, stats
}
