package attribution

// GrandTotalOf is the denominator used when the source has no totals row.
// Donor values count, they are real damage.
func GrandTotalOf(recipients []ParticipantRow, donors []DonorRow) float64 {
	var sum float64
	for _, r := range recipients {
		sum += r.TotalValue
	}
	for _, d := range donors {
		sum += d.Value
	}
	return sum
}

// Merge credits every donor to its recipient and recomputes the derived metrics of
// every row. The input slice is not modified and the order is kept.
func Merge(recipients []ParticipantRow, donors []DonorRow, c SnapshotConstants) ([]ParticipantRow, SnapshotConstants, []Warning) {
	var w warnings
	r, c := merge(recipients, donors, c, &w)
	return r, c, w.list
}

func merge(recipients []ParticipantRow, donors []DonorRow, c SnapshotConstants, w *warnings) ([]ParticipantRow, SnapshotConstants) {
	if c.GrandTotal <= 0 {
		c.GrandTotal = GrandTotalOf(recipients, donors)
	}

	rows := make([]ParticipantRow, len(recipients))
	copy(rows, recipients)
	for i := range rows {
		if rows[i].SubShare != nil {
			v := *rows[i].SubShare
			rows[i].SubShare = &v
		}
	}

	for _, d := range donors {
		idx := -1
		matches := 0
		for i := range rows {
			if rows[i].Identity == d.RecipientIdentity {
				if idx < 0 {
					idx = i
				}
				matches++
			}
		}

		switch {
		case idx < 0:
			w.add(WarningUnmatchedDonor, d.RecipientIdentity, "no row for %q, %v dropped", d.RecipientIdentity, d.Value)
			continue

		case matches > 1:
			w.add(WarningAmbiguousDonor, d.RecipientIdentity, "%d rows named %q, credited to row %d", matches, d.RecipientIdentity, rows[idx].Index)
		}

		row := &rows[idx]
		if row.Merged > 0 {
			w.add(WarningRepeatedMerge, row.Identity, "sub share now reflects donor row %d only", d.Index)
		}

		row.TotalValue += d.Value

		share := ratio(d.Value, row.TotalValue) * 100
		row.SubShare = &share
		row.SourceToken = d.SourceToken
		row.Merged++
	}

	c.TopValue = 0
	for _, row := range rows {
		if row.TotalValue > c.TopValue {
			c.TopValue = row.TotalValue
		}
	}

	for i := range rows {
		recompute(&rows[i], c)
	}

	return rows, c
}

func recompute(row *ParticipantRow, c SnapshotConstants) {
	row.PercentOfTotal = ratio(row.TotalValue, c.GrandTotal) * 100
	row.RatePerSecond = ratio(row.TotalValue, c.DurationSeconds)
	row.RelativeBarWidth = ratio(row.TotalValue, c.TopValue) * 100
	if row.RelativeBarWidth < 0 {
		row.RelativeBarWidth = 0
	}
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
