package circulation

import "time"

// FinePerDay is the fine accrued per day a loan stays out past its due
// date, in the smallest currency unit.
const FinePerDay = 1000

// OverdueFine computes the fine recorded when a loan is returned: whole
// days late times FinePerDay, never negative. Partial days do not count.
func OverdueFine(dueDate, returnedAt time.Time) int64 {
	late := returnedAt.Sub(dueDate)
	if late <= 0 {
		return 0
	}
	return int64(late/(24*time.Hour)) * FinePerDay
}

// ProjectedFine computes the live fine owed on a loan that is still out.
// Unlike OverdueFine it accrues on fractional days, truncated to an integer
// amount; the two deliberately disagree within the first late day, matching
// the behavior the desktop client has always shown.
func ProjectedFine(dueDate, asOf time.Time) int64 {
	late := asOf.Sub(dueDate)
	if late <= 0 {
		return 0
	}
	return int64(late.Hours() / 24 * FinePerDay)
}
