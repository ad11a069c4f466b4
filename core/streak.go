package core

import "time"

// Streaks derives the day-based completion streaks for user from their
// records, anchored at now. The current streak counts consecutive calendar
// days (deduplicated, most recent first) with at least one completion by the
// user, starting from today; it is zero when today has no completion. The
// longest streak is the longest such run anywhere in the log.
func Streaks(records []ChoreRecord, user UserID, now time.Time) (current, longest int) {
	seen := map[int64]struct{}{}
	for _, r := range records {
		if !r.Completed || r.CompletedAt == nil || r.Owner() != user {
			continue
		}
		seen[dayStamp(*r.CompletedAt)] = struct{}{}
	}
	if len(seen) == 0 {
		return 0, 0
	}

	today := dayStamp(now)
	for d := today; ; d-- {
		if _, ok := seen[d]; !ok {
			break
		}
		current++
	}

	for d := range seen {
		if _, ok := seen[d-1]; ok {
			continue // not the start of a run
		}
		run := 0
		for x := d; ; x++ {
			if _, ok := seen[x]; !ok {
				break
			}
			run++
		}
		if run > longest {
			longest = run
		}
	}
	return current, longest
}

// dayStamp collapses a timestamp to a calendar-day ordinal. The ordinal is
// built from the local civil date in UTC so DST shifts can not merge or split
// adjacent days.
func dayStamp(t time.Time) int64 {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
