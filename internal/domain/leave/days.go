package leave

import "time"

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CountDays counts the days between start and end inclusive. Working days
// exclude Saturdays and Sundays. It returns 0 when end is before start.
func CountDays(start, end time.Time, deduction DeductionType) int {
	start, end = dateOnly(start), dateOnly(end)
	if end.Before(start) {
		return 0
	}

	if deduction != DeductionWorkingDays {
		return int(end.Sub(start).Hours()/24) + 1
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}
