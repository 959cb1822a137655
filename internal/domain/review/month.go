package review

import "time"

const monthLayout = "2006-01"

// FormatMonth renders t as a YYYY-MM month key.
func FormatMonth(t time.Time) string {
	return t.Format(monthLayout)
}

// PreviousMonth returns the month key immediately before monthYear.
// ok is false when monthYear is not a parseable YYYY-MM value.
func PreviousMonth(monthYear string) (string, bool) {
	t, err := time.Parse(monthLayout, monthYear)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, -1, 0).Format(monthLayout), true
}

// MonthBounds returns the first and last calendar day of monthYear.
func MonthBounds(monthYear string) (start, end time.Time, err error) {
	start, err = time.Parse(monthLayout, monthYear)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end = start.AddDate(0, 1, -1)
	return start, end, nil
}
