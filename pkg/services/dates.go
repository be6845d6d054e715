package services

import (
	"fmt"
	"strconv"
	"time"
)

// UnknownDate is returned for filenames without a leading YYYYMMDD prefix.
// It is older than any parsed date, so it sorts last when newest comes first.
var UnknownDate = time.Time{}

// UnknownDateLabel is shown in place of a date for files without a prefix
const UnknownDateLabel = "unknown"

// earliestDate is the floor for parsed dates, keeping them after UnknownDate
var earliestDate = UnknownDate.Add(time.Second)

// datePrefix returns year, month and day from a leading 8-digit prefix
func datePrefix(name string) (year, month, day int, ok bool) {
	if len(name) < 8 {
		return 0, 0, 0, false
	}
	for i := 0; i < 8; i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, 0, 0, false
		}
	}
	year, _ = strconv.Atoi(name[0:4])
	month, _ = strconv.Atoi(name[4:6])
	day, _ = strconv.Atoi(name[6:8])
	return year, month, day, true
}

// ParseFilenameDate interprets a leading YYYYMMDD prefix as a UTC calendar date.
// Out-of-range months and days are normalized the way time.Date does.
// Prefixes that normalize to year one or earlier are clamped to earliestDate.
func ParseFilenameDate(name string) time.Time {
	year, month, day, ok := datePrefix(name)
	if !ok {
		return UnknownDate
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if !date.After(UnknownDate) {
		return earliestDate
	}
	return date
}

// FormatFilenameDate renders the prefix as YYYY/MM/DD for display
func FormatFilenameDate(name string) string {
	if _, _, _, ok := datePrefix(name); !ok {
		return UnknownDateLabel
	}
	return fmt.Sprintf("%s/%s/%s", name[0:4], name[4:6], name[6:8])
}
