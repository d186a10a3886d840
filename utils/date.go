package utils

import (
	"time"
	_ "time/tzdata"
)

// DateLayout is the default en-US short date, e.g. 3/7/2024.
const DateLayout = "1/2/2006"

// LoadLocation resolves an IANA zone name. Empty and unknown names resolve
// to UTC.
func LoadLocation(timeZone string) *time.Location {
	if timeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func FormatDate(t time.Time, timeZone string) string {
	return t.In(LoadLocation(timeZone)).Format(DateLayout)
}
