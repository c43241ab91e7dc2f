package report

import (
	"time"

	"github.com/jinzhu/now"
)

// dateFormats are the layouts Google Sheets and people use for dates in
// the form responses.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-1-2 15:4:5",
	"2006-1-2 15:4",
	"2006-1-2",
	"2006/1/2 15:4:5",
	"2006/1/2",
	"1/2/2006 15:4:5",
	"1/2/2006 15:4",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

var dateParser = now.Config{
	WeekStartDay: time.Sunday,
	TimeLocation: time.UTC,
	TimeFormats:  dateFormats,
}

// ParseDate converts a date or a timestamp from the sheet to YYYY-MM-DD
// format. It returns false if the string cannot be parsed.
func ParseDate(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	t, err := dateParser.Parse(s)
	if err != nil {
		return "", false
	}
	return t.Format(time.DateOnly), true
}
