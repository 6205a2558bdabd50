package timeline

import (
	"slices"
	"strconv"
	"strings"

	"github.com/klokku/timeline/pkg/lane"
)

// DateFormatter turns a date into a label following a pattern such as "EEE"
// or "dd MMM yyyy".
type DateFormatter interface {
	Format(d lane.Date, pattern string) string
}

// PatternFormatter understands runs of E (weekday), d (day), M (month) and
// y (year). Any other character, including non-ASCII text, is copied to the
// output.
//
//	EEE -> Thu    EEEE -> Thursday
//	d   -> 6      dd   -> 06
//	M   -> 6      MM   -> 06    MMM -> Jun    MMMM -> June
//	yy  -> 24     yyyy -> 2024
type PatternFormatter struct{}

func (PatternFormatter) Format(d lane.Date, pattern string) string {
	t := d.Time()
	runes := []rune(pattern)
	var b strings.Builder
	for i := 0; i < len(runes); {
		c := runes[i]
		n := 1
		for i+n < len(runes) && runes[i+n] == c {
			n++
		}
		i += n

		switch c {
		case 'E':
			if n >= 4 {
				b.WriteString(t.Weekday().String())
			} else {
				b.WriteString(t.Weekday().String()[:3])
			}
		case 'd':
			b.WriteString(pad(d.Day, n))
		case 'M':
			switch {
			case n >= 4:
				b.WriteString(d.Month.String())
			case n == 3:
				b.WriteString(d.Month.String()[:3])
			default:
				b.WriteString(pad(int(d.Month), n))
			}
		case 'y':
			if n == 2 {
				b.WriteString(pad(d.Year%100, 2))
			} else {
				b.WriteString(pad(d.Year, n))
			}
		default:
			b.WriteString(strings.Repeat(string(c), n))
		}
	}
	return b.String()
}

func pad(v int, width int) string {
	s := strconv.Itoa(v)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// ScaleMark is a labelled date on the timeline axis.
type ScaleMark struct {
	Date      lane.Date
	Month     string
	DayOfWeek string
	Day       string
	// Offset is the number of days between the timeline start and Date.
	Offset int
}

// BuildScale returns one mark for every distinct start or end date of events,
// in ascending order.
func BuildScale[E lane.Interval](events []E, start lane.Date, formatter DateFormatter) []ScaleMark {
	dates := make([]lane.Date, 0, len(events)*2)
	for _, e := range events {
		dates = append(dates, e.StartDate(), e.EndDate())
	}
	slices.SortFunc(dates, lane.Date.Compare)
	dates = slices.CompactFunc(dates, lane.Date.Equal)

	marks := make([]ScaleMark, 0, len(dates))
	for _, d := range dates {
		marks = append(marks, ScaleMark{
			Date:      d,
			Month:     strings.ToUpper(formatter.Format(d, "MMM")),
			DayOfWeek: strings.ToUpper(formatter.Format(d, "EEE")),
			Day:       formatter.Format(d, "d"),
			Offset:    lane.DaysBetween(start, d),
		})
	}
	return marks
}
