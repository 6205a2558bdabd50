package timeline

import (
	"testing"

	"github.com/klokku/timeline/pkg/lane"
	"github.com/stretchr/testify/assert"
)

func TestPatternFormatter_Format(t *testing.T) {
	date := lane.NewDate(2024, 6, 6)
	testCases := []struct {
		pattern string
		want    string
	}{
		{"EEE", "Thu"},
		{"EEEE", "Thursday"},
		{"d", "6"},
		{"dd", "06"},
		{"MM", "06"},
		{"MMM", "Jun"},
		{"MMMM", "June"},
		{"yyyy", "2024"},
		{"dd MMM yyyy", "06 Jun 2024"},
		{"d.M.yy", "6.6.24"},
		{"EEE, d", "Thu, 6"},
		{"d – MMM", "6 – Jun"},
		{"d. MMMM 'ü'", "6. June 'ü'"},
	}
	for _, tc := range testCases {
		t.Run(tc.pattern, func(t *testing.T) {
			assert.Equal(t, tc.want, PatternFormatter{}.Format(date, tc.pattern))
		})
	}
}

func TestBuildScale(t *testing.T) {
	t.Run("should return distinct dates in ascending order", func(t *testing.T) {
		// given
		start := lane.NewDate(2024, 6, 20)
		events := []lane.Event{
			{Id: "b", Start: lane.NewDate(2024, 6, 22), End: lane.NewDate(2024, 6, 24)},
			{Id: "a", Start: start, End: lane.NewDate(2024, 6, 22)},
		}

		// when
		scale := BuildScale(events, start, PatternFormatter{})

		// then
		assert.Equal(t, []ScaleMark{
			{Date: lane.NewDate(2024, 6, 20), Month: "JUN", DayOfWeek: "THU", Day: "20", Offset: 0},
			{Date: lane.NewDate(2024, 6, 22), Month: "JUN", DayOfWeek: "SAT", Day: "22", Offset: 2},
			{Date: lane.NewDate(2024, 6, 24), Month: "JUN", DayOfWeek: "MON", Day: "24", Offset: 4},
		}, scale)
	})

	t.Run("should return empty scale for no events", func(t *testing.T) {
		scale := BuildScale([]lane.Event{}, lane.Date{}, PatternFormatter{})

		assert.NotNil(t, scale)
		assert.Empty(t, scale)
	})

	t.Run("should use the given formatter", func(t *testing.T) {
		day := lane.NewDate(2024, 1, 1)
		events := []lane.Event{{Start: day, End: day}}

		scale := BuildScale(events, day, fixedFormatter("x"))

		assert.Len(t, scale, 1)
		assert.Equal(t, "X", scale[0].Month)
		assert.Equal(t, "X", scale[0].DayOfWeek)
		assert.Equal(t, "x", scale[0].Day)
	})
}

type fixedFormatter string

func (f fixedFormatter) Format(lane.Date, string) string { return string(f) }
