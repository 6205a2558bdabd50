package timeline

import (
	"testing"

	"github.com/klokku/timeline/pkg/lane"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func june(day int) lane.Date {
	return lane.NewDate(2024, 6, day)
}

func namedEvent(name string, start, end lane.Date) Event {
	return Event{Name: name, Start: start, End: end, Source: SourceManual}
}

func TestLayout(t *testing.T) {
	t.Run("should place events in lanes with offsets from the first start", func(t *testing.T) {
		// given
		a := namedEvent("A", june(20), june(22))
		b := namedEvent("B", june(21), june(23))
		c := namedEvent("C", june(24), june(25))

		// when
		result := Layout(june(1), june(30), []Event{a, b, c}, PatternFormatter{})

		// then
		assert.Equal(t, june(1), result.From)
		assert.Equal(t, june(30), result.To)
		assert.Equal(t, june(20), result.Start)
		assert.Equal(t, june(25), result.End)
		assert.Equal(t, 6, result.TotalDays)
		assert.Equal(t, 2, result.Depth)
		require.Len(t, result.Lanes, 2)
		assert.Equal(t, Lane{Index: 0, Items: []Placement{
			{Event: a, Offset: 0, Duration: 3},
			{Event: c, Offset: 4, Duration: 2},
		}}, result.Lanes[0])
		assert.Equal(t, Lane{Index: 1, Items: []Placement{
			{Event: b, Offset: 1, Duration: 3},
		}}, result.Lanes[1])
		assert.Len(t, result.Scale, 6)
	})

	t.Run("should return empty timeline without events", func(t *testing.T) {
		result := Layout(june(1), june(30), nil, PatternFormatter{})

		assert.True(t, result.Start.IsZero())
		assert.True(t, result.End.IsZero())
		assert.Zero(t, result.TotalDays)
		assert.Zero(t, result.Depth)
		assert.NotNil(t, result.Lanes)
		assert.Empty(t, result.Lanes)
		assert.Empty(t, result.Scale)
	})

	t.Run("should keep depth equal to maximum overlap", func(t *testing.T) {
		events := []Event{
			namedEvent("A", june(1), june(10)),
			namedEvent("B", june(2), june(3)),
			namedEvent("C", june(3), june(4)),
			namedEvent("D", june(4), june(4)),
			namedEvent("E", june(11), june(12)),
		}

		result := Layout(june(1), june(30), events, PatternFormatter{})

		assert.Equal(t, lane.MaxDepth(events), result.Depth)
		assert.Equal(t, 3, result.Depth)
	})
}

func july(day int) lane.Date {
	return lane.NewDate(2024, 7, day)
}
