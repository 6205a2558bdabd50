package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvTimelineRendererImpl_RenderTimeline(t *testing.T) {
	t.Run("should render one row per placement in lane order", func(t *testing.T) {
		// given
		events := []Event{
			namedEvent("A", june(20), june(22)),
			namedEvent("B", june(21), june(23)),
			namedEvent("C, with comma", june(24), june(25)),
		}
		timeline := Layout(june(1), june(30), events, PatternFormatter{})

		// when
		result, err := NewCsvTimelineRenderer().RenderTimeline(timeline)

		// then
		require.NoError(t, err)
		expected := "lane,name,start,end,offset,duration\n" +
			"0,A,2024-06-20,2024-06-22,0,3\n" +
			"0,\"C, with comma\",2024-06-24,2024-06-25,4,2\n" +
			"1,B,2024-06-21,2024-06-23,1,3\n"
		assert.Equal(t, expected, result)
	})

	t.Run("should render only the header for an empty timeline", func(t *testing.T) {
		result, err := NewCsvTimelineRenderer().RenderTimeline(Layout(june(1), june(2), nil, PatternFormatter{}))

		require.NoError(t, err)
		assert.Equal(t, "lane,name,start,end,offset,duration\n", result)
	})
}
