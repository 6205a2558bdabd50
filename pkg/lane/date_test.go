package lane

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDate_Normalizes(t *testing.T) {
	assert.Equal(t, Date{2025, time.February, 1}, NewDate(2025, time.January, 32))
	assert.Equal(t, Date{2024, time.December, 31}, NewDate(2025, time.January, 0))
}

func TestDateOf_UsesTimeLocation(t *testing.T) {
	location, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 23:30 in New York is already the next day in UTC
	moment := time.Date(2025, time.March, 10, 23, 30, 0, 0, location)

	assert.Equal(t, NewDate(2025, time.March, 10), DateOf(moment))
	assert.Equal(t, NewDate(2025, time.March, 11), DateOf(moment.UTC()))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-20")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.June, 20), d)
	assert.Equal(t, "2025-06-20", d.String())

	_, err = ParseDate("20/06/2025")
	assert.Error(t, err)
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2025, time.June, 20)
	b := NewDate(2025, time.July, 1)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.After(a))
	assert.True(t, a.Equal(NewDate(2025, time.June, 20)))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, NewDate(2026, time.January, 1).Compare(b))
	assert.Equal(t, 0, b.Compare(b))
}

func TestDaysBetween(t *testing.T) {
	start := NewDate(2025, time.March, 28)

	assert.Equal(t, 0, DaysBetween(start, start))
	assert.Equal(t, 5, DaysBetween(start, NewDate(2025, time.April, 2)))
	assert.Equal(t, -28, DaysBetween(start, NewDate(2025, time.February, 28)))
	assert.Equal(t, 366, DaysBetween(NewDate(2024, time.January, 1), NewDate(2025, time.January, 1)))
	assert.Equal(t, NewDate(2025, time.April, 2), start.AddDays(5))
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}

	body, err := json.Marshal(payload{Start: NewDate(2025, time.June, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2025-06-01","end":""}`, string(body))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2025-06-01","end":"2025-06-03"}`), &decoded))
	assert.Equal(t, NewDate(2025, time.June, 3), decoded.End)

	assert.Error(t, json.Unmarshal([]byte(`{"start":"June 1st"}`), &decoded))
}
