package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want TimeOfDay
	}{
		{"6:00pm", TimeOfDay{18, 0}},
		{"6:15PM", TimeOfDay{18, 15}},
		{"12:00am", TimeOfDay{0, 0}},
		{"12:30pm", TimeOfDay{12, 30}},
		{"11:59pm", TimeOfDay{23, 59}},
		{"7pm", TimeOfDay{19, 0}},
		{" 9:05am ", TimeOfDay{9, 5}},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseTimeOfDayRejects(t *testing.T) {
	for _, in := range []string{"18:00", "6:00", "13:00pm", "6:60pm", "0:30am", "", "late"} {
		_, err := ParseTimeOfDay(in)
		assert.Error(t, err, in)
	}
}

func TestOffsetWraps(t *testing.T) {
	assert.Equal(t, TimeOfDay{18, 15}, TimeOfDay{18, 0}.Offset(15))
	assert.Equal(t, TimeOfDay{17, 45}, TimeOfDay{18, 0}.Offset(-15))
	assert.Equal(t, TimeOfDay{19, 0}, TimeOfDay{18, 45}.Offset(15))
	assert.Equal(t, TimeOfDay{0, 30}, TimeOfDay{23, 45}.Offset(45))
	assert.Equal(t, TimeOfDay{23, 30}, TimeOfDay{0, 15}.Offset(-45))
	assert.Equal(t, TimeOfDay{18, 0}, TimeOfDay{18, 0}.Offset(-24*60))
}

func TestCompare(t *testing.T) {
	assert.True(t, TimeOfDay{17, 59}.Before(TimeOfDay{18, 0}))
	assert.True(t, TimeOfDay{18, 1}.After(TimeOfDay{18, 0}))
	assert.Zero(t, TimeOfDay{18, 0}.Compare(TimeOfDay{18, 0}))
}

func TestString(t *testing.T) {
	assert.Equal(t, "6:00pm", TimeOfDay{18, 0}.String())
	assert.Equal(t, "12:05am", TimeOfDay{0, 5}.String())
	assert.Equal(t, "12:00pm", TimeOfDay{12, 0}.String())
	assert.Equal(t, "9:30am", TimeOfDay{9, 30}.String())
}
