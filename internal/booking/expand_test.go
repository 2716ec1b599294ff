package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(hour, minute int) TimeOfDay { return TimeOfDay{Hour: hour, Minute: minute} }

func win(minH, minM, maxH, maxM int) TimeWindow {
	return TimeWindow{Min: tod(minH, minM), Max: tod(maxH, maxM)}
}

func TestExpandTimesExactOrder(t *testing.T) {
	pref, allowed := ExpandTimes(tod(18, 0), win(17, 0, 20, 0), win(17, 0, 20, 0))

	want := CandidateTimes{
		tod(18, 0), tod(18, 15), tod(17, 45), tod(18, 30), tod(17, 30),
		tod(18, 45), tod(17, 15), tod(19, 0), tod(17, 0), tod(19, 15),
		tod(19, 30), tod(19, 45), tod(20, 0),
	}
	assert.Equal(t, want, pref)
	assert.Empty(t, allowed)
}

func TestExpandTimesSpilloverToAllowed(t *testing.T) {
	pref, allowed := ExpandTimes(tod(19, 0), win(18, 30, 19, 30), win(17, 0, 20, 30))

	assert.Equal(t, CandidateTimes{
		tod(19, 0), tod(19, 15), tod(18, 45), tod(19, 30), tod(18, 30),
	}, pref)
	// The first candidate past the preferred window lands in allowed, not
	// dropped.
	assert.Contains(t, allowed, tod(18, 15))
	assert.Equal(t, CandidateTimes{
		tod(19, 45), tod(18, 15), tod(20, 0), tod(18, 0), tod(20, 15),
		tod(17, 45), tod(20, 30), tod(17, 30), tod(17, 15), tod(17, 0),
	}, allowed)
}

func TestExpandTimesTiersDisjointAndBounded(t *testing.T) {
	preferred := win(18, 0, 19, 0)
	allowedWin := win(16, 30, 21, 45)

	for _, ideal := range []TimeOfDay{tod(18, 0), tod(18, 30), tod(19, 0)} {
		pref, allowed := ExpandTimes(ideal, preferred, allowedWin)

		seen := map[TimeOfDay]bool{}
		for _, x := range pref {
			assert.False(t, seen[x], "duplicate %s", x)
			seen[x] = true
		}
		for _, x := range allowed {
			assert.False(t, seen[x], "tier overlap at %s", x)
			seen[x] = true
			assert.True(t, allowedWin.Contains(x))
		}
		for _, x := range pref {
			assert.True(t, allowedWin.Contains(x))
		}
	}
}

func TestExpandTimesDeterministic(t *testing.T) {
	a1, b1 := ExpandTimes(tod(18, 0), win(17, 0, 20, 0), win(16, 0, 22, 0))
	a2, b2 := ExpandTimes(tod(18, 0), win(17, 0, 20, 0), win(16, 0, 22, 0))
	require.Equal(t, a1, a2)
	require.Equal(t, b1, b2)
}

func TestExpandTimesIdealOutsideWindowStillLeads(t *testing.T) {
	// Rejecting this input is the caller's job; the sweep itself keeps the
	// ideal at the head of the preferred tier.
	pref, _ := ExpandTimes(tod(16, 0), win(17, 0, 20, 0), win(17, 0, 20, 0))
	require.NotEmpty(t, pref)
	assert.Equal(t, tod(16, 0), pref[0])
}

func TestExpandTimesEqualWindowsMeanNoFallbackTier(t *testing.T) {
	_, allowed := ExpandTimes(tod(18, 0), win(17, 30, 18, 30), win(17, 30, 18, 30))
	assert.Empty(t, allowed)
}
