package booking

// ExpandTimes turns an ideal time plus two nested windows into two ranked
// candidate lists. Starting from the ideal, it sweeps outward in 15-minute
// steps; at each step the later candidate is considered first, then the
// earlier one. A candidate inside the preferred window joins the preferred
// tier, one inside only the allowed window joins the allowed tier, anything
// else is dropped. The sweep stops the first time a full step adds nothing.
//
// The ideal itself always heads the preferred tier, even when it lies outside
// the preferred window; rejecting such input is the caller's job. When the
// two windows are equal the allowed tier comes back empty.
//
// Output order is try-order. Callers must not sort it.
func ExpandTimes(ideal TimeOfDay, preferred, allowed TimeWindow) (CandidateTimes, CandidateTimes) {
	preferredTimes := CandidateTimes{ideal}
	var allowedTimes CandidateTimes

	for step := 15; step < minutesPerDay; step += 15 {
		earlier := ideal.Offset(-step)
		later := ideal.Offset(step)

		added := false
		candidates := []TimeOfDay{later}
		if earlier != later {
			candidates = append(candidates, earlier)
		}
		for _, t := range candidates {
			switch {
			case preferred.Contains(t):
				preferredTimes = append(preferredTimes, t)
				added = true
			case allowed.Contains(t):
				allowedTimes = append(allowedTimes, t)
				added = true
			}
		}
		if !added {
			break
		}
	}
	return preferredTimes, allowedTimes
}
