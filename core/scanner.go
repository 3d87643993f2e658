package core

// Span is a half-open [Start, End) range of run positions whose digits get masked.
// The zero Span contains no positions.
type Span struct {
	Start int
	End   int
}

// Contains reports whether position i lies inside the span
func (s Span) Contains(i int) bool {
	return i >= s.Start && i < s.End
}

// Len returns the number of positions covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}

// FindMaskSpan computes the range of run that covers every Luhn-valid card
// number found in it. For each start position the longest valid window of
// 16, 15 or 14 digits wins. The span starts at the first position with a valid
// window and ends at the furthest window end seen, so separate numbers in one
// run are reported as a single interval.
//
// The boolean is false when no valid window exists (including an empty run).
func FindMaskSpan(run []rune) (Span, bool) {
	if len(run) == 0 {
		return Span{}, false
	}

	var span Span
	found := false

	for start := 0; start < len(run); start++ {
		for digits := MaxCardDigits; digits >= MinCardDigits; digits-- {
			end := windowEnd(run, start, digits)
			if end-start < MinCardDigits || !PassesLuhn(run[start:end]) {
				continue
			}

			if !found {
				span.Start = start
				found = true
			}
			if end > span.End {
				span.End = end
			}
			break
		}
	}

	return span, found
}

// windowEnd returns the smallest index such that run[start:end] holds digits
// decimal digits, or len(run) if the run has fewer digits left
func windowEnd(run []rune, start, digits int) int {
	end := start
	seen := 0
	for end < len(run) && seen < digits {
		if isDigit(run[end]) {
			seen++
		}
		end++
	}
	return end
}
