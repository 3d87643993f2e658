package core

// RuneSink is the output side of the masking pipeline. *bufio.Writer satisfies it.
type RuneSink interface {
	WriteRune(r rune) (int, error)
	Flush() error
}

// DefaultMaskCharacter replaces masked digits when the policy does not name one
const DefaultMaskCharacter = 'X'

// ApplyMask writes run to out, replacing every digit inside span with mask.
// Separators and everything outside the span are written unchanged.
// Returns the number of masked digits that were written.
func ApplyMask(out RuneSink, run []rune, span Span, mask rune) (int, error) {
	masked := 0
	for i, r := range run {
		hide := span.Contains(i) && isDigit(r)
		if hide {
			r = mask
		}
		if _, err := out.WriteRune(r); err != nil {
			return masked, &StreamError{Op: OpWrite, Err: err}
		}
		if hide {
			masked++
		}
	}
	return masked, nil
}

// MaskRun returns a masked copy of run without touching any stream
func MaskRun(run []rune, mask rune) []rune {
	span, _ := FindMaskSpan(run)
	return maskWithin(run, span, mask)
}

func maskWithin(run []rune, span Span, mask rune) []rune {
	out := make([]rune, len(run))
	for i, r := range run {
		if span.Contains(i) && isDigit(r) {
			r = mask
		}
		out[i] = r
	}
	return out
}
