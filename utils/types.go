package utils

// Detection describes one card-like run whose digits were masked.
// It never carries the digits of the masked span.
type Detection struct {
	// Stream the run belongs to
	StreamID string `json:"stream_id"`

	// Rune offset of the first character of the run within the stream
	RunOffset int `json:"run_offset"`

	// Length of the run in runes
	RunLength int `json:"run_length"`

	// Masked span, relative to the start of the run
	SpanStart int `json:"span_start"`
	SpanEnd   int `json:"span_end"`

	// Number of digits replaced
	DigitsMasked int `json:"digits_masked"`

	// The run as written to the output, only populated at verbose audit level
	Masked string `json:"masked,omitempty"`
}
