package core

import (
	"io"
	"log/slog"

	"github.com/SamuelRCrider/luhny/utils"
	"github.com/google/uuid"
)

// Stats summarizes one processed stream
type Stats struct {
	// Runes read from the input
	RunesRead int `json:"runes_read"`

	// Card-like runs collected
	Runs int `json:"runs"`

	// Runs that contained at least one valid card number
	MaskedRuns int `json:"masked_runs"`

	// Digits replaced by the mask character
	DigitsMasked int `json:"digits_masked"`
}

// Masker rewrites one input stream to one output stream, masking the digits
// of Luhn-valid card numbers. A Masker is not safe for concurrent use and
// processes exactly one stream.
type Masker struct {
	in       io.RuneReader
	out      RuneSink
	mask     rune
	streamID string
	audit    *AuditLogger
	logger   *slog.Logger

	// current card-like run and its rune offset in the stream
	run       []rune
	runOffset int

	stats Stats
}

// NewMasker creates a masker reading from in and writing to out.
// A nil policy uses DefaultPolicy.
func NewMasker(in io.RuneReader, out RuneSink, policy *Policy) *Masker {
	if policy == nil {
		policy = DefaultPolicy()
	}

	return &Masker{
		in:       in,
		out:      out,
		mask:     policy.MaskRune(),
		streamID: uuid.NewString(),
		logger:   slog.Default(),
		run:      make([]rune, 0, 64),
	}
}

// WithAuditLogger records detections and the stream summary to a
func (m *Masker) WithAuditLogger(a *AuditLogger) *Masker {
	m.audit = a
	return m
}

// WithStreamID overrides the generated stream identifier used in logs and audit events
func (m *Masker) WithStreamID(id string) *Masker {
	if id != "" {
		m.streamID = id
	}
	return m
}

// WithLogger sets the logger for diagnostics
func (m *Masker) WithLogger(logger *slog.Logger) *Masker {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// StreamID returns the identifier of the stream being processed
func (m *Masker) StreamID() string {
	return m.streamID
}

// Stats returns counters for the stream processed so far
func (m *Masker) Stats() Stats {
	return m.stats
}

// Mask processes the entire input stream and flushes the output.
// It alternates between collecting a card-like run, masking and emitting it,
// and passing other characters straight through. The first I/O failure aborts
// processing; output that was not flushed yet is left unflushed.
func (m *Masker) Mask() error {
	r, eof, err := m.read()
	for err == nil && !eof {
		r, eof, err = m.collectRun(r)
		if err != nil {
			break
		}
		if err = m.emitRun(); err != nil || eof {
			break
		}
		r, eof, err = m.passThrough(r)
	}
	if err != nil {
		m.logger.Debug("Masking aborted", "stream_id", m.streamID, "error", err)
		return err
	}

	if err := m.out.Flush(); err != nil {
		return &StreamError{Op: OpFlush, Err: err}
	}

	m.logger.Debug("Stream masked",
		"stream_id", m.streamID,
		"runes", m.stats.RunesRead,
		"runs", m.stats.Runs,
		"masked_runs", m.stats.MaskedRuns,
		"digits_masked", m.stats.DigitsMasked)

	if m.audit != nil {
		if err := m.audit.RecordSummary(m.streamID, m.stats); err != nil {
			m.logger.Warn("Failed to write audit summary", "stream_id", m.streamID, "error", err)
		}
	}

	return nil
}

// read returns the next rune, or eof=true at end of input
func (m *Masker) read() (rune, bool, error) {
	r, _, err := m.in.ReadRune()
	if err == io.EOF {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, &StreamError{Op: OpRead, Err: err}
	}
	m.stats.RunesRead++
	return r, false, nil
}

// collectRun buffers r and every following card-like rune. It returns the
// first rune that ended the run, which is not buffered.
func (m *Masker) collectRun(r rune) (rune, bool, error) {
	if !IsCardLike(r) {
		return r, false, nil
	}

	m.runOffset = m.stats.RunesRead - 1
	for {
		m.run = append(m.run, r)

		var eof bool
		var err error
		r, eof, err = m.read()
		if err != nil || eof {
			return r, eof, err
		}
		if !IsCardLike(r) {
			return r, false, nil
		}
	}
}

// passThrough writes r and every following rune until a card-like rune or
// end of input, which it returns unwritten
func (m *Masker) passThrough(r rune) (rune, bool, error) {
	for {
		if _, err := m.out.WriteRune(r); err != nil {
			return r, false, &StreamError{Op: OpWrite, Err: err}
		}

		var eof bool
		var err error
		r, eof, err = m.read()
		if err != nil || eof {
			return r, eof, err
		}
		if IsCardLike(r) {
			return r, false, nil
		}
	}
}

// emitRun masks and writes the buffered run, then clears the buffer
func (m *Masker) emitRun() error {
	if len(m.run) == 0 {
		return nil
	}
	defer func() { m.run = m.run[:0] }()

	m.stats.Runs++
	span, found := FindMaskSpan(m.run)

	masked, err := ApplyMask(m.out, m.run, span, m.mask)
	if err != nil {
		return err
	}
	if !found || masked == 0 {
		return nil
	}

	m.stats.MaskedRuns++
	m.stats.DigitsMasked += masked

	if m.audit != nil {
		detection := utils.Detection{
			StreamID:     m.streamID,
			RunOffset:    m.runOffset,
			RunLength:    len(m.run),
			SpanStart:    span.Start,
			SpanEnd:      span.End,
			DigitsMasked: masked,
		}
		if m.audit.Level() == AuditLogLevelVerbose {
			detection.Masked = string(maskWithin(m.run, span, m.mask))
		}
		if err := m.audit.RecordDetection(detection); err != nil {
			m.logger.Warn("Failed to write audit event", "stream_id", m.streamID, "error", err)
		}
	}

	return nil
}
