package core

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMask(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	run := []rune(" 4111-1111-1111-1111 ")
	masked, err := ApplyMask(w, run, Span{Start: 1, End: 20}, '#')
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t, 16, masked)
	assert.Equal(t, " ####-####-####-#### ", buf.String())
}

func TestApplyMaskZeroSpanWritesRunUnchanged(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	masked, err := ApplyMask(w, []rune("1234 5678"), Span{}, 'X')
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Zero(t, masked)
	assert.Equal(t, "1234 5678", buf.String())
}

func TestApplyMaskWriteError(t *testing.T) {
	cause := errors.New("closed")
	sink := &errSink{limit: 3, writeErr: cause}

	masked, err := ApplyMask(sink, []rune("4111111111111111"), Span{Start: 0, End: 16}, 'X')
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, masked)

	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, OpWrite, streamErr.Op)
}

func TestMaskRun(t *testing.T) {
	assert.Equal(t, "12XXXXXXXXXXXXXX", string(MaskRun([]rune("1256613959932537"), 'X')))
	assert.Equal(t, "4111111111111112", string(MaskRun([]rune("4111111111111112"), 'X')))
	assert.Empty(t, MaskRun(nil, 'X'))
}
