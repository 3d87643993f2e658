package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SamuelRCrider/luhny/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

func TestRunMask(t *testing.T) {
	var out bytes.Buffer
	stats, err := runMask(strings.NewReader("a 4111111111111111 b\n"), &out, maskOptions{
		Encoding: "utf-8",
		Policy:   core.DefaultPolicy(),
	})
	require.NoError(t, err)

	assert.Equal(t, "a XXXXXXXXXXXXXXXX b\n", out.String())
	assert.Equal(t, 1, stats.MaskedRuns)
	assert.Equal(t, 16, stats.DigitsMasked)
}

func TestRunMaskLegacyEncoding(t *testing.T) {
	var out bytes.Buffer
	_, err := runMask(bytes.NewReader([]byte("caf\xe9 4111 1111 1111 1111\n")), &out, maskOptions{
		Encoding: "windows-1252",
		Policy:   core.DefaultPolicy(),
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("caf\xe9 XXXX XXXX XXXX XXXX\n"), out.Bytes())
}

func TestRunMaskUnknownEncoding(t *testing.T) {
	_, err := runMask(strings.NewReader(""), &bytes.Buffer{}, maskOptions{
		Encoding: "klingon",
		Policy:   core.DefaultPolicy(),
	})
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestRunMaskWritesAudit(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.log")
	p, err := core.NewPolicyBuilder().WithAudit(auditPath, core.AuditLogLevelMinimal).Build()
	require.NoError(t, err)

	_, err = runMask(strings.NewReader("378282246310005"), &bytes.Buffer{}, maskOptions{Policy: p})
	require.NoError(t, err)

	data, err := os.ReadFile(auditPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), core.EventStreamComplete)
	assert.NotContains(t, string(data), core.EventCardMasked)
}

func TestLoadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mask:\n  character: \"#\"\n"), 0644))

	p, err := loadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, '#', p.MaskRune())

	t.Setenv(core.EnvMaskChar, "*")
	p, err = loadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, '*', p.MaskRune())

	_, err = loadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMaskCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("pay 5555 5555 5555 4444 today"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"mask", "--mask-char", "#"})
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		maskChar = ""
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "pay #### #### #### #### today", out.String())
}
