// Package luhny masks payment-card numbers in character streams.
//
// Card-like runs of digits, spaces and hyphens are checked with the Luhn
// algorithm over 14 to 16 digit windows; digits of valid numbers are replaced
// by a mask character and everything else passes through unchanged.
//
// Usage:
//
//	err := luhny.Mask(os.Stdin, os.Stdout)
//	masked := luhny.MaskString("card 4111 1111 1111 1111")
package luhny

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/SamuelRCrider/luhny/core"
)

// Mask copies r to w, masking card numbers with the default policy
func Mask(r io.Reader, w io.Writer) error {
	_, err := MaskWithPolicy(r, w, nil)
	return err
}

// MaskWithPolicy copies r to w, masking card numbers as configured by policy.
// A nil policy uses core.DefaultPolicy. When the policy enables auditing the
// audit log is opened for the duration of the call.
func MaskWithPolicy(r io.Reader, w io.Writer, policy *core.Policy) (core.Stats, error) {
	if policy == nil {
		policy = core.DefaultPolicy()
	}

	audit, err := core.NewAuditLoggerFromPolicy(policy)
	if err != nil {
		return core.Stats{}, fmt.Errorf("failed to open audit log: %w", err)
	}
	if audit != nil {
		defer audit.Close()
	}

	masker := core.NewMasker(runeReader(r), bufio.NewWriter(w), policy).WithAuditLogger(audit)
	if err := masker.Mask(); err != nil {
		return masker.Stats(), fmt.Errorf("masking failed: %w", err)
	}

	return masker.Stats(), nil
}

// MaskString returns s with card numbers masked by the default policy
func MaskString(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	// Reading from a string and writing to a builder cannot fail
	_ = core.NewMasker(strings.NewReader(s), bufio.NewWriter(&out), nil).Mask()
	return out.String()
}

// runeReader avoids double buffering when r already reads runes
func runeReader(r io.Reader) io.RuneReader {
	if rr, ok := r.(io.RuneReader); ok {
		return rr
	}
	return bufio.NewReader(r)
}
