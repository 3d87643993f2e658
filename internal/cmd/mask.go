package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/SamuelRCrider/luhny/core"
	"github.com/SamuelRCrider/luhny/utils"
	"github.com/spf13/cobra"
)

var (
	maskIn       string
	maskOut      string
	maskEncoding string
	maskChar     string
)

var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Mask card numbers from a file or stdin",
	Long: `Mask card numbers in a text stream.

Reads from stdin and writes to stdout unless --in or --out name files.
The stream is processed incrementally; only the current run of digits,
spaces and hyphens is held in memory.

Example:
  luhny mask < payments.log > payments.masked.log
  luhny mask --in export.csv --out export.masked.csv --mask-char '*'
  luhny mask --encoding windows-1252 --in legacy.txt`,
	Args: cobra.NoArgs,
	RunE: runMaskCmd,
}

func init() {
	maskCmd.Flags().StringVarP(&maskIn, "in", "i", "", "input file (default: stdin)")
	maskCmd.Flags().StringVarP(&maskOut, "out", "o", "", "output file (default: stdout)")
	maskCmd.Flags().StringVarP(&maskEncoding, "encoding", "e", "utf-8", "character encoding of input and output")
	maskCmd.Flags().StringVar(&maskChar, "mask-char", "", "mask character, overrides the policy")
}

// maskOptions are the inputs of one mask invocation
type maskOptions struct {
	Encoding string
	Policy   *core.Policy
}

func runMaskCmd(cmd *cobra.Command, args []string) error {
	p := *policy
	if maskChar != "" {
		p.Mask.Character = maskChar
		if err := core.ValidatePolicy(&p); err != nil {
			return err
		}
	}

	in := cmd.InOrStdin()
	if maskIn != "" {
		f, err := os.Open(maskIn)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := cmd.OutOrStdout()
	var outFile *os.File
	if maskOut != "" {
		f, err := os.Create(maskOut)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		outFile = f
		out = f
	}

	stats, err := runMask(in, out, maskOptions{Encoding: maskEncoding, Policy: &p})
	if err != nil {
		return err
	}

	if outFile != nil {
		if err := outFile.Sync(); err != nil {
			return fmt.Errorf("failed to sync output: %w", err)
		}
	}

	logger.Info("Masking complete",
		"runes", stats.RunesRead,
		"masked_runs", stats.MaskedRuns,
		"digits_masked", stats.DigitsMasked)
	return nil
}

// runMask transcodes, masks and flushes one stream
func runMask(in io.Reader, out io.Writer, opts maskOptions) (core.Stats, error) {
	decoded, err := utils.NewDecodingReader(in, opts.Encoding)
	if err != nil {
		return core.Stats{}, err
	}
	encoded, err := utils.NewEncodingWriter(out, opts.Encoding)
	if err != nil {
		return core.Stats{}, err
	}

	audit, err := core.NewAuditLoggerFromPolicy(opts.Policy)
	if err != nil {
		return core.Stats{}, fmt.Errorf("failed to open audit log: %w", err)
	}
	if audit != nil {
		defer audit.Close()
	}

	masker := core.NewMasker(bufio.NewReader(decoded), bufio.NewWriter(encoded), opts.Policy).
		WithAuditLogger(audit).
		WithLogger(logger)
	if err := masker.Mask(); err != nil {
		return masker.Stats(), fmt.Errorf("masking failed: %w", err)
	}

	if err := encoded.Close(); err != nil {
		return masker.Stats(), fmt.Errorf("failed to flush output: %w", err)
	}

	return masker.Stats(), nil
}
