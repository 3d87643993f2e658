package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/SamuelRCrider/luhny/core"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	configPath   string
	envFile      string
	versionStr   string
	commitStr    string
	buildTimeStr string

	// policy is resolved once per invocation by loadPolicy
	policy *core.Policy
	logger *slog.Logger
)

// SetVersion sets the version information
func SetVersion(version, commit, buildTime string) {
	versionStr = version
	commitStr = commit
	buildTimeStr = buildTime
}

var rootCmd = &cobra.Command{
	Use:   "luhny",
	Short: "Mask payment card numbers in text streams",
	Long: `luhny copies text from input to output and replaces the digits of
payment card numbers with a mask character.

Runs of digits, spaces and hyphens are checked with the Luhn algorithm over
14 to 16 digit windows. Only digits of valid numbers are masked; separators
and all other text pass through unchanged.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "luhny %s\n", versionStr)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commitStr)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", buildTimeStr)
	},
}

// Execute runs the root command
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML masking policy")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading LUHNY_* variables")

	rootCmd.AddCommand(maskCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup configures logging, loads the env file and resolves the policy
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := loadEnvFile(cmd); err != nil {
		return err
	}

	p, err := loadPolicy(configPath)
	if err != nil {
		return err
	}
	policy = p
	return nil
}

// loadEnvFile loads envFile when present. A missing default file is ignored;
// a missing file named explicitly on the command line is an error.
func loadEnvFile(cmd *cobra.Command) error {
	if envFile == "" {
		return nil
	}

	err := godotenv.Load(envFile)
	if err == nil {
		logger.Debug("Loaded environment", "path", envFile)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", envFile, err)
}

// loadPolicy reads the policy file, or the default policy when path is empty,
// and applies LUHNY_* environment overrides
func loadPolicy(path string) (*core.Policy, error) {
	p := core.DefaultPolicy()
	if path != "" {
		loaded, err := core.LoadPolicy(path)
		if err != nil {
			return nil, err
		}
		p = loaded
		logger.Debug("Loaded policy", "path", path, "version", p.Metadata.Version, "hash", p.Metadata.Hash)
	}

	if err := core.ApplyEnvOverrides(p); err != nil {
		return nil, err
	}
	return p, nil
}
