package mcpserver

import (
	"os"
	"strconv"
	"strings"
)

// Tool names exposed by the server
const (
	ToolMaskCardNumbers    = "mask_card_numbers"
	ToolValidateCardNumber = "validate_card_number"
)

// Config holds configuration for the MCP server
type Config struct {
	Name          string // Server name announced during initialization
	Version       string // Server version announced during initialization
	MaxInputBytes int    // Largest accepted tool input in bytes
}

// LoadConfig loads and merges the server configuration from the environment.
// Values already set on config take precedence.
func LoadConfig(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}

	if config.Name == "" {
		config.Name = "luhny"
	}

	if config.Version == "" {
		config.Version = "dev"
	}

	if config.MaxInputBytes == 0 {
		config.MaxInputBytes = 1 << 20
		if v := strings.TrimSpace(os.Getenv("LUHNY_MCP_MAX_INPUT_BYTES")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				config.MaxInputBytes = n
			}
		}
	}

	return config
}
