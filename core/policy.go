package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// ComplianceFramework identifies specific compliance frameworks
type ComplianceFramework string

const (
	// FrameworkPCI represents PCI-DSS compliance
	FrameworkPCI ComplianceFramework = "pci"

	// FrameworkSOC2 represents SOC 2 compliance
	FrameworkSOC2 ComplianceFramework = "soc2"
)

// Environment variables that override policy values
const (
	EnvMaskChar     = "LUHNY_MASK_CHAR"
	EnvAuditEnabled = "LUHNY_AUDIT_ENABLED"
	EnvAuditPath    = "LUHNY_AUDIT_PATH"
	EnvAuditLevel   = "LUHNY_AUDIT_LEVEL"
)

// PolicyMetadata contains information about the policy
type PolicyMetadata struct {
	// Version of the policy
	Version string `yaml:"version"`

	// When the policy was created
	CreatedAt time.Time `yaml:"created_at"`

	// Last modification time
	UpdatedAt time.Time `yaml:"updated_at"`

	// Description of the policy
	Description string `yaml:"description"`

	// Author of the policy
	Author string `yaml:"author"`

	// Hash of the policy content for integrity verification
	Hash string `yaml:"hash,omitempty"`

	// Compliance frameworks this policy addresses
	Frameworks []ComplianceFramework `yaml:"frameworks,omitempty"`
}

// MaskSettings controls how detected digits are rewritten
type MaskSettings struct {
	// Character written in place of each masked digit
	Character string `yaml:"character"`
}

// AuditSettings controls the masking audit trail
type AuditSettings struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path,omitempty"`
	Level   AuditLogLevel `yaml:"level,omitempty"`

	// Days to keep rotated audit files, 0 keeps them forever
	RetentionDays int `yaml:"retention_days,omitempty"`
}

// Policy defines how card numbers are masked and audited
type Policy struct {
	// Metadata about the policy
	Metadata PolicyMetadata `yaml:"metadata"`

	Mask  MaskSettings  `yaml:"mask"`
	Audit AuditSettings `yaml:"audit"`
}

// MaskRune returns the configured mask character, or DefaultMaskCharacter
// when none is set
func (p *Policy) MaskRune() rune {
	if p == nil || p.Mask.Character == "" {
		return DefaultMaskCharacter
	}
	r, _ := utf8.DecodeRuneInString(p.Mask.Character)
	return r
}

// DefaultPolicy returns the built-in policy: mask with 'X', auditing off
func DefaultPolicy() *Policy {
	return &Policy{
		Metadata: PolicyMetadata{
			Version:     "1.0.0",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
			Description: "Mask Luhn-valid card numbers",
			Author:      "luhny",
			Frameworks:  []ComplianceFramework{FrameworkPCI},
		},
		Mask: MaskSettings{
			Character: string(DefaultMaskCharacter),
		},
		Audit: AuditSettings{
			Enabled: false,
			Path:    "audit.log",
			Level:   AuditLogLevelStandard,

			RetentionDays: 90,
		},
	}
}

// LoadPolicy reads a YAML policy file. Fields missing from the file keep their
// default values.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	policy := DefaultPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}

	if err := ValidatePolicy(policy); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	// Generate hash for integrity checking
	policy.Metadata.Hash = calculatePolicyHash(data)

	return policy, nil
}

// SavePolicy saves a policy to a YAML file
func SavePolicy(policy *Policy, path string) error {
	if err := ValidatePolicy(policy); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}

	policy.Metadata.Hash = ""
	data, err := yaml.Marshal(policy)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}

	// Calculate and update the hash for integrity checking
	policy.Metadata.Hash = calculatePolicyHash(data)

	// Re-marshal with the updated hash
	data, err = yaml.Marshal(policy)
	if err != nil {
		return fmt.Errorf("failed to re-marshal policy with hash: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write policy file: %w", err)
	}

	return nil
}

// ValidatePolicy checks if a policy is valid
func ValidatePolicy(policy *Policy) error {
	if policy == nil {
		return fmt.Errorf("policy is nil")
	}

	if err := validateMaskCharacter(policy.Mask.Character); err != nil {
		return err
	}

	switch policy.Audit.Level {
	case "", AuditLogLevelMinimal, AuditLogLevelStandard, AuditLogLevelVerbose:
	default:
		return fmt.Errorf("unknown audit level %q", policy.Audit.Level)
	}

	if policy.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit retention must not be negative")
	}

	if policy.Audit.Enabled && policy.Audit.Path == "" {
		return fmt.Errorf("audit is enabled but no audit path is set")
	}

	return nil
}

// validateMaskCharacter requires a single rune that can never be mistaken for
// part of a card number
func validateMaskCharacter(s string) error {
	if s == "" {
		return nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return fmt.Errorf("mask character must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || IsCardLike(r) {
		return fmt.Errorf("mask character %q is not allowed", s)
	}
	return nil
}

// ApplyEnvOverrides replaces policy values with the LUHNY_* environment
// variables that are set, then validates the result
func ApplyEnvOverrides(policy *Policy) error {
	if v := strings.TrimSpace(os.Getenv(EnvMaskChar)); v != "" {
		policy.Mask.Character = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvAuditEnabled)); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAuditEnabled, err)
		}
		policy.Audit.Enabled = enabled
	}

	if v := strings.TrimSpace(os.Getenv(EnvAuditPath)); v != "" {
		policy.Audit.Path = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvAuditLevel)); v != "" {
		policy.Audit.Level = AuditLogLevel(strings.ToLower(v))
	}

	return ValidatePolicy(policy)
}

// calculatePolicyHash generates a hash of the policy content for integrity checking
func calculatePolicyHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
