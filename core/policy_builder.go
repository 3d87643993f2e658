package core

import "time"

// PolicyBuilder provides a fluent interface for creating masking policies
type PolicyBuilder struct {
	policy *Policy
}

// NewPolicyBuilder creates a new policy builder starting from DefaultPolicy
func NewPolicyBuilder() *PolicyBuilder {
	return &PolicyBuilder{
		policy: DefaultPolicy(),
	}
}

// WithMetadata sets the policy metadata
func (b *PolicyBuilder) WithMetadata(version, description, author string) *PolicyBuilder {
	b.policy.Metadata.Version = version
	b.policy.Metadata.Description = description
	b.policy.Metadata.Author = author
	return b
}

// WithFrameworks sets the compliance frameworks of the policy
func (b *PolicyBuilder) WithFrameworks(frameworks ...ComplianceFramework) *PolicyBuilder {
	b.policy.Metadata.Frameworks = frameworks
	return b
}

// WithMaskCharacter sets the character written in place of masked digits
func (b *PolicyBuilder) WithMaskCharacter(c rune) *PolicyBuilder {
	b.policy.Mask.Character = string(c)
	return b
}

// WithAudit enables the audit trail at path with the given level
func (b *PolicyBuilder) WithAudit(path string, level AuditLogLevel) *PolicyBuilder {
	b.policy.Audit.Enabled = true
	b.policy.Audit.Path = path
	b.policy.Audit.Level = level
	return b
}

// WithAuditRetention sets how many days rotated audit files are kept
func (b *PolicyBuilder) WithAuditRetention(days int) *PolicyBuilder {
	b.policy.Audit.RetentionDays = days
	return b
}

// WithoutAudit disables the audit trail
func (b *PolicyBuilder) WithoutAudit() *PolicyBuilder {
	b.policy.Audit.Enabled = false
	return b
}

// Build validates and returns the final policy
func (b *PolicyBuilder) Build() (*Policy, error) {
	// Update the updatedAt timestamp to be accurate
	b.policy.Metadata.UpdatedAt = time.Now()
	if err := ValidatePolicy(b.policy); err != nil {
		return nil, err
	}
	return b.policy, nil
}
