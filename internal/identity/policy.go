package identity

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy decides booking and approval capabilities for an identity.
//
// The stock policy matches email domain suffixes: members of the student
// domain may book, members of the staff domain may approve. Explicit role
// grants extend the suffix rule so a capability can also be attached to a
// role claim. Everything not granted is denied.
type Policy struct {
	// Email suffix granting booking rights, e.g. "@kkumail.com"
	MemberSuffix string `yaml:"member_suffix"`
	// Email suffix granting approval rights, e.g. "@kku.ac.th"
	ApproverSuffix string `yaml:"approver_suffix"`

	// Roles granted booking rights regardless of email domain.
	MemberRoles []string `yaml:"member_roles"`
	// Roles granted approval rights regardless of email domain.
	ApproverRoles []string `yaml:"approver_roles"`
}

// NewPolicy returns a policy with the given domain suffixes and no role grants.
func NewPolicy(memberSuffix, approverSuffix string) *Policy {
	return &Policy{
		MemberSuffix:   memberSuffix,
		ApproverSuffix: approverSuffix,
	}
}

// LoadPolicy reads a policy from a YAML file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var policy Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	slog.Info("Policy loaded", "file", path,
		"member_suffix", policy.MemberSuffix,
		"approver_suffix", policy.ApproverSuffix)
	return &policy, nil
}

func suffixMatch(email, suffix string) bool {
	if suffix == "" || email == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), strings.ToLower(suffix))
}

func roleMatch(role string, roles []string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanBook reports whether the identity may submit booking requests.
func (p *Policy) CanBook(id Identity) bool {
	if id.IsZero() {
		return false
	}
	return suffixMatch(id.Email, p.MemberSuffix) || roleMatch(id.Role, p.MemberRoles)
}

// CanApprove reports whether the identity may list all bookings, approve, or reject.
func (p *Policy) CanApprove(id Identity) bool {
	if id.IsZero() {
		return false
	}
	return suffixMatch(id.Email, p.ApproverSuffix) || roleMatch(id.Role, p.ApproverRoles)
}
