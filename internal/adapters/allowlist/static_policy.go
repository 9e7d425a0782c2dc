package allowlist

// Package allowlist provides the static email allow-list access policy.

import "strings"

// IsAllowed reports whether email appears in the comma-separated allowList.
// Entries are trimmed and compared exactly (case-sensitive). Blank entries
// never match, so an empty or whitespace-only list denies every email,
// including the empty string.
func IsAllowed(email, allowList string) bool {
	if email == "" {
		return false
	}
	for _, entry := range strings.Split(allowList, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" && entry == email {
			return true
		}
	}
	return false
}

// StaticPolicy is an AccessPolicy backed by a fixed allow-list parsed once.
// It is read-only after construction and safe for concurrent use.
type StaticPolicy struct {
	emails map[string]struct{}
}

// NewStaticPolicy parses allowList using the same rules as IsAllowed.
func NewStaticPolicy(allowList string) *StaticPolicy {
	p := &StaticPolicy{emails: make(map[string]struct{})}
	for _, entry := range strings.Split(allowList, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			p.emails[entry] = struct{}{}
		}
	}
	return p
}

// IsAllowed implements ports.AccessPolicy.
func (p *StaticPolicy) IsAllowed(email string) bool {
	if p == nil || email == "" {
		return false
	}
	_, ok := p.emails[email]
	return ok
}

// Len returns the number of distinct allowed emails.
func (p *StaticPolicy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.emails)
}
