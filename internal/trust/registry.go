package trust

import "strings"

// DeviceTrustChecker answers whether an opaque device fingerprint is on the
// allow-list. A trusted device skips the password prompt; the fingerprint is
// client-computed and not cryptographically verified, so this is an
// ergonomics capability, not an identity check.
type DeviceTrustChecker interface {
	IsTrusted(fingerprint string) bool
}

// Registry is a static fingerprint allow-list, parsed once at startup and
// read-only afterwards.
type Registry struct {
	fingerprints map[string]struct{}
}

// NewRegistry parses a comma-separated fingerprint list. Entries are
// whitespace-trimmed and empty entries discarded. An empty or absent list
// trusts nobody.
func NewRegistry(rawList string) *Registry {
	fingerprints := make(map[string]struct{})
	for _, candidate := range strings.Split(rawList, ",") {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" {
			continue
		}
		fingerprints[trimmed] = struct{}{}
	}
	return &Registry{fingerprints: fingerprints}
}

// IsTrusted reports membership of the fingerprint in the configured list.
func (r *Registry) IsTrusted(fingerprint string) bool {
	if r == nil || len(r.fingerprints) == 0 {
		return false
	}
	_, ok := r.fingerprints[fingerprint]
	return ok
}

// Size returns the number of configured fingerprints.
func (r *Registry) Size() int {
	if r == nil {
		return 0
	}
	return len(r.fingerprints)
}
