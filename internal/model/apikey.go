// Package model defines the APIKey structure and its lifecycle rules.
// Keys are created via explicit issuance, mutated only by usage increments
// and revocation, and revocation is terminal: a revoked key is never
// reactivated and its id/secret are never reissued.
package model

import "time"

// Permission constants for API keys.
const (
	PermissionRead      = "read"
	PermissionWrite     = "write"
	PermissionAnalytics = "analytics"
)

// ValidPermission reports whether p is a recognized permission.
func ValidPermission(p string) bool {
	switch p {
	case PermissionRead, PermissionWrite, PermissionAnalytics:
		return true
	}
	return false
}

// Tier constants for API keys. The tier deterministically derives the
// hourly rate limit.
const (
	TierFree       = "free"
	TierPremium    = "premium"
	TierEnterprise = "enterprise"
)

// RequestsPerHour returns the hourly quota for a tier, or 0 if the tier
// is unknown.
func RequestsPerHour(tier string) int {
	switch tier {
	case TierFree:
		return 1000
	case TierPremium:
		return 10000
	case TierEnterprise:
		return 100000
	}
	return 0
}

// SecretPrefixLen is how much of a key secret listing endpoints may expose.
// The full secret is shown exactly once, at creation time.
const SecretPrefixLen = 12

// RateLimit holds the quota derived from a key's tier.
type RateLimit struct {
	RequestsPerHour int `json:"requestsPerHour"`
}

// APIKeyUsage tracks per-key counters.
type APIKeyUsage struct {
	// CreatedAt is when the key was issued
	CreatedAt time.Time `json:"createdAt"`

	// RequestCount is the lifetime number of authorized requests
	RequestCount int `json:"requestCount"`

	// LastUsedAt is when the key last passed authorization
	LastUsedAt time.Time `json:"lastUsedAt,omitempty"`
}

// APIKey represents an issued API key. Key is the secret value; ID is the
// separate non-secret identifier used for management operations.
type APIKey struct {
	// ID is the non-secret identifier
	ID string `json:"id"`

	// Key is the secret value. Shown in full only at creation; listing
	// callers receive a truncated prefix.
	Key string `json:"key"`

	// Name is the caller-supplied label
	Name string `json:"name"`

	// UserID optionally binds the key to a user
	UserID string `json:"userId,omitempty"`

	// Permissions is the set of granted permissions
	Permissions []string `json:"permissions"`

	// Tier determines the rate limit
	Tier string `json:"tier"`

	// RateLimit is derived from Tier at issuance
	RateLimit RateLimit `json:"rateLimit"`

	// Usage holds the per-key counters
	Usage APIKeyUsage `json:"usage"`

	// Active is false once the key has been revoked
	Active bool `json:"active"`
}

// HasPermission reports whether the key grants the given permission.
func (k *APIKey) HasPermission(p string) bool {
	for _, have := range k.Permissions {
		if have == p {
			return true
		}
	}
	return false
}

// ForListing returns a copy safe to return from listing endpoints: the
// secret is truncated to a bounded prefix.
func (k *APIKey) ForListing() APIKey {
	out := *k
	out.Permissions = append([]string(nil), k.Permissions...)
	if len(out.Key) > SecretPrefixLen {
		out.Key = out.Key[:SecretPrefixLen] + "..."
	}
	return out
}
