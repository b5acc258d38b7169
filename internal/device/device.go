// Package device derives stable device keys from request metadata so that
// accounts sharing hardware end up linked to the same graph node.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// Service computes device fingerprints. A disabled service never produces a
// fingerprint and every key falls back to the per-user form.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ComputeFingerprint hashes the stable parts of a user agent: browser name,
// browser major version, OS and platform. Patch-level upgrades keep the same
// fingerprint.
func (s *Service) ComputeFingerprint(userAgent string) string {
	if !s.enabled || strings.TrimSpace(userAgent) == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	major, _, _ := strings.Cut(version, ".")

	parts := []string{name, major, ua.OS(), ua.Platform()}
	return hash(strings.Join(parts, "|"))
}

// Key returns the graph key for the device a user acted from. Without a
// fingerprint the key is synthesized per user, so each user still gets
// exactly one device link.
func (s *Service) Key(userAgent, clientIP, userID string) string {
	fp := s.ComputeFingerprint(userAgent)
	if fp == "" {
		return "ip-" + userID
	}
	if clientIP == "" {
		return fp
	}
	return hash(fp + "|" + clientIP)
}

// CompareFingerprints reports whether two fingerprints match and whether a
// mismatch between two known fingerprints should be treated as drift.
func (s *Service) CompareFingerprints(stored, current string) (matched bool, drift bool) {
	matched = stored == current
	drift = !matched && stored != "" && current != ""
	return matched, drift
}

// ParseUserAgent renders a short display name such as "Chrome on Mac OS X".
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	name, _ := ua.Browser()
	if name == "" {
		name = "Unknown Browser"
	}
	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(fmt.Sprintf("%s on %s", name, os))
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
