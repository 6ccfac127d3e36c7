// Package featureflags evaluates operator-controlled switches such as the
// legacy authorization rules.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// AdminPrefixSignup grants the admin role to new accounts whose
	// username starts with "admin".
	AdminPrefixSignup = "admin_prefix_signup"
	// LegacyAdminUsername treats the account named exactly "Admin" as an
	// administrator for post deletion regardless of its role.
	LegacyAdminUsername = "legacy_admin_username"
)

// Defaults apply before FEATURE_FLAGS overrides.
var Defaults = map[string]string{
	AdminPrefixSignup:   "on",
	LegacyAdminUsername: "off",
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "admin_prefix_signup=off,legacy_admin_username=on,new_feed=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a manager from Defaults overlaid with raw.
func NewManager(raw string) *Manager {
	flags := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		flags[k] = v
	}
	for k, v := range parse(raw) {
		flags[k] = v
	}
	return &Manager{flags: flags}
}

func parse(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}

// On reports whether a flag is switched on globally. Percentage rollouts
// count as off here since there is no subject to bucket.
func (m *Manager) On(name string) bool {
	return m.Enabled(name, "")
}

// Enabled returns whether a flag is enabled for subject, typically a
// username. Supported values: on/true/1, off/false/0, and N% for a
// deterministic rollout bucketed on subject. A nil Manager evaluates
// Defaults.
func (m *Manager) Enabled(name, subject string) bool {
	value, ok := m.lookup(normalize(name))
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if subject == "" {
		return false
	}
	return rolloutBucket(name, subject) < pct
}

func (m *Manager) lookup(name string) (string, bool) {
	if m == nil {
		v, ok := Defaults[name]
		return v, ok
	}
	v, ok := m.flags[name]
	return v, ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + subject))
	return int(h.Sum32() % 100)
}
