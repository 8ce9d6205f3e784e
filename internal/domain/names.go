package domain

import "strings"

// MaxNameLength bounds every sanitized entry name.
const MaxNameLength = 64

// SanitizeName maps an arbitrary label onto the registry name alphabet [a-z0-9_].
func SanitizeName(raw string) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))
	pendingSep := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	name := b.String()
	if len(name) > MaxNameLength {
		name = strings.TrimRight(name[:MaxNameLength], "_")
	}
	return name
}

// PrefixedName joins an optional prefix onto a base label before sanitizing.
func PrefixedName(prefix, base string) string {
	if strings.TrimSpace(prefix) == "" {
		return SanitizeName(base)
	}
	return SanitizeName(prefix + "_" + base)
}
